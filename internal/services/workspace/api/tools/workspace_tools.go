package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/louisbranch/gmworkspace/internal/platform/errors"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/view"
)

// StateInput is empty; workspace_state takes no arguments.
type StateInput struct{}

// StateTool defines the MCP tool schema for reading the workspace.
func StateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "workspace_state",
		Description: "Returns the open tabs of both panels, the focused panel, the split ratio and the campaign stage.",
	}
}

// StateHandler returns the current workspace state.
func StateHandler(sess *session.Session) mcp.ToolHandlerFor[StateInput, StateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ StateInput) (*mcp.CallToolResult, StateResult, error) {
		return nil, NewStateResult(sess.Current()), nil
	}
}

// OpenTabInput represents the MCP tool input for opening a tab.
type OpenTabInput struct {
	Panel string `json:"panel,omitempty" jsonschema:"panel identifier from panels_list; use this or path"`
	Path  string `json:"path,omitempty" jsonschema:"logical path of the view; use this or panel"`
	Side  string `json:"side,omitempty" jsonschema:"left or right; empty opens where the user is working"`
}

// OpenTabResult represents the MCP tool output for opening a tab.
type OpenTabResult struct {
	TabID string      `json:"tab_id" jsonschema:"identifier of the active tab"`
	State StateResult `json:"state" jsonschema:"workspace after the change"`
}

// OpenTabTool defines the MCP tool schema for opening a tab.
func OpenTabTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "workspace_open_tab",
		Description: "Opens a panel as a tab, or activates it when a tab with the same path is already open on that side.",
	}
}

// OpenTabHandler opens a tab.
func OpenTabHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[OpenTabInput, OpenTabResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input OpenTabInput) (*mcp.CallToolResult, OpenTabResult, error) {
		side, err := parseOptionalSide(input.Side)
		if err != nil {
			return nil, OpenTabResult{}, toolError("open tab", err, sess.Locale())
		}
		var tabID string
		switch {
		case strings.TrimSpace(input.Panel) != "":
			tabID, err = sess.OpenPanel(side, panel.ID(strings.TrimSpace(input.Panel)))
		case strings.TrimSpace(input.Path) != "":
			tabID, err = sess.OpenPath(side, input.Path)
		default:
			return nil, OpenTabResult{}, fmt.Errorf("panel or path is required")
		}
		if err != nil {
			return nil, OpenTabResult{}, toolError("open tab", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, OpenTabResult{TabID: tabID, State: NewStateResult(sess.Current())}, nil
	}
}

// CloseTabInput represents the MCP tool input for closing tabs.
type CloseTabInput struct {
	Side  string `json:"side" jsonschema:"left or right"`
	TabID string `json:"tab_id,omitempty" jsonschema:"tab to close, or to keep when mode is others"`
	Mode  string `json:"mode,omitempty" jsonschema:"one (default), others or all; pinned tabs are never closed"`
}

// CloseTabTool defines the MCP tool schema for closing tabs.
func CloseTabTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "workspace_close_tab",
		Description: "Closes one tab, every other tab, or every tab of a panel. Pinned tabs stay open.",
	}
}

// CloseTabHandler closes tabs.
func CloseTabHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[CloseTabInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CloseTabInput) (*mcp.CallToolResult, StateResult, error) {
		side, err := parseSide(input.Side)
		if err != nil {
			return nil, StateResult{}, toolError("close tab", err, sess.Locale())
		}
		mode, err := session.ParseCloseMode(input.Mode)
		if err != nil {
			return nil, StateResult{}, fmt.Errorf("close tab failed: %w", err)
		}
		if err := sess.Close(side, strings.TrimSpace(input.TabID), mode); err != nil {
			return nil, StateResult{}, toolError("close tab", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, NewStateResult(sess.Current()), nil
	}
}

// ActivateTabInput represents the MCP tool input for activating a tab.
type ActivateTabInput struct {
	Side  string `json:"side" jsonschema:"left or right"`
	TabID string `json:"tab_id" jsonschema:"tab to activate"`
}

// ActivateTabTool defines the MCP tool schema for activating a tab.
func ActivateTabTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "workspace_activate_tab",
		Description: "Makes a tab the active tab of its panel and focuses that panel.",
	}
}

// ActivateTabHandler activates a tab.
func ActivateTabHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[ActivateTabInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActivateTabInput) (*mcp.CallToolResult, StateResult, error) {
		side, err := parseSide(input.Side)
		if err != nil {
			return nil, StateResult{}, toolError("activate tab", err, sess.Locale())
		}
		if err := sess.Activate(side, strings.TrimSpace(input.TabID)); err != nil {
			return nil, StateResult{}, toolError("activate tab", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, NewStateResult(sess.Current()), nil
	}
}

// FocusPanelInput represents the MCP tool input for focusing a panel.
type FocusPanelInput struct {
	Side string `json:"side" jsonschema:"left or right"`
}

// FocusPanelTool defines the MCP tool schema for focusing a panel.
func FocusPanelTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "workspace_focus_panel",
		Description: "Moves focus to a panel. Focus stays on the left panel while the right panel is hidden.",
	}
}

// FocusPanelHandler focuses a panel.
func FocusPanelHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[FocusPanelInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input FocusPanelInput) (*mcp.CallToolResult, StateResult, error) {
		side, err := parseSide(input.Side)
		if err != nil {
			return nil, StateResult{}, toolError("focus panel", err, sess.Locale())
		}
		if err := sess.Focus(side); err != nil {
			return nil, StateResult{}, toolError("focus panel", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, NewStateResult(sess.Current()), nil
	}
}

// SetSplitInput represents the MCP tool input for resizing the panels.
type SetSplitInput struct {
	Ratio float64 `json:"ratio" jsonschema:"percent of the width given to the left panel, clamped to 0..100"`
}

// SetSplitTool defines the MCP tool schema for resizing the panels.
func SetSplitTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "workspace_set_split",
		Description: "Sets the share of the width given to the left panel. The right panel is shown whenever it has tabs.",
	}
}

// SetSplitHandler resizes the panels.
func SetSplitHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[SetSplitInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetSplitInput) (*mcp.CallToolResult, StateResult, error) {
		if err := sess.SetSplit(input.Ratio); err != nil {
			return nil, StateResult{}, toolError("set split", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, NewStateResult(sess.Current()), nil
	}
}

// SetStageInput represents the MCP tool input for switching stages.
type SetStageInput struct {
	Stage string `json:"stage" jsonschema:"prep, live or recap"`
}

// SetStageResult represents the MCP tool output for switching stages.
type SetStageResult struct {
	Layout       LayoutResult `json:"layout" jsonschema:"layout restored for the stage"`
	FromTemplate bool         `json:"from_template" jsonschema:"true when no saved default existed"`
	State        StateResult  `json:"state" jsonschema:"workspace after the change"`
}

// SetStageTool defines the MCP tool schema for switching stages.
func SetStageTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "workspace_set_stage",
		Description: "Switches the campaign stage and restores its default layout, or the stage template when none is saved.",
	}
}

// SetStageHandler switches stages.
func SetStageHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[SetStageInput, SetStageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetStageInput) (*mcp.CallToolResult, SetStageResult, error) {
		stage, err := panel.ParseStage(input.Stage)
		if err != nil {
			err = apperrors.WrapWithMetadata(apperrors.CodeLayoutInvalidStage, "parse stage", map[string]string{"Stage": input.Stage}, err)
			return nil, SetStageResult{}, toolError("set stage", err, sess.Locale())
		}
		loaded, err := sess.SetStage(ctx, stage)
		if err != nil {
			return nil, SetStageResult{}, toolError("set stage", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, SetStageResult{
			Layout:       NewLayoutResult(loaded.Layout),
			FromTemplate: loaded.FromTemplate,
			State:        NewStateResult(sess.Current()),
		}, nil
	}
}

// PanelsListInput represents the MCP tool input for listing panels.
type PanelsListInput struct {
	Stage string `json:"stage,omitempty" jsonschema:"stage to filter by; defaults to the current stage, use all for every panel"`
}

// PanelsListResult represents the MCP tool output for listing panels.
type PanelsListResult struct {
	Stage  string                  `json:"stage" jsonschema:"stage the list was filtered by"`
	Panels []PanelDefinitionResult `json:"panels" jsonschema:"registered panels"`
}

// PanelsListTool defines the MCP tool schema for listing panels.
func PanelsListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "panels_list",
		Description: "Lists the panels that can be opened in a campaign stage.",
	}
}

// PanelsListHandler lists panels.
func PanelsListHandler(sess *session.Session) mcp.ToolHandlerFor[PanelsListInput, PanelsListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PanelsListInput) (*mcp.CallToolResult, PanelsListResult, error) {
		loc := view.Printer(sess.Locale())
		filter := strings.ToLower(strings.TrimSpace(input.Stage))

		var defs []panel.Definition
		switch filter {
		case "all":
			defs = panel.All()
		case "":
			stage := sess.Current().Stage
			filter = string(stage)
			defs = panel.ForStage(stage)
		default:
			stage, err := panel.ParseStage(filter)
			if err != nil {
				err = apperrors.WrapWithMetadata(apperrors.CodeLayoutInvalidStage, "parse stage", map[string]string{"Stage": input.Stage}, err)
				return nil, PanelsListResult{}, toolError("list panels", err, sess.Locale())
			}
			defs = panel.ForStage(stage)
		}

		result := PanelsListResult{Stage: filter, Panels: make([]PanelDefinitionResult, 0, len(defs))}
		for _, def := range defs {
			result.Panels = append(result.Panels, panelDefinitionResult(def, loc.Sprintf(def.TitleKey)))
		}
		return nil, result, nil
	}
}
