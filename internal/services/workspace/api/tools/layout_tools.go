package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/louisbranch/gmworkspace/internal/platform/errors"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/template"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/layout"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
)

// LayoutTemplateInput represents the MCP tool input for reading a stage template.
type LayoutTemplateInput struct {
	Stage string `json:"stage,omitempty" jsonschema:"prep, live or recap; defaults to the current stage"`
}

// LayoutTemplateResult represents the MCP tool output for reading a stage template.
type LayoutTemplateResult struct {
	Stage       string         `json:"stage" jsonschema:"template stage"`
	LeftPanels  []string       `json:"left_panels" jsonschema:"panel identifiers placed in the left panel"`
	RightPanels []string       `json:"right_panels" jsonschema:"panel identifiers placed in the right panel"`
	Snapshot    SnapshotResult `json:"snapshot" jsonschema:"arrangement restored by the template"`
}

// LayoutTemplateTool defines the MCP tool schema for reading a stage template.
func LayoutTemplateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_template",
		Description: "Returns the built-in layout of a stage, used when no default layout is saved.",
	}
}

// LayoutTemplateHandler reads a stage template without changing the workspace.
func LayoutTemplateHandler(sess *session.Session) mcp.ToolHandlerFor[LayoutTemplateInput, LayoutTemplateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input LayoutTemplateInput) (*mcp.CallToolResult, LayoutTemplateResult, error) {
		stage := sess.Current().Stage
		if strings.TrimSpace(input.Stage) != "" {
			parsed, err := panel.ParseStage(input.Stage)
			if err != nil {
				err = apperrors.WrapWithMetadata(apperrors.CodeLayoutInvalidStage, "parse stage", map[string]string{"Stage": input.Stage}, err)
				return nil, LayoutTemplateResult{}, toolError("layout template", err, sess.Locale())
			}
			stage = parsed
		}
		snapshot, err := layout.TemplateSnapshot(stage)
		if err != nil {
			return nil, LayoutTemplateResult{}, toolError("layout template", err, sess.Locale())
		}
		tree, err := template.Default(stage)
		if err != nil {
			return nil, LayoutTemplateResult{}, toolError("layout template", err, sess.Locale())
		}
		left, right, _ := template.Sides(tree)
		result := LayoutTemplateResult{
			Stage:       string(stage),
			LeftPanels:  panelIDs(left),
			RightPanels: panelIDs(right),
			Snapshot:    snapshotResult(snapshot),
		}
		return nil, result, nil
	}
}

// LayoutListInput is empty; layouts are listed for the session scope.
type LayoutListInput struct{}

// LayoutListResult represents the MCP tool output for listing layouts.
type LayoutListResult struct {
	Layouts []LayoutResult `json:"layouts" jsonschema:"saved layouts, default first, then most used"`
}

// LayoutListTool defines the MCP tool schema for listing layouts.
func LayoutListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_list",
		Description: "Lists the saved layouts of the current user and campaign.",
	}
}

// LayoutListHandler lists layouts.
func LayoutListHandler(sess *session.Session) mcp.ToolHandlerFor[LayoutListInput, LayoutListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ LayoutListInput) (*mcp.CallToolResult, LayoutListResult, error) {
		layouts, err := sess.ListLayouts(ctx)
		if err != nil {
			return nil, LayoutListResult{}, toolError("list layouts", err, sess.Locale())
		}
		result := LayoutListResult{Layouts: make([]LayoutResult, 0, len(layouts))}
		for _, l := range layouts {
			result.Layouts = append(result.Layouts, NewLayoutResult(l))
		}
		return nil, result, nil
	}
}

// LayoutSaveInput represents the MCP tool input for saving a layout.
type LayoutSaveInput struct {
	Name        string `json:"name" jsonschema:"layout name, unique per user and campaign"`
	Description string `json:"description,omitempty" jsonschema:"optional description"`
	ForStage    bool   `json:"for_stage,omitempty" jsonschema:"save for the current stage only"`
	IsDefault   bool   `json:"is_default,omitempty" jsonschema:"make this the default layout"`
}

// LayoutSaveTool defines the MCP tool schema for saving a layout.
func LayoutSaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_save",
		Description: "Saves the current arrangement of both panels as a named layout.",
	}
}

// LayoutSaveHandler saves a layout.
func LayoutSaveHandler(sess *session.Session) mcp.ToolHandlerFor[LayoutSaveInput, LayoutResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LayoutSaveInput) (*mcp.CallToolResult, LayoutResult, error) {
		saved, err := sess.SaveLayout(ctx, session.SaveLayoutInput{
			Name:        input.Name,
			Description: input.Description,
			ForStage:    input.ForStage,
			IsDefault:   input.IsDefault,
		})
		if err != nil {
			return nil, LayoutResult{}, toolError("save layout", err, sess.Locale())
		}
		return nil, NewLayoutResult(saved), nil
	}
}

// LayoutIDInput identifies a saved layout.
type LayoutIDInput struct {
	LayoutID string `json:"layout_id" jsonschema:"layout identifier"`
}

// LayoutLoadResult represents the MCP tool output for loading a layout.
type LayoutLoadResult struct {
	Layout       LayoutResult `json:"layout" jsonschema:"restored layout"`
	FromTemplate bool         `json:"from_template,omitempty" jsonschema:"true when a stage template was restored"`
	State        StateResult  `json:"state" jsonschema:"workspace after the restore"`
}

// LayoutLoadTool defines the MCP tool schema for loading a layout.
func LayoutLoadTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_load",
		Description: "Replaces both panels with a saved layout. The workspace is unchanged when the layout cannot be restored.",
	}
}

// LayoutLoadHandler loads a layout.
func LayoutLoadHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[LayoutIDInput, LayoutLoadResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LayoutIDInput) (*mcp.CallToolResult, LayoutLoadResult, error) {
		loaded, err := sess.LoadLayout(ctx, strings.TrimSpace(input.LayoutID))
		if err != nil {
			return nil, LayoutLoadResult{}, toolError("load layout", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, LayoutLoadResult{Layout: NewLayoutResult(loaded), State: NewStateResult(sess.Current())}, nil
	}
}

// LayoutLoadDefaultInput is empty; the default of the current stage is loaded.
type LayoutLoadDefaultInput struct{}

// LayoutLoadDefaultTool defines the MCP tool schema for loading the default layout.
func LayoutLoadDefaultTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_load_default",
		Description: "Restores the default layout of the current stage, or the stage template when none is saved.",
	}
}

// LayoutLoadDefaultHandler loads the default layout.
func LayoutLoadDefaultHandler(sess *session.Session, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[LayoutLoadDefaultInput, LayoutLoadResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ LayoutLoadDefaultInput) (*mcp.CallToolResult, LayoutLoadResult, error) {
		loaded, err := sess.LoadDefault(ctx)
		if err != nil {
			return nil, LayoutLoadResult{}, toolError("load default layout", err, sess.Locale())
		}
		notifyState(ctx, notify)
		return nil, LayoutLoadResult{
			Layout:       NewLayoutResult(loaded.Layout),
			FromTemplate: loaded.FromTemplate,
			State:        NewStateResult(sess.Current()),
		}, nil
	}
}

// LayoutSetDefaultTool defines the MCP tool schema for choosing the default layout.
func LayoutSetDefaultTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_set_default",
		Description: "Marks a layout as the default of its user, campaign and stage, clearing the previous default.",
	}
}

// LayoutSetDefaultHandler chooses the default layout.
func LayoutSetDefaultHandler(sess *session.Session) mcp.ToolHandlerFor[LayoutIDInput, LayoutResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LayoutIDInput) (*mcp.CallToolResult, LayoutResult, error) {
		updated, err := sess.SetDefaultLayout(ctx, strings.TrimSpace(input.LayoutID))
		if err != nil {
			return nil, LayoutResult{}, toolError("set default layout", err, sess.Locale())
		}
		return nil, NewLayoutResult(updated), nil
	}
}

// LayoutUpdateInput represents the MCP tool input for updating a layout.
type LayoutUpdateInput struct {
	LayoutID       string  `json:"layout_id" jsonschema:"layout identifier"`
	Name           *string `json:"name,omitempty" jsonschema:"new name"`
	Description    *string `json:"description,omitempty" jsonschema:"new description"`
	CaptureCurrent bool    `json:"capture_current,omitempty" jsonschema:"replace the stored arrangement with the current workspace"`
}

// LayoutUpdateTool defines the MCP tool schema for updating a layout.
func LayoutUpdateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_update",
		Description: "Renames or describes a layout, optionally overwriting it with the current arrangement.",
	}
}

// LayoutUpdateHandler updates a layout.
func LayoutUpdateHandler(sess *session.Session) mcp.ToolHandlerFor[LayoutUpdateInput, LayoutResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LayoutUpdateInput) (*mcp.CallToolResult, LayoutResult, error) {
		updated, err := sess.UpdateLayout(ctx, strings.TrimSpace(input.LayoutID), layout.UpdateInput{
			Name:           input.Name,
			Description:    input.Description,
			CaptureCurrent: input.CaptureCurrent,
		})
		if err != nil {
			return nil, LayoutResult{}, toolError("update layout", err, sess.Locale())
		}
		return nil, NewLayoutResult(updated), nil
	}
}

// LayoutDeleteResult represents the MCP tool output for deleting a layout.
type LayoutDeleteResult struct {
	LayoutID string `json:"layout_id" jsonschema:"deleted layout identifier"`
	Deleted  bool   `json:"deleted" jsonschema:"always true on success"`
}

// LayoutDeleteTool defines the MCP tool schema for deleting a layout.
func LayoutDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layout_delete",
		Description: "Deletes a saved layout. The workspace is not changed.",
	}
}

// LayoutDeleteHandler deletes a layout.
func LayoutDeleteHandler(sess *session.Session) mcp.ToolHandlerFor[LayoutIDInput, LayoutDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LayoutIDInput) (*mcp.CallToolResult, LayoutDeleteResult, error) {
		layoutID := strings.TrimSpace(input.LayoutID)
		if err := sess.DeleteLayout(ctx, layoutID); err != nil {
			return nil, LayoutDeleteResult{}, toolError("delete layout", err, sess.Locale())
		}
		return nil, LayoutDeleteResult{LayoutID: layoutID, Deleted: true}, nil
	}
}

func panelIDs(ids []panel.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
