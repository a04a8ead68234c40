package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
)

const serverName = "gmworkspace"

// NewServer builds an MCP server exposing sess. Mutating tools send a
// resource update for workspace://state to subscribed clients.
func NewServer(sess *session.Session, version string) (*mcp.Server, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, &mcp.ServerOptions{
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})
	notify := func(ctx context.Context, uri string) {
		if ctx == nil {
			ctx = context.Background()
		}
		if err := server.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			log.Printf("mcp resource updated notify failed: uri=%s err=%v", uri, err)
		}
	}
	Register(server, sess, notify)
	return server, nil
}

// Register adds every workspace tool and resource to server.
func Register(server *mcp.Server, sess *session.Session, notify ResourceUpdateNotifier) {
	mcp.AddTool(server, StateTool(), StateHandler(sess))
	mcp.AddTool(server, OpenTabTool(), OpenTabHandler(sess, notify))
	mcp.AddTool(server, CloseTabTool(), CloseTabHandler(sess, notify))
	mcp.AddTool(server, ActivateTabTool(), ActivateTabHandler(sess, notify))
	mcp.AddTool(server, FocusPanelTool(), FocusPanelHandler(sess, notify))
	mcp.AddTool(server, SetSplitTool(), SetSplitHandler(sess, notify))
	mcp.AddTool(server, SetStageTool(), SetStageHandler(sess, notify))
	mcp.AddTool(server, PanelsListTool(), PanelsListHandler(sess))

	mcp.AddTool(server, LayoutTemplateTool(), LayoutTemplateHandler(sess))
	mcp.AddTool(server, LayoutListTool(), LayoutListHandler(sess))
	mcp.AddTool(server, LayoutSaveTool(), LayoutSaveHandler(sess))
	mcp.AddTool(server, LayoutLoadTool(), LayoutLoadHandler(sess, notify))
	mcp.AddTool(server, LayoutLoadDefaultTool(), LayoutLoadDefaultHandler(sess, notify))
	mcp.AddTool(server, LayoutSetDefaultTool(), LayoutSetDefaultHandler(sess))
	mcp.AddTool(server, LayoutUpdateTool(), LayoutUpdateHandler(sess))
	mcp.AddTool(server, LayoutDeleteTool(), LayoutDeleteHandler(sess))

	server.AddResource(StateResource(), StateResourceHandler(sess))
}

// resourceSubscribeHandler accepts subscriptions to known resources.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	if req.Params.URI != StateURI {
		return fmt.Errorf("unknown resource %s", req.Params.URI)
	}
	return nil
}

func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}
