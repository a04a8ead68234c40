package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
)

// StateResource defines the readable workspace state.
func StateResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "workspace_state",
		Title:       "Workspace State",
		Description: "Open tabs of both panels, focus, split ratio and campaign stage",
		MIMEType:    "application/json",
		URI:         StateURI,
	}
}

// StateResourceHandler serves the workspace state as JSON.
func StateResourceHandler(sess *session.Session) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := StateURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != StateURI {
			return nil, fmt.Errorf("unknown resource %s", uri)
		}
		data, err := json.MarshalIndent(NewStateResult(sess.Current()), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal workspace state: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
