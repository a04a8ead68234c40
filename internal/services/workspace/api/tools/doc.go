// Package tools exposes the live workspace to MCP clients. Each tool pairs a
// schema constructor (XxxTool) with a typed handler (XxxHandler), and the
// workspace state is published as the workspace://state resource.
package tools
