package mcpsurface

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// MountHTTP mounts the MCP SSE transport at /mcp (stream) and /mcp/message
// (client-to-server messages), and the StreamableHTTP (JSON-RPC) transport
// at /mcp/http, onto mux — the same *http.ServeMux the plain HTTP tool
// surface is registered on, grounded on the pack's dual-transport mounting
// idiom (register each transport's handler directly on a shared mux at its
// own path, rather than giving each transport its own listener).
func MountHTTP(mux *http.ServeMux, srv *mcpserver.MCPServer) {
	sse := mcpserver.NewSSEServer(srv, mcpserver.WithBaseURL("/mcp"), mcpserver.WithKeepAlive(true))
	mux.Handle("/mcp", sse)
	mux.Handle("/mcp/message", sse)

	streamable := mcpserver.NewStreamableHTTPServer(srv, mcpserver.WithEndpointPath("/mcp/http"))
	mux.Handle("/mcp/http", streamable)
}
