// Package server implements the MCP (Model Context Protocol) server for the
// portfolio's color and markdown tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the Color Engine
// and the Markdown Sync Viewer to MCP-compatible clients, so that the same
// conversions the web tools perform can be scripted.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr, never stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Color Engine:
//   - color_convert: HEX/RGB input to HEX, RGB, HSL and OKLCH
//   - color_sample: Color of one pixel of an image file
//   - color_loupe: Magnified loupe around a pixel, as base64 PNG
//   - color_palette: Most common colors of an image
//
// Markdown Sync Viewer:
//   - markdown_blocks: Top-level block segmentation
//   - markdown_render: Block-memoized HTML rendering with statistics
//   - markdown_scroll_sync: Proportional scroll position between panes
//
// # Image Caching
//
// Images are decoded once per path and kept in an in-memory RasterStore for
// the lifetime of the process. The markdown renderer likewise keeps the HTML
// of the previous markdown_render call, so re-rendering an edited document
// only converts the blocks that changed.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (malformed tools/call
//     params), -32601 (unknown method) or -32700 (unparseable line)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(version, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
