package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func paneProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"scrollTop":    map[string]interface{}{"type": "number", "description": "Current scroll offset in pixels"},
			"scrollHeight": map[string]interface{}{"type": "number", "description": "Total content height in pixels"},
			"clientHeight": map[string]interface{}{"type": "number", "description": "Visible height in pixels"},
		},
		"required": []string{"scrollHeight", "clientHeight"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Color Engine
		{
			Name:        "color_convert",
			Description: "Convert a color given as RGB channels or a hex string into HEX, RGB, HSL and OKLCH, with the CSS-style string for each format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "Hex color such as #ff8000 or ff8000. Takes precedence over r/g/b",
					},
					"r": intProperty("Red channel (0-255)"),
					"g": intProperty("Green channel (0-255)"),
					"b": intProperty("Blue channel (0-255)"),
				},
			},
		},
		{
			Name:        "color_sample",
			Description: "Sample the pixel at (x, y) of an image and return its color in every supported format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x":    intProperty("X coordinate (0-based)"),
					"y":    intProperty("Y coordinate (0-based)"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "color_loupe",
			Description: "Render a magnified, pixel-exact loupe centered on (x, y) with a grid and the center cell highlighted. Returns a base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x":    intProperty("Center X coordinate (0-based)"),
					"y":    intProperty("Center Y coordinate (0-based)"),
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Source window size in pixels. Default 15",
						"default":     15,
					},
					"display": map[string]interface{}{
						"type":        "integer",
						"description": "Output image size in pixels. Default 120",
						"default":     120,
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "color_palette",
			Description: "Extract the most common colors of an image, with the share of pixels each one covers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},

		// Markdown Sync Viewer
		{
			Name:        "markdown_blocks",
			Description: "Split a markdown document into its top-level blocks (headings, paragraphs, lists, tables, code fences, blockquotes, thematic breaks), each with its verbatim source.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Markdown source",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "markdown_render",
			Description: "Render a markdown document to sanitized HTML block by block. Blocks unchanged since the previous call are served from cache and flagged as cached.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Markdown source",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "markdown_scroll_sync",
			Description: "Compute the scroll offset that puts the target pane at the same scroll ratio as the source pane.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": paneProperty("Metrics of the pane that was scrolled"),
					"target": paneProperty("Metrics of the pane to move"),
				},
				"required": []string{"source", "target"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
