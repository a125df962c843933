package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/portfolio/internal/imaging"
	"github.com/ironsheep/portfolio/internal/markdown"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "color_sample", "markdown_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Color Engine
	case "color_convert":
		return s.handleColorConvert(args)
	case "color_sample":
		return s.handleColorSample(args)
	case "color_loupe":
		return s.handleColorLoupe(args)
	case "color_palette":
		return s.handleColorPalette(args)

	// Markdown Sync Viewer
	case "markdown_blocks":
		return s.handleMarkdownBlocks(args)
	case "markdown_render":
		return s.handleMarkdownRender(args)
	case "markdown_scroll_sync":
		return s.handleMarkdownScrollSync(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Color Engine Handlers ===

// colorResult is a ColorRecord plus its rendering in every format.
type colorResult struct {
	imaging.ColorRecord
	Formatted map[string]string `json:"formatted"`
}

func newColorResult(rec imaging.ColorRecord) colorResult {
	return colorResult{ColorRecord: rec, Formatted: imaging.FormattedValues(rec)}
}

type colorConvertArgs struct {
	Hex string `json:"hex"`
	R   *int   `json:"r"`
	G   *int   `json:"g"`
	B   *int   `json:"b"`
}

func (s *Server) handleColorConvert(args json.RawMessage) (interface{}, error) {
	var a colorConvertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Hex != "" {
		c, err := imaging.HexToRGB(a.Hex)
		if err != nil {
			return nil, err
		}
		return newColorResult(imaging.NewColorRecord(imaging.PixelSample{R: c.R, G: c.G, B: c.B})), nil
	}

	if a.R == nil || a.G == nil || a.B == nil {
		return nil, fmt.Errorf("either hex or all of r, g, b is required")
	}
	var ch [3]uint8
	for i, v := range []int{*a.R, *a.G, *a.B} {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("channel value %d out of range [0, 255]", v)
		}
		ch[i] = uint8(v)
	}
	return newColorResult(imaging.NewColorRecord(imaging.PixelSample{R: ch[0], G: ch[1], B: ch[2]})), nil
}

type colorSampleArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleColorSample(args json.RawMessage) (interface{}, error) {
	var a colorSampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Load(a.Path)
	if err != nil {
		return nil, err
	}
	rec, err := imaging.SampleColor(r, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return newColorResult(*rec), nil
}

type colorLoupeArgs struct {
	Path    string `json:"path"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Size    int    `json:"size"`
	Display int    `json:"display"`
}

// LoupeResult is the encoded loupe image.
type LoupeResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Window      [4]int `json:"window"`    // x0, y0, x1, y1 of the magnified source pixels
	Placement   string `json:"placement"` // side of the cursor to show the loupe on
}

func (s *Server) handleColorLoupe(args json.RawMessage) (interface{}, error) {
	var a colorLoupeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Size <= 0 {
		a.Size = imaging.DefaultLoupeSize
	}
	if a.Display <= 0 {
		a.Display = imaging.DefaultLoupeDisplay
	}
	if a.Size > 101 || a.Display > 1024 {
		return nil, fmt.Errorf("loupe too large: size %d, display %d", a.Size, a.Display)
	}

	r, err := s.rasters.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if !r.Contains(a.X, a.Y) {
		return nil, fmt.Errorf("coordinates (%d, %d) out of bounds (image is %dx%d)", a.X, a.Y, r.Width(), r.Height())
	}

	img := imaging.NewLoupe(r, a.X, a.Y, a.Size, a.Display)
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	win := imaging.LoupeWindow(a.X, a.Y, a.Size)
	return &LoupeResult{
		Width:       a.Display,
		Height:      a.Display,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
		Window:      [4]int{win.Min.X, win.Min.Y, win.Max.X, win.Max.Y},
		Placement:   imaging.LoupePlacement(a.X, r.Width()),
	}, nil
}

type colorPaletteArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (s *Server) handleColorPalette(args json.RawMessage) (interface{}, error) {
	var a colorPaletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count <= 0 {
		a.Count = 5
	}
	r, err := s.rasters.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(r, a.Count, nil), nil
}

// === Markdown Handlers ===

type markdownArgs struct {
	Text *string `json:"text"`
}

func (a markdownArgs) text() (string, error) {
	if a.Text == nil {
		return "", fmt.Errorf("text is required")
	}
	return *a.Text, nil
}

// BlocksResult lists the blocks of a document.
type BlocksResult struct {
	Count  int              `json:"count"`
	Blocks []markdown.Block `json:"blocks"`
}

func (s *Server) handleMarkdownBlocks(args json.RawMessage) (interface{}, error) {
	var a markdownArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	text, err := a.text()
	if err != nil {
		return nil, err
	}
	blocks := markdown.SplitBlocks(text)
	if blocks == nil {
		blocks = []markdown.Block{}
	}
	return &BlocksResult{Count: len(blocks), Blocks: blocks}, nil
}

// RenderResult is a rendered document.
type RenderResult struct {
	HTML    string                   `json:"html"`
	Blocks  []markdown.RenderedBlock `json:"blocks"`
	Changed bool                     `json:"changed"`
	Stats   markdown.Stats           `json:"stats"`
}

func (s *Server) handleMarkdownRender(args json.RawMessage) (interface{}, error) {
	var a markdownArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	text, err := a.text()
	if err != nil {
		return nil, err
	}
	pass := s.renderer.Render(text)
	return &RenderResult{
		HTML:    markdown.JoinHTML(pass.Blocks),
		Blocks:  pass.Blocks,
		Changed: pass.Changed,
		Stats:   markdown.DocumentStats(text),
	}, nil
}

type scrollSyncArgs struct {
	Source *markdown.Pane `json:"source"`
	Target *markdown.Pane `json:"target"`
}

// ScrollSyncResult tells the caller where to move the target pane.
type ScrollSyncResult struct {
	ScrollTop float64 `json:"scrollTop"`
	Ratio     float64 `json:"ratio"`
	Propagate bool    `json:"propagate"` // false: leave the target alone
}

func (s *Server) handleMarkdownScrollSync(args json.RawMessage) (interface{}, error) {
	var a scrollSyncArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Source == nil || a.Target == nil {
		return nil, fmt.Errorf("source and target are required")
	}
	top, ok := markdown.SyncPosition(*a.Source, *a.Target)
	return &ScrollSyncResult{ScrollTop: top, Ratio: a.Source.Ratio(), Propagate: ok}, nil
}
