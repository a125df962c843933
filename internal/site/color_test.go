package site

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

// testPNG returns a w x h PNG whose pixel (x, y) is (x, y, 200).
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func upload(t *testing.T, h http.Handler, data []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/color/images", bytes.NewReader(data))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadID(t *testing.T, h http.Handler, w, hgt int) string {
	t.Helper()
	rec := upload(t, h, testPNG(t, w, hgt), "image/png")
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: got %d: %s", rec.Code, rec.Body.String())
	}
	var info struct {
		ID string `json:"id"`
	}
	decode(t, rec, &info)
	return info.ID
}

type pickerJSON struct {
	ID       string `json:"id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Hovered  *struct {
		Hex string `json:"hex"`
	} `json:"hovered"`
	Selected *struct {
		Hex string `json:"hex"`
	} `json:"selected"`
}

func TestUpload_RawBody(t *testing.T) {
	_, h := newTestServer(t)

	rec := upload(t, h, testPNG(t, 40, 30), "image/png")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}
	var got pickerJSON
	decode(t, rec, &got)
	if got.ID == "" || got.Width != 40 || got.Height != 30 || got.Format != "png" {
		t.Errorf("info: got %+v", got)
	}
	if got.Hovered != nil || got.Selected != nil {
		t.Error("a fresh upload has no colors")
	}
}

func TestUpload_Multipart(t *testing.T) {
	_, h := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="a.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(testPNG(t, 8, 8))
	mw.Close()

	rec := upload(t, h, body.Bytes(), mw.FormDataContentType())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpload_SniffsGenericType(t *testing.T) {
	_, h := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "a.png") // application/octet-stream
	if err != nil {
		t.Fatal(err)
	}
	part.Write(testPNG(t, 8, 8))
	mw.Close()

	if rec := upload(t, h, body.Bytes(), mw.FormDataContentType()); rec.Code != http.StatusCreated {
		t.Errorf("octet-stream PNG: got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpload_Rejected(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name        string
		data        []byte
		contentType string
		want        int
	}{
		{"text file", []byte("hello"), "text/plain", http.StatusUnsupportedMediaType},
		{"sniffed text", []byte("just some words"), "application/octet-stream", http.StatusUnsupportedMediaType},
		{"corrupt image", []byte("not really a png"), "image/png", http.StatusBadRequest},
		{"too large", append(testPNG(t, 4, 4), make([]byte, 2<<20)...), "image/png", http.StatusRequestEntityTooLarge},
		{"multipart without image field", []byte("--x--\r\n"), "multipart/form-data; boundary=x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, h, tt.data, tt.contentType)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSampleAndSelect(t *testing.T) {
	_, h := newTestServer(t)
	id := uploadID(t, h, 100, 50)
	base := "/api/color/images/" + id

	rec := do(t, h, "GET", base+"/sample?x=10&y=20", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sample: got %d: %s", rec.Code, rec.Body.String())
	}
	var sample struct {
		Hex       string            `json:"hex"`
		X         int               `json:"x"`
		Y         int               `json:"y"`
		Formatted map[string]string `json:"formatted"`
		Placement string            `json:"placement"`
	}
	decode(t, rec, &sample)
	if sample.Hex != "#0a14c8" || sample.X != 10 || sample.Y != 20 {
		t.Errorf("sample: got %+v", sample)
	}
	if sample.Formatted["rgb"] != "rgb(10, 20, 200)" {
		t.Errorf("rgb: got %s", sample.Formatted["rgb"])
	}
	if sample.Placement != "right" {
		t.Errorf("placement: got %s", sample.Placement)
	}

	decode(t, do(t, h, "GET", base+"/sample?x=90&y=0", nil), &sample)
	if sample.Placement != "left" {
		t.Errorf("placement near right edge: got %s", sample.Placement)
	}

	var state pickerJSON
	decode(t, do(t, h, "POST", base+"/select", nil), &state)
	if state.Selected == nil || state.Selected.Hex != "#5a00c8" {
		t.Errorf("selected: got %+v", state.Selected)
	}

	// A later hover does not change the selection.
	do(t, h, "GET", base+"/sample?x=1&y=1", nil)
	decode(t, do(t, h, "GET", base, nil), &state)
	if state.Hovered == nil || state.Hovered.Hex != "#0101c8" {
		t.Errorf("hovered: got %+v", state.Hovered)
	}
	if state.Selected == nil || state.Selected.Hex != "#5a00c8" {
		t.Errorf("selected changed: got %+v", state.Selected)
	}
}

func TestSelect_NothingHovered(t *testing.T) {
	_, h := newTestServer(t)
	id := uploadID(t, h, 10, 10)

	rec := do(t, h, "POST", "/api/color/images/"+id+"/select", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var state pickerJSON
	decode(t, rec, &state)
	if state.Selected != nil {
		t.Errorf("selected: got %+v, want none", state.Selected)
	}
}

func TestSample_Errors(t *testing.T) {
	_, h := newTestServer(t)
	id := uploadID(t, h, 10, 10)
	base := "/api/color/images/" + id

	tests := []struct {
		target string
		want   int
	}{
		{base + "/sample?x=10&y=0", http.StatusBadRequest},
		{base + "/sample?x=-1&y=0", http.StatusBadRequest},
		{base + "/sample?x=1", http.StatusBadRequest},
		{base + "/sample?x=a&y=1", http.StatusBadRequest},
		{"/api/color/images/unknown/sample?x=1&y=1", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := do(t, h, "GET", tt.target, nil); rec.Code != tt.want {
			t.Errorf("%s: got %d, want %d", tt.target, rec.Code, tt.want)
		}
	}

	// Failed samples leave the hovered slot empty.
	var state pickerJSON
	decode(t, do(t, h, "GET", base, nil), &state)
	if state.Hovered != nil {
		t.Errorf("hovered: got %+v, want none", state.Hovered)
	}
}

func TestLoupe(t *testing.T) {
	_, h := newTestServer(t)
	id := uploadID(t, h, 40, 40)
	base := "/api/color/images/" + id

	rec := do(t, h, "GET", base+"/loupe?x=0&y=0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("content type: got %s", rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 120 {
		t.Errorf("size: got %v", img.Bounds())
	}

	rec = do(t, h, "GET", base+"/loupe?x=20&y=20&size=9&display=90", nil)
	img, err = png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 90 {
		t.Errorf("custom size: got %v", img.Bounds())
	}

	for _, q := range []string{"x=40&y=0", "x=0", "x=0&y=0&size=0", "x=0&y=0&display=5000"} {
		if rec := do(t, h, "GET", base+"/loupe?"+q, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", q, rec.Code)
		}
	}
}

func TestPalette(t *testing.T) {
	_, h := newTestServer(t)
	id := uploadID(t, h, 32, 32)

	var palette struct {
		Colors []struct {
			Percentage float64 `json:"percentage"`
		} `json:"colors"`
	}
	decode(t, do(t, h, "GET", "/api/color/images/"+id+"/palette?count=3", nil), &palette)
	if len(palette.Colors) != 3 {
		t.Fatalf("colors: got %d, want 3", len(palette.Colors))
	}
	for i := 1; i < len(palette.Colors); i++ {
		if palette.Colors[i].Percentage > palette.Colors[i-1].Percentage {
			t.Error("palette should be sorted by share")
		}
	}
}

func TestReplaceAndReset(t *testing.T) {
	_, h := newTestServer(t)
	id := uploadID(t, h, 10, 10)
	base := "/api/color/images/" + id

	do(t, h, "GET", base+"/sample?x=1&y=1", nil)
	do(t, h, "POST", base+"/select", nil)

	req := httptest.NewRequest("PUT", base, bytes.NewReader(testPNG(t, 20, 5)))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace: got %d: %s", rec.Code, rec.Body.String())
	}
	var state pickerJSON
	decode(t, rec, &state)
	if state.Width != 20 || state.Hovered != nil || state.Selected != nil {
		t.Errorf("replace should clear both slots: %+v", state)
	}

	if rec := do(t, h, "DELETE", base, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("reset: got %d", rec.Code)
	}
	if rec := do(t, h, "GET", base, nil); rec.Code != http.StatusNotFound {
		t.Errorf("after reset: got %d, want 404", rec.Code)
	}
	if rec := do(t, h, "DELETE", base, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second reset: got %d, want 404", rec.Code)
	}
}

func TestReplace_UpdatesRasterStore(t *testing.T) {
	s, h := newTestServer(t)
	id := uploadID(t, h, 4, 4)
	base := "/api/color/images/" + id

	req := httptest.NewRequest("PUT", base, bytes.NewReader(testPNG(t, 9, 9)))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace: got %d: %s", rec.Code, rec.Body.String())
	}

	if s.rasters.Len() != 1 {
		t.Errorf("raster store: got %d entries, want 1", s.rasters.Len())
	}
	stored, err := s.rasters.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Width() != 9 || stored.Height() != 9 {
		t.Errorf("stored raster: got %dx%d, want 9x9", stored.Width(), stored.Height())
	}

	// (8, 8) only exists in the new image.
	if rec := do(t, h, "GET", base+"/sample?x=8&y=8", nil); rec.Code != http.StatusOK {
		t.Errorf("sample after replace: got %d", rec.Code)
	}
	if rec := do(t, h, "GET", base+"/loupe?x=8&y=8", nil); rec.Code != http.StatusOK {
		t.Errorf("loupe after replace: got %d", rec.Code)
	}
}

func TestPickerSessions_Evict(t *testing.T) {
	s, h := newTestServer(t)
	s.pickers.limit = 2

	first := uploadID(t, h, 4, 4)
	uploadID(t, h, 4, 4)
	uploadID(t, h, 4, 4)

	if rec := do(t, h, "GET", "/api/color/images/"+first, nil); rec.Code != http.StatusNotFound {
		t.Errorf("oldest session should be evicted, got %d", rec.Code)
	}
	if s.rasters.Len() != 2 {
		t.Errorf("raster store: got %d, want 2", s.rasters.Len())
	}
}

func TestConvert(t *testing.T) {
	_, h := newTestServer(t)

	var got struct {
		Hex       string            `json:"hex"`
		Formatted map[string]string `json:"formatted"`
	}
	decode(t, do(t, h, "GET", "/api/color/convert?r=255&g=0&b=0", nil), &got)
	if got.Hex != "#ff0000" || got.Formatted["oklch"] != "oklch(0.63 0.258 29.2)" {
		t.Errorf("rgb: got %+v", got)
	}

	decode(t, do(t, h, "GET", "/api/color/convert?hex=%23ffffff", nil), &got)
	if got.Formatted["hsl"] != "hsl(0, 0%, 100%)" {
		t.Errorf("hex: got %+v", got)
	}

	for _, q := range []string{"", "r=1&g=2", "r=256&g=0&b=0", "hex=nothex"} {
		if rec := do(t, h, "GET", "/api/color/convert?"+q, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%q: got %d, want 400", q, rec.Code)
		}
	}
}
