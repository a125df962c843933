package site

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/ironsheep/portfolio/internal/imaging"
)

// maxPickerSessions bounds the number of uploaded images held in memory.
const maxPickerSessions = 64

// pickerSessions maps raster ids to picker sessions. The RasterStore holds
// the image of every live session; the oldest session is evicted once the
// limit is reached.
type pickerSessions struct {
	rasters *imaging.RasterStore
	limit   int

	mu      sync.Mutex
	pickers map[string]*imaging.Picker
	order   []string
}

func newPickerSessions(rasters *imaging.RasterStore, limit int) *pickerSessions {
	return &pickerSessions{
		rasters: rasters,
		limit:   limit,
		pickers: make(map[string]*imaging.Picker),
	}
}

// open stores r and starts a session on it.
func (p *pickerSessions) open(r *imaging.Raster) string {
	id := p.rasters.Put(r)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pickers[id] = imaging.NewPicker(r)
	p.order = append(p.order, id)
	for len(p.order) > p.limit {
		old := p.order[0]
		p.order = p.order[1:]
		delete(p.pickers, old)
		p.rasters.Delete(old)
	}
	return id
}

// replace stores r under id and reloads the session on it, clearing both
// color slots.
func (p *pickerSessions) replace(id string, r *imaging.Raster) (*imaging.Picker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pk, ok := p.pickers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", imaging.ErrRasterNotFound, id)
	}
	if err := p.rasters.Replace(id, r); err != nil {
		return nil, err
	}
	pk.Load(r)
	return pk, nil
}

// raster returns the image of a live session.
func (p *pickerSessions) raster(id string) (*imaging.Raster, error) {
	if _, err := p.get(id); err != nil {
		return nil, err
	}
	return p.rasters.Get(id)
}

func (p *pickerSessions) get(id string) (*imaging.Picker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pk, ok := p.pickers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", imaging.ErrRasterNotFound, id)
	}
	return pk, nil
}

// close resets the session and forgets it.
func (p *pickerSessions) close(id string) error {
	p.mu.Lock()
	pk, ok := p.pickers[id]
	if ok {
		delete(p.pickers, id)
		for i, v := range p.order {
			if v == id {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
	}
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", imaging.ErrRasterNotFound, id)
	}
	pk.Reset()
	p.rasters.Delete(id)
	return nil
}

// colorResponse is a ColorRecord plus its rendering in every format.
type colorResponse struct {
	imaging.ColorRecord
	Formatted map[string]string `json:"formatted"`
	Placement string            `json:"placement,omitempty"`
}

func newColorResponse(rec imaging.ColorRecord) colorResponse {
	return colorResponse{ColorRecord: rec, Formatted: imaging.FormattedValues(rec)}
}

type pickerResponse struct {
	imaging.RasterInfo
	imaging.PickerState
}

// readUpload decodes the image in a multipart "image" field or, for any
// other content type, the raw request body.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*imaging.Raster, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return decodeUpload(r.Body, mediaType)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	partType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	return decodeUpload(file, partType)
}

// decodeUpload reads and decodes body. An absent or generic declared type
// is replaced by the sniffed type.
func decodeUpload(body io.Reader, declared string) (*imaging.Raster, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if declared == "" || declared == "application/octet-stream" {
		declared = http.DetectContentType(data)
	}
	return imaging.DecodeRaster(bytes.NewReader(data), declared)
}

func uploadStatus(err error) int {
	if errors.Is(err, imaging.ErrNotImage) {
		return http.StatusUnsupportedMediaType
	}
	return bodyStatus(err)
}

func pickerStatus(err error) int {
	if errors.Is(err, imaging.ErrRasterNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	raster, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, uploadStatus(err), err)
		return
	}
	id := s.pickers.open(raster)
	s.logger.Info("image uploaded", "id", id, "width", raster.Width(), "height", raster.Height(), "format", raster.Format())
	writeJSON(w, http.StatusCreated, pickerResponse{RasterInfo: raster.Info(id)})
}

// handleReplace swaps the image of an existing session and clears both
// color slots.
func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.pickers.get(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	raster, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, uploadStatus(err), err)
		return
	}
	pk, err := s.pickers.replace(id, raster)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.logger.Info("image replaced", "id", id, "width", raster.Width(), "height", raster.Height(), "format", raster.Format())
	writeJSON(w, http.StatusOK, pickerResponse{RasterInfo: raster.Info(id), PickerState: pk.State()})
}

func (s *Server) handlePickerState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pk, err := s.pickers.get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	raster, err := s.pickers.raster(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, pickerResponse{RasterInfo: raster.Info(id), PickerState: pk.State()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.pickers.close(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSample records the pixel under the pointer as the hovered color.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	pk, err := s.pickers.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	x, err := requireInt(r, "x")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	y, err := requireInt(r, "y")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := pk.Hover(x, y)
	if err != nil {
		writeError(w, pickerStatus(err), err)
		return
	}
	resp := newColorResponse(rec)
	if raster, err := s.pickers.raster(chi.URLParam(r, "id")); err == nil {
		resp.Placement = imaging.LoupePlacement(x, raster.Width())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSelect promotes the hovered color. Without a hovered color it
// leaves the state unchanged.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	pk, err := s.pickers.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	pk.Select()
	writeJSON(w, http.StatusOK, pk.State())
}

func (s *Server) handleLoupe(w http.ResponseWriter, r *http.Request) {
	raster, err := s.pickers.raster(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	x, err := requireInt(r, "x")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	y, err := requireInt(r, "y")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	size := queryInt(r, "size", imaging.DefaultLoupeSize)
	display := queryInt(r, "display", imaging.DefaultLoupeDisplay)
	if size <= 0 || size > 101 || display <= 0 || display > 1024 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid loupe size %d or display %d", size, display))
		return
	}

	if !raster.Contains(x, y) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("coordinates (%d, %d) out of bounds", x, y))
		return
	}

	data, err := imaging.EncodePNG(imaging.NewLoupe(raster, x, y, size, display))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	raster, err := s.pickers.raster(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	count := queryInt(r, "count", 5)
	if count <= 0 || count > 256 {
		count = 5
	}
	writeJSON(w, http.StatusOK, imaging.DominantColors(raster, count, nil))
}

// handleConvert converts ?hex= or ?r=&g=&b= without an image.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if hex := q.Get("hex"); hex != "" {
		c, err := imaging.HexToRGB(hex)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, newColorResponse(imaging.NewColorRecord(imaging.PixelSample{R: c.R, G: c.G, B: c.B})))
		return
	}

	var ch [3]uint8
	for i, key := range []string{"r", "g", "b"} {
		v, err := requireInt(r, key)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if v < 0 || v > 255 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%s out of range [0, 255]: %d", key, v))
			return
		}
		ch[i] = uint8(v)
	}
	writeJSON(w, http.StatusOK, newColorResponse(imaging.NewColorRecord(imaging.PixelSample{R: ch[0], G: ch[1], B: ch[2]})))
}
