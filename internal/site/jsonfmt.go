package site

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

const maxJSONBytes = 4 << 20

type formatResponse struct {
	Output string `json:"output"`
}

// handleFormatJSON re-emits the request body indented by two spaces, or
// minified with ?minify=true. Blank input formats to the empty string.
func (s *Server) handleFormatJSON(w http.ResponseWriter, r *http.Request) {
	minify, _ := strconv.ParseBool(r.URL.Query().Get("minify"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err != nil {
		writeError(w, bodyStatus(err), err)
		return
	}

	out, err := formatJSON(body, minify)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{Output: out})
}

func formatJSON(src []byte, minify bool) (string, error) {
	src = bytes.TrimSpace(src)
	if len(src) == 0 {
		return "", nil
	}

	// Unmarshal validates the whole input and reports the offending token.
	var raw json.RawMessage
	if err := json.Unmarshal(src, &raw); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	var err error
	if minify {
		err = json.Compact(&buf, src)
	} else {
		err = json.Indent(&buf, src, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
