package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

// writeError answers with the status mapped from the error code. Internal
// errors are logged and their message is not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	resp := errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		resp = errorResponse{Error: "internal error", Code: errors.ErrCodeInternal}
	}
	s.writeJSON(w, status, resp)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

var contentTypes = map[string]string{
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"pdf":  "application/pdf",
	"json": "application/json",
	"html": "text/html; charset=utf-8",
	"dot":  "text/vnd.graphviz; charset=utf-8",
}

// sizeParams reads width and height from the query, falling back to the
// configured canvas.
func (s *Server) sizeParams(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()
	w, err := floatParam(q.Get("width"), s.cfg.Canvas.Width)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid width %q", q.Get("width"))
	}
	h, err := floatParam(q.Get("height"), s.cfg.Canvas.Height)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid height %q", q.Get("height"))
	}
	if err := errors.ValidateDimensions(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func stateParam(r *http.Request) (zoom.State, error) {
	raw := r.URL.Query().Get("state")
	if raw == "" {
		return zoom.Normal, nil
	}
	var st zoom.State
	if err := st.UnmarshalText([]byte(raw)); err != nil {
		return zoom.Normal, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid state %q", raw)
	}
	return st, nil
}

func scaleParam(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("scale")
	v, err := floatParam(raw, 0)
	if err != nil || v < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", raw)
	}
	return v, nil
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}
