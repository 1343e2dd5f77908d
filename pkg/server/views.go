package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/observability"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
	"github.com/matzehuels/ghgmap/pkg/session"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// maxBodySize caps request bodies on the views API.
const maxBodySize = 4 << 10

// liveView is a view with its controller. mu serializes every event on the
// view, so each controller sees one event at a time.
type liveView struct {
	mu   sync.Mutex
	view *session.View
	ctrl *zoom.Controller
}

func (lv *liveView) expired() bool {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.view.IsExpired()
}

type createViewRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type viewResponse struct {
	ID        string     `json:"id"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	State     zoom.State `json:"state"`
	Button    string     `json:"button"`
	Changed   bool       `json:"changed"`
	ExpiresAt time.Time  `json:"expires_at"`
	Frame     zoom.Frame `json:"frame"`
}

func newViewResponse(lv *liveView, changed bool) viewResponse {
	return viewResponse{
		ID:        lv.view.ID,
		Width:     lv.view.Width,
		Height:    lv.view.Height,
		State:     lv.ctrl.State(),
		Button:    lv.ctrl.ButtonLabel(),
		Changed:   changed,
		ExpiresAt: lv.view.ExpiresAt,
		Frame:     lv.ctrl.FinalFrame(),
	}
}

// controller builds the controller for a view. Transitions are instant on
// the server; the browser animates them.
func (s *Server) controller(ctx context.Context, v *session.View) (*zoom.Controller, error) {
	l, err := s.layout(ctx, v.Width, v.Height)
	if err != nil {
		return nil, err
	}
	id := v.ID
	return pipeline.NewController(l, s.cfg, v.State,
		zoom.WithDuration(0),
		zoom.OnTransition(func(from, to zoom.State) {
			observability.Zoom().OnTransition(context.Background(), id, from.String(), to.String())
			s.logger.Debug("zoom transition", "view", id, "from", from, "to", to)
		}))
}

// lookup returns the live view for id, restoring it from the store when
// this process has not seen it yet.
func (s *Server) lookup(ctx context.Context, id string) (*liveView, error) {
	if !session.ValidID(id) {
		return nil, errors.New(errors.ErrCodeNotFound, "no view %q", id)
	}

	s.mu.RLock()
	lv, ok := s.views[id]
	s.mu.RUnlock()
	if ok {
		if !lv.expired() {
			return lv, nil
		}
		s.forget(id)
	}

	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || v.IsExpired() {
		return nil, errors.New(errors.ErrCodeNotFound, "no view %q", id)
	}
	ctrl, err := s.controller(ctx, v)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.views[id]; ok {
		return existing, nil
	}
	lv = &liveView{view: v, ctrl: ctrl}
	s.views[id] = lv
	return lv, nil
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
}

// sweep drops expired views from memory. The store expires them on its own.
func (s *Server) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, lv := range s.views {
		if lv.expired() {
			delete(s.views, id)
		}
	}
}

// persist records the controller state and extends the view's lifetime.
// Callers hold lv.mu.
func (s *Server) persist(ctx context.Context, lv *liveView) error {
	lv.view.State = lv.ctrl.State()
	lv.view.Touch(s.ttl)
	return s.store.Set(ctx, lv.view)
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	s.sweep()

	req := createViewRequest{Width: s.cfg.Canvas.Width, Height: s.cfg.Canvas.Height}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := errors.ValidateDimensions(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}

	v := session.New(req.Width, req.Height, s.ttl)
	ctrl, err := s.controller(r.Context(), v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Set(r.Context(), v); err != nil {
		s.writeError(w, r, err)
		return
	}
	lv := &liveView{view: v, ctrl: ctrl}
	s.mu.Lock()
	s.views[v.ID] = lv
	s.mu.Unlock()

	s.logger.Info("view created", "id", v.ID, "width", v.Width, "height", v.Height)
	s.writeJSON(w, http.StatusCreated, newViewResponse(lv, false))
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(lv *liveView) (bool, error) { return false, nil })
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(lv *liveView) (bool, error) { return lv.ctrl.Toggle(), nil })
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid tile name"))
			return
		}
		name = unescaped
	}
	s.withView(w, r, func(lv *liveView) (bool, error) { return lv.ctrl.Click(name) })
}

// withView runs one event against the view named in the URL, persists the
// result and answers with the view state.
func (s *Server) withView(w http.ResponseWriter, r *http.Request, event func(*liveView) (bool, error)) {
	lv, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lv.mu.Lock()
	defer lv.mu.Unlock()
	changed, err := event(lv)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.persist(r.Context(), lv); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newViewResponse(lv, changed))
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.lookup(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleViewTreemap renders a view in its current state.
func (s *Server) handleViewTreemap(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(pipeline.VizTreemap, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	scale, err := scaleParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lv, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lv.mu.Lock()
	opts := s.options(lv.view.Width, lv.view.Height)
	opts.Formats = []string{format}
	opts.State = lv.ctrl.State()
	opts.Scale = scale
	opts.Interactive = boolParam(r, "interactive")
	scene, err := pipeline.BuildScene(lv.ctrl, s.cfg)
	box, hasBox := zoom.BoundingBox(lv.ctrl.Targets())
	lv.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, r, err)
		return
	}

	var boxPtr *layout.Rect
	if hasBox {
		boxPtr = &box
	}
	data, err := pipeline.RenderScene(r.Context(), scene, boxPtr, format, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentTypes[format], data)
}
