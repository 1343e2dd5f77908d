package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ghgmap/pkg/buildinfo"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
	"github.com/matzehuels/ghgmap/pkg/render/treemap/sink"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// layout returns the (cached) layout of the dataset for a canvas size.
func (s *Server) layout(ctx context.Context, width, height float64) (*layout.Layout, error) {
	return s.runner.ComputeLayout(ctx, s.tree, s.options(width, height))
}

func (s *Server) options(width, height float64) pipeline.Options {
	return pipeline.Options{
		Width:  width,
		Height: height,
		Config: &s.cfg,
		Logger: s.logger,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.sizeParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.layout(r.Context(), width, height)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.options(width, height)
	opts.Formats = []string{pipeline.FormatHTML}
	opts.Title = s.title
	opts.ResizeEndpoint = "/chart.svg"
	artifacts, err := s.runner.Render(r.Context(), s.tree, l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentTypes["html"], artifacts[pipeline.FormatHTML])
}

// handleChart returns the interactive SVG the page swaps in after a resize.
// The page owns the button and the script, so neither is included.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.sizeParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.layout(r.Context(), width, height)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := pipeline.NewController(l, s.cfg, zoom.Normal, zoom.WithDuration(0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	scene, err := pipeline.BuildScene(c, s.cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg := sink.RenderSVG(scene,
		sink.WithInteraction(s.cfg.Duration(), s.cfg.Zoom.Easing),
		sink.WithEmbeddedFont(),
		sink.WithoutButton(),
		sink.WithoutScript())
	writeBytes(w, contentTypes["svg"], svg)
}

func (s *Server) handleTreemap(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(pipeline.VizTreemap, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	width, height, err := s.sizeParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := stateParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	scale, err := scaleParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.layout(r.Context(), width, height)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.options(width, height)
	opts.Formats = []string{format}
	opts.State = state
	opts.Scale = scale
	opts.Interactive = boolParam(r, "interactive")
	artifacts, err := s.runner.Render(r.Context(), s.tree, l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentTypes[format], artifacts[format])
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.sizeParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.layout(r.Context(), width, height)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := layout.MarshalLayout(l)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentTypes["json"], data)
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(pipeline.VizHierarchy, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	scale, err := scaleParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.options(0, 0)
	opts.VizType = pipeline.VizHierarchy
	opts.Formats = []string{format}
	opts.Scale = scale
	artifacts, err := s.runner.Render(r.Context(), s.tree, nil, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentTypes[format], artifacts[format])
}

type healthResponse struct {
	Status     string         `json:"status"`
	Build      buildinfo.Info `json:"build"`
	Categories int            `json:"categories"`
	Views      int            `json:"views"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	views := len(s.views)
	s.mu.RUnlock()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Build:      buildinfo.Current(),
		Categories: s.tree.Len() - 1,
		Views:      views,
	})
}
