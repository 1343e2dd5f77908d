package sink

import (
	"bytes"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/fonts"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes the scene's current frame. Text is drawn with the
// embedded Go Regular face, so no system fonts are needed.
func RenderPNG(s treemap.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", r.scale)
	}

	w := int(math.Ceil(s.Width * r.scale))
	h := int(math.Ceil(s.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot rasterize a %vx%v scene", s.Width, s.Height)
	}

	labelFace, err := fonts.Face(s.Style.FontSize * r.scale)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load label font")
	}
	valueFace, err := fonts.Face(s.Style.ValueFontSize * r.scale)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load value font")
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(s.Style.Background))

	k := r.scale
	for _, t := range s.Tiles {
		x, y := t.Rect.X0*k, t.Rect.Y0*k
		tw, th := max(0, t.Rect.W())*k, max(0, t.Rect.H())*k

		if t.Fill != treemap.FillNone && t.Fill != "" {
			dc.SetHexColor(t.Fill)
			dc.DrawRectangle(x, y, tw, th)
			if err := dc.Fill(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "fill tile %s", t.ID)
			}
		}
		if s.Style.StrokeWidth > 0 {
			dc.SetHexColor(s.Style.Stroke)
			dc.SetLineWidth(s.Style.StrokeWidth * k)
			dc.DrawRectangle(x, y, tw, th)
			if err := dc.Stroke(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "stroke tile %s", t.ID)
			}
		}

		if t.LabelOpacity > 0 {
			setText(dc, s.Style.Text, t.LabelOpacity)
			dc.SetFont(labelFace)
			for i, line := range t.Lines {
				dy := treemap.LabelBaseline + float64(i)*s.Style.LineHeight
				dc.DrawString(line, x+treemap.LabelInsetX*k, y+dy*k)
			}
		}
		if s.LabelMode != treemap.LabelBlock && t.Value != "" && t.ValueOpacity > 0 {
			setText(dc, s.Style.Text, t.ValueOpacity)
			dc.SetFont(valueFace)
			dc.DrawString(t.Value, x+treemap.LabelInsetX*k, y+treemap.ValueBaseline*k)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// setText selects the text color with opacity folded into the alpha channel.
func setText(dc *gg.Context, hex string, opacity float64) {
	c := gg.Hex(hex)
	dc.SetRGBA(c.R, c.G, c.B, c.A*min(1, max(0, opacity)))
}
