package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/ghgmap/pkg/fonts"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// buttonBand is the height of the strip below the map that holds the
// standalone SVG's toggle button.
const buttonBand = 44.0

// zoomScript defines ghgmapInit(svg, button). Tiles carry their normal
// geometry in data-n and their zoomed geometry in data-z as
// "x y w h labelOpacity valueOpacity". Eligible tiles activate the zoom;
// once zoomed, a click anywhere on the svg resets it.
const zoomScript = `
    function ghgmapInit(svg, button) {
      var zoomed = svg.getAttribute('data-state') === 'zoomed';
      var tiles = Array.prototype.slice.call(svg.querySelectorAll('.tile'));
      var zoomable = svg.hasAttribute('data-zoomable');
      function apply(z) {
        tiles.forEach(function (g) {
          var key = z && g.hasAttribute('data-z') ? 'data-z' : 'data-n';
          var v = g.getAttribute(key).split(' ').map(Number);
          g.style.transform = 'translate(' + v[0] + 'px,' + v[1] + 'px)';
          var r = g.querySelector('rect');
          r.style.width = v[2] + 'px';
          r.style.height = v[3] + 'px';
          var l = g.querySelector('.label'); if (l) l.style.opacity = v[4];
          var t = g.querySelector('.value'); if (t) t.style.opacity = v[5];
        });
        zoomed = z;
        svg.setAttribute('data-state', z ? 'zoomed' : 'normal');
        if (button) (button.querySelector('text') || button).textContent = z ? 'Back' : 'Zoom';
      }
      function toggle() {
        if (zoomed) apply(false); else if (zoomable) apply(true);
      }
      tiles.forEach(function (g) {
        g.addEventListener('click', function (e) {
          if (zoomed || !zoomable || !g.classList.contains('eligible')) return;
          e.stopPropagation();
          apply(true);
        });
      });
      svg.addEventListener('click', function (e) {
        if (!zoomed || (button && button.contains(e.target))) return;
        apply(false);
      });
      if (button) button.onclick = toggle;
      return { toggle: toggle, zoomed: function () { return zoomed; } };
    }`

const standaloneInit = `
    (function () {
      var svg = (document.currentScript && document.currentScript.ownerSVGElement) || document.documentElement;
      ghgmapInit(svg, svg.querySelector('#zoom-button'));
    })();`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	interactive bool
	duration    time.Duration
	easing      string
	embedFont   bool
	button      bool
	script      bool
}

// WithInteraction adds click-to-zoom, the toggle button and CSS
// transitions with the given duration and easing name.
func WithInteraction(d time.Duration, easing string) SVGOption {
	return func(r *svgRenderer) {
		r.interactive, r.button, r.script = true, true, true
		r.duration, r.easing = d, easing
	}
}

// WithoutButton omits the in-SVG toggle button; the host page provides one.
func WithoutButton() SVGOption { return func(r *svgRenderer) { r.button = false } }

// WithoutScript omits the script element; the host page runs ghgmapInit.
func WithoutScript() SVGOption { return func(r *svgRenderer) { r.script = false } }

// WithEmbeddedFont embeds the label font so the SVG renders the same
// everywhere.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// RenderSVG renders the scene as SVG.
func RenderSVG(s treemap.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{duration: zoom.DefaultDuration, easing: zoom.EaseCubicInOut}
	for _, opt := range opts {
		opt(&r)
	}

	height := s.Height
	if r.button {
		height += buttonBand
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" data-state="%s"`,
		num(s.Width), num(height), num(s.Width), num(height), s.State)
	if hasZoom(s) {
		buf.WriteString(` data-zoomable="true"`)
	}
	fmt.Fprintf(&buf, ` style="font-family: %s; background-color: %s">`+"\n",
		escapeXML(fonts.FallbackFontFamily), escapeXML(s.Style.Background))

	fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
		num(s.Width), num(height), escapeXML(s.Style.Background))

	if r.embedFont || r.interactive {
		renderStyle(&buf, r)
	}
	for _, t := range s.Tiles {
		renderTile(&buf, s, t)
	}
	if r.button {
		renderButton(&buf, s)
	}
	if r.script {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s%s\n  ]]></script>\n", zoomScript, standaloneInit)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderStyle(buf *bytes.Buffer, r svgRenderer) {
	buf.WriteString("  <style>")
	if r.embedFont {
		fmt.Fprintf(buf, "\n    @font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }",
			fonts.FontFamily, fonts.RegularTTFBase64())
	}
	if r.interactive {
		buf.WriteString(transitionCSS(r.duration, r.easing))
	}
	buf.WriteString("\n  </style>\n")
}

// transitionCSS returns the rules that animate tiles between geometries.
func transitionCSS(d time.Duration, easing string) string {
	ms := d.Milliseconds()
	ease := cssEasing(easing)
	return fmt.Sprintf(`
    .tile { transition: transform %[1]dms %[2]s; }
    .tile rect { transition: width %[1]dms %[2]s, height %[1]dms %[2]s; }
    .tile text { transition: opacity %[1]dms %[2]s; pointer-events: none; }
    .tile.eligible, svg[data-state=zoomed] .tile, #zoom-button { cursor: pointer; }`, ms, ease)
}

func cssEasing(name string) string {
	switch name {
	case zoom.EaseLinear:
		return "linear"
	case zoom.EaseQuadInOut:
		return "cubic-bezier(0.45, 0, 0.55, 1)"
	default:
		return "cubic-bezier(0.65, 0, 0.35, 1)"
	}
}

func renderTile(buf *bytes.Buffer, s treemap.Scene, t treemap.SceneTile) {
	class := "tile"
	if t.Eligible {
		class += " eligible"
	}
	fmt.Fprintf(buf, `  <g class="%s" data-id="%s" transform="translate(%s,%s)" data-n="%s"`,
		class, escapeXML(t.ID), num(t.Rect.X0), num(t.Rect.Y0),
		geometry(t.Base.X0, t.Base.Y0, t.Base.W(), t.Base.H(), normalOpacity(t.LabelOpacity, t.ZoomedLabelOpacity, t.Zoomed != nil), normalOpacity(t.ValueOpacity, t.ZoomedValueOpacity, t.Zoomed != nil)))
	if t.Zoomed != nil {
		z := *t.Zoomed
		fmt.Fprintf(buf, ` data-z="%s"`, geometry(z.X0, z.Y0, z.W(), z.H(), t.ZoomedLabelOpacity, t.ZoomedValueOpacity))
	}
	buf.WriteString(">\n")

	fmt.Fprintf(buf, `    <rect class="node" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(max(0, t.Rect.W())), num(max(0, t.Rect.H())), escapeXML(t.Fill), escapeXML(s.Style.Stroke), num(s.Style.StrokeWidth))

	renderLines(buf, s, "label", t.Lines, s.Style.FontSize, t.LabelOpacity)
	if s.LabelMode != treemap.LabelBlock {
		fmt.Fprintf(buf, `    <text class="value" x="%s" y="%s" font-size="%s" fill="%s" opacity="%s">%s</text>`+"\n",
			num(treemap.LabelInsetX), num(treemap.ValueBaseline), num(s.Style.ValueFontSize),
			escapeXML(s.Style.Text), num(t.ValueOpacity), escapeXML(t.Value))
	}
	buf.WriteString("  </g>\n")
}

func renderLines(buf *bytes.Buffer, s treemap.Scene, class string, lines []string, size, opacity float64) {
	fmt.Fprintf(buf, `    <text class="%s" x="%s" y="%s" font-size="%s" fill="%s" opacity="%s">`,
		class, num(treemap.LabelInsetX), num(treemap.LabelBaseline), num(size), escapeXML(s.Style.Text), num(opacity))
	for i, line := range lines {
		dy := 0.0
		if i > 0 {
			dy = s.Style.LineHeight
		}
		fmt.Fprintf(buf, `<tspan x="%s" dy="%s">%s</tspan>`, num(treemap.LabelInsetX), num(dy), escapeXML(line))
	}
	buf.WriteString("</text>\n")
}

func renderButton(buf *bytes.Buffer, s treemap.Scene) {
	const w, h = 80.0, 32.0
	x := s.Width - w - 6
	y := s.Height + (buttonBand-h)/2
	fmt.Fprintf(buf, `  <g id="zoom-button" transform="translate(%s,%s)">`, num(x), num(y))
	fmt.Fprintf(buf, `<rect width="%s" height="%s" rx="5" fill="#333333"/>`, num(w), num(h))
	fmt.Fprintf(buf, `<text x="%s" y="%s" font-size="14" fill="#ffffff" text-anchor="middle">%s</text>`,
		num(w/2), num(h/2+5), escapeXML(s.Button))
	buf.WriteString("</g>\n")
}

// normalOpacity recovers the normal-state opacity for data-n. Zoomed and
// normal opacities are complements, so the zoomed value is enough.
func normalOpacity(current, zoomed float64, hasZoom bool) float64 {
	if !hasZoom {
		return current
	}
	return 1 - zoomed
}

func geometry(x, y, w, h, lo, vo float64) string {
	return num(x) + " " + num(y) + " " + num(max(0, w)) + " " + num(max(0, h)) + " " + num(lo) + " " + num(vo)
}

func hasZoom(s treemap.Scene) bool {
	for _, t := range s.Tiles {
		if t.Zoomed != nil {
			return true
		}
	}
	return false
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100+0, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
