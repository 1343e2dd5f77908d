package sink

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/matzehuels/ghgmap/pkg/fonts"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// DefaultTitle is the page title used when none is set.
const DefaultTitle = "Greenhouse gas emissions"

const pageCSS = `
    html, body { margin: 0; padding: 0; height: 100%%; background: %[1]s; color: %[2]s; font-family: %[3]s; }
    #chart { width: 100%%; height: calc(100%% - 48px); overflow: hidden; }
    #chart svg { display: block; }
    .controls { height: 48px; display: flex; align-items: center; justify-content: flex-end; padding: 0 8px; box-sizing: border-box; }
    #action-button { min-width: 80px; padding: 6px 14px; font: inherit; font-size: 14px; color: #ffffff; background: #333333; border: 1px solid #555555; border-radius: 5px; cursor: pointer; }
    #action-button:hover { background: #444444; }`

const pageInit = `
    var ghgmap = ghgmapInit(document.querySelector('#chart svg'), document.getElementById('action-button'));`

// resizeScript refetches the map when the window size settles. The server
// answers with a freshly laid out SVG in the normal state.
const resizeScript = `
    (function () {
      var endpoint = %s, timer = null, lastW = 0, lastH = 0;
      function size() {
        var el = document.getElementById('chart');
        return [Math.floor(el.clientWidth), Math.floor(el.clientHeight)];
      }
      function reload() {
        var s = size();
        if (s[0] === lastW && s[1] === lastH) return;
        lastW = s[0]; lastH = s[1];
        var sep = endpoint.indexOf('?') < 0 ? '?' : '&';
        fetch(endpoint + sep + 'width=' + s[0] + '&height=' + s[1])
          .then(function (r) { if (!r.ok) throw new Error(r.status); return r.text(); })
          .then(function (svg) {
            document.getElementById('chart').innerHTML = svg;
            ghgmap = ghgmapInit(document.querySelector('#chart svg'), document.getElementById('action-button'));
          })
          .catch(function (e) { console.error('ghgmap: resize failed', e); });
      }
      window.addEventListener('resize', function () {
        clearTimeout(timer);
        timer = setTimeout(reload, 200);
      });
      var s = size(); lastW = %d; lastH = %d;
      if (s[0] !== lastW || s[1] !== lastH) reload();
    })();`

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title     string
	resizeURL string
	duration  time.Duration
	easing    string
	svgOpts   []SVGOption
}

// WithTitle sets the page title.
func WithTitle(title string) HTMLOption {
	return func(r *htmlRenderer) { r.title = title }
}

// WithResizeEndpoint makes the page request a new SVG from url, with width
// and height query parameters, whenever the chart area changes size.
func WithResizeEndpoint(url string) HTMLOption {
	return func(r *htmlRenderer) { r.resizeURL = url }
}

// WithTransition sets the animation duration and easing name.
func WithTransition(d time.Duration, easing string) HTMLOption {
	return func(r *htmlRenderer) { r.duration, r.easing = d, easing }
}

// WithHTMLSVGOptions passes extra options to the embedded SVG.
func WithHTMLSVGOptions(opts ...SVGOption) HTMLOption {
	return func(r *htmlRenderer) { r.svgOpts = opts }
}

// RenderHTML renders a standalone page holding the interactive SVG and an
// HTML Zoom/Back button.
func RenderHTML(s treemap.Scene, opts ...HTMLOption) []byte {
	r := htmlRenderer{
		title:    DefaultTitle,
		duration: zoom.DefaultDuration,
		easing:   zoom.EaseCubicInOut,
	}
	for _, opt := range opts {
		opt(&r)
	}

	svgOpts := slices.Concat(
		[]SVGOption{WithInteraction(r.duration, r.easing), WithEmbeddedFont()},
		r.svgOpts,
		[]SVGOption{WithoutButton(), WithoutScript()},
	)
	svg := RenderSVG(s, svgOpts...)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	buf.WriteString("  <meta charset=\"utf-8\">\n")
	buf.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	fmt.Fprintf(&buf, "  <style>"+pageCSS+"\n  </style>\n",
		escapeXML(s.Style.Background), escapeXML(s.Style.Text), fonts.FallbackFontFamily)
	buf.WriteString("</head>\n<body>\n")
	buf.WriteString("  <div id=\"chart\">\n")
	buf.Write(svg)
	buf.WriteString("  </div>\n")
	fmt.Fprintf(&buf, "  <div class=\"controls\"><button id=\"action-button\" type=\"button\">%s</button></div>\n",
		escapeXML(s.Button))
	buf.WriteString("  <script>")
	buf.WriteString(zoomScript)
	buf.WriteString(pageInit)
	if r.resizeURL != "" {
		fmt.Fprintf(&buf, resizeScript, strconv.Quote(r.resizeURL), int(s.Width), int(s.Height))
	}
	buf.WriteString("\n  </script>\n</body>\n</html>\n")
	return buf.Bytes()
}
