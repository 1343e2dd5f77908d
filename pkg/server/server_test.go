package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/ghgmap/pkg/cache"
	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/session"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

func testTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree, err := hierarchy.Build([]hierarchy.Row{
		{Category: "Transport"},
		{Category: "Buses", Parent: "Transport", Value: "30"},
		{Category: "Railways", Parent: "Transport", Value: "10"},
		{Category: "Waste"},
		{Category: "Wastewater treatment and discharge", Parent: "Waste", Value: "0.74"},
		{Category: "Other", Parent: "Waste", Value: "0.01"},
		{Category: "Agriculture", Value: "59"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(config.Default(), testTree(t), opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(data)
}

type viewJSON struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Button  string `json:"button"`
	Changed bool   `json:"changed"`
	Frame   struct {
		Tiles []zoom.TileFrame `json:"tiles"`
	} `json:"frame"`
}

func decodeView(t *testing.T, body string) viewJSON {
	t.Helper()
	var v viewJSON
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode view %q: %v", body, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	if err := json.Unmarshal([]byte(body), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Categories != 7 {
		t.Errorf("health = %+v", h)
	}
}

func TestSnapshotRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"svg", "/treemap.svg?width=400&height=300", 200, "image/svg+xml", `viewBox="0 0 400 300"`},
		{"zoomed json", "/treemap.json?state=zoomed", 200, "application/json", `"state": "zoomed"`},
		{"interactive svg", "/treemap.svg?interactive=true", 200, "image/svg+xml", "<script"},
		{"page", "/?width=640&height=480", 200, "text/html", `"/chart.svg"`},
		{"chart fragment", "/chart.svg", 200, "image/svg+xml", "transition"},
		{"layout", "/layout.json?width=200&height=100", 200, "application/json", `"Buses"`},
		{"hierarchy dot", "/hierarchy.dot", 200, "text/vnd.graphviz", "digraph"},
		{"bad format", "/treemap.gif", 400, "application/json", "INVALID_FORMAT"},
		{"dot is not a treemap format", "/treemap.dot", 400, "application/json", "INVALID_FORMAT"},
		{"bad width", "/treemap.svg?width=wide", 400, "application/json", "INVALID_INPUT"},
		{"negative height", "/treemap.svg?height=-5", 400, "application/json", "INVALID_INPUT"},
		{"bad state", "/treemap.svg?state=sideways", 400, "application/json", "INVALID_INPUT"},
		{"bad scale", "/treemap.png?scale=-1", 400, "application/json", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, srv.URL+tt.path, "")
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("content type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestChartFragmentHasNoControls(t *testing.T) {
	srv := newTestServer(t)
	_, body := do(t, http.MethodGet, srv.URL+"/chart.svg?width=300&height=200", "")
	if strings.Contains(body, "<script") || strings.Contains(body, `id="zoom-button"`) {
		t.Error("chart fragment should leave the script and button to the page")
	}
}

func TestViewLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/views", `{"width":400,"height":300}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}
	v := decodeView(t, body)
	if !session.ValidID(v.ID) || v.State != "normal" || v.Button != zoom.LabelZoom {
		t.Fatalf("created view = %+v", v)
	}
	base := srv.URL + "/views/" + v.ID

	steps := []struct {
		name        string
		method      string
		path        string
		status      int
		wantState   string
		wantChanged bool
	}{
		{"get", http.MethodGet, "", 200, "normal", false},
		{"toggle zooms", http.MethodPost, "/toggle", 200, "zoomed", true},
		{"any click resets", http.MethodPost, "/click/Agriculture", 200, "normal", true},
		{"ineligible click", http.MethodPost, "/click/Buses", 200, "normal", false},
		{"eligible click", http.MethodPost, "/click/Other", 200, "zoomed", true},
		{"toggle resets", http.MethodPost, "/toggle", 200, "normal", true},
		{"escaped name", http.MethodPost, "/click/Wastewater%20treatment%20and%20discharge", 200, "zoomed", true},
		{"unknown tile", http.MethodPost, "/click/Aviation", 404, "", false},
	}
	for _, st := range steps {
		resp, body := do(t, st.method, base+st.path, "")
		if resp.StatusCode != st.status {
			t.Fatalf("%s: status = %d, want %d: %s", st.name, resp.StatusCode, st.status, body)
		}
		if st.status != http.StatusOK {
			continue
		}
		got := decodeView(t, body)
		if got.State != st.wantState || got.Changed != st.wantChanged {
			t.Errorf("%s: state = %s changed = %v, want %s %v", st.name, got.State, got.Changed, st.wantState, st.wantChanged)
		}
		wantButton := zoom.LabelZoom
		if got.State == "zoomed" {
			wantButton = zoom.LabelBack
		}
		if got.Button != wantButton {
			t.Errorf("%s: button = %q, want %q", st.name, got.Button, wantButton)
		}
	}

	resp, body = do(t, http.MethodGet, base+"/treemap.json", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"state": "zoomed"`) {
		t.Errorf("view render = %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodDelete, base, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestZoomedFrameFillsCanvas(t *testing.T) {
	srv := newTestServer(t)
	_, body := do(t, http.MethodPost, srv.URL+"/views", `{"width":400,"height":300}`)
	v := decodeView(t, body)
	_, body = do(t, http.MethodPost, srv.URL+"/views/"+v.ID+"/toggle", "")
	zoomed := decodeView(t, body)

	var other zoom.TileFrame
	for _, tf := range zoomed.Frame.Tiles {
		if tf.ID == "Other" {
			other = tf
		}
	}
	if other.ID == "" {
		t.Fatal("frame missing Other")
	}
	if other.Rect.X1 > 400.0001 || other.Rect.Y1 > 300.0001 || other.Rect.X0 < -0.0001 {
		t.Errorf("zoom target outside canvas: %v", other.Rect)
	}
	if other.LabelOpacity != 1 {
		t.Errorf("zoom-only label opacity = %v, want 1", other.LabelOpacity)
	}
}

func TestViewRestoredFromStore(t *testing.T) {
	store := session.NewCacheStore(cache.NewMemoryCache(), nil, session.DefaultTTL)
	a := newTestServer(t, WithStore(store))
	b := newTestServer(t, WithStore(store))

	_, body := do(t, http.MethodPost, a.URL+"/views", "")
	v := decodeView(t, body)
	do(t, http.MethodPost, a.URL+"/views/"+v.ID+"/toggle", "")

	resp, body := do(t, http.MethodGet, b.URL+"/views/"+v.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restore status = %d: %s", resp.StatusCode, body)
	}
	if got := decodeView(t, body); got.State != "zoomed" || got.Button != zoom.LabelBack {
		t.Errorf("restored view = %+v", got)
	}
}

func TestZeroSizeIsNotDefaulted(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/layout.json?width=0&height=0", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var l struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Tiles  []struct {
			ID   string      `json:"id"`
			Rect layout.Rect `json:"rect"`
		} `json:"tiles"`
	}
	if err := json.Unmarshal([]byte(body), &l); err != nil {
		t.Fatal(err)
	}
	if l.Width != 0 || l.Height != 0 {
		t.Errorf("layout = %vx%v, want 0x0", l.Width, l.Height)
	}
	for _, tile := range l.Tiles {
		if tile.Rect.Area() != 0 {
			t.Errorf("%s has area %v", tile.ID, tile.Rect.Area())
		}
	}

	// Omitted sizes still use the configured canvas.
	_, body = do(t, http.MethodGet, srv.URL+"/layout.json", "")
	if !strings.Contains(body, `"width": 1000`) {
		t.Errorf("default layout should be 1000 wide: %.200s", body)
	}

	resp, body = do(t, http.MethodPost, srv.URL+"/views", `{"width":0,"height":0}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}
	v := decodeView(t, body)
	if len(v.Frame.Tiles) == 0 {
		t.Fatal("view has no tiles")
	}
	for _, tf := range v.Frame.Tiles {
		if tf.Rect.Area() != 0 {
			t.Errorf("view tile %s has area %v", tf.ID, tf.Rect.Area())
		}
	}
}

func TestViewErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed id", http.MethodGet, "/views/not-a-uuid", "", 404},
		{"unknown id", http.MethodGet, "/views/0b6f2c1e-2d4f-4a8e-9a37-6f3c2b1d9e10", "", 404},
		{"unknown field", http.MethodPost, "/views", `{"depth":3}`, 400},
		{"bad json", http.MethodPost, "/views", `{`, 400},
		{"negative size", http.MethodPost, "/views", `{"width":-1,"height":10}`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
		})
	}
}
