package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/ghgmap/pkg/hierarchy"
)

func testTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree, err := hierarchy.Build([]hierarchy.Row{
		{Category: "Transport"},
		{Category: "Buses", Parent: "Transport", Value: "1.2"},
		{Category: "Railways", Parent: "Transport", Value: "0.3"},
		{Category: "Waste", Value: "7"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testTree(t), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, name := range []string{`"Transport"`, `"Buses"`, `"Waste"`} {
		if !strings.Contains(dot, name) {
			t.Errorf("ToDOT() output missing node %s", name)
		}
	}
	if !strings.Contains(dot, `"Transport" -> "Buses"`) {
		t.Error("ToDOT() output missing edge")
	}
	if strings.Contains(dot, `"Root"`) {
		t.Error("ToDOT() should omit the root by default")
	}
}

func TestToDOT_IncludeRoot(t *testing.T) {
	dot := ToDOT(testTree(t), Options{IncludeRoot: true})
	if !strings.Contains(dot, `"Root" -> "Transport"`) || !strings.Contains(dot, `"Root" -> "Waste"`) {
		t.Error("ToDOT() missing root edges")
	}
}

func TestToDOT_Highlight(t *testing.T) {
	dot := ToDOT(testTree(t), Options{Highlight: []string{"Buses"}, HighlightColor: "#123456"})
	line := ""
	for _, l := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), `"Buses" [`) {
			line = l
		}
	}
	if !strings.Contains(line, `fillcolor="#123456"`) {
		t.Errorf("Buses node = %q, want highlight fill", line)
	}
}

func TestFmtLabel(t *testing.T) {
	tree := testTree(t)
	tr, _ := tree.Lookup("Transport")
	bus, _ := tree.Lookup("Buses")

	if got := fmtLabel(bus, false); got != "Buses" {
		t.Errorf("fmtLabel() simple = %q", got)
	}
	if got := fmtLabel(bus, true); got != "Buses\nvalue: 1.2" {
		t.Errorf("fmtLabel() leaf detailed = %q", got)
	}
	if got := fmtLabel(tr, true); got != "Transport\nweight: 1.5" {
		t.Errorf("fmtLabel() group detailed = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("normalizeViewBox() should leave svg without viewBox untouched")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering skipped in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(testTree(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "Railways") {
		t.Error("RenderSVG() output missing node text")
	}
}
