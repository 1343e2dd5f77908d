package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

var (
	keyZoom  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyBack  = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func newTestExplorer(t *testing.T) exploreModel {
	t.Helper()
	m := newExploreModel(testTree(t), config.Default(), "emissions.csv", zoom.WithDuration(0))
	return send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func send(t *testing.T, m exploreModel, msg tea.Msg) exploreModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(exploreModel)
}

func selectTile(t *testing.T, m exploreModel, id string) exploreModel {
	t.Helper()
	for range m.selectable {
		if m.selectable[m.selected] == id {
			return m
		}
		m = send(t, m, keyTab)
	}
	t.Fatalf("tile %q is not selectable (have %v)", id, m.selectable)
	return m
}

func TestExploreResize(t *testing.T) {
	m := newTestExplorer(t)
	if m.layout == nil || m.ctrl == nil {
		t.Fatal("resize did not build a layout and controller")
	}
	if m.layout.Width != 80*cellWidth || m.layout.Height != 22*cellHeight {
		t.Errorf("layout = %vx%v", m.layout.Width, m.layout.Height)
	}
	want := []string{"Buses", "Railways", "Wastewater treatment and discharge", "Other", "Agriculture"}
	if len(m.selectable) != len(want) {
		t.Fatalf("selectable = %v, want the %d leaves", m.selectable, len(want))
	}
	for _, id := range m.selectable {
		if id == hierarchy.RootName || id == "Transport" || id == "Waste" {
			t.Errorf("non-leaf %q is selectable", id)
		}
	}

	lines := strings.Split(strings.TrimSuffix(m.View(), "\n"), "\n")
	if len(lines) != 24 {
		t.Errorf("view has %d lines, want 24", len(lines))
	}
}

func TestExploreZoomToggle(t *testing.T) {
	m := newTestExplorer(t)
	if !strings.Contains(m.View(), zoom.LabelZoom) {
		t.Error("normal view should offer the Zoom button")
	}

	m = send(t, m, keyZoom)
	if m.ctrl.State() != zoom.Zoomed {
		t.Fatalf("state after z = %v, want zoomed", m.ctrl.State())
	}
	if !strings.Contains(m.View(), zoom.LabelBack) {
		t.Error("zoomed view should offer the Back button")
	}

	m = send(t, m, keyZoom)
	if m.ctrl.State() != zoom.Normal {
		t.Errorf("state after second z = %v, want normal", m.ctrl.State())
	}
}

func TestExploreClicks(t *testing.T) {
	m := newTestExplorer(t)

	m = selectTile(t, m, "Buses")
	m = send(t, m, keyEnter)
	if m.ctrl.State() != zoom.Normal {
		t.Error("clicking an ineligible tile zoomed")
	}
	if !strings.Contains(m.status, "not a zoom target") {
		t.Errorf("status = %q", m.status)
	}

	m = selectTile(t, m, "Other")
	if m.status != "" {
		t.Error("moving the selection should clear the status")
	}
	m = send(t, m, keyEnter)
	if m.ctrl.State() != zoom.Zoomed {
		t.Fatal("clicking an eligible tile did not zoom")
	}

	// Any click resets a zoomed view.
	m = selectTile(t, m, "Agriculture")
	m = send(t, m, keyEnter)
	if m.ctrl.State() != zoom.Normal {
		t.Error("click while zoomed did not reset")
	}
}

func TestExploreSelectionWraps(t *testing.T) {
	m := newTestExplorer(t)
	first := m.selectable[0]
	m = send(t, m, keyBack)
	if m.selectable[m.selected] != m.selectable[len(m.selectable)-1] {
		t.Error("shift+tab from the first tile should wrap to the last")
	}
	m = send(t, m, keyTab)
	if m.selectable[m.selected] != first {
		t.Error("tab from the last tile should wrap to the first")
	}
}

func TestExploreResizeResetsZoom(t *testing.T) {
	m := newTestExplorer(t)
	m = selectTile(t, m, "Other")
	m = send(t, m, keyZoom)
	if m.ctrl.State() != zoom.Zoomed {
		t.Fatal("zoom did not activate")
	}

	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.ctrl.State() != zoom.Normal {
		t.Error("resize should start a fresh controller in the normal state")
	}
	if m.layout.Width != 120*cellWidth {
		t.Errorf("layout width = %v after resize", m.layout.Width)
	}
	if m.selectable[m.selected] != "Other" {
		t.Errorf("selection = %q after resize, want Other", m.selectable[m.selected])
	}
}

func TestExploreTickStopsWhenIdle(t *testing.T) {
	m := newTestExplorer(t)
	if _, cmd := m.Update(tickMsg{}); cmd != nil {
		t.Error("tick without a running transition should not schedule another")
	}
}

func TestExploreAnimates(t *testing.T) {
	m := newExploreModel(testTree(t), config.Default(), "emissions.csv")
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	next, cmd := m.Update(keyZoom)
	if cmd == nil {
		t.Fatal("starting a transition should schedule a tick")
	}
	if !next.(exploreModel).ctrl.Animating() {
		t.Error("controller should be animating right after z")
	}
}

func TestExploreQuit(t *testing.T) {
	m := newTestExplorer(t)
	_, cmd := m.Update(keyQuit)
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPutTextTruncates(t *testing.T) {
	row := make([]gridCell, 10)
	putText(row, 2, 7, "Wastewater", StyleValue)
	var got strings.Builder
	for _, c := range row[2:7] {
		got.WriteRune(c.r)
	}
	if got.String() != "Wast…" {
		t.Errorf("putText wrote %q, want %q", got.String(), "Wast…")
	}
	if row[7].r != 0 || row[1].r != 0 {
		t.Error("putText wrote outside its columns")
	}
}

func TestCellRectClips(t *testing.T) {
	x0, y0, x1, y1 := cellRect(layout.Rect{X0: -80, Y0: -16, X1: 2000, Y1: 800}, 80, 22)
	if x0 != 0 || y0 != 0 || x1 != 80 || y1 != 22 {
		t.Errorf("cellRect = %d,%d,%d,%d", x0, y0, x1, y1)
	}
}
