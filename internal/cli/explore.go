package cli

import (
	"context"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// Terminal cells are laid out as if they were cellWidth × cellHeight
// pixels, so tiles keep roughly the proportions of the graphical output.
const (
	cellWidth     = 8.0
	cellHeight    = 16.0
	frameInterval = time.Second / 30
	chromeRows    = 2 // header and footer
)

// tile fills, cycled by position so neighbours stay distinguishable.
var tilePalette = []lipgloss.Color{"237", "239", "236", "238", "235", "240"}

var (
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorCyan)
	styleFooter   = lipgloss.NewStyle().Foreground(colorGray)
	styleKey      = lipgloss.NewStyle().Foreground(colorCyan)
)

func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [file.csv|url]",
		Short: "Browse the treemap in the terminal",
		Long: `Explore draws the treemap on the terminal grid. Move between tiles with the
arrow keys or tab, press enter to click the selected tile and z to press the
Zoom/Back button.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runExplore(ctx context.Context, input string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(false)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Loading "+input)
	spinner.Start()
	tree, err := runner.LoadTree(ctx, pipeline.Options{Input: input, Config: &cfg, Logger: c.Logger})
	spinner.Stop()
	if err != nil {
		return err
	}

	m := newExploreModel(tree, cfg, input)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// tickMsg advances a running zoom transition.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// exploreModel is the bubbletea model of the terminal viewer. Each window
// size gets its own layout and a fresh controller in the Normal state.
type exploreModel struct {
	tree   *hierarchy.Tree
	cfg    config.Config
	title  string
	extra  []zoom.Option
	cols   int
	rows   int
	layout *layout.Layout
	ctrl   *zoom.Controller

	// selectable holds the IDs of leaf tiles in layout order.
	selectable []string
	selected   int
	status     string
	err        error
}

func newExploreModel(tree *hierarchy.Tree, cfg config.Config, title string, extra ...zoom.Option) exploreModel {
	return exploreModel{tree: tree, cfg: cfg, title: title, extra: extra}
}

func (m exploreModel) Init() tea.Cmd { return nil }

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if m.ctrl != nil && m.ctrl.Animating() {
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.ctrl == nil || len(m.selectable) == 0 {
			return m, nil
		}
		switch msg.String() {
		case "tab", "right", "down", "l", "j":
			m.selected = (m.selected + 1) % len(m.selectable)
			m.status = ""
		case "shift+tab", "left", "up", "h", "k":
			m.selected = (m.selected - 1 + len(m.selectable)) % len(m.selectable)
			m.status = ""
		case "enter", " ":
			id := m.selectable[m.selected]
			changed, err := m.ctrl.Click(id)
			switch {
			case err != nil:
				m.status = err.Error()
			case !changed:
				m.status = id + " is not a zoom target"
			default:
				m.status = ""
				return m, tick()
			}
		case "z":
			if m.ctrl.Toggle() {
				m.status = ""
				return m, tick()
			}
			m.status = "nothing to zoom into"
		}
	}
	return m, nil
}

// resize lays the tree out for a cols × rows terminal and replaces the
// controller.
func (m *exploreModel) resize(cols, rows int) {
	m.cols, m.rows = cols, rows
	gridRows := max(rows-chromeRows, 1)
	m.layout = layout.Compute(m.tree, float64(cols)*cellWidth, float64(gridRows)*cellHeight, m.cfg.LayoutOptions())
	m.ctrl, m.err = pipeline.NewController(m.layout, m.cfg, zoom.Normal, m.extra...)

	prev := ""
	if m.selected < len(m.selectable) {
		prev = m.selectable[m.selected]
	}
	var ids []string
	for _, t := range m.layout.Tiles {
		if t.ID != hierarchy.RootName && t.IsLeaf() {
			ids = append(ids, t.ID)
		}
	}
	m.selectable = ids
	m.selected = max(slices.Index(m.selectable, prev), 0)
	m.status = ""
}

func (m exploreModel) View() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n"
	}
	if m.ctrl == nil {
		return "loading…\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(runewidth.Truncate(m.title, m.cols, "…")))
	b.WriteString("\n")
	b.WriteString(m.drawGrid())
	b.WriteString(m.footer())
	return b.String()
}

func (m exploreModel) footer() string {
	parts := []string{styleKey.Render("z") + " " + m.ctrl.ButtonLabel()}
	if len(m.selectable) > 0 {
		id := m.selectable[m.selected]
		sel := id
		if t, ok := m.layout.Lookup(id); ok && t.HasValue() {
			sel += " (" + t.DisplayValue() + ")"
		}
		parts = append(parts, "selected "+StyleValue.Render(sel))
	}
	parts = append(parts, styleKey.Render("⏎")+" click", styleKey.Render("q")+" quit")
	if m.status != "" {
		parts = append(parts, StyleWarning.Render(m.status))
	}
	return styleFooter.Render(strings.Join(parts, "  "))
}

// gridCell is one terminal cell. A zero rune marks the second column of a
// wide character.
type gridCell struct {
	r     rune
	style lipgloss.Style
}

// drawGrid paints the current frame onto the terminal grid, parents first
// so children cover them.
func (m exploreModel) drawGrid() string {
	gridRows := max(m.rows-chromeRows, 1)
	grid := make([][]gridCell, gridRows)
	base := lipgloss.NewStyle().Background(lipgloss.Color(m.cfg.Colors.Background))
	for y := range grid {
		grid[y] = make([]gridCell, m.cols)
		for x := range grid[y] {
			grid[y][x] = gridCell{r: ' ', style: base}
		}
	}

	frame := m.ctrl.Frame()
	highlight := make(map[string]bool, len(m.cfg.Highlight.Names))
	for _, n := range m.cfg.Highlight.Names {
		highlight[n] = true
	}
	selectedID := ""
	if len(m.selectable) > 0 {
		selectedID = m.selectable[m.selected]
	}

	tiles := make([]layout.Tile, 0, len(m.layout.Tiles))
	for _, t := range m.layout.Tiles {
		if t.ID == hierarchy.RootName && !m.cfg.Canvas.IncludeRoot {
			continue
		}
		tiles = append(tiles, t)
	}
	slices.SortStableFunc(tiles, func(a, b layout.Tile) int { return a.Depth - b.Depth })

	for i, t := range tiles {
		tf, ok := frame.Tile(t.ID)
		if !ok {
			continue
		}
		x0, y0, x1, y1 := cellRect(tf.Rect, m.cols, gridRows)
		if x1 <= x0 || y1 <= y0 {
			continue
		}

		style := lipgloss.NewStyle().
			Background(tilePalette[i%len(tilePalette)]).
			Foreground(lipgloss.Color(m.cfg.Colors.Text))
		if highlight[t.Name] {
			style = style.Background(lipgloss.Color(m.cfg.Colors.Highlight))
		}
		if t.ID == selectedID {
			style = styleSelected
		}
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x] = gridCell{r: ' ', style: style}
			}
		}

		if !t.IsLeaf() {
			continue
		}
		line := y0
		if tf.LabelOpacity >= 0.5 {
			putText(grid[line], x0, x1, t.Name, style)
			line++
		}
		if tf.ValueOpacity >= 0.5 && t.HasValue() && line < y1 {
			putText(grid[line], x0, x1, t.DisplayValue(), style)
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}
	return b.String()
}

// cellRect converts a pixel rectangle to grid cells, clipped to the grid.
func cellRect(r layout.Rect, cols, rows int) (x0, y0, x1, y1 int) {
	x0 = clampInt(int(r.X0/cellWidth+0.5), 0, cols)
	y0 = clampInt(int(r.Y0/cellHeight+0.5), 0, rows)
	x1 = clampInt(int(r.X1/cellWidth+0.5), 0, cols)
	y1 = clampInt(int(r.Y1/cellHeight+0.5), 0, rows)
	return
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// putText writes s into row between columns x0 and x1, truncating by
// display width.
func putText(row []gridCell, x0, x1 int, s string, style lipgloss.Style) {
	s = runewidth.Truncate(s, x1-x0, "…")
	x := x0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > x1 {
			break
		}
		row[x] = gridCell{r: r, style: style}
		for i := 1; i < w; i++ {
			row[x+i] = gridCell{style: style}
		}
		x += w
	}
}

// renderRow renders a row, styling runs of cells that share a style in one
// call.
func renderRow(row []gridCell) string {
	var (
		b   strings.Builder
		run strings.Builder
		cur lipgloss.Style
	)
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(cur.Render(run.String()))
			run.Reset()
		}
	}
	for i, cell := range row {
		if i == 0 || !sameStyle(cell.style, cur) {
			flush()
			cur = cell.style
		}
		if cell.r != 0 {
			run.WriteRune(cell.r)
		}
	}
	flush()
	return b.String()
}

func sameStyle(a, b lipgloss.Style) bool {
	return a.GetBackground() == b.GetBackground() &&
		a.GetForeground() == b.GetForeground() &&
		a.GetBold() == b.GetBold()
}

