package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file.csv|url]",
		Short: "Print the category hierarchy as a table",
		Long: `Inspect prints every category with its parent, declared value, aggregated
weight and depth, and marks the categories that are zoom targets or
highlighted under the current config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runInspect(ctx context.Context, input string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(false)
	if err != nil {
		return err
	}
	defer runner.Close()

	tree, err := runner.LoadTree(ctx, pipeline.Options{Input: input, Config: &cfg, Logger: c.Logger})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, StyleTitle.Render(input))
	fmt.Fprintln(out, inspectTable(tree, cfg))
	printStats(tree.Len()-1, tree.MaxDepth(), false)
	return nil
}

// inspectTable renders the hierarchy in pre-order, indenting names by depth.
func inspectTable(tree *hierarchy.Tree, cfg config.Config) string {
	eligible := cfg.ZoomPredicate()
	highlight := make(map[string]bool, len(cfg.Highlight.Names))
	for _, n := range cfg.Highlight.Names {
		highlight[n] = true
	}

	var rows [][]string
	for _, n := range tree.Descendants() {
		if n.Parent == nil {
			continue
		}
		parent := ""
		if n.Parent.Parent != nil {
			parent = n.Parent.Name
		}
		// Zoom predicates only read the name and value.
		tile := layout.Tile{ID: n.Name, Name: n.Name, Value: n.Value, Depth: n.Depth}
		rows = append(rows, []string{
			strings.Repeat("  ", n.Depth-1) + n.Name,
			parent,
			n.DisplayValue(),
			strconv.FormatFloat(n.Weight(), 'f', -1, 64),
			strconv.Itoa(n.Depth),
			mark(eligible(tile)),
			mark(highlight[n.Name]),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Category", "Parent", "Value", "Weight", "Depth", "Zoom", "Highlight").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case row >= len(rows):
				return cellStyle
			case col == 5 && rows[row][5] != "":
				return cellStyle.Foreground(colorGreen)
			case col == 6 && rows[row][6] != "":
				return cellStyle.Foreground(lipgloss.Color(cfg.Colors.Highlight))
			case col == 1 || col == 4:
				return cellStyle.Foreground(colorDim)
			}
			return cellStyle
		}).
		Render()
}

func mark(b bool) string {
	if b {
		return iconSuccess
	}
	return ""
}
