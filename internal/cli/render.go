package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgmap/pkg/httputil"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file (single format) or base path
	vizType     string   // treemap or hierarchy
	formats     []string // svg, html, png, pdf, json, dot
	width       float64  // canvas width; the config's unless --width is given
	height      float64  // canvas height; the config's unless --height is given
	widthSet    bool
	heightSet   bool
	state       string   // normal or zoomed
	scale       float64  // PNG pixel density
	interactive bool     // embed the zoom script in SVG output
	title       string   // HTML page title
	noCache     bool
	refresh     bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		vizType: pipeline.DefaultVizType,
		state:   zoom.Normal.String(),
		scale:   pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render [file.csv|url]",
		Short: "Render an emissions table to treemap files",
		Long: `Render reads a CSV table with Category, Parent and Value columns and writes
the treemap in one or more formats.

The input may be a local file or an http(s) URL. Downloads are cached and
revalidated with the origin after a day.`,
		Example: `  ghgmap render emissions.csv
  ghgmap render emissions.csv -f svg,png --state zoomed
  ghgmap render emissions.csv -f html --title "Emissions 2023" -o site/index.html
  ghgmap render emissions.csv -t hierarchy -f dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = pipeline.ParseFormats(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = []string{pipeline.FormatSVG}
			}
			opts.widthSet = cmd.Flags().Changed("width")
			opts.heightSet = cmd.Flags().Changed("height")
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", opts.vizType, "visualization: treemap, hierarchy")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated: svg (default), html, png, pdf, json, dot")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "canvas width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "canvas height (default from config)")
	cmd.Flags().StringVar(&opts.state, "state", opts.state, "zoom state to draw: normal, zoomed")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG pixel density")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "embed the zoom button and script in SVG output")
	cmd.Flags().StringVar(&opts.title, "title", "", "HTML page title")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	// An explicit 0 is kept and draws an empty chart.
	if !opts.widthSet {
		opts.width = cfg.Canvas.Width
	}
	if !opts.heightSet {
		opts.height = cfg.Canvas.Height
	}
	var state zoom.State
	if err := state.UnmarshalText([]byte(opts.state)); err != nil {
		return err
	}
	if err := pipeline.ValidateVizType(opts.vizType); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(opts.vizType, opts.formats); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering "+input)
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:       input,
		Refresh:     opts.refresh,
		Width:       opts.width,
		Height:      opts.height,
		VizType:     opts.vizType,
		Formats:     opts.formats,
		State:       state,
		Scale:       opts.scale,
		Interactive: opts.interactive,
		Title:       opts.title,
		Config:      &cfg,
		Logger:      c.Logger,
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered "+opts.vizType, "formats", strings.Join(opts.formats, ","))

	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", StyleValue.Render(input))
	printStats(result.Stats.NodeCount-1, result.Stats.MaxDepth, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	if opts.vizType == pipeline.VizTreemap && !slices.Contains(opts.formats, pipeline.FormatHTML) {
		printNextStep("Interactive page", fmt.Sprintf("%s render %s -f html", appName, input))
	}
	return nil
}

// writeArtifacts writes one file per format and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		p := base + "." + format
		if len(formats) == 1 && output != "" {
			p = output
		}
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := os.WriteFile(p, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input paths.
// An empty output strips the extension from input; URL inputs use the last
// path element of the URL in the working directory. Known format
// extensions are stripped from output.
func basePath(output, input string) string {
	if output == "" {
		name := input
		if httputil.IsURL(input) {
			name = appName
			if u, err := url.Parse(input); err == nil {
				if b := path.Base(u.Path); b != "/" && b != "." {
					name = b
				}
			}
		}
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if isFormat(ext) {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

func isFormat(ext string) bool {
	for _, formats := range pipeline.ValidFormats {
		if slices.Contains(formats, ext) {
			return true
		}
	}
	return false
}
