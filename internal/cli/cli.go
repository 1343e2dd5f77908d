// Package cli implements the ghgmap command-line interface.
package cli

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgmap/pkg/buildinfo"
	"github.com/matzehuels/ghgmap/pkg/cache"
	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/httputil"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "ghgmap"

	// httpCacheTTL is how long a downloaded dataset is used before it is
	// revalidated with the origin.
	httpCacheTTL = 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty means search upward from the
	// working directory.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "ghgmap draws emissions hierarchies as zoomable treemaps",
		Long:         `ghgmap reads a Category/Parent/Value table of greenhouse-gas emissions and draws it as a treemap. Small categories can be zoomed into so their labels become readable. Output goes to SVG, HTML, PNG, PDF or JSON files, an HTTP server, or the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: nearest "+config.FileName+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the settings for a command run.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, path, err := config.Resolve(c.configPath, ".")
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Artifacts and downloaded
// datasets are cached under the user cache directory unless noCache is set.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	if !noCache {
		if hc, err := newHTTPCache(); err == nil {
			r.Fetcher = httputil.NewFetcher(hc)
		} else {
			c.Logger.Warn("download cache disabled", "err", err)
		}
	}
	return r, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(filepath.Join(dir, "artifacts"))
}

func newHTTPCache() (*httputil.Cache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return httputil.NewCache(filepath.Join(dir, "http"), httpCacheTTL)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/ghgmap/).
func cacheDir() (string, error) {
	return cache.DefaultDir(appName)
}
