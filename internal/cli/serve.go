package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgmap/pkg/cache"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
	"github.com/matzehuels/ghgmap/pkg/server"
	"github.com/matzehuels/ghgmap/pkg/session"
)

type serveOpts struct {
	addr  string
	redis string
	title string
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [file.csv|url]",
		Short: "Serve the treemap over HTTP",
		Long: `Serve loads the table once and answers page, image and zoom-view requests
for it. Layouts and renders are cached in memory, or in Redis with --redis,
which also lets several instances share zoom views.`,
		Example: `  ghgmap serve emissions.csv
  ghgmap serve emissions.csv --addr :9000 --redis redis://localhost:6379/0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis URL for the shared cache and view store")
	cmd.Flags().StringVar(&opts.title, "title", "", "page title")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr == "" {
		opts.addr = cfg.Server.Addr
	}
	if opts.redis == "" {
		opts.redis = cfg.Server.Redis
	}

	backend, err := c.serverCache(ctx, opts.redis)
	if err != nil {
		return err
	}

	// The dataset is loaded with an uncached runner so the file is read
	// fresh on every start.
	loader, err := c.newRunner(true)
	if err != nil {
		return err
	}
	spinner := newSpinnerWithContext(ctx, "Loading "+input)
	spinner.Start()
	tree, err := loader.LoadTree(ctx, pipeline.Options{Input: input, Config: &cfg, Logger: c.Logger})
	spinner.Stop()
	if err != nil {
		backend.Close()
		return err
	}

	// Keys are scoped by dataset so one Redis can back several servers.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), fmt.Sprintf("%s:%s:", appName, tree.Hash()[:12]))
	runner := pipeline.NewRunner(backend, keyer, c.Logger)
	defer runner.Close()

	srv := server.New(cfg, tree,
		server.WithLogger(c.Logger),
		server.WithRunner(runner),
		server.WithStore(session.NewCacheStore(backend, keyer, cfg.SessionTTL())),
		server.WithTitle(opts.title))

	printSuccess("Serving %s", StyleValue.Render(input))
	printStats(tree.Len()-1, tree.MaxDepth(), false)
	printKeyValue("address", StyleLink.Render(displayURL(opts.addr)))
	printKeyValue("views", viewBackend(opts.redis))

	return srv.ListenAndServe(ctx, opts.addr)
}

// serverCache returns the Redis cache when url is set and an in-memory
// cache otherwise.
func (c *CLI) serverCache(ctx context.Context, url string) (cache.Cache, error) {
	if url == "" {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis", "url", redactURL(url))
	return rc, nil
}

func viewBackend(redisURL string) string {
	if redisURL == "" {
		return "memory"
	}
	return "redis " + redactURL(redisURL)
}

// displayURL turns a listen address into a browsable URL.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// redactURL hides the password in a redis URL.
func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	return raw[:scheme+3] + "***" + raw[at:]
}
