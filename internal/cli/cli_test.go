package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	ghgio "github.com/matzehuels/ghgmap/pkg/io"
)

const testCSV = `Category,Parent,Value
Transport,,
Buses,Transport,30
Railways,Transport,10
Waste,,
Wastewater treatment and discharge,Waste,0.74
Other,Waste,0.01
Agriculture,,59
`

// testEnv isolates the cache directory and captures status output.
func testEnv(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var buf bytes.Buffer
	out = &buf
	t.Cleanup(func() { out = defaultOut })
	return &buf
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emissions.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	rows, err := ghgio.ReadCSV(strings.NewReader(testCSV))
	if err != nil {
		t.Fatal(err)
	}
	tree, err := hierarchy.Build(rows)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		home := t.TempDir()
		t.Setenv("HOME", home)
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"render", "serve", "explore", "inspect", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command missing --config")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	if err := os.WriteFile(good, []byte("[canvas]\nwidth = 320\nheight = 200\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[zoom]\neasing = \"bounce\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		wantWidth float64
		wantCode  errors.Code
	}{
		{"explicit file", good, 320, ""},
		{"missing file", filepath.Join(dir, "missing.toml"), 0, errors.ErrCodeFileNotFound},
		{"invalid value", bad, 0, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.configPath = tt.path
			cfg, err := c.loadConfig()
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("loadConfig() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.Canvas.Width != tt.wantWidth {
				t.Errorf("width = %v, want %v", cfg.Canvas.Width, tt.wantWidth)
			}
			if cfg.Canvas.Height != 200 || cfg.Zoom.Threshold != config.Default().Zoom.Threshold {
				t.Errorf("config not merged over defaults: %+v", cfg)
			}
		})
	}
}

func TestCacheCommands(t *testing.T) {
	buf := testEnv(t)
	csv := writeCSV(t)

	if err := runCommand(t, "render", csv, "-f", "svg"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dir, _ := cacheDir()
	if countFiles(dir) == 0 {
		t.Fatal("render left nothing in the cache")
	}

	buf.Reset()
	if err := runCommand(t, "cache", "path"); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(buf.String()) != dir {
		t.Errorf("cache path = %q, want %q", buf.String(), dir)
	}

	buf.Reset()
	if err := runCommand(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(buf.String(), "Cleared") {
		t.Errorf("cache clear output = %q", buf.String())
	}
	if n := countFiles(dir); n != 0 {
		t.Errorf("%d files left after clear", n)
	}
}

func TestCompletionCommand(t *testing.T) {
	if err := runCommand(t, "completion", "fish"); err != nil {
		t.Errorf("completion fish: %v", err)
	}
	if err := runCommand(t, "completion", "tcsh"); err == nil {
		t.Error("completion accepted an unknown shell")
	}
}
