// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/casbert"
	"github.com/poiesic/casbert/ai"
	"github.com/poiesic/casbert/ai/openai"
	"github.com/poiesic/casbert/assets"
	"github.com/poiesic/casbert/assets/minio"
	"github.com/poiesic/casbert/config"
	"github.com/poiesic/casbert/reindex"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

// newProvider builds the query encoder. Tests replace it.
var newProvider = func(cfg *ai.Config, logger *slog.Logger) (ai.AIProvider, error) {
	return openai.NewProvider(cfg, openai.WithLogger(logger))
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = "casbert.yaml"
	}

	return &cli.App{
		Name:  "casbert",
		Usage: "Semantic search over physiome model repositories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				Value:   defaultConfig,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory; overrides the config file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import a catalog bundle directory",
				ArgsUsage: " ",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "bundle",
						Aliases:  []string{"b"},
						Usage:    "Directory holding the bundle JSON files",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search one entity type, plots, or all types at once",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "variable, component, cellml, sedml, image, plot or all",
						Value:   "variable",
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Maximum number of results; overrides the config file",
					},
					&cli.Float64Flag{
						Name:  "min-sim",
						Usage: "Minimum cosine similarity in [-1, 1]; overrides the config file",
					},
					&cli.StringFlag{
						Name:  "variant",
						Usage: "Index variant (class, class_predicate); overrides the config file",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Math format (code, web, jupyter, latex); overrides the config file",
					},
					&cli.BoolFlag{
						Name:  "deps",
						Usage: "Include dependency maths in variable results",
					},
				},
			},
			{
				Name:      "deps",
				Usage:     "Print the maths a variable transitively depends on",
				ArgsUsage: "VARIABLE_ID",
				Action:    depsCommand,
			},
			{
				Name:      "similar",
				Usage:     "List the models clustered with the model of a variable",
				ArgsUsage: "VARIABLE_ID",
				Action:    similarCommand,
			},
			{
				Name:      "images",
				Usage:     "List the images of a model, falling back to similar models",
				ArgsUsage: "CELLML_ID",
				Action:    imagesCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print stored record counts",
				Action: statsCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed an index variant with the configured embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "entity",
						Aliases:  []string{"e"},
						Usage:    "Entity type whose index is rebuilt",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "variant",
						Usage: "Index variant to rebuild",
						Value: "class_predicate",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of texts sent in each embedding call",
						Value: reindex.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: reindex.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// setup loads the configuration, applies the global overrides and installs
// the logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("db") {
		cfg.Database = c.String("db")
	}

	level, err := cfg.Level()
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", cfg.LogLevel)
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func configOf(c *cli.Context) *config.Config {
	return c.App.Metadata[configKey].(*config.Config)
}

// assetStore returns the configured image store, cached when a cache size
// is set.
func assetStore(cfg *config.Config) (assets.Store, error) {
	var store assets.Store = assets.None{}
	if m, ok := cfg.MinIOConfig(); ok {
		s, err := minio.New(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		store = s
	} else if cfg.Assets.Root != "" {
		store = assets.Local{Root: cfg.Assets.Root}
	}
	if cfg.Assets.CacheSize <= 0 {
		return store, nil
	}
	return assets.NewCached(store, cfg.Assets.CacheSize)
}

func openDatabase(c *cli.Context, readOnly bool) (*casbert.Database, error) {
	cfg := configOf(c)
	logger := slog.Default()

	provider, err := newProvider(cfg.AIConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	store, err := assetStore(cfg)
	if err != nil {
		provider.Close()
		return nil, err
	}

	opts := []casbert.DatabaseOption{
		casbert.WithProvider(provider),
		casbert.WithAssetStore(store),
		casbert.WithLogger(logger),
	}
	if readOnly {
		opts = append(opts, casbert.WithReadOnly())
	}
	db, err := casbert.NewDatabase(cfg.Database, opts...)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
