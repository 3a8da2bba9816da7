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
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/lmittmann/tint"
	"github.com/poiesic/glimpse"
	"github.com/poiesic/glimpse/config"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/ingestion"
	"github.com/poiesic/glimpse/reindex"
	"github.com/poiesic/glimpse/search"
	"github.com/poiesic/glimpse/server"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "glimpse",
		Usage: "Find screenshots by describing what they show",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (tint, text, json)",
				Value: "tint",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (default: $GLIMPSE_CONFIG or ./glimpse.yaml)",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the index and stored screenshots",
			},
			&cli.StringFlag{
				Name:  "ai-host",
				Usage: "OpenAI-compatible API host URL",
			},
			&cli.StringFlag{
				Name:  "vision-model",
				Usage: "Vision model used to describe screenshots",
			},
			&cli.StringFlag{
				Name:  "matcher",
				Usage: "Relevance scorer (local, llm)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index screenshot files or folders",
				ArgsUsage: "<file-or-folder>...",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of screenshots analyzed at once",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of folder files submitted per batch",
						Value: ingestion.DefaultBatchSize,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search indexed screenshots",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results (default from config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print every candidate's scores to stderr",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show index counters",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the report as JSON",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Describe stored screenshots again",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Reindex every record, not only failed ones",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: reindex.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N images",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of images described at once",
						Value: 2,
					},
					&cli.BoolFlag{
						Name:  "keep-missing",
						Usage: "Keep records whose screenshot is gone instead of deleting them",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (default from config)",
					},
				},
			},
			{
				Name:      "watch",
				Usage:     "Index screenshots as they appear in a folder",
				ArgsUsage: "<folder>",
				Action:    watchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before new files are indexed",
						Value: ingestion.DefaultDebounce,
					},
				},
			},
		},
	}
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("ai-host") {
		cfg.AI.Host = c.String("ai-host")
	}
	if c.IsSet("vision-model") {
		cfg.AI.VisionModel = c.String("vision-model")
	}
	if c.IsSet("matcher") {
		cfg.AI.Matcher = c.String("matcher")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openLibrary(c *cli.Context) (*glimpse.Library, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	lib, err := glimpse.Open(c.Context, cfg.DataDir, cfg.LibraryOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open library: %w", err)
	}
	return lib, cfg, nil
}

func indexCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one file or folder is required")
	}
	lib, cfg, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	pipeline, err := lib.NewPipeline(
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithMaxFileSize(cfg.MaxUploadBytes()),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	var outcomes []core.Outcome
	var files []ingestion.File
	for _, arg := range c.Args().Slice() {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if info.IsDir() {
			folder, err := pipeline.IndexFolder(c.Context, arg)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, folder...)
			continue
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", arg, err)
		}
		files = append(files, ingestion.File{Filename: filepath.Base(arg), Data: data})
	}
	if len(files) > 0 {
		outcomes = append(outcomes, pipeline.Ingest(c.Context, files)...)
	}

	printOutcomes(c.App.Writer, outcomes)
	return nil
}

func printOutcomes(w io.Writer, outcomes []core.Outcome) {
	counts := map[core.OutcomeStatus]int{}
	for _, o := range outcomes {
		counts[o.Status]++
		fmt.Fprintf(w, "%-8s %s", o.Status, o.Filename)
		if o.Message != "" {
			fmt.Fprintf(w, ": %s", o.Message)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d indexed, %d skipped, %d failed\n",
		counts[core.OutcomeSuccess], counts[core.OutcomeSkipped], counts[core.OutcomeError])
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	lib, cfg, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	searcher, err := lib.NewSearcher(cfg.SearchOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	topK := cfg.Search.TopK
	if c.IsSet("top-k") {
		topK = c.Int("top-k")
	}
	var monitor search.SearchMonitor
	if c.Bool("explain") {
		monitor = &explainMonitor{w: c.App.ErrWriter}
	}
	results, err := searcher.SearchWithMonitor(c.Context, query, topK, monitor)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "No matching screenshots")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(c.App.Writer, "%d. %s (confidence %d, text %d, visual %d)\n",
			i+1, r.Filename, r.Confidence, r.TextScore, r.VisualScore)
		fmt.Fprintf(c.App.Writer, "   %s\n", firstLine(r.Description))
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func statusCommand(c *cli.Context) error {
	lib, _, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	reporter, err := lib.NewReporter()
	if err != nil {
		return err
	}
	report, err := reporter.Status(c.Context)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, report)
	}
	fmt.Fprintf(c.App.Writer, "Indexed images: %d\n", report.TotalImages)
	fmt.Fprintf(c.App.Writer, "Failed images:  %d\n", report.TotalFailed)
	fmt.Fprintf(c.App.Writer, "Total records:  %d\n", report.TotalRecords)
	if report.LastIndexedAt != nil {
		fmt.Fprintf(c.App.Writer, "Last indexed:   %s\n", report.LastIndexedAt.Local().Format(time.DateTime))
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		Concurrency:    c.Int("concurrency"),
		OnlyFailed:     !c.Bool("all"),
		Prune:          !c.Bool("keep-missing"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0")
	}

	lib, cfg, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	reindexer, err := lib.NewReindexer(reindexConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Data directory: %s\n", cfg.DataDir)
	fmt.Fprintf(c.App.ErrWriter, "Vision host: %s\n", cfg.AI.Host)
	fmt.Fprintf(c.App.ErrWriter, "Vision model: %s\n", cfg.AI.VisionModel)
	fmt.Fprintln(c.App.ErrWriter)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := reindexer.Run(ctx)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	if summary.Pruned > 0 {
		fmt.Fprintf(c.App.Writer, "%d records removed because their screenshot is gone\n", summary.Pruned)
	}
	if summary.Failed > 0 {
		fmt.Fprintf(c.App.Writer, "%d images still failing; run reindex again later\n", summary.Failed)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	lib, cfg, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	pipeline, err := lib.NewPipeline(ingestion.WithMaxFileSize(cfg.MaxUploadBytes()))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	searcher, err := lib.NewSearcher(cfg.SearchOptions()...)
	if err != nil {
		return err
	}
	reporter, err := lib.NewReporter()
	if err != nil {
		return err
	}

	srv, err := server.New(pipeline, searcher, reporter, lib.Images(),
		server.WithMaxFileSize(cfg.MaxUploadBytes()),
		server.WithDefaultTopK(cfg.Search.TopK),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}

func watchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one folder is required")
	}
	dir := c.Args().First()

	lib, cfg, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	pipeline, err := lib.NewPipeline(ingestion.WithMaxFileSize(cfg.MaxUploadBytes()))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	out := c.App.Writer
	watcher, err := ingestion.NewWatcher(pipeline, dir,
		ingestion.WithDebounce(c.Duration("debounce")),
		ingestion.WithBatchHandler(func(outcomes []core.Outcome) {
			printOutcomes(out, outcomes)
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.App.ErrWriter, "Watching %s (Ctrl-C to stop)\n", dir)
	err = watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	handler, err := newLogHandler(os.Stderr, c.String("log-format"), level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func newLogHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "tint", "":
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}), nil
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), nil
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be one of tint, text, json", format)
	}
}
