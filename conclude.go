package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aaakoako/reduce-gpt-tokens/corpus"
	"github.com/aaakoako/reduce-gpt-tokens/corpus/stats"
	"github.com/urfave/cli/v2"
)

func main() {
	log.SetFlags(0)

	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:  "conclude",
		Usage: "Collapse a source tree into a compact JSON listing for prompting language models",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source-root",
				Value: wd,
				Usage: "Root directory of the source tree to process",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file (defaults to config.json in the source root, if present)",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for conclude.json and conclude_readable.json (defaults to the source root)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of files processed concurrently (0 uses the config value)",
			},
			&cli.StringFlag{
				Name:  "cache-db",
				Usage: "Bolt database memoising results between runs. Empty disables caching",
			},
			&cli.StringFlag{
				Name:    "pg-dsn",
				Usage:   "Also write results to the conclude_files table of this postgres database",
				EnvVars: []string{"CONCLUDE_PG_DSN"},
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log skipped files",
			},
		},
		Action: concludeAction,
		Commands: []*cli.Command{
			{
				Name:   "conclude",
				Usage:  "Extract cleaned source and write both JSON listings (the default)",
				Action: concludeAction,
			},
			{
				Name:  "watch",
				Usage: "Rerun conclude whenever files under the source root change",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Value: defaultDebounce,
						Usage: "Quiet period after a change before rerunning",
					},
				},
				Action: func(cCtx *cli.Context) error {
					ctx, stop := signalContext(cCtx.Context)
					defer stop()
					opts, err := options(cCtx)
					if err != nil {
						return err
					}
					return corpus.Watch(ctx, cCtx.String("source-root"), outputDir(cCtx), cCtx.String("pg-dsn"), cCtx.Duration("debounce"), opts)
				},
			},
			{
				Name:  "strip-comments",
				Usage: "Write comment free copies of the supported source files, mirroring the tree",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target-dir",
						Value: defaultTargetDir(),
						Usage: "target directory",
					},
				},
				Action: func(cCtx *cli.Context) error {
					opts, err := options(cCtx)
					if err != nil {
						return err
					}
					return corpus.StripComments(cCtx.Context, cCtx.String("source-root"), cCtx.String("target-dir"), opts)
				},
			},
			{
				Name:  "stats",
				Usage: "Show how much each language shrinks when cleaned",
				Action: func(cCtx *cli.Context) error {
					rows, err := collectStats(cCtx)
					if err != nil {
						return err
					}
					return stats.Table(os.Stdout, rows)
				},
			},
			{
				Name:  "stats-image",
				Usage: "Plot the per language stats in a png/jpg/svg",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "output graph",
						Value: defaultImageName(),
					},
				},
				Action: func(cCtx *cli.Context) error {
					rows, err := collectStats(cCtx)
					if err != nil {
						return err
					}
					return stats.Image(rows, cCtx.String("output"))
				},
			},
			{
				Name:  "stats-bq",
				Usage: "Upload the per language stats to bigquery, replacing the table contents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Usage:    "GCP project",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "dataset",
						Value: "tmp",
						Usage: "bigquery dataset",
					},
					&cli.StringFlag{
						Name:  "table",
						Value: "conclude_stats",
						Usage: "bigquery table",
					},
				},
				Action: func(cCtx *cli.Context) error {
					rows, err := collectStats(cCtx)
					if err != nil {
						return err
					}
					return stats.UploadBigQuery(cCtx.Context,
						cCtx.String("project"),
						cCtx.String("dataset"),
						cCtx.String("table"),
						cCtx.String("source-root"),
						rows)
				},
			},
			{
				Name:  "languages",
				Usage: "List the comment and print rules in effect",
				Action: func(cCtx *cli.Context) error {
					cfg, err := corpus.LoadConfig(cCtx.String("config"), cCtx.String("source-root"))
					if err != nil {
						return err
					}
					rules, err := cfg.RuleTable(corpus.DefaultRules)
					if err != nil {
						return err
					}
					return listLanguages(os.Stdout, rules)
				},
			},
			{
				Name:  "lexer-check",
				Usage: "Ensure the Equinox lexer can correctly scan all Equinox source. This is mostly for debugging the lexer",
				Action: func(cCtx *cli.Context) error {
					opts, err := options(cCtx)
					if err != nil {
						return err
					}
					return corpus.LexerCheck(cCtx.Context, cCtx.String("source-root"), opts)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func concludeAction(cCtx *cli.Context) error {
	opts, err := options(cCtx)
	if err != nil {
		return err
	}
	return corpus.Conclude(cCtx.Context, cCtx.String("source-root"), outputDir(cCtx), cCtx.String("pg-dsn"), opts)
}

func collectStats(cCtx *cli.Context) ([]corpus.StatsRow, error) {
	opts, err := options(cCtx)
	if err != nil {
		return nil, err
	}
	return corpus.Stats(cCtx.Context, cCtx.String("source-root"), opts)
}

func outputDir(cCtx *cli.Context) string {
	if dir := cCtx.String("output-dir"); dir != "" {
		return dir
	}
	return cCtx.String("source-root")
}

// options builds the session options from the global flags. The config is
// loaded here so that --workers can override it.
func options(cCtx *cli.Context) (corpus.Options, error) {
	cfg, err := corpus.LoadConfig(cCtx.String("config"), cCtx.String("source-root"))
	if err != nil {
		return corpus.Options{}, err
	}
	if w := cCtx.Int("workers"); w > 0 {
		cfg.Workers = w
	}

	opts := corpus.Options{
		Config:  cfg,
		CacheDB: cCtx.String("cache-db"),
		Verbose: cCtx.Bool("verbose"),
	}
	if cCtx.Bool("progress") {
		opts.Progress = newProgressReporter()
	}
	return opts, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
