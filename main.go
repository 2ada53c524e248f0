package main

import (
	"fmt"
	"os"

	dbcmd "github.com/dtnitsch/llm-repo-processor/internal/db"
	"github.com/dtnitsch/llm-repo-processor/internal/clean"
	"github.com/dtnitsch/llm-repo-processor/internal/normalize"
	"github.com/dtnitsch/llm-repo-processor/internal/process"
	"github.com/dtnitsch/llm-repo-processor/models"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(process.ExitFatal)
	}
}

func newApp() *cli.App {
	quietFlag := &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "only log errors",
	}
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Usage:   "path to the run ledger (SQLite)",
		Value:   "lrp.db",
		EnvVars: []string{"LRP_DB"},
	}

	return &cli.App{
		Name:  "lrp",
		Usage: "convert source repositories into per-file JSON documents for LLM pipelines",
		Commands: []*cli.Command{
			{
				Name:   "process",
				Usage:  "mirror each repository under the input dir and write one JSON document per file",
				Action: process.ProcessAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input-dir",
						Aliases: []string{"i"},
						Usage:   "root containing one subdirectory per repository",
						Value:   models.DefaultInputDir,
						EnvVars: []string{"LRP_INPUT_DIR"},
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "root the mirrored tree is written to",
						Value:   models.DefaultOutputDir,
						EnvVars: []string{"LRP_OUTPUT_DIR"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "number of repositories processed concurrently",
						Value:   models.DefaultWorkerCount(),
						EnvVars: []string{"LRP_WORKERS"},
					},
					&cli.StringFlag{
						Name:    "model",
						Usage:   "model whose tokenizer encoding is used",
						Value:   models.DefaultModel,
						EnvVars: []string{"LRP_MODEL"},
					},
					&cli.StringFlag{
						Name:  "filepath-base",
						Usage: "base of the filepath field: unit (repository-relative) or root (input-dir-relative)",
						Value: string(models.FilepathBaseUnit),
					},
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "glob of repository-relative paths to skip (repeatable, supports **)",
					},
					&cli.IntFlag{
						Name:  "keywords",
						Usage: "number of top keywords in the run summary (0 disables)",
						Value: models.DefaultKeywords,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "summary format: json or yaml",
						Value: "json",
					},
					&cli.StringFlag{
						Name:  "summary-file",
						Usage: "also write the run summary to this file (in --format)",
					},
					&cli.StringFlag{
						Name:    "db",
						Usage:   "record the run in this SQLite ledger (empty disables)",
						EnvVars: []string{"LRP_DB"},
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "YAML config file; flags override its values",
					},
					quietFlag,
				},
			},
			{
				Name:   "fix-filepaths",
				Usage:  "strip leading ../ segments from the filepath field of generated JSON documents",
				Action: normalize.FixFilepathsAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "tree of JSON documents to rewrite",
						Value:   models.DefaultOutputDir,
						EnvVars: []string{"LRP_OUTPUT_DIR"},
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "report what would change without writing",
					},
					quietFlag,
				},
			},
			{
				Name:      "clean",
				Usage:     "print a comment-free, lowercase-only rendition of files (or stdin)",
				ArgsUsage: "[file...]",
				Action:    clean.CleanAction,
			},
			{
				Name:  "db",
				Usage: "inspect the run ledger",
				Subcommands: []*cli.Command{
					{
						Name:   "runs",
						Usage:  "list recorded runs",
						Action: dbcmd.RunsAction,
						Flags: []cli.Flag{
							dbFlag,
							&cli.IntFlag{
								Name:  "limit",
								Usage: "maximum number of runs to show (0 shows all)",
								Value: 20,
							},
						},
					},
					{
						Name:      "run",
						Usage:     "show one run (latest when no id is given)",
						ArgsUsage: "[run-id]",
						Action:    dbcmd.RunAction,
						Flags:     []cli.Flag{dbFlag},
					},
				},
			},
		},
	}
}
