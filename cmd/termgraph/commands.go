package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/japaniel/termgraph/pkg/analysis"
	"github.com/japaniel/termgraph/pkg/dictionary"
	"github.com/japaniel/termgraph/pkg/pipeline"
	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/termino"
)

const defaultDictPath = "jmdict-eng-common.json"

func newLogger(c *cli.Command) *log.Logger {
	if !c.Bool("verbose") {
		return nil
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

var verboseFlag = &cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every extraction step to stderr"}

// loadConfig builds the configuration from --config or the defaults of --lang,
// then applies the environment and the store flags.
func loadConfig(c *cli.Command) (pipeline.Config, error) {
	var cfg pipeline.Config
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(path); err != nil {
			return cfg, err
		}
	} else {
		cfg = pipeline.Defaults(c.String("lang"))
	}
	cfg.ApplyEnv()
	if c.IsSet("store-driver") {
		cfg.Store.Driver = c.String("store-driver")
	}
	if c.IsSet("store-dsn") {
		cfg.Store.DSN = c.String("store-dsn")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("jmdict") {
		cfg.Resources.JMdict = c.String("jmdict")
	}
	return cfg, nil
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract and rank the terms of text, HTML or token files and web pages",
		ArgsUsage: "[file or directory ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "lang", Value: "en", Usage: "corpus language when no configuration file is given"},
			&cli.StringSliceFlag{Name: "url", Usage: "web page to fetch (repeatable)"},
			&cli.StringFlag{Name: "store-driver", Usage: "occurrence store: memory, sqlite3 or pgx"},
			&cli.StringFlag{Name: "store-dsn", Usage: "occurrence store data source"},
			&cli.IntFlag{Name: "workers", Usage: "analysis workers"},
			&cli.StringFlag{Name: "jmdict", Usage: "JMdict-simplified JSON file for the Japanese lexicon and glosses"},
			&cli.IntFlag{Name: "top", Value: 50, Usage: "number of terms to list (0 lists all)"},
			&cli.BoolFlag{Name: "variants", Usage: "list the variations of each term"},
			&cli.BoolFlag{Name: "json", Usage: "print the ranked terms as JSON"},
			verboseFlag,
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := newLogger(c)
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			paths, err := expandPaths(c.Args().Slice())
			if err != nil {
				return err
			}
			in := corpus{paths: paths, urls: c.StringSlice("url"), fetcher: analysis.NewFetcher(), logger: logger}
			if in.empty() {
				return errors.New("please provide files, directories or --url")
			}

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			res, err := p.ExtractStream(ctx, in.provide)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(os.Stdout, res, c.Int("top"), p.Resources().Glossary)
			}
			fmt.Printf("Extracted %d terms and %d relations from %d documents (%d occurrences) in %v.\n",
				res.Terminology.Size(), res.Terminology.RelationCount(), res.Documents, res.Occurrences, res.Elapsed)
			fmt.Println("---------------------------------------------------")
			printTerms(os.Stdout, res, c.Int("top"), p.Resources().Glossary, c.Bool("variants"))
			return nil
		},
	}
}

func alignCommand() *cli.Command {
	return &cli.Command{
		Name:  "align",
		Usage: "Extract a source and a target corpus and resolve a bilingual reference list against them",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "source", Required: true, Usage: "source corpus file or directory (repeatable)"},
			&cli.StringSliceFlag{Name: "target", Required: true, Usage: "target corpus file or directory (repeatable)"},
			&cli.StringFlag{Name: "source-lang", Value: "en"},
			&cli.StringFlag{Name: "target-lang", Value: "ja"},
			&cli.StringFlag{Name: "pairs", Required: true, Usage: "two-column reference list (source lemma, target lemma)"},
			verboseFlag,
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := newLogger(c)
			extract := func(lang string, inputs []string) (*termino.Terminology, error) {
				paths, err := expandPaths(inputs)
				if err != nil {
					return nil, err
				}
				p, err := pipeline.New(pipeline.Defaults(lang), logger)
				if err != nil {
					return nil, err
				}
				res, err := p.ExtractStream(ctx, corpus{paths: paths, logger: logger}.provide)
				if err != nil {
					return nil, fmt.Errorf("%s corpus: %w", lang, err)
				}
				return res.Terminology, nil
			}
			source, err := extract(c.String("source-lang"), c.StringSlice("source"))
			if err != nil {
				return err
			}
			target, err := extract(c.String("target-lang"), c.StringSlice("target"))
			if err != nil {
				return err
			}

			l, err := resource.ParseLocator(c.String("pairs"))
			if err != nil {
				return err
			}
			rc, err := resource.Open(l)
			if err != nil {
				return err
			}
			defer rc.Close()
			// Skipped lines are always reported.
			warnings := log.New(os.Stderr, "", 0)
			pairs, err := resource.ReadPairs(rc, l.String(), warnings)
			if err != nil {
				return err
			}
			resolved := termino.ResolvePairs(source, target, pairs, warnings)
			fmt.Printf("Resolved %d of %d reference pairs.\n", len(resolved), len(pairs))
			printPairs(os.Stdout, resolved)
			return nil
		},
	}
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Dump the analyzed tokens of files as surface, label and lemma columns",
		ArgsUsage: "[file or directory ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Value: "en"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			analyzer, err := pipeline.NewAnalyzer(c.String("lang"))
			if err != nil {
				return err
			}
			paths, err := expandPaths(c.Args().Slice())
			if err != nil {
				return err
			}
			for _, p := range paths {
				doc, err := loadFile(p, nil)
				if err != nil {
					return err
				}
				sentences := doc.Sentences
				if sentences == nil {
					if sentences, err = analyzer.AnalyzeDocument(doc.Text); err != nil {
						return fmt.Errorf("analyze %s: %w", p, err)
					}
				}
				if err := analysis.WriteTokens(os.Stdout, sentences); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func fetchDictCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-dict",
		Usage: "Download the JMdict-simplified dictionary used for Japanese compounds and glosses",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Value: defaultDictPath},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.String("path")
			if err := dictionary.EnsureDictionary(ctx, path); err != nil {
				return err
			}
			entries, err := dictionary.LoadJMdictSimplified(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			fmt.Printf("Dictionary ready at %s (%d entries).\n", path, len(entries))
			return nil
		},
	}
}
