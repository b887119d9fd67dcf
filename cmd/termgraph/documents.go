package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/japaniel/termgraph/pkg/analysis"
	"github.com/japaniel/termgraph/pkg/ingest"
)

// Extensions read from directories. .tsv files hold pre-analyzed tokens.
var corpusExtensions = map[string]bool{".txt": true, ".html": true, ".htm": true, ".tsv": true}

// expandPaths replaces directories by the corpus files they contain.
func expandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && corpusExtensions[strings.ToLower(filepath.Ext(path))] {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// loadFile reads one corpus file. HTML goes through readability and token
// dumps are taken as already analyzed.
func loadFile(path string, logger *log.Logger) (ingest.Document, error) {
	doc := ingest.Document{ID: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv":
		f, err := os.Open(path)
		if err != nil {
			return doc, err
		}
		defer f.Close()
		doc.Sentences, err = analysis.ReadTokens(f, path, logger)
		return doc, err
	case ".html", ".htm":
		content, err := os.ReadFile(path)
		if err != nil {
			return doc, err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return doc, err
		}
		article, err := analysis.FromHTML(content, (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String())
		if err != nil {
			return doc, fmt.Errorf("%s: %w", path, err)
		}
		doc.Text = article.Text
		return doc, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	doc.Text = string(content)
	return doc, nil
}

// fetchURL downloads a web page and keeps its readable text.
func fetchURL(ctx context.Context, fetcher *analysis.Fetcher, pageURL string) (ingest.Document, error) {
	fmt.Printf("Fetching %s...\n", pageURL)
	body, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return ingest.Document{}, err
	}
	article, err := analysis.FromHTML(body, pageURL)
	if err != nil {
		return ingest.Document{}, err
	}
	fmt.Printf("Title: %s\n", article.Title)
	fmt.Printf("Extracted Text Length: %d chars\n", len(article.Text))
	return ingest.Document{ID: pageURL, Text: article.Text}, nil
}

// corpus lists the inputs of one extraction.
type corpus struct {
	paths   []string
	urls    []string
	fetcher *analysis.Fetcher
	logger  *log.Logger
}

func (c corpus) empty() bool { return len(c.paths) == 0 && len(c.urls) == 0 }

// provide reads every input in turn and hands it to the stream.
func (c corpus) provide(ctx context.Context, s *ingest.Stream) error {
	for _, p := range c.paths {
		doc, err := loadFile(p, c.logger)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if err := s.Provide(ctx, doc); err != nil {
			return err
		}
	}
	for _, u := range c.urls {
		doc, err := fetchURL(ctx, c.fetcher, u)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", u, err)
		}
		if err := s.Provide(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
