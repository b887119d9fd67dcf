// Package pipeline chains the extraction steps over a corpus: spotting,
// frequencies, specificity, compound splitting, variant gathering, cleaning,
// merging, contexts and ranking.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/termgraph/pkg/analysis"
	"github.com/japaniel/termgraph/pkg/compost"
	"github.com/japaniel/termgraph/pkg/ingest"
	"github.com/japaniel/termgraph/pkg/occurrence"
	"github.com/japaniel/termgraph/pkg/postproc"
	"github.com/japaniel/termgraph/pkg/scoring"
	"github.com/japaniel/termgraph/pkg/termino"
	"github.com/japaniel/termgraph/pkg/variant"
)

// Pipeline runs extractions with one validated configuration and its loaded
// resources. A Pipeline can run several extractions, one at a time.
type Pipeline struct {
	cfg       Config
	resources *Resources
	analyzer  analysis.Analyzer
	spotter   *analysis.Spotter
	splitter  *compost.Splitter

	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
	// OnProgress is passed to the ingester.
	OnProgress func(current, total int)
}

// NewAnalyzer returns the analyzer of a language: kagome for Japanese, the
// rule-based one otherwise.
func NewAnalyzer(lang string) (analysis.Analyzer, error) {
	if lang == "ja" {
		return analysis.NewKagome()
	}
	return &analysis.Simple{}, nil
}

// New validates cfg and loads its resources.
func New(cfg Config, logger *log.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := LoadResources(cfg.Resources, logger)
	if err != nil {
		return nil, err
	}
	analyzer, err := NewAnalyzer(cfg.Lang)
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}
	p := &Pipeline{
		cfg:       cfg,
		resources: res,
		analyzer:  analyzer,
		spotter:   analysis.NewSpotter(cfg.Patterns, cfg.StopWords),
		Logger:    logger,
	}
	if cfg.Compost.Enabled {
		p.splitter, err = compost.New(cfg.Compost.Config, res.Compost)
		if err != nil {
			return nil, err
		}
		p.splitter.Logger = logger
	}
	return p, nil
}

func (p *Pipeline) Config() Config              { return p.cfg }
func (p *Pipeline) Resources() *Resources       { return p.resources }
func (p *Pipeline) Analyzer() analysis.Analyzer { return p.analyzer }

// Result summarizes one extraction. The terminology store is closed when
// Extract returns; terms and relations stay readable.
type Result struct {
	Terminology *termino.Terminology
	// Ranked lists the surviving terms, best first.
	Ranked      []*termino.Term
	Documents   int
	Occurrences int
	Compounds   int
	Relations   map[termino.RelationType]int
	Cleaned     int
	Merged      int
	Contexts    int
	Elapsed     time.Duration
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

func (p *Pipeline) openStore(ctx context.Context) (occurrence.Store, error) {
	sc := p.cfg.Store
	if sc.Driver == MemoryDriver {
		return occurrence.NewMemory(), nil
	}
	store, err := occurrence.OpenSQL(ctx, sc.Driver, sc.DSN, occurrence.SQLOptions{
		BatchSize: sc.BatchSize,
		CacheSize: sc.CacheSize,
		Logger:    p.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", sc.Driver, err)
	}
	return store, nil
}

// cleaner builds the configured filter, or nil when cleaning is disabled.
func (p *Pipeline) cleaner() postproc.Pass {
	c := p.cfg.Cleaning
	if !c.Enabled() {
		return nil
	}
	switch {
	case c.Threshold != nil:
		return &postproc.ThresholdCleaner{Property: c.Property, Threshold: *c.Threshold, KeepVariants: c.KeepVariants, Scope: c.VariantScope, Logger: p.Logger}
	case c.TopN > 0:
		return &postproc.TopNCleaner{Property: c.Property, N: c.TopN, KeepVariants: c.KeepVariants, Scope: c.VariantScope, Logger: p.Logger}
	case c.MaxSize > 0:
		return &postproc.MaxSizeCleaner{Property: c.Property, MaxSize: c.MaxSize, Logger: p.Logger}
	}
	return nil
}

// step is one pass over the whole terminology.
type step struct {
	name string
	run  func(context.Context, *termino.Terminology) (int, error)
}

func (p *Pipeline) variantSteps() []step {
	vc, res := p.cfg.Variants, p.resources
	var steps []step
	add := func(enabled bool, name string, run func(context.Context, *termino.Terminology) (int, error)) {
		if enabled {
			steps = append(steps, step{name, run})
		}
	}
	add(vc.Prefixation && len(res.Compost.Prefixes) > 0, "prefixation",
		(&variant.PrefixationDetector{Prefixes: res.Compost.Prefixes, Logger: p.Logger}).Run)
	add(vc.Derivation && len(res.DerivationRules) > 0, "derivation",
		(&variant.DerivationDetector{Rules: res.DerivationRules, Logger: p.Logger}).Run)
	add(vc.Syntactic && len(res.VariationRules) > 0, "syntactic",
		(&variant.SyntacticGatherer{Rules: res.VariationRules, Logger: p.Logger}).Run)
	add(vc.Graphical, "graphical",
		(&variant.GraphicalGatherer{SimilarityThreshold: vc.GraphicalSim, Symmetric: vc.Symmetric, Logger: p.Logger}).Run)
	add(vc.Semantic && len(res.Synonyms) > 0, "semantic",
		(&variant.SemanticAligner{Synonyms: res.Synonyms, Rules: res.VariationRules, Logger: p.Logger}).Run)
	add(vc.Extensions, "extension",
		(&variant.ExtensionDetector{Logger: p.Logger}).Run)
	add(vc.Inference, "inference",
		(&variant.Inferencer{Logger: p.Logger}).Run)
	return steps
}

// Extract ingests docs and runs every configured step.
func (p *Pipeline) Extract(ctx context.Context, docs []ingest.Document) (*Result, error) {
	return p.run(ctx, func(ctx context.Context, ig *ingest.Ingester) (int, error) {
		return ig.Ingest(ctx, docs)
	})
}

// ExtractStream feeds the documents produce provides through an ingestion
// stream, then runs every configured step. The stream is closed when produce
// returns.
func (p *Pipeline) ExtractStream(ctx context.Context, produce func(context.Context, *ingest.Stream) error) (*Result, error) {
	return p.run(ctx, func(ctx context.Context, ig *ingest.Ingester) (int, error) {
		s := ig.Stream(ctx)
		p.logf("stream %s opened", s.ID)
		produceErr := produce(ctx, s)
		s.Close()
		waitErr := s.Wait()
		if dropped := s.Dropped(); dropped > 0 {
			p.logf("Warning: stream %s dropped %d documents", s.ID, dropped)
		}
		if produceErr != nil {
			return s.Recorded(), produceErr
		}
		return s.Recorded(), waitErr
	})
}

func (p *Pipeline) run(ctx context.Context, ingestFn func(context.Context, *ingest.Ingester) (int, error)) (res *Result, err error) {
	start := time.Now()
	store, err := p.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("close store: %w", cerr)
		}
	}()

	name := p.cfg.Name
	if name == "" {
		name = uuid.NewString()
	}
	t := termino.New(name, p.cfg.Lang, store)
	res = &Result{Terminology: t, Relations: make(map[termino.RelationType]int)}

	ig := ingest.NewIngester(t, p.analyzer, p.spotter)
	ig.Workers = p.cfg.Workers
	ig.Logger = p.Logger
	ig.OnProgress = p.OnProgress
	cleaner := p.cleaner()
	if cc := p.cfg.Cleaning; cleaner != nil && (cc.Periodic || cc.SizeTrigger > 0) {
		tr := &postproc.Trigger{Pass: cleaner, SizeBound: cc.SizeTrigger, Logger: p.Logger}
		if cc.Periodic {
			tr.Period = cc.Period
		}
		ig.OnDocument = func(ctx context.Context, processed int) error {
			n, err := tr.Observe(ctx, t, processed)
			res.Cleaned += n
			return err
		}
	}

	res.Occurrences, err = ingestFn(ctx, ig)
	res.Documents = ig.Processed()
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	p.logf("terminology %s: %d documents, %d occurrences, %d terms", name, res.Documents, res.Occurrences, t.Size())

	if err := scoring.ComputeFrequencies(ctx, t); err != nil {
		return nil, err
	}
	specificity := &scoring.Specificity{General: p.resources.General}
	specificity.Run(t)

	if p.splitter != nil {
		if res.Compounds, err = p.splitter.Run(ctx, t); err != nil {
			return nil, err
		}
	}
	for _, s := range p.variantSteps() {
		n, err := s.run(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("%s variants: %w", s.name, err)
		}
		p.logf("%s: %d relations", s.name, n)
	}

	if cleaner != nil {
		n, err := cleaner.Run(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("cleaning: %w", err)
		}
		res.Cleaned += n
	}
	if mc := p.cfg.Merge; mc.Enabled {
		m := &postproc.Merger{MinSimilarity: mc.MinSimilarity, IgnorableLabels: mc.IgnorableLabels, Logger: p.Logger}
		if res.Merged, err = m.Run(ctx, t); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if res.Merged > 0 {
			specificity.Run(t)
		}
	}
	if cc := p.cfg.Context; cc.Enabled {
		c, err := scoring.NewContextualizer(scoring.Contextualizer{
			Scope:             cc.Scope,
			CoTermsType:       cc.CoTermsType,
			MinCoOccFrequency: cc.MinCoOccFrequency,
			Measure:           cc.Measure,
			AllTerms:          cc.AllTerms,
			Logger:            p.Logger,
		})
		if err != nil {
			return nil, err
		}
		if res.Contexts, err = c.Run(ctx, t); err != nil {
			return nil, fmt.Errorf("contexts: %w", err)
		}
	}

	ranker := &postproc.Ranker{Property: p.cfg.Ranking.Property, Descending: p.cfg.Ranking.Descending}
	if res.Ranked, err = ranker.Run(t); err != nil {
		return nil, err
	}
	for _, r := range t.Relations() {
		res.Relations[r.Type()]++
	}
	res.Elapsed = time.Since(start)
	p.logf("terminology %s: %d terms, %d relations in %v", name, t.Size(), t.RelationCount(), res.Elapsed)
	return res, nil
}
