package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/japaniel/termgraph/pkg/compost"
	"github.com/japaniel/termgraph/pkg/postproc"
	"github.com/japaniel/termgraph/pkg/resource"
	"github.com/japaniel/termgraph/pkg/scoring"
	"github.com/japaniel/termgraph/pkg/termino"
	"github.com/japaniel/termgraph/pkg/variant"
)

// Environment variables that override the store section.
const (
	EnvStoreDriver = "TERMGRAPH_STORE_DRIVER"
	EnvStoreDSN    = "TERMGRAPH_STORE_DSN"
)

// MemoryDriver keeps occurrences in memory. It is the default store.
const MemoryDriver = "memory"

var storeDrivers = map[string]bool{MemoryDriver: true, "sqlite3": true, "pgx": true, "postgres": true}

// Config is the full description of one extraction run. Build it with
// Defaults, optionally overlay a YAML file with LoadConfig, and check it with
// Validate before processing any document.
type Config struct {
	// Name of the terminology. A random one is generated when empty.
	Name string `yaml:"name"`
	Lang string `yaml:"lang"`
	// Patterns are the label sequences the spotter accepts, e.g. "A N".
	Patterns []string `yaml:"patterns"`
	// StopWords are lemmas no candidate may contain.
	StopWords []string `yaml:"stopWords"`
	Workers   int      `yaml:"workers"`

	Store     StoreConfig    `yaml:"store"`
	Resources ResourceConfig `yaml:"resources"`
	Compost   CompostConfig  `yaml:"compost"`
	Variants  VariantConfig  `yaml:"variants"`
	Context   ContextConfig  `yaml:"context"`
	Cleaning  CleaningConfig `yaml:"cleaning"`
	Ranking   RankingConfig  `yaml:"ranking"`
	Merge     MergeConfig    `yaml:"merge"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// BatchSize and CacheSize tune the SQL store; zero keeps its defaults.
	BatchSize int `yaml:"batchSize"`
	CacheSize int `yaml:"cacheSize"`
}

// ResourceConfig locates the linguistic resources. An empty locator disables
// an optional resource.
type ResourceConfig struct {
	Lexicon         resource.Locator `yaml:"lexicon"`
	Prefixes        resource.Locator `yaml:"prefixes"`
	Suffixes        resource.Locator `yaml:"suffixes"`
	StopSegments    resource.Locator `yaml:"stopSegments"`
	Inflections     resource.Locator `yaml:"inflections"`
	Transformations resource.Locator `yaml:"transformations"`
	Compositions    resource.Locator `yaml:"compositions"`
	GeneralLanguage resource.Locator `yaml:"generalLanguage"`
	Synonyms        resource.Locator `yaml:"synonyms"`
	VariationRules  resource.Locator `yaml:"variationRules"`
	DerivationRules resource.Locator `yaml:"derivationRules"`
	// JMdict is the path of a JMdict-simplified JSON file. When set its
	// headwords replace the lexicon and its glosses feed the glossary.
	JMdict string `yaml:"jmdict"`
}

type CompostConfig struct {
	Enabled        bool `yaml:"enabled"`
	compost.Config `yaml:",inline"`
}

type VariantConfig struct {
	Graphical    bool    `yaml:"graphical"`
	GraphicalSim float64 `yaml:"graphicalSimilarity"`
	Symmetric    bool    `yaml:"symmetric"`
	Syntactic    bool    `yaml:"syntactic"`
	Semantic     bool    `yaml:"semantic"`
	Extensions   bool    `yaml:"extensions"`
	Prefixation  bool    `yaml:"prefixation"`
	Derivation   bool    `yaml:"derivation"`
	Inference    bool    `yaml:"inference"`
}

type ContextConfig struct {
	Enabled           bool                `yaml:"enabled"`
	Scope             int                 `yaml:"scope"`
	CoTermsType       scoring.CoTermsType `yaml:"coTermsType"`
	MinCoOccFrequency int                 `yaml:"minCoOccFrequency"`
	Measure           string              `yaml:"measure"`
	AllTerms          bool                `yaml:"allTerms"`
}

// CleaningConfig selects at most one filter: a threshold, a top-N cut or a
// maximum size. Periodic and SizeTrigger rerun the filter during ingestion.
type CleaningConfig struct {
	Property     termino.TermProperty  `yaml:"property"`
	Threshold    *float64              `yaml:"threshold"`
	TopN         int                   `yaml:"topN"`
	MaxSize      int                   `yaml:"maxSize"`
	Periodic     bool                  `yaml:"periodic"`
	Period       int                   `yaml:"period"`
	SizeTrigger  int                   `yaml:"sizeTrigger"`
	KeepVariants bool                  `yaml:"keepVariants"`
	VariantScope postproc.VariantScope `yaml:"variantScope"`
}

// Enabled reports whether a filter is selected.
func (c CleaningConfig) Enabled() bool {
	return c.Threshold != nil || c.TopN > 0 || c.MaxSize > 0
}

type RankingConfig struct {
	Property   termino.TermProperty `yaml:"property"`
	Descending bool                 `yaml:"descending"`
}

type MergeConfig struct {
	Enabled         bool     `yaml:"enabled"`
	MinSimilarity   float64  `yaml:"minSimilarity"`
	IgnorableLabels []string `yaml:"ignorableLabels"`
}

var defaultPatterns = map[string][]string{
	"en": {"N", "A N", "N N", "N P N", "A N N", "N N N", "A A N"},
	"ja": {"N", "N N", "A N", "N P N", "N N N"},
}

func builtin(lang, name string) resource.Locator {
	return resource.BuiltinLocator(lang + "/" + name)
}

// Defaults returns the configuration used when nothing is overridden. Resources
// point at the embedded files of lang.
func Defaults(lang string) Config {
	patterns, ok := defaultPatterns[lang]
	if !ok {
		patterns = defaultPatterns["en"]
	}
	merger := postproc.DefaultMerger()
	return Config{
		Lang:     lang,
		Patterns: append([]string(nil), patterns...),
		Workers:  4,
		Store:    StoreConfig{Driver: MemoryDriver},
		Resources: ResourceConfig{
			Lexicon:         builtin(lang, "lexicon.txt"),
			Prefixes:        builtin(lang, "prefixes.txt"),
			Suffixes:        builtin(lang, "suffixes.txt"),
			StopSegments:    builtin(lang, "stop-segments.txt"),
			Inflections:     builtin(lang, "inflection-rules.tsv"),
			Compositions:    builtin(lang, "compositions.tsv"),
			GeneralLanguage: builtin(lang, "general-language.tsv"),
			Synonyms:        builtin(lang, "synonyms.tsv"),
			VariationRules:  builtin(lang, "variation-rules.yaml"),
			DerivationRules: builtin(lang, "derivation-rules.yaml"),
		},
		Compost: CompostConfig{Enabled: true, Config: compost.DefaultConfig(lang)},
		Variants: VariantConfig{
			Graphical:    true,
			GraphicalSim: variant.DefaultGraphicalThreshold,
			Syntactic:    true,
			Semantic:     true,
			Extensions:   true,
			Prefixation:  true,
			Derivation:   true,
			Inference:    true,
		},
		Context: ContextConfig{
			Scope:             scoring.DefaultScope,
			CoTermsType:       scoring.SingleWordCoTerms,
			MinCoOccFrequency: 1,
			Measure:           scoring.DefaultMeasure,
		},
		Cleaning: CleaningConfig{Property: termino.Specificity},
		Ranking:  RankingConfig{Property: termino.Specificity, Descending: true},
		Merge: MergeConfig{
			Enabled:         true,
			MinSimilarity:   merger.MinSimilarity,
			IgnorableLabels: merger.IgnorableLabels,
		},
	}
}

// LoadConfig reads a YAML file over the defaults of the language it names.
// Unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML document over the defaults of its language
// ("en" when the document names none).
func ParseConfig(data []byte) (Config, error) {
	var probe struct {
		Lang string `yaml:"lang"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, fmt.Errorf("%w: %v", termino.ErrConfiguration, err)
	}
	if probe.Lang == "" {
		probe.Lang = "en"
	}
	cfg := Defaults(probe.Lang)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", termino.ErrConfiguration, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the store from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStoreDriver); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		c.Store.DSN = v
	}
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), termino.ErrConfiguration)
}

// Validate checks every section and that every configured resource exists.
// All failures wrap termino.ErrConfiguration.
func (c Config) Validate() error {
	if c.Lang == "" {
		return configErr("missing lang")
	}
	if _, err := language.Parse(c.Lang); err != nil {
		return configErr("lang %q: %v", c.Lang, err)
	}
	if len(c.Patterns) == 0 {
		return configErr("no spotting pattern")
	}
	if c.Workers < 1 {
		return configErr("workers must be positive, got %d", c.Workers)
	}
	if !storeDrivers[c.Store.Driver] {
		return configErr("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver != MemoryDriver && c.Store.DSN == "" {
		return configErr("store driver %s needs a dsn", c.Store.Driver)
	}
	if c.Compost.Enabled {
		if err := c.Compost.Config.Validate(); err != nil {
			return err
		}
	}
	if s := c.Variants.GraphicalSim; c.Variants.Graphical && (s <= 0 || s > 1 || math.IsNaN(s)) {
		return configErr("graphical similarity %v out of (0, 1]", s)
	}
	if c.Context.Enabled {
		if c.Context.Scope < 1 {
			return configErr("context scope must be positive, got %d", c.Context.Scope)
		}
		if _, err := scoring.MeasureByName(c.Context.Measure); err != nil {
			return err
		}
	}
	if err := c.Cleaning.validate(); err != nil {
		return err
	}
	if err := (&postproc.Ranker{Property: c.Ranking.Property}).Validate(); err != nil {
		return err
	}
	if c.Merge.Enabled && (c.Merge.MinSimilarity <= 0 || c.Merge.MinSimilarity > 1) {
		return configErr("merge similarity %v out of (0, 1]", c.Merge.MinSimilarity)
	}
	return c.Resources.validate()
}

func (c CleaningConfig) validate() error {
	selected := 0
	if c.Threshold != nil {
		selected++
	}
	if c.TopN > 0 {
		selected++
	}
	if c.MaxSize > 0 {
		selected++
	}
	switch {
	case c.TopN < 0 || c.MaxSize < 0:
		return configErr("cleaning topN and maxSize must not be negative")
	case selected > 1:
		return configErr("cleaning selects more than one of threshold, topN and maxSize")
	case c.Periodic && c.Period < 1:
		return configErr("periodic cleaning needs a positive period")
	case (c.Periodic || c.SizeTrigger > 0) && selected == 0:
		return configErr("triggered cleaning needs a threshold, topN or maxSize")
	case c.SizeTrigger < 0:
		return configErr("cleaning sizeTrigger must not be negative")
	case (c.Periodic || c.SizeTrigger > 0) && !maintainedDuringIngest(c.Property):
		return configErr("triggered cleaning on %s: only frequency and size are known while documents are ingested", c.Property)
	}
	return nil
}

// maintainedDuringIngest reports the term properties that are up to date
// before the end of ingestion.
func maintainedDuringIngest(p termino.TermProperty) bool {
	return p == termino.Frequency || p == termino.Size
}

func (r ResourceConfig) locators() map[string]resource.Locator {
	return map[string]resource.Locator{
		"lexicon":         r.Lexicon,
		"prefixes":        r.Prefixes,
		"suffixes":        r.Suffixes,
		"stopSegments":    r.StopSegments,
		"inflections":     r.Inflections,
		"transformations": r.Transformations,
		"compositions":    r.Compositions,
		"generalLanguage": r.GeneralLanguage,
		"synonyms":        r.Synonyms,
		"variationRules":  r.VariationRules,
		"derivationRules": r.DerivationRules,
	}
}

func (r ResourceConfig) validate() error {
	for name, l := range r.locators() {
		if !configured(l) {
			continue
		}
		if err := resource.Exists(l); err != nil {
			return configErr("resource %s: %v", name, err)
		}
	}
	if r.JMdict != "" {
		if _, err := os.Stat(r.JMdict); err != nil {
			return configErr("jmdict: %v", err)
		}
	}
	return nil
}

func configured(l resource.Locator) bool { return l.Path != "" }
