package compost

import (
	"fmt"
	"math"

	"github.com/japaniel/termgraph/pkg/termino"
)

// Config holds the splitter weights and limits. Alpha, Beta, Gamma and Delta
// weigh the linguistic fit, frequency, component-count and similarity parts of
// the score and must sum to 1.
type Config struct {
	Alpha                      float64 `yaml:"alpha"`
	Beta                       float64 `yaml:"beta"`
	Gamma                      float64 `yaml:"gamma"`
	Delta                      float64 `yaml:"delta"`
	ScoreThreshold             float64 `yaml:"scoreThreshold"`
	MinComponentSize           int     `yaml:"minComponentSize"`
	MaxComponentNum            int     `yaml:"maxComponentNum"`
	SegmentSimilarityThreshold float64 `yaml:"segmentSimilarityThreshold"`
}

const sumTolerance = 1e-6

// DefaultConfig returns the per-language defaults.
func DefaultConfig(lang string) Config {
	c := Config{
		Alpha:                      0.5,
		Beta:                       0.1,
		Gamma:                      0.1,
		Delta:                      0.3,
		ScoreThreshold:             0.7,
		MinComponentSize:           3,
		MaxComponentNum:            3,
		SegmentSimilarityThreshold: 1,
	}
	if lang == "ja" {
		// Kanji components are one or two characters long.
		c.MinComponentSize = 1
		c.ScoreThreshold = 0.6
	}
	return c
}

// Validate checks the coefficient sum and the limits.
func (c Config) Validate() error {
	for name, v := range map[string]float64{"alpha": c.Alpha, "beta": c.Beta, "gamma": c.Gamma, "delta": c.Delta} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("compost %s = %v: %w", name, v, termino.ErrConfiguration)
		}
	}
	if sum := c.Alpha + c.Beta + c.Gamma + c.Delta; math.Abs(sum-1) > sumTolerance {
		return fmt.Errorf("compost coefficients sum to %v, expected 1: %w", sum, termino.ErrConfiguration)
	}
	if c.MinComponentSize < 1 {
		return fmt.Errorf("compost minComponentSize must be positive: %w", termino.ErrConfiguration)
	}
	if c.MaxComponentNum < 1 {
		return fmt.Errorf("compost maxComponentNum must be positive: %w", termino.ErrConfiguration)
	}
	if c.SegmentSimilarityThreshold <= 0 || c.SegmentSimilarityThreshold > 1 {
		return fmt.Errorf("compost segmentSimilarityThreshold must be in (0,1]: %w", termino.ErrConfiguration)
	}
	return nil
}
