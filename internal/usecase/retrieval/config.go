package retrieval

import (
	"errors"
	"fmt"
	"time"
)

// MaxTiers caps the number of vector search attempts per query.
const MaxTiers = 3

// BoostRule adds Weight to an evidence score when the url contains any of Patterns
// (case-insensitive). A rule applies at most once per url.
type BoostRule struct {
	Name     string
	Patterns []string
	Weight   float64
}

// Scoring holds the base scores of keyword hits and the url boost rules.
type Scoring struct {
	PageScore  float64
	ChunkScore float64
	Boosts     []BoostRule
}

// Config holds retrieval thresholds and limits. Build it once at construction time.
type Config struct {
	FloorTiers   []float64
	CountTiers   []int
	MaxEvidence  int
	PerItemChars int
	TotalChars   int
	LexicalLimit int
	CallTimeout  time.Duration
	Scoring      Scoring
}

// DefaultScoring returns the stock scoring for storefront urls.
func DefaultScoring() Scoring {
	return Scoring{
		PageScore:  0.55,
		ChunkScore: 0.58,
		Boosts: []BoostRule{
			{Name: "sizing", Patterns: []string{"size-guide", "size-chart", "size_chart", "sizing"}, Weight: 0.12},
			{Name: "policy", Patterns: []string{"policy", "policies", "refund", "return", "shipping"}, Weight: 0.10},
			{Name: "help", Patterns: []string{"faq", "help", "support"}, Weight: 0.06},
		},
	}
}

// DefaultConfig returns the stock retrieval configuration.
func DefaultConfig() Config {
	return Config{
		FloorTiers:   []float64{0.68, 0.62, 0.58},
		CountTiers:   []int{10, 12, 15},
		MaxEvidence:  6,
		PerItemChars: 1400,
		TotalChars:   10000,
		LexicalLimit: 5,
		CallTimeout:  8 * time.Second,
		Scoring:      DefaultScoring(),
	}
}

// Validate checks tier shape and limits. Each tier must relax the floor or keep it,
// and grow the count or keep it.
func (c *Config) Validate() error {
	if len(c.FloorTiers) == 0 {
		return errors.New("at least one vector tier is required")
	}
	if len(c.FloorTiers) > MaxTiers {
		return fmt.Errorf("at most %d vector tiers are allowed, got %d", MaxTiers, len(c.FloorTiers))
	}
	if len(c.FloorTiers) != len(c.CountTiers) {
		return fmt.Errorf("floor tiers (%d) and count tiers (%d) differ in length",
			len(c.FloorTiers), len(c.CountTiers))
	}
	for i, f := range c.FloorTiers {
		if f <= 0 || f > 1 {
			return fmt.Errorf("floor tier %d: %v is outside (0, 1]", i+1, f)
		}
		if c.CountTiers[i] <= 0 {
			return fmt.Errorf("count tier %d: must be positive", i+1)
		}
		if i > 0 && f > c.FloorTiers[i-1] {
			return fmt.Errorf("floor tier %d: %v rises above %v", i+1, f, c.FloorTiers[i-1])
		}
		if i > 0 && c.CountTiers[i] < c.CountTiers[i-1] {
			return fmt.Errorf("count tier %d: %d shrinks below %d", i+1, c.CountTiers[i], c.CountTiers[i-1])
		}
	}
	if c.MaxEvidence <= 0 {
		return errors.New("max evidence must be positive")
	}
	if c.PerItemChars <= 0 || c.TotalChars <= 0 {
		return errors.New("context budgets must be positive")
	}
	if c.LexicalLimit < 0 {
		return errors.New("lexical limit must not be negative")
	}
	if c.CallTimeout < 0 {
		return errors.New("call timeout must not be negative")
	}
	for _, b := range c.Scoring.Boosts {
		if len(b.Patterns) == 0 {
			return fmt.Errorf("boost %q: at least one pattern is required", b.Name)
		}
		if b.Weight < 0 {
			return fmt.Errorf("boost %q: weight must not be negative", b.Name)
		}
	}
	return nil
}
