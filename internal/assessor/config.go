package assessor

import (
	"errors"
	"fmt"
)

// ErrNilConfig is returned by constructors handed a nil *Config.
var ErrNilConfig = errors.New("assessor: nil config")

// Weights are the enhanced-mode score contributions of each rule.
type Weights struct {
	Shortener              int `json:"shortener"`
	SuspiciousCharacter    int `json:"suspicious_character"`
	SuspiciousCharacterCap int `json:"suspicious_character_cap"`
	ExcessivePeriods       int `json:"excessive_periods"`
	MultiSegmentDomain     int `json:"multi_segment_domain"`
	IPLiteral              int `json:"ip_literal"`
	Typosquatting          int `json:"typosquatting"`
	UnparseableHost        int `json:"unparseable_host"`
	SuspiciousTLD          int `json:"suspicious_tld"`
	InsecureScheme         int `json:"insecure_scheme"`
	RedirectParameter      int `json:"redirect_parameter"`
	RedirectParameterCap   int `json:"redirect_parameter_cap"`
	LongHost               int `json:"long_host"`
	IDNHost                int `json:"idn_host"`
	EncodedCharacters      int `json:"encoded_characters"`
	DeepPath               int `json:"deep_path"`
	DigitsInHost           int `json:"digits_in_host"`
	HyphenInHost           int `json:"hyphen_in_host"`
	ShortHost              int `json:"short_host"`
	MixedAlphanumeric      int `json:"mixed_alphanumeric"`
	MultiHyphen            int `json:"multi_hyphen"`
}

// DefaultWeights returns the built-in weights.
func DefaultWeights() Weights {
	return Weights{
		Shortener:              20,
		SuspiciousCharacter:    10,
		SuspiciousCharacterCap: 30,
		ExcessivePeriods:       15,
		MultiSegmentDomain:     15,
		IPLiteral:              20,
		Typosquatting:          25,
		UnparseableHost:        20,
		SuspiciousTLD:          15,
		InsecureScheme:         10,
		RedirectParameter:      10,
		RedirectParameterCap:   20,
		LongHost:               10,
		IDNHost:                15,
		EncodedCharacters:      5,
		DeepPath:               5,
		DigitsInHost:           5,
		HyphenInHost:           5,
		ShortHost:              15,
		MixedAlphanumeric:      10,
		MultiHyphen:            10,
	}
}

// Config holds the immutable settings shared by every evaluation.
type Config struct {
	// ScoringVersion is reported alongside results so scores can be compared across releases.
	ScoringVersion string `json:"scoring_version"`

	Tables  Tables  `json:"tables"`
	Weights Weights `json:"weights"`

	// TyposquatThreshold is the minimum similarity ratio, in (0,1], that flags typosquatting.
	TyposquatThreshold float64 `json:"typosquat_threshold"`

	// SuspiciousThreshold is the enhanced score at which IsSuspicious is set.
	SuspiciousThreshold int `json:"suspicious_threshold"`

	// Structural limits used by the host and path rules.
	MaxPeriods    int `json:"max_periods"`
	MinSegments   int `json:"min_segments"`
	MaxHostLength int `json:"max_host_length"`
	MinHostLength int `json:"min_host_length"`
	MaxPathDepth  int `json:"max_path_depth"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		ScoringVersion:      "v1",
		Tables:              DefaultTables(),
		Weights:             DefaultWeights(),
		TyposquatThreshold:  0.8,
		SuspiciousThreshold: 30,
		MaxPeriods:          3,
		MinSegments:         4,
		MaxHostLength:       50,
		MinHostLength:       4,
		MaxPathDepth:        5,
	}
}

// Validate rejects thresholds outside their meaningful range.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.TyposquatThreshold <= 0 || c.TyposquatThreshold > 1 {
		return fmt.Errorf("assessor: typosquat threshold %v out of range (0,1]", c.TyposquatThreshold)
	}
	if c.SuspiciousThreshold < 0 || c.SuspiciousThreshold > 100 {
		return fmt.Errorf("assessor: suspicious threshold %d out of range [0,100]", c.SuspiciousThreshold)
	}
	if c.MaxPeriods < 0 || c.MinSegments < 1 || c.MaxHostLength < 1 || c.MinHostLength < 0 || c.MaxPathDepth < 0 {
		return errors.New("assessor: structural limits must be positive")
	}
	return nil
}
