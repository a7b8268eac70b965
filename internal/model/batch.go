package model

import (
	"fmt"
	"strings"
)

// Mode selects which evaluator a batch or API call runs.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeEnhanced Mode = "enhanced"
)

// ParseMode accepts "basic" or "enhanced" (case-insensitive). Empty means enhanced.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeEnhanced:
		return ModeEnhanced, nil
	case ModeBasic:
		return ModeBasic, nil
	}
	return "", fmt.Errorf("unknown mode %q (want basic or enhanced)", s)
}

// BatchItem is one entry of a batch evaluation. Exactly one of Verdict,
// Assessment or Error is set.
type BatchItem struct {
	Index      int             `json:"index"`
	Input      string          `json:"input"`
	Verdict    *Verdict        `json:"verdict,omitempty"`
	Assessment *RiskAssessment `json:"assessment,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Suspicious reports whether the item evaluated successfully and was flagged.
func (b BatchItem) Suspicious() bool {
	switch {
	case b.Verdict != nil:
		return b.Verdict.IsSuspicious
	case b.Assessment != nil:
		return b.Assessment.IsSuspicious
	}
	return false
}
