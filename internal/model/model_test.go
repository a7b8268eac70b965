package model_test

import (
	"testing"

	"github.com/raysh454/phishguard/internal/model"
)

func TestLevelForScore_Breakpoints(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score int
		want  model.RiskLevel
	}{
		{0, model.RiskMinimal},
		{9, model.RiskMinimal},
		{10, model.RiskLow},
		{29, model.RiskLow},
		{30, model.RiskMedium},
		{49, model.RiskMedium},
		{50, model.RiskHigh},
		{69, model.RiskHigh},
		{70, model.RiskCritical},
		{100, model.RiskCritical},
	}
	for _, tt := range tests {
		if got := model.LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestLevelForScore_Total(t *testing.T) {
	t.Parallel()
	valid := map[model.RiskLevel]bool{
		model.RiskMinimal: true, model.RiskLow: true, model.RiskMedium: true,
		model.RiskHigh: true, model.RiskCritical: true,
	}
	prev := model.LevelForScore(0)
	order := map[model.RiskLevel]int{
		model.RiskMinimal: 0, model.RiskLow: 1, model.RiskMedium: 2, model.RiskHigh: 3, model.RiskCritical: 4,
	}
	for s := 0; s <= 100; s++ {
		lvl := model.LevelForScore(s)
		if !valid[lvl] {
			t.Fatalf("score %d mapped to unknown level %q", s, lvl)
		}
		if order[lvl] < order[prev] {
			t.Fatalf("level decreased at score %d: %s -> %s", s, prev, lvl)
		}
		prev = lvl
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	if m, err := model.ParseMode(""); err != nil || m != model.ModeEnhanced {
		t.Errorf("empty mode: got %q, %v", m, err)
	}
	if m, err := model.ParseMode("BASIC"); err != nil || m != model.ModeBasic {
		t.Errorf("BASIC: got %q, %v", m, err)
	}
	if _, err := model.ParseMode("paranoid"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestBatchItem_Suspicious(t *testing.T) {
	t.Parallel()
	if (model.BatchItem{Error: "x"}).Suspicious() {
		t.Error("error item must not be suspicious")
	}
	if !(model.BatchItem{Verdict: &model.Verdict{IsSuspicious: true}}).Suspicious() {
		t.Error("suspicious verdict not reported")
	}
	if (model.BatchItem{Assessment: &model.RiskAssessment{IsSuspicious: false}}).Suspicious() {
		t.Error("safe assessment reported as suspicious")
	}
}
