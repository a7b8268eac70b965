package assessor

import (
	"strings"

	"github.com/raysh454/phishguard/internal/model"
	"github.com/raysh454/phishguard/internal/urltools"
)

const (
	warningMessage = "WARNING: This might be a phishing URL!"
	safeMessage    = "Looks safe (based on simple rules)."
)

// EvaluateBasic runs the basic rules against raw and returns a binary
// verdict. It fails only with urltools.ErrInvalidInput (wrapped) for empty
// input. A nil cfg uses DefaultConfig.
func EvaluateBasic(cfg *Config, raw string) (*model.Verdict, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	u, err := urltools.NormalizeAndParse(raw)
	if err != nil {
		return nil, err
	}

	v := &model.Verdict{URL: u.Raw, TriggeredChecks: []model.CheckResult{}, Components: u}
	var names []string
	for _, r := range ruleSet {
		if !r.Basic {
			continue
		}
		hits, msg := r.match(cfg, u)
		if hits == 0 {
			continue
		}
		v.TriggeredChecks = append(v.TriggeredChecks, model.CheckResult{
			ID:        r.ID,
			Name:      r.Name,
			Triggered: true,
			Message:   msg,
		})
		names = append(names, r.Name)
	}

	v.IsSuspicious = len(names) > 0
	if v.IsSuspicious {
		v.Message = warningMessage + " (triggered: " + strings.Join(names, ", ") + ")"
	} else {
		v.Message = safeMessage
	}
	return v, nil
}

// EvaluateEnhanced runs every rule against raw and aggregates the weights
// of the triggered ones into a score clamped to [0,100].
func EvaluateEnhanced(cfg *Config, raw string) (*model.RiskAssessment, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	u, err := urltools.NormalizeAndParse(raw)
	if err != nil {
		return nil, err
	}

	a := &model.RiskAssessment{
		URL:             u.Raw,
		TriggeredChecks: []model.CheckResult{},
		Recommendations: []string{},
		Components:      u,
	}
	total := 0
	for _, r := range ruleSet {
		hits, msg := r.match(cfg, u)
		if hits == 0 {
			continue
		}
		w := r.score(cfg.Weights, hits)
		total += w
		a.TriggeredChecks = append(a.TriggeredChecks, model.CheckResult{
			ID:        r.ID,
			Name:      r.Name,
			Triggered: true,
			Weight:    w,
			Message:   msg,
		})
		a.Recommendations = append(a.Recommendations, r.Recommendation)
	}

	a.Score = clampScore(total)
	a.Level = model.LevelForScore(a.Score)
	a.IsSuspicious = a.Score >= cfg.SuspiciousThreshold
	if a.Score >= 50 {
		a.Recommendations = append(a.Recommendations, closingRecommendation)
	}
	return a, nil
}

// EvaluateBatch evaluates urls in order with the evaluator selected by
// mode (anything other than basic runs the enhanced one). A failing item
// records its error and the batch continues.
func EvaluateBatch(cfg *Config, urls []string, mode model.Mode) []model.BatchItem {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	items := make([]model.BatchItem, 0, len(urls))
	for i, raw := range urls {
		items = append(items, evaluateItem(cfg, i, raw, mode))
	}
	return items
}

func evaluateItem(cfg *Config, i int, raw string, mode model.Mode) model.BatchItem {
	item := model.BatchItem{Index: i, Input: raw}
	if mode == model.ModeBasic {
		v, err := EvaluateBasic(cfg, raw)
		if err != nil {
			item.Error = err.Error()
			return item
		}
		item.Verdict = v
		return item
	}
	a, err := EvaluateEnhanced(cfg, raw)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Assessment = a
	return item
}

func clampScore(s int) int {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
