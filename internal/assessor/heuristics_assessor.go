package assessor

import (
	"context"
	"errors"

	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
)

var _ Assessor = (*HeuristicsAssessor)(nil)

// HeuristicsAssessor binds a validated Config to a logger and exposes the
// package-level evaluators behind the Assessor interface.
type HeuristicsAssessor struct {
	cfg    *Config
	logger logging.Logger
}

// NewHeuristicsAssessor validates cfg and constructs the assessor.
func NewHeuristicsAssessor(cfg *Config, logger logging.Logger) (*HeuristicsAssessor, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if logger == nil {
		return nil, errors.New("assessor: nil logger")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := logger.With(logging.Field{Key: "component", Value: "heuristics-assessor"})
	inst := &HeuristicsAssessor{
		cfg:    cfg,
		logger: l,
	}

	l.Info("heuristics assessor constructed",
		logging.Field{Key: "scoring_version", Value: cfg.ScoringVersion},
		logging.Field{Key: "reference_domains", Value: len(cfg.Tables.ReferenceDomains)})

	return inst, nil
}

func (h *HeuristicsAssessor) EvaluateBasic(ctx context.Context, raw string) (*model.Verdict, error) {
	v, err := EvaluateBasic(h.cfg, raw)
	if err != nil {
		h.logger.Debug("basic evaluation rejected input", logging.Field{Key: "error", Value: err})
		return nil, err
	}
	h.logger.Debug("basic evaluation",
		logging.Field{Key: "url", Value: v.URL},
		logging.Field{Key: "suspicious", Value: v.IsSuspicious},
		logging.Field{Key: "triggered", Value: len(v.TriggeredChecks)})
	return v, nil
}

func (h *HeuristicsAssessor) EvaluateEnhanced(ctx context.Context, raw string) (*model.RiskAssessment, error) {
	a, err := EvaluateEnhanced(h.cfg, raw)
	if err != nil {
		h.logger.Debug("enhanced evaluation rejected input", logging.Field{Key: "error", Value: err})
		return nil, err
	}
	h.logger.Debug("enhanced evaluation",
		logging.Field{Key: "url", Value: a.URL},
		logging.Field{Key: "score", Value: a.Score},
		logging.Field{Key: "level", Value: a.Level})
	return a, nil
}

// EvaluateBatch stops evaluating once ctx is done; the remaining items
// carry the context error.
func (h *HeuristicsAssessor) EvaluateBatch(ctx context.Context, urls []string, mode model.Mode) []model.BatchItem {
	items := make([]model.BatchItem, 0, len(urls))
	suspicious, failed := 0, 0
	for i, raw := range urls {
		var item model.BatchItem
		if err := ctx.Err(); err != nil {
			item = model.BatchItem{Index: i, Input: raw, Error: err.Error()}
		} else {
			item = evaluateItem(h.cfg, i, raw, mode)
		}
		if item.Error != "" {
			failed++
		} else if item.Suspicious() {
			suspicious++
		}
		items = append(items, item)
	}

	h.logger.Info("batch evaluated",
		logging.Field{Key: "mode", Value: string(mode)},
		logging.Field{Key: "count", Value: len(items)},
		logging.Field{Key: "suspicious", Value: suspicious},
		logging.Field{Key: "failed", Value: failed})
	return items
}

func (h *HeuristicsAssessor) Config() Config {
	return *h.cfg
}

// Close is a no-op; the assessor holds no resources beyond its config.
func (h *HeuristicsAssessor) Close() error {
	h.logger.Info("heuristics assessor closed")
	return nil
}
