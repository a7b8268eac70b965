package assessor

import (
	"context"

	"github.com/raysh454/phishguard/internal/model"
)

// Assessor is the contract the server and CLI evaluate URLs through.
// Implementations do NOT perform network I/O and are safe for concurrent use.
type Assessor interface {
	// EvaluateBasic returns the binary verdict for one URL.
	EvaluateBasic(ctx context.Context, raw string) (*model.Verdict, error)

	// EvaluateEnhanced returns the scored assessment for one URL.
	EvaluateEnhanced(ctx context.Context, raw string) (*model.RiskAssessment, error)

	// EvaluateBatch evaluates urls sequentially, preserving input order.
	EvaluateBatch(ctx context.Context, urls []string, mode model.Mode) []model.BatchItem

	// Config returns the active configuration. Callers must not modify it.
	Config() Config

	// Close releases any resources held by the assessor.
	Close() error
}
