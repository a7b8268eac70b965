// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// Count returns how many messages were recorded at each level.
func (l *DummyLogger) Count() (debug, info, warn, errs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Debugs), len(l.Infos), len(l.Warns), len(l.Errors)
}

// ─── Assessor ──────────────────────────────────────────────────────────

// DummyAssessor implements assessor.Assessor. It delegates to the real
// package-level evaluators with the default config and records every URL
// it was asked about. Set Err to make single-URL calls fail.
type DummyAssessor struct {
	mu     sync.Mutex
	Calls  []string
	Err    error
	Closed bool
}

var _ assessor.Assessor = (*DummyAssessor)(nil)

func (d *DummyAssessor) record(urls ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, urls...)
}

func (d *DummyAssessor) EvaluateBasic(_ context.Context, raw string) (*model.Verdict, error) {
	d.record(raw)
	if d.Err != nil {
		return nil, d.Err
	}
	return assessor.EvaluateBasic(nil, raw)
}

func (d *DummyAssessor) EvaluateEnhanced(_ context.Context, raw string) (*model.RiskAssessment, error) {
	d.record(raw)
	if d.Err != nil {
		return nil, d.Err
	}
	return assessor.EvaluateEnhanced(nil, raw)
}

func (d *DummyAssessor) EvaluateBatch(_ context.Context, urls []string, mode model.Mode) []model.BatchItem {
	d.record(urls...)
	return assessor.EvaluateBatch(nil, urls, mode)
}

func (d *DummyAssessor) Config() assessor.Config { return *assessor.DefaultConfig() }

func (d *DummyAssessor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// CallCount returns the number of URLs evaluated so far.
func (d *DummyAssessor) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}
