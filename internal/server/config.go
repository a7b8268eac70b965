package server

import (
	"time"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	ReadTimeout time.Duration

	// Assessor evaluates URLs. Nil builds a HeuristicsAssessor with the default config.
	Assessor assessor.Assessor

	Logger logging.Logger

	// MaxBatch caps the number of URLs one batch or extract request may evaluate.
	MaxBatch int

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

// ShutdownTimeout bounds how long Serve waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

const (
	defaultMaxBatch     = 1000
	defaultMaxBodyBytes = 1 << 20
	defaultReadTimeout  = 15 * time.Second
)
