package ports

import (
	"context"
	"time"

	"github.com/ArielDRighi/tarot/internal/domain"
)

// TextGenerator is a text-generation backend. It makes exactly one request
// per call and returns the generated text, or an error.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string, cfg domain.GenerationConfig) (string, error)
}

// Generation outcomes reported to a GenerationObserver.
const (
	OutcomeSuccess      = "success"
	OutcomeUnconfigured = "unconfigured"
	OutcomeFailed       = "failed"
	OutcomeEmpty        = "empty"
)

// GenerationObserver records generation outcomes for monitoring.
type GenerationObserver interface {
	ObserveGeneration(outcome string, d time.Duration)
	ObserveAuditFailure()
}
