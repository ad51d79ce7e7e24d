package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/ports"
	"github.com/ArielDRighi/tarot/internal/prompt"
)

const tracerName = "github.com/ArielDRighi/tarot/internal/app"

// InterpretationService generates reading interpretations through a
// text-generation backend. With a nil generator it runs degraded and every
// generation fails with domain.ErrServiceUnavailable.
type InterpretationService struct {
	generator ports.TextGenerator
	audit     ports.InterpretationRepository
	spreads   ports.SpreadRepository
	observer  ports.GenerationObserver
	cfg       domain.GenerationConfig
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewInterpretationService(
	gen ports.TextGenerator,
	audit ports.InterpretationRepository,
	spreads ports.SpreadRepository,
	observer ports.GenerationObserver,
	cfg domain.GenerationConfig,
	logger *slog.Logger,
) *InterpretationService {
	return &InterpretationService{
		generator: gen,
		audit:     audit,
		spreads:   spreads,
		observer:  observer,
		cfg:       cfg,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Available reports whether a backend is configured.
func (s *InterpretationService) Available() bool {
	return s.generator != nil
}

// Generate renders the prompt for placements and returns the generated text.
func (s *InterpretationService) Generate(ctx context.Context, placements []domain.Placement, question string, spread *domain.Spread) (string, error) {
	return s.generate(ctx, placements, question, spread, nil)
}

// Regenerate produces a fresh interpretation for an existing reading. The
// spread is context only; if it cannot be resolved generation proceeds
// without it. The reading itself is not modified.
func (s *InterpretationService) Regenerate(ctx context.Context, r domain.Reading) (string, error) {
	placements, err := r.Placements()
	if err != nil {
		return "", err
	}

	var spread *domain.Spread
	if r.SpreadID != nil {
		sp, err := s.spreads.FindSpread(ctx, *r.SpreadID)
		if err != nil {
			s.logger.WarnContext(ctx, "spread unavailable, regenerating without it",
				"reading_id", r.ID, "spread_id", *r.SpreadID, "error", err)
		} else {
			spread = &sp
		}
	}

	readingID := r.ID
	return s.generate(ctx, placements, r.Question, spread, &readingID)
}

func (s *InterpretationService) generate(ctx context.Context, placements []domain.Placement, question string, spread *domain.Spread, readingID *uint) (string, error) {
	start := time.Now()

	if s.generator == nil {
		s.observe(ports.OutcomeUnconfigured, start)
		return "", fmt.Errorf("%w: no text-generation backend configured", domain.ErrServiceUnavailable)
	}

	ctx, span := s.tracer.Start(ctx, "interpretation.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.cfg.Model),
		attribute.Int("tarot.cards", len(placements)),
	)

	text, err := s.generator.Complete(ctx, prompt.SystemInstruction, prompt.Render(placements, question, spread), s.cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.observe(ports.OutcomeFailed, start)
		s.logger.ErrorContext(ctx, "interpretation generation failed", "model", s.cfg.Model, "error", err)
		return "", fmt.Errorf("%w: generation failed", domain.ErrServiceUnavailable)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		span.SetStatus(codes.Error, "empty response")
		s.observe(ports.OutcomeEmpty, start)
		s.logger.ErrorContext(ctx, "interpretation generation returned no text", "model", s.cfg.Model)
		return "", fmt.Errorf("%w: generation returned no text", domain.ErrServiceUnavailable)
	}

	s.observe(ports.OutcomeSuccess, start)
	s.recordAudit(ctx, &domain.Interpretation{
		ReadingID: readingID,
		Content:   text,
		ModelUsed: s.cfg.Model,
		Config:    s.cfg,
	})
	return text, nil
}

// recordAudit stores the audit record on a best-effort basis. Failures are
// logged and counted but never returned: the text is already generated.
func (s *InterpretationService) recordAudit(ctx context.Context, rec *domain.Interpretation) {
	if err := s.audit.SaveInterpretation(ctx, rec); err != nil {
		if s.observer != nil {
			s.observer.ObserveAuditFailure()
		}
		attrs := []any{"model", rec.ModelUsed, "error", err}
		if rec.ReadingID != nil {
			attrs = append(attrs, "reading_id", *rec.ReadingID)
		}
		s.logger.ErrorContext(ctx, "failed to save interpretation audit record", attrs...)
	}
}

func (s *InterpretationService) observe(outcome string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveGeneration(outcome, time.Since(start))
	}
}
