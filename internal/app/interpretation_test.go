package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielDRighi/tarot/internal/app"
	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/ports"
)

func placementsFrom(t *testing.T, store *memStore) []domain.Placement {
	t.Helper()
	placements, err := domain.PairCards(store.cards, []domain.CardPosition{
		{CardID: 1, Position: "Past"},
		{CardID: 2, Position: "Present", IsReversed: true},
		{CardID: 3, Position: "Future"},
	})
	require.NoError(t, err)
	return placements
}

func TestGenerate_Unconfigured(t *testing.T) {
	store := seededStore()
	obs := &countingObserver{}
	svc := app.NewInterpretationService(nil, store, store, obs, testConfig(), discardLogger())

	require.False(t, svc.Available())
	for range 3 {
		_, err := svc.Generate(context.Background(), placementsFrom(t, store), "q", nil)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	}
	assert.Empty(t, store.interpretations, "degraded mode must not write audit records")
	assert.Equal(t, []string{ports.OutcomeUnconfigured, ports.OutcomeUnconfigured, ports.OutcomeUnconfigured}, obs.outcomes)
}

func TestGenerate_Success(t *testing.T) {
	store := seededStore()
	gen := &fakeGenerator{text: "  The cards speak of change.  "}
	obs := &countingObserver{}
	svc := app.NewInterpretationService(gen, store, store, obs, testConfig(), discardLogger())

	spread := store.spreads[1]
	text, err := svc.Generate(context.Background(), placementsFrom(t, store), "Will I get the job?", &spread)
	require.NoError(t, err)

	assert.Equal(t, "The cards speak of change.", text)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, testConfig(), gen.lastCfg)
	assert.NotEmpty(t, gen.system)
	assert.Contains(t, gen.user, "Will I get the job?")
	assert.Contains(t, gen.user, "Manipulation")
	assert.NotContains(t, gen.user, "Manifestation")
	assert.Contains(t, gen.user, "Past, Present, Future")

	require.Len(t, store.interpretations, 1)
	rec := store.interpretations[0]
	assert.Equal(t, "The cards speak of change.", rec.Content)
	assert.Equal(t, "test-model", rec.ModelUsed)
	assert.Equal(t, testConfig(), rec.Config)
	assert.Nil(t, rec.ReadingID)
	assert.Equal(t, []string{ports.OutcomeSuccess}, obs.outcomes)
}

func TestGenerate_BackendError(t *testing.T) {
	store := seededStore()
	gen := &fakeGenerator{err: errBoom}
	svc := app.NewInterpretationService(gen, store, store, nil, testConfig(), discardLogger())

	text, err := svc.Generate(context.Background(), placementsFrom(t, store), "", nil)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.NotErrorIs(t, err, errBoom, "upstream detail must not leak to callers")
	assert.Empty(t, text)
	assert.Empty(t, store.interpretations)
}

func TestGenerate_EmptyText(t *testing.T) {
	store := seededStore()
	gen := &fakeGenerator{text: " \n "}
	obs := &countingObserver{}
	svc := app.NewInterpretationService(gen, store, store, obs, testConfig(), discardLogger())

	_, err := svc.Generate(context.Background(), placementsFrom(t, store), "", nil)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Empty(t, store.interpretations)
	assert.Equal(t, []string{ports.OutcomeEmpty}, obs.outcomes)
}

func TestGenerate_AuditFailureIsSwallowed(t *testing.T) {
	store := seededStore()
	store.auditErr = errBoom
	gen := &fakeGenerator{text: "interpretation"}
	obs := &countingObserver{}
	svc := app.NewInterpretationService(gen, store, store, obs, testConfig(), discardLogger())

	text, err := svc.Generate(context.Background(), placementsFrom(t, store), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "interpretation", text)
	assert.Equal(t, 1, obs.auditFailures)
}

func TestRegenerate_UsesSpreadAndReadingID(t *testing.T) {
	store := seededStore()
	gen := &fakeGenerator{text: "fresh"}
	svc := app.NewInterpretationService(gen, store, store, nil, testConfig(), discardLogger())

	spreadID := uint(1)
	reading := domain.Reading{
		ID:            7,
		SpreadID:      &spreadID,
		Question:      "What next?",
		Cards:         store.cards[:3],
		CardPositions: []domain.CardPosition{{CardID: 3, Position: "Past"}, {CardID: 1, Position: "Present"}, {CardID: 2, Position: "Future"}},
	}

	text, err := svc.Regenerate(context.Background(), reading)
	require.NoError(t, err)
	assert.Equal(t, "fresh", text)
	assert.Contains(t, gen.user, "Past, Present, Future")
	assert.Contains(t, gen.user, "What next?")

	require.Len(t, store.interpretations, 1)
	require.NotNil(t, store.interpretations[0].ReadingID)
	assert.Equal(t, uint(7), *store.interpretations[0].ReadingID)
}

func TestRegenerate_DeletedSpreadIsNotFatal(t *testing.T) {
	store := seededStore()
	delete(store.spreads, 1)
	gen := &fakeGenerator{text: "still works"}
	svc := app.NewInterpretationService(gen, store, store, nil, testConfig(), discardLogger())

	spreadID := uint(1)
	reading := domain.Reading{
		ID:            8,
		SpreadID:      &spreadID,
		Cards:         store.cards[:1],
		CardPositions: []domain.CardPosition{{CardID: 1, Position: "Past"}},
	}

	text, err := svc.Regenerate(context.Background(), reading)
	require.NoError(t, err)
	assert.Equal(t, "still works", text)
	assert.NotContains(t, gen.user, "Spread:")
}

func TestRegenerate_MissingCard(t *testing.T) {
	store := seededStore()
	gen := &fakeGenerator{text: "x"}
	svc := app.NewInterpretationService(gen, store, store, nil, testConfig(), discardLogger())

	reading := domain.Reading{ID: 9, CardPositions: []domain.CardPosition{{CardID: 42, Position: "Past"}}}
	_, err := svc.Regenerate(context.Background(), reading)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, gen.calls)
}
