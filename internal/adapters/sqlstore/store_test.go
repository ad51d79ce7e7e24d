package sqlstore_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ArielDRighi/tarot/internal/adapters/sqlstore"
	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/ports"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := sqlstore.Open(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "tarot.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlstore.Close(db) })
	require.NoError(t, sqlstore.Migrate(db))
	return db
}

func seededStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	db := newTestDB(t)
	_, err := sqlstore.Seed(context.Background(), db)
	require.NoError(t, err)
	return sqlstore.NewStore(db)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := sqlstore.Open("oracle", "", slog.Default())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	res, err := sqlstore.Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, sqlstore.SeedResult{Decks: 1, Cards: 22, Spreads: 4}, res)

	res, err = sqlstore.Seed(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, res)

	store := sqlstore.NewStore(db)
	cards, err := store.FindCards(ctx, ports.CardFilter{})
	require.NoError(t, err)
	assert.Len(t, cards, 22)
}

func TestCatalogue(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	decks, err := store.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "Rider-Waite", decks[0].Name)
	assert.True(t, decks[0].IsActive)

	deckID := decks[0].ID
	cards, err := store.FindCards(ctx, ports.CardFilter{DeckID: &deckID})
	require.NoError(t, err)
	require.Len(t, cards, 22)
	assert.Equal(t, "The Fool", cards[0].Name)
	assert.Equal(t, []string{"beginnings", "freedom", "innocence", "adventure"}, cards[0].Keywords)
	assert.Equal(t, "The World", cards[21].Name)

	other := deckID + 1
	none, err := store.FindCards(ctx, ports.CardFilter{DeckID: &other})
	require.NoError(t, err)
	assert.Empty(t, none)

	spreads, err := store.ListSpreads(ctx)
	require.NoError(t, err)
	require.Len(t, spreads, 4)
	assert.Equal(t, "Single Card", spreads[0].Name)
	last := spreads[len(spreads)-1]
	assert.Equal(t, "Celtic Cross", last.Name)
	assert.Equal(t, 10, last.CardCount)
	assert.Len(t, last.Positions, 10)

	_, err = store.FindDeck(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.FindCard(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.FindSpread(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveSpread_DuplicateName(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	sp := domain.Spread{Name: "Two Paths", CardCount: 2, Positions: []domain.Position{{Name: "Left"}, {Name: "Right"}}}
	require.NoError(t, store.SaveSpread(ctx, &sp))
	assert.NotZero(t, sp.ID)

	got, err := store.FindSpread(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, sp.Positions, got.Positions)

	dup := domain.Spread{Name: "Two Paths", CardCount: 1, Positions: []domain.Position{{Name: "Only"}}}
	assert.ErrorIs(t, store.SaveSpread(ctx, &dup), domain.ErrConflict)
}

func newReading(t *testing.T, store *sqlstore.Store, userID uint) domain.Reading {
	t.Helper()
	ctx := context.Background()
	spreads, err := store.ListSpreads(ctx)
	require.NoError(t, err)
	ppf := spreads[1]
	require.Equal(t, "Past, Present, Future", ppf.Name)

	var cards []domain.Card
	for _, id := range []uint{5, 1, 3} {
		c, err := store.FindCard(ctx, id)
		require.NoError(t, err)
		cards = append(cards, c)
	}
	r := domain.Reading{
		UserID:   userID,
		DeckID:   1,
		SpreadID: &ppf.ID,
		Question: "Where is this going?",
		Cards:    cards,
		CardPositions: []domain.CardPosition{
			{CardID: 5, Position: "Past"},
			{CardID: 1, Position: "Present", IsReversed: true},
			{CardID: 3, Position: "Future"},
		},
		Interpretation: "first",
	}
	require.NoError(t, store.SaveReading(ctx, &r))
	return r
}

func TestReading_RoundTrip(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	r := newReading(t, store, 7)
	require.NotZero(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := store.FindReading(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.CardPositions, got.CardPositions)
	require.Len(t, got.Cards, 3)
	assert.Equal(t, []uint{5, 1, 3}, []uint{got.Cards[0].ID, got.Cards[1].ID, got.Cards[2].ID})
	require.NotNil(t, got.SpreadID)
	assert.Equal(t, *r.SpreadID, *got.SpreadID)
	assert.Empty(t, got.ShareID)

	placements, err := got.Placements()
	require.NoError(t, err)
	assert.Equal(t, "Present", placements[1].Position)
	assert.True(t, placements[1].IsReversed)

	_, err = store.FindReading(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReading_UpdateKeepsCards(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	r := newReading(t, store, 7)

	shareID, err := store.AssignShareID(ctx, r.ID, "abcdefghijkl")
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijkl", shareID)

	// r still carries no share id; saving it must not clear the stored one.
	r.Interpretation = "second"
	require.NoError(t, store.SaveReading(ctx, &r))

	got, err := store.FindReading(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Interpretation)
	assert.Equal(t, "abcdefghijkl", got.ShareID)
	assert.Len(t, got.Cards, 3)
	assert.WithinDuration(t, r.CreatedAt, got.CreatedAt, time.Second)

	shared, err := store.FindReadingByShareID(ctx, "abcdefghijkl")
	require.NoError(t, err)
	assert.Equal(t, r.ID, shared.ID)

	_, err = store.FindReadingByShareID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssignShareID_KeepsFirstID(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	r := newReading(t, store, 7)

	first, err := store.AssignShareID(ctx, r.ID, "first-id-0001")
	require.NoError(t, err)
	second, err := store.AssignShareID(ctx, r.ID, "second-id-002")
	require.NoError(t, err)
	assert.Equal(t, "first-id-0001", first)
	assert.Equal(t, "first-id-0001", second)

	_, err = store.FindReadingByShareID(ctx, "second-id-002")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.AssignShareID(ctx, 12345, "orphan-id-003")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReadingsByUser(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	first := newReading(t, store, 7)
	second := newReading(t, store, 7)
	newReading(t, store, 8)

	list, err := store.ListReadingsByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Len(t, list[0].Cards, 3)
}

func TestInterpretations(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	r := newReading(t, store, 7)

	cfg := domain.GenerationConfig{Model: "gpt-4-turbo", Temperature: 0.7, MaxTokens: 1500}
	standalone := domain.Interpretation{Content: "standalone", ModelUsed: cfg.Model, Config: cfg}
	require.NoError(t, store.SaveInterpretation(ctx, &standalone))
	assert.NotZero(t, standalone.ID)

	linked := domain.Interpretation{ReadingID: &r.ID, Content: "linked", ModelUsed: cfg.Model, Config: cfg}
	require.NoError(t, store.SaveInterpretation(ctx, &linked))

	list, err := store.ListInterpretations(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "linked", list[0].Content)
	assert.Equal(t, cfg, list[0].Config)
}
