package ports

import (
	"context"

	"github.com/ArielDRighi/tarot/internal/domain"
)

// Repositories return domain.ErrNotFound (possibly wrapped) for missing ids.

type DeckRepository interface {
	FindDeck(ctx context.Context, id uint) (domain.Deck, error)
	ListDecks(ctx context.Context) ([]domain.Deck, error)
}

// CardFilter restricts FindCards. A nil DeckID matches every deck.
type CardFilter struct {
	DeckID *uint
}

type CardRepository interface {
	FindCard(ctx context.Context, id uint) (domain.Card, error)
	FindCards(ctx context.Context, f CardFilter) ([]domain.Card, error)
}

type SpreadRepository interface {
	FindSpread(ctx context.Context, id uint) (domain.Spread, error)
	ListSpreads(ctx context.Context) ([]domain.Spread, error)
	SaveSpread(ctx context.Context, s *domain.Spread) error
}

type ReadingRepository interface {
	FindReading(ctx context.Context, id uint) (domain.Reading, error)
	FindReadingByShareID(ctx context.Context, shareID string) (domain.Reading, error)
	ListReadingsByUser(ctx context.Context, userID uint) ([]domain.Reading, error)
	// SaveReading inserts r when r.ID is zero and updates it otherwise,
	// filling in ID and CreatedAt. Updates never touch the share id.
	SaveReading(ctx context.Context, r *domain.Reading) error
	// AssignShareID sets the reading's share id unless one is already set and
	// returns the id that is stored afterwards.
	AssignShareID(ctx context.Context, id uint, shareID string) (string, error)
}

type InterpretationRepository interface {
	SaveInterpretation(ctx context.Context, in *domain.Interpretation) error
	// ListInterpretations returns the records linked to a reading, oldest first.
	ListInterpretations(ctx context.Context, readingID uint) ([]domain.Interpretation, error)
}
