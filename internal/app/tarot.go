package app

import (
	"context"
	"fmt"

	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/ports"
)

// TarotService serves random card draws and the deck and spread catalogue.
type TarotService struct {
	decks   ports.DeckRepository
	cards   ports.CardRepository
	spreads ports.SpreadRepository
	rng     domain.RNG
}

func NewTarotService(decks ports.DeckRepository, cards ports.CardRepository, spreads ports.SpreadRepository, rng domain.RNG) *TarotService {
	return &TarotService{
		decks:   decks,
		cards:   cards,
		spreads: spreads,
		rng:     rng,
	}
}

// SelectRandomCards draws count distinct cards, restricted to deckID when
// given. Each card is reversed independently when includeReversed is set.
func (s *TarotService) SelectRandomCards(ctx context.Context, count int, deckID *uint, includeReversed bool) ([]domain.DrawnCard, error) {
	if deckID != nil {
		if _, err := s.decks.FindDeck(ctx, *deckID); err != nil {
			return nil, fmt.Errorf("get deck: %w", err)
		}
	}

	pool, err := s.cards.FindCards(ctx, ports.CardFilter{DeckID: deckID})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	cards, err := domain.SelectRandom(pool, count, s.rng)
	if err != nil {
		return nil, err
	}
	return domain.Orient(cards, includeReversed, s.rng), nil
}

func (s *TarotService) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	return s.decks.ListDecks(ctx)
}

// GetDeck returns a deck by id.
func (s *TarotService) GetDeck(ctx context.Context, id uint) (domain.Deck, error) {
	d, err := s.decks.FindDeck(ctx, id)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("get deck: %w", err)
	}
	return d, nil
}

// ListCards returns the cards of deckID, or of every deck when deckID is nil.
// An unknown deck is ErrNotFound rather than an empty list.
func (s *TarotService) ListCards(ctx context.Context, deckID *uint) ([]domain.Card, error) {
	if deckID != nil {
		if _, err := s.decks.FindDeck(ctx, *deckID); err != nil {
			return nil, fmt.Errorf("get deck: %w", err)
		}
	}
	cards, err := s.cards.FindCards(ctx, ports.CardFilter{DeckID: deckID})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func (s *TarotService) GetCard(ctx context.Context, id uint) (domain.Card, error) {
	c, err := s.cards.FindCard(ctx, id)
	if err != nil {
		return domain.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (s *TarotService) ListSpreads(ctx context.Context) ([]domain.Spread, error) {
	return s.spreads.ListSpreads(ctx)
}

func (s *TarotService) GetSpread(ctx context.Context, id uint) (domain.Spread, error) {
	sp, err := s.spreads.FindSpread(ctx, id)
	if err != nil {
		return domain.Spread{}, fmt.Errorf("get spread: %w", err)
	}
	return sp, nil
}

// CreateSpread stores a new spread. Only admins may create spreads.
func (s *TarotService) CreateSpread(ctx context.Context, requester domain.Requester, spread domain.Spread) (domain.Spread, error) {
	if !requester.IsAdmin {
		return domain.Spread{}, fmt.Errorf("%w: only admins can create spreads", domain.ErrForbidden)
	}
	if err := domain.ValidateSpreadDefinition(spread); err != nil {
		return domain.Spread{}, err
	}
	spread.ID = 0
	if err := s.spreads.SaveSpread(ctx, &spread); err != nil {
		return domain.Spread{}, fmt.Errorf("save spread: %w", err)
	}
	return spread, nil
}
