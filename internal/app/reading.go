package app

import (
	"context"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/ports"
)

const shareIDLength = 12

// CreateReadingRequest is the application-level input (no HTTP types).
type CreateReadingRequest struct {
	Question               string
	DeckID                 uint
	SpreadID               uint
	CardIDs                []uint
	CardPositions          []domain.CardPosition
	GenerateInterpretation bool
}

// ReadingUpdate overwrites only the non-nil fields. The interpretation is the
// only field of a stored reading that may change.
type ReadingUpdate struct {
	Interpretation *string
}

// ShareLink is the public address of a shared reading.
type ShareLink struct {
	ShareID string `json:"shareId"`
	URL     string `json:"url"`
}

// ReadingService manages the lifecycle of readings: creation, lookup with
// access control, interpretation regeneration and sharing.
type ReadingService struct {
	decks       ports.DeckRepository
	spreads     ports.SpreadRepository
	cards       ports.CardRepository
	readings    ports.ReadingRepository
	audit       ports.InterpretationRepository
	interpreter *InterpretationService
	baseURL     string
	newShareID  func() (string, error)
}

func NewReadingService(
	decks ports.DeckRepository,
	spreads ports.SpreadRepository,
	cards ports.CardRepository,
	readings ports.ReadingRepository,
	audit ports.InterpretationRepository,
	interpreter *InterpretationService,
	publicBaseURL string,
) *ReadingService {
	return &ReadingService{
		decks:       decks,
		spreads:     spreads,
		cards:       cards,
		readings:    readings,
		audit:       audit,
		interpreter: interpreter,
		baseURL:     strings.TrimRight(publicBaseURL, "/"),
		newShareID:  func() (string, error) { return gonanoid.New(shareIDLength) },
	}
}

// CreateReading validates the request against the deck and spread, optionally
// generates an interpretation, and persists the reading as the last step, so
// a failure anywhere leaves nothing stored.
func (s *ReadingService) CreateReading(ctx context.Context, userID uint, req CreateReadingRequest) (domain.Reading, error) {
	deck, err := s.decks.FindDeck(ctx, req.DeckID)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("get deck: %w", err)
	}

	spread, err := s.spreads.FindSpread(ctx, req.SpreadID)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("get spread: %w", err)
	}

	if len(req.CardIDs) != spread.CardCount {
		return domain.Reading{}, fmt.Errorf("%w: spread %q requires exactly %d cards, but %d were selected",
			domain.ErrInvalidRequest, spread.Name, spread.CardCount, len(req.CardIDs))
	}
	if err := domain.MatchCardIDs(req.CardIDs, req.CardPositions); err != nil {
		return domain.Reading{}, err
	}
	if err := domain.ValidateSpread(spread, req.CardPositions); err != nil {
		return domain.Reading{}, err
	}

	cards := make([]domain.Card, 0, len(req.CardIDs))
	for _, id := range req.CardIDs {
		c, err := s.cards.FindCard(ctx, id)
		if err != nil {
			return domain.Reading{}, fmt.Errorf("get card: %w", err)
		}
		cards = append(cards, c)
	}

	spreadID := spread.ID
	reading := domain.Reading{
		UserID:        userID,
		DeckID:        deck.ID,
		SpreadID:      &spreadID,
		Question:      req.Question,
		Cards:         cards,
		CardPositions: req.CardPositions,
	}

	if req.GenerateInterpretation {
		placements, err := reading.Placements()
		if err != nil {
			return domain.Reading{}, err
		}
		text, err := s.interpreter.Generate(ctx, placements, req.Question, &spread)
		if err != nil {
			return domain.Reading{}, fmt.Errorf("interpret: %w", err)
		}
		reading.Interpretation = text
	}

	if err := s.readings.SaveReading(ctx, &reading); err != nil {
		return domain.Reading{}, fmt.Errorf("save reading: %w", err)
	}
	return reading, nil
}

// FindReading looks a reading up by id. A nil requester skips the access
// check; otherwise only the owner or an admin may see the reading.
func (s *ReadingService) FindReading(ctx context.Context, id uint, requester *domain.Requester) (domain.Reading, error) {
	r, err := s.readings.FindReading(ctx, id)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("get reading: %w", err)
	}
	if requester != nil && !requester.CanAccess(r.UserID) {
		return domain.Reading{}, fmt.Errorf("%w: no access to reading %d", domain.ErrForbidden, id)
	}
	return r, nil
}

// ListReadings returns the user's readings, newest first.
func (s *ReadingService) ListReadings(ctx context.Context, userID uint) ([]domain.Reading, error) {
	return s.readings.ListReadingsByUser(ctx, userID)
}

// UpdateReading overwrites the given fields and persists the reading.
func (s *ReadingService) UpdateReading(ctx context.Context, id uint, upd ReadingUpdate) (domain.Reading, error) {
	r, err := s.FindReading(ctx, id, nil)
	if err != nil {
		return domain.Reading{}, err
	}
	if upd.Interpretation != nil {
		r.Interpretation = *upd.Interpretation
	}
	if err := s.readings.SaveReading(ctx, &r); err != nil {
		return domain.Reading{}, fmt.Errorf("save reading: %w", err)
	}
	return r, nil
}

// RegenerateInterpretation replaces a reading's interpretation. The stored
// interpretation changes only after a successful generation.
func (s *ReadingService) RegenerateInterpretation(ctx context.Context, id uint, requester *domain.Requester) (string, error) {
	r, err := s.FindReading(ctx, id, requester)
	if err != nil {
		return "", err
	}
	text, err := s.interpreter.Regenerate(ctx, r)
	if err != nil {
		return "", fmt.Errorf("interpret: %w", err)
	}
	if _, err := s.UpdateReading(ctx, id, ReadingUpdate{Interpretation: &text}); err != nil {
		return "", err
	}
	return text, nil
}

// ListInterpretations returns every interpretation generated for a reading.
func (s *ReadingService) ListInterpretations(ctx context.Context, id uint, requester *domain.Requester) ([]domain.Interpretation, error) {
	if _, err := s.FindReading(ctx, id, requester); err != nil {
		return nil, err
	}
	list, err := s.audit.ListInterpretations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list interpretations: %w", err)
	}
	return list, nil
}

// GenerateStandalone interprets an ad-hoc draw without storing a reading.
func (s *ReadingService) GenerateStandalone(ctx context.Context, positions []domain.CardPosition, question string) (string, error) {
	if len(positions) == 0 {
		return "", fmt.Errorf("%w: at least one card is required", domain.ErrInvalidRequest)
	}
	ids := make([]uint, len(positions))
	for i, p := range positions {
		ids[i] = p.CardID
	}
	if err := domain.MatchCardIDs(ids, positions); err != nil {
		return "", err
	}

	cards := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		c, err := s.cards.FindCard(ctx, id)
		if err != nil {
			return "", fmt.Errorf("get card: %w", err)
		}
		cards = append(cards, c)
	}

	placements, err := domain.PairCards(cards, positions)
	if err != nil {
		return "", err
	}
	text, err := s.interpreter.Generate(ctx, placements, question, nil)
	if err != nil {
		return "", fmt.Errorf("interpret: %w", err)
	}
	return text, nil
}

// ShareReading returns the public link of a reading, assigning a share id on
// first use.
func (s *ReadingService) ShareReading(ctx context.Context, id uint, requester *domain.Requester) (ShareLink, error) {
	r, err := s.FindReading(ctx, id, requester)
	if err != nil {
		return ShareLink{}, err
	}
	if r.ShareID == "" {
		shareID, err := s.newShareID()
		if err != nil {
			return ShareLink{}, fmt.Errorf("generate share id: %w", err)
		}
		r.ShareID, err = s.readings.AssignShareID(ctx, id, shareID)
		if err != nil {
			return ShareLink{}, fmt.Errorf("assign share id: %w", err)
		}
	}
	return ShareLink{ShareID: r.ShareID, URL: s.baseURL + "/share/" + r.ShareID}, nil
}

// FindSharedReading looks a reading up by its public share id.
func (s *ReadingService) FindSharedReading(ctx context.Context, shareID string) (domain.Reading, error) {
	r, err := s.readings.FindReadingByShareID(ctx, shareID)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("get shared reading: %w", err)
	}
	return r, nil
}
