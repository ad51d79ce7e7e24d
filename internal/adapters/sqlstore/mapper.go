package sqlstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ArielDRighi/tarot/internal/domain"
)

func toDomainDeck(m *deckModel) domain.Deck {
	return domain.Deck{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CardCount:   m.CardCount,
		IsActive:    m.IsActive,
	}
}

func toDomainCard(m *cardModel) domain.Card {
	var keywords []string
	if m.Keywords != "" {
		keywords = strings.Split(m.Keywords, ",")
	}
	return domain.Card{
		ID:              m.ID,
		DeckID:          m.DeckID,
		Name:            m.Name,
		Number:          m.Number,
		Category:        m.Category,
		MeaningUpright:  m.MeaningUpright,
		MeaningReversed: m.MeaningReversed,
		Description:     m.Description,
		Keywords:        keywords,
	}
}

func fromDomainCard(c domain.Card) cardModel {
	return cardModel{
		Model:           gorm.Model{ID: c.ID},
		DeckID:          c.DeckID,
		Name:            c.Name,
		Number:          c.Number,
		Category:        c.Category,
		MeaningUpright:  c.MeaningUpright,
		MeaningReversed: c.MeaningReversed,
		Description:     c.Description,
		Keywords:        strings.Join(c.Keywords, ","),
	}
}

func toDomainSpread(m *spreadModel) (domain.Spread, error) {
	var positions []domain.Position
	if err := decodeJSON(m.Positions, &positions); err != nil {
		return domain.Spread{}, fmt.Errorf("decode positions of spread %d: %w", m.ID, err)
	}
	return domain.Spread{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CardCount:   m.CardCount,
		Positions:   positions,
	}, nil
}

func fromDomainSpread(s domain.Spread) (spreadModel, error) {
	positions, err := json.Marshal(s.Positions)
	if err != nil {
		return spreadModel{}, fmt.Errorf("encode positions: %w", err)
	}
	return spreadModel{
		Model:       gorm.Model{ID: s.ID},
		Name:        s.Name,
		Description: s.Description,
		CardCount:   s.CardCount,
		Positions:   datatypes.JSON(positions),
	}, nil
}

// toDomainReading orders the preloaded cards by their card positions, since
// the join table carries no order of its own.
func toDomainReading(m *readingModel) (domain.Reading, error) {
	var positions []domain.CardPosition
	if err := decodeJSON(m.CardPositions, &positions); err != nil {
		return domain.Reading{}, fmt.Errorf("decode card positions of reading %d: %w", m.ID, err)
	}

	byID := make(map[uint]domain.Card, len(m.Cards))
	for i := range m.Cards {
		byID[m.Cards[i].ID] = toDomainCard(&m.Cards[i])
	}
	cards := make([]domain.Card, 0, len(m.Cards))
	for _, p := range positions {
		if c, ok := byID[p.CardID]; ok {
			cards = append(cards, c)
			delete(byID, p.CardID)
		}
	}
	for i := range m.Cards {
		if c, ok := byID[m.Cards[i].ID]; ok {
			cards = append(cards, c)
		}
	}

	r := domain.Reading{
		ID:             m.ID,
		UserID:         m.UserID,
		DeckID:         m.DeckID,
		SpreadID:       m.SpreadID,
		Question:       m.Question,
		Cards:          cards,
		CardPositions:  positions,
		Interpretation: m.Interpretation,
		CreatedAt:      m.CreatedAt,
	}
	if m.ShareID != nil {
		r.ShareID = *m.ShareID
	}
	return r, nil
}

func fromDomainReading(r domain.Reading) (readingModel, error) {
	positions, err := json.Marshal(r.CardPositions)
	if err != nil {
		return readingModel{}, fmt.Errorf("encode card positions: %w", err)
	}
	m := readingModel{
		Model:          gorm.Model{ID: r.ID, CreatedAt: r.CreatedAt},
		UserID:         r.UserID,
		DeckID:         r.DeckID,
		SpreadID:       r.SpreadID,
		Question:       r.Question,
		CardPositions:  datatypes.JSON(positions),
		Interpretation: r.Interpretation,
	}
	if r.ShareID != "" {
		shareID := r.ShareID
		m.ShareID = &shareID
	}
	for _, c := range r.Cards {
		m.Cards = append(m.Cards, fromDomainCard(c))
	}
	return m, nil
}

func decodeJSON(raw datatypes.JSON, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
