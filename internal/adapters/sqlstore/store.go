package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/ports"
)

// Store implements every repository port on a single gorm handle.
type Store struct {
	db *gorm.DB
}

var (
	_ ports.DeckRepository           = (*Store)(nil)
	_ ports.CardRepository           = (*Store)(nil)
	_ ports.SpreadRepository         = (*Store)(nil)
	_ ports.ReadingRepository        = (*Store)(nil)
	_ ports.InterpretationRepository = (*Store)(nil)
)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindDeck(ctx context.Context, id uint) (domain.Deck, error) {
	var m deckModel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Deck{}, translate(err, "deck", id)
	}
	return toDomainDeck(&m), nil
}

func (s *Store) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	var models []deckModel
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, translate(err, "decks", "")
	}
	out := make([]domain.Deck, len(models))
	for i := range models {
		out[i] = toDomainDeck(&models[i])
	}
	return out, nil
}

func (s *Store) FindCard(ctx context.Context, id uint) (domain.Card, error) {
	var m cardModel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Card{}, translate(err, "card", id)
	}
	return toDomainCard(&m), nil
}

func (s *Store) FindCards(ctx context.Context, f ports.CardFilter) ([]domain.Card, error) {
	q := s.db.WithContext(ctx).Order("deck_id, number, id")
	if f.DeckID != nil {
		q = q.Where("deck_id = ?", *f.DeckID)
	}
	var models []cardModel
	if err := q.Find(&models).Error; err != nil {
		return nil, translate(err, "cards", "")
	}
	out := make([]domain.Card, len(models))
	for i := range models {
		out[i] = toDomainCard(&models[i])
	}
	return out, nil
}

func (s *Store) FindSpread(ctx context.Context, id uint) (domain.Spread, error) {
	var m spreadModel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Spread{}, translate(err, "spread", id)
	}
	return toDomainSpread(&m)
}

func (s *Store) ListSpreads(ctx context.Context) ([]domain.Spread, error) {
	var models []spreadModel
	if err := s.db.WithContext(ctx).Order("card_count, id").Find(&models).Error; err != nil {
		return nil, translate(err, "spreads", "")
	}
	out := make([]domain.Spread, 0, len(models))
	for i := range models {
		sp, err := toDomainSpread(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

func (s *Store) SaveSpread(ctx context.Context, sp *domain.Spread) error {
	m, err := fromDomainSpread(*sp)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return translate(err, "spread", sp.Name)
	}
	sp.ID = m.ID
	return nil
}

func (s *Store) FindReading(ctx context.Context, id uint) (domain.Reading, error) {
	var m readingModel
	if err := s.db.WithContext(ctx).Preload("Cards").First(&m, id).Error; err != nil {
		return domain.Reading{}, translate(err, "reading", id)
	}
	return toDomainReading(&m)
}

func (s *Store) FindReadingByShareID(ctx context.Context, shareID string) (domain.Reading, error) {
	var m readingModel
	err := s.db.WithContext(ctx).Preload("Cards").Where("share_id = ?", shareID).First(&m).Error
	if err != nil {
		return domain.Reading{}, translate(err, "shared reading", shareID)
	}
	return toDomainReading(&m)
}

func (s *Store) ListReadingsByUser(ctx context.Context, userID uint) ([]domain.Reading, error) {
	var models []readingModel
	err := s.db.WithContext(ctx).
		Preload("Cards").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, "readings", userID)
	}
	out := make([]domain.Reading, 0, len(models))
	for i := range models {
		r, err := toDomainReading(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveReading inserts a new reading with its card links, or updates the
// scalar fields of an existing one. Card links never change after creation
// and the share id is only written by AssignShareID.
func (s *Store) SaveReading(ctx context.Context, r *domain.Reading) error {
	m, err := fromDomainReading(*r)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	if r.ID == 0 {
		err = db.Create(&m).Error
	} else {
		err = db.Omit(clause.Associations, "ShareID").Save(&m).Error
	}
	if err != nil {
		return translate(err, "reading", r.ID)
	}

	r.ID = m.ID
	r.CreatedAt = m.CreatedAt
	return nil
}

// AssignShareID writes shareID only while the reading has none, so concurrent
// first shares agree on a single id.
func (s *Store) AssignShareID(ctx context.Context, id uint, shareID string) (string, error) {
	db := s.db.WithContext(ctx)
	err := db.Model(&readingModel{}).
		Where("id = ? AND share_id IS NULL", id).
		Update("share_id", shareID).Error
	if err != nil {
		return "", translate(err, "reading", id)
	}

	var m readingModel
	if err := db.Select("id", "share_id").First(&m, id).Error; err != nil {
		return "", translate(err, "reading", id)
	}
	if m.ShareID == nil {
		return "", fmt.Errorf("reading %d: share id not stored", id)
	}
	return *m.ShareID, nil
}

func (s *Store) SaveInterpretation(ctx context.Context, in *domain.Interpretation) error {
	cfg, err := json.Marshal(in.Config)
	if err != nil {
		return fmt.Errorf("encode generation config: %w", err)
	}
	m := interpretationModel{
		ReadingID:        in.ReadingID,
		Content:          in.Content,
		ModelUsed:        in.ModelUsed,
		GenerationConfig: datatypes.JSON(cfg),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "interpretation", in.ModelUsed)
	}
	in.ID = m.ID
	in.CreatedAt = m.CreatedAt
	return nil
}

// ListInterpretations returns the audit records of a reading, oldest first.
func (s *Store) ListInterpretations(ctx context.Context, readingID uint) ([]domain.Interpretation, error) {
	var models []interpretationModel
	err := s.db.WithContext(ctx).Where("reading_id = ?", readingID).Order("id").Find(&models).Error
	if err != nil {
		return nil, translate(err, "interpretations", readingID)
	}
	out := make([]domain.Interpretation, 0, len(models))
	for _, m := range models {
		var cfg domain.GenerationConfig
		if err := decodeJSON(m.GenerationConfig, &cfg); err != nil {
			return nil, fmt.Errorf("decode generation config of interpretation %d: %w", m.ID, err)
		}
		out = append(out, domain.Interpretation{
			ID:        m.ID,
			ReadingID: m.ReadingID,
			Content:   m.Content,
			ModelUsed: m.ModelUsed,
			Config:    cfg,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
