package sqlstore

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/ArielDRighi/tarot/internal/domain"
)

//go:embed data/seed.yaml
var seedYAML []byte

type seedCard struct {
	Name            string   `yaml:"name"`
	Number          int      `yaml:"number"`
	Category        string   `yaml:"category"`
	MeaningUpright  string   `yaml:"meaningUpright"`
	MeaningReversed string   `yaml:"meaningReversed"`
	Description     string   `yaml:"description"`
	Keywords        []string `yaml:"keywords"`
}

type seedPosition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type seedData struct {
	Decks []struct {
		Name        string     `yaml:"name"`
		Description string     `yaml:"description"`
		CardCount   int        `yaml:"cardCount"`
		Cards       []seedCard `yaml:"cards"`
	} `yaml:"decks"`
	Spreads []struct {
		Name        string         `yaml:"name"`
		Description string         `yaml:"description"`
		Positions   []seedPosition `yaml:"positions"`
	} `yaml:"spreads"`
}

// SeedResult counts the rows inserted by Seed.
type SeedResult struct {
	Decks   int
	Cards   int
	Spreads int
}

// Seed loads the built-in decks and spreads. It does nothing when any deck
// already exists, so it is safe to run on every start.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return SeedResult{}, fmt.Errorf("parse seed data: %w", err)
	}

	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&deckModel{}).Count(&existing).Error; err != nil {
			return fmt.Errorf("count decks: %w", err)
		}
		if existing > 0 {
			return nil
		}

		for _, d := range data.Decks {
			deck := deckModel{Name: d.Name, Description: d.Description, CardCount: d.CardCount, IsActive: true}
			if err := tx.Create(&deck).Error; err != nil {
				return translate(err, "deck", d.Name)
			}
			res.Decks++

			for _, c := range d.Cards {
				m := fromDomainCard(domain.Card{
					DeckID:          deck.ID,
					Name:            c.Name,
					Number:          c.Number,
					Category:        c.Category,
					MeaningUpright:  c.MeaningUpright,
					MeaningReversed: c.MeaningReversed,
					Description:     c.Description,
					Keywords:        c.Keywords,
				})
				if err := tx.Create(&m).Error; err != nil {
					return translate(err, "card", c.Name)
				}
				res.Cards++
			}
		}

		for _, sp := range data.Spreads {
			positions := make([]domain.Position, len(sp.Positions))
			for i, p := range sp.Positions {
				positions[i] = domain.Position{Name: p.Name, Description: p.Description}
			}
			m, err := fromDomainSpread(domain.Spread{
				Name:        sp.Name,
				Description: sp.Description,
				CardCount:   len(positions),
				Positions:   positions,
			})
			if err != nil {
				return err
			}
			if err := tx.Create(&m).Error; err != nil {
				return translate(err, "spread", sp.Name)
			}
			res.Spreads++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}
