package sqlstore

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type deckModel struct {
	gorm.Model
	Name        string `gorm:"size:100;uniqueIndex"`
	Description string `gorm:"type:text"`
	CardCount   int
	IsActive    bool `gorm:"default:true"`
}

func (deckModel) TableName() string {
	return "decks"
}

type cardModel struct {
	gorm.Model
	DeckID          uint   `gorm:"index"`
	Name            string `gorm:"size:100"`
	Number          int
	Category        string `gorm:"size:50"`
	MeaningUpright  string `gorm:"type:text"`
	MeaningReversed string `gorm:"type:text"`
	Description     string `gorm:"type:text"`
	Keywords        string `gorm:"type:text"` // comma separated
}

func (cardModel) TableName() string {
	return "cards"
}

type spreadModel struct {
	gorm.Model
	Name        string `gorm:"size:100;uniqueIndex"`
	Description string `gorm:"type:text"`
	CardCount   int
	Positions   datatypes.JSON
}

func (spreadModel) TableName() string {
	return "spreads"
}

type readingModel struct {
	gorm.Model
	UserID         uint `gorm:"index"`
	DeckID         uint
	SpreadID       *uint
	Question       string      `gorm:"type:text"`
	Cards          []cardModel `gorm:"many2many:reading_cards;"`
	CardPositions  datatypes.JSON
	Interpretation string  `gorm:"type:text"`
	ShareID        *string `gorm:"size:32;uniqueIndex"`
}

func (readingModel) TableName() string {
	return "readings"
}

// interpretationModel is append-only.
type interpretationModel struct {
	gorm.Model
	ReadingID        *uint  `gorm:"index"`
	Content          string `gorm:"type:text"`
	ModelUsed        string `gorm:"size:100"`
	GenerationConfig datatypes.JSON
}

func (interpretationModel) TableName() string {
	return "interpretations"
}
