package domain

import "time"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Orientation represents the orientation of a drawn tarot card.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// OrientationOf maps the persisted reversed flag to an Orientation.
func OrientationOf(isReversed bool) Orientation {
	if isReversed {
		return Reversed
	}
	return Upright
}

// Card represents a single tarot card in a deck.
type Card struct {
	ID              uint     `json:"id"`
	DeckID          uint     `json:"deckId"`
	Name            string   `json:"name"`
	Number          int      `json:"number"`
	Category        string   `json:"category"`
	MeaningUpright  string   `json:"meaningUpright"`
	MeaningReversed string   `json:"meaningReversed"`
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords"`
}

// Meaning returns the meaning text for the given orientation.
func (c Card) Meaning(isReversed bool) string {
	if isReversed {
		return c.MeaningReversed
	}
	return c.MeaningUpright
}

// DrawnCard is a card that has been drawn at random, with its orientation.
type DrawnCard struct {
	Card
	IsReversed  bool        `json:"isReversed"`
	Orientation Orientation `json:"orientation"`
}

// Deck is a named collection of tarot cards. CardCount is informational
// and never checked against the stored cards.
type Deck struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CardCount   int    `json:"cardCount"`
	IsActive    bool   `json:"isActive"`
}

// Position is one labeled slot of a spread.
type Position struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Spread is a named, ordered layout of positions.
type Spread struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CardCount   int        `json:"cardCount"`
	Positions   []Position `json:"positions"`
}

// HasPosition reports whether name is one of the spread's declared positions.
func (s Spread) HasPosition(name string) bool {
	for _, p := range s.Positions {
		if p.Name == name {
			return true
		}
	}
	return false
}

// CardPosition places one card of a reading into a named position.
type CardPosition struct {
	CardID     uint   `json:"cardId"`
	Position   string `json:"position"`
	IsReversed bool   `json:"isReversed"`
}

// Placement is a resolved card in its position, carried end to end
// through validation, prompt composition and generation.
type Placement struct {
	Card       Card
	Position   string
	IsReversed bool
}

// Reading is a user's recorded draw of cards into a spread.
type Reading struct {
	ID             uint           `json:"id"`
	UserID         uint           `json:"userId"`
	DeckID         uint           `json:"deckId"`
	SpreadID       *uint          `json:"spreadId,omitempty"`
	Question       string         `json:"question,omitempty"`
	Cards          []Card         `json:"cards"`
	CardPositions  []CardPosition `json:"cardPositions"`
	Interpretation string         `json:"interpretation,omitempty"`
	ShareID        string         `json:"shareId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Placements pairs the reading's cards with its card positions by card id.
func (r Reading) Placements() ([]Placement, error) {
	return PairCards(r.Cards, r.CardPositions)
}

// GenerationConfig is the fixed parameter set of a text-generation request.
type GenerationConfig struct {
	Model       string         `json:"model"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"maxTokens"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Interpretation is the append-only audit record of one generation.
type Interpretation struct {
	ID        uint
	ReadingID *uint
	Content   string
	ModelUsed string
	Config    GenerationConfig
	CreatedAt time.Time
}

// Requester identifies the caller of an access-controlled operation.
type Requester struct {
	UserID  uint
	IsAdmin bool
}

// CanAccess reports whether the requester may read a reading owned by ownerID.
func (r Requester) CanAccess(ownerID uint) bool {
	return r.IsAdmin || r.UserID == ownerID
}
