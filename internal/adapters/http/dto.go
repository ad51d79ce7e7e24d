package http

import (
	"time"

	"github.com/ArielDRighi/tarot/internal/domain"
)

type CreateReadingRequest struct {
	Question      string                `json:"question"`
	DeckID        uint                  `json:"deckId"`
	SpreadID      uint                  `json:"spreadId"`
	CardIDs       []uint                `json:"cardIds"`
	CardPositions []domain.CardPosition `json:"cardPositions"`
	// GenerateInterpretation defaults to true when omitted.
	GenerateInterpretation *bool `json:"generateInterpretation"`
}

type GenerateInterpretationRequest struct {
	Cards    []domain.CardPosition `json:"cards"`
	Question string                `json:"question"`
}

type CreateSpreadRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CardCount   int               `json:"cardCount"`
	Positions   []domain.Position `json:"positions"`
}

type InterpretationResponse struct {
	Interpretation string `json:"interpretation"`
}

type InterpretationRecordResponse struct {
	ID        uint                    `json:"id"`
	ReadingID *uint                   `json:"readingId,omitempty"`
	Content   string                  `json:"content"`
	ModelUsed string                  `json:"modelUsed"`
	Config    domain.GenerationConfig `json:"generationConfig"`
	CreatedAt time.Time               `json:"createdAt"`
}

// SharedReadingResponse is the public view of a reading; it carries no
// owner information.
type SharedReadingResponse struct {
	Question       string                `json:"question,omitempty"`
	Cards          []domain.Card         `json:"cards"`
	CardPositions  []domain.CardPosition `json:"cardPositions"`
	Interpretation string                `json:"interpretation,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	Interpretation string `json:"interpretation"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func toInterpretationRecords(list []domain.Interpretation) []InterpretationRecordResponse {
	out := make([]InterpretationRecordResponse, len(list))
	for i, in := range list {
		out[i] = InterpretationRecordResponse{
			ID:        in.ID,
			ReadingID: in.ReadingID,
			Content:   in.Content,
			ModelUsed: in.ModelUsed,
			Config:    in.Config,
			CreatedAt: in.CreatedAt,
		}
	}
	return out
}

func toSharedReading(r domain.Reading) SharedReadingResponse {
	return SharedReadingResponse{
		Question:       r.Question,
		Cards:          r.Cards,
		CardPositions:  r.CardPositions,
		Interpretation: r.Interpretation,
		CreatedAt:      r.CreatedAt,
	}
}
