// Package prompt renders the text brief sent to the text-generation backend
// for a tarot reading.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ArielDRighi/tarot/internal/domain"
)

// SystemInstruction frames the backend as an experienced tarot reader.
const SystemInstruction = `You are an expert tarot reader with years of experience reading and interpreting the tarot.
Give deep, intuitive and useful interpretations grounded in the cards presented.
Use clear but evocative language and speak directly to the person consulting the cards.
Never provide medical, legal or financial advice.`

// Deliverables lists what every interpretation must contain, in order.
var Deliverables = []string{
	"An overall interpretation of the reading",
	"The interpretation of each card in its specific position",
	"How the cards relate to each other",
	"Practical guidance based on the reading",
	"A closing summary",
}

// Compose pairs cards with positions by card id and renders the brief.
// It fails with domain.ErrNotFound if a position names a card not in cards.
func Compose(cards []domain.Card, positions []domain.CardPosition, question string, spread *domain.Spread) (string, error) {
	placements, err := domain.PairCards(cards, positions)
	if err != nil {
		return "", err
	}
	return Render(placements, question, spread), nil
}

// Render deterministically renders placements in the order given.
func Render(placements []domain.Placement, question string, spread *domain.Spread) string {
	var b strings.Builder
	b.WriteString("Please interpret this tarot reading.\n\n")

	if spread != nil {
		fmt.Fprintf(&b, "Spread: %s\nDescription: %s\n\n", spread.Name, spread.Description)
	}

	if question != "" {
		fmt.Fprintf(&b, "Question: \"%s\"\n\n", question)
	}

	b.WriteString("Cards in the reading:\n")
	for i, p := range placements {
		orientation := domain.OrientationOf(p.IsReversed)
		fmt.Fprintf(&b, "\nCard %d: %s (%s) in position \"%s\"\n", i+1, p.Card.Name, orientation, p.Position)
		fmt.Fprintf(&b, "Meaning: %s\n", p.Card.Meaning(p.IsReversed))
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(p.Card.Keywords, ", "))
	}

	b.WriteString("\nPlease provide:\n")
	for i, d := range Deliverables {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}

	if question != "" {
		fmt.Fprintf(&b, "\nFocus your interpretation on the question: \"%s\"\n", question)
	}

	return b.String()
}
