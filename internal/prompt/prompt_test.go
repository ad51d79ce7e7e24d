package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/prompt"
)

func scenarioCards() []domain.Card {
	return []domain.Card{
		{ID: 1, Name: "The Fool", MeaningUpright: "New beginnings and spontaneity", MeaningReversed: "Recklessness and risk", Keywords: []string{"freedom", "innocence"}},
		{ID: 2, Name: "The Magician", MeaningUpright: "Manifestation and willpower", MeaningReversed: "Manipulation and wasted talent", Keywords: []string{"will", "creation"}},
		{ID: 3, Name: "The High Priestess", MeaningUpright: "Intuition and hidden knowledge", MeaningReversed: "Secrets and repression", Keywords: []string{"mystery", "patience"}},
	}
}

func scenarioSpread() *domain.Spread {
	return &domain.Spread{
		Name:        "Past, Present, Future",
		Description: "A simple three-card timeline",
		CardCount:   3,
		Positions:   []domain.Position{{Name: "Past"}, {Name: "Present"}, {Name: "Future"}},
	}
}

func TestCompose_JobQuestionScenario(t *testing.T) {
	positions := []domain.CardPosition{
		{CardID: 1, Position: "Past"},
		{CardID: 2, Position: "Present", IsReversed: true},
		{CardID: 3, Position: "Future"},
	}

	out, err := prompt.Compose(scenarioCards(), positions, "Will I get the job?", scenarioSpread())
	require.NoError(t, err)

	assert.Contains(t, out, "Will I get the job?")
	assert.Contains(t, out, "Manipulation and wasted talent")
	assert.NotContains(t, out, "Manifestation and willpower")
	assert.Contains(t, out, "New beginnings and spontaneity")
	assert.NotContains(t, out, "Recklessness and risk")
	assert.Contains(t, out, "Past, Present, Future")
	assert.Contains(t, out, "A simple three-card timeline")
}

func TestRender_PerCardContent(t *testing.T) {
	cards := scenarioCards()
	placements := []domain.Placement{
		{Card: cards[2], Position: "Future", IsReversed: true},
		{Card: cards[0], Position: "Past"},
	}

	out := prompt.Render(placements, "", nil)

	priestess := strings.Index(out, "The High Priestess (reversed)")
	fool := strings.Index(out, "The Fool (upright)")
	require.NotEqual(t, -1, priestess)
	require.NotEqual(t, -1, fool)
	assert.Less(t, priestess, fool, "placements must render in the order given")

	assert.Contains(t, out, `in position "Future"`)
	assert.Contains(t, out, `in position "Past"`)
	assert.Contains(t, out, "Secrets and repression")
	assert.Contains(t, out, "Keywords: mystery, patience")
	assert.Contains(t, out, "Keywords: freedom, innocence")
	assert.NotContains(t, out, "Question:")
	assert.NotContains(t, out, "Spread:")
}

func TestRender_OrientationSelectsMeaning(t *testing.T) {
	card := scenarioCards()[0]
	for _, reversed := range []bool{false, true} {
		out := prompt.Render([]domain.Placement{{Card: card, Position: "Now", IsReversed: reversed}}, "", nil)
		if reversed {
			assert.Contains(t, out, card.MeaningReversed)
			assert.NotContains(t, out, card.MeaningUpright)
		} else {
			assert.Contains(t, out, card.MeaningUpright)
			assert.NotContains(t, out, card.MeaningReversed)
		}
	}
}

func TestRender_ListsDeliverablesAndRepeatsQuestion(t *testing.T) {
	out := prompt.Render(nil, "Should I move?", nil)
	for _, d := range prompt.Deliverables {
		assert.Contains(t, out, d)
	}
	assert.Equal(t, 2, strings.Count(out, "Should I move?"))
}

func TestRender_KeepsQuestionTextVerbatim(t *testing.T) {
	card := scenarioCards()[0]
	questions := []string{
		`Should I say "yes" to the offer?`,
		"Line one\nline two?",
		`C:\path or not?`,
	}
	for _, q := range questions {
		out := prompt.Render([]domain.Placement{{Card: card, Position: `The "Now"`}}, q, nil)
		assert.Equal(t, 2, strings.Count(out, q), "question %q", q)
		assert.Contains(t, out, `in position "The "Now""`)
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	cards := scenarioCards()
	placements := []domain.Placement{{Card: cards[0], Position: "Past"}, {Card: cards[1], Position: "Present"}}
	assert.Equal(t,
		prompt.Render(placements, "q", scenarioSpread()),
		prompt.Render(placements, "q", scenarioSpread()))
}

func TestCompose_UnknownCard(t *testing.T) {
	_, err := prompt.Compose(scenarioCards(), []domain.CardPosition{{CardID: 99, Position: "Past"}}, "", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
