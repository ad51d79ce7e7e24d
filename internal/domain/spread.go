package domain

import "fmt"

// ValidateSpread checks that positions fit the spread's shape: exactly
// CardCount entries, every name declared by the spread, no name used twice.
func ValidateSpread(spread Spread, positions []CardPosition) error {
	if len(positions) != spread.CardCount {
		return fmt.Errorf("%w: spread %q requires exactly %d cards, got %d",
			ErrInvalidRequest, spread.Name, spread.CardCount, len(positions))
	}
	used := make(map[string]bool, len(positions))
	for _, p := range positions {
		if !spread.HasPosition(p.Position) {
			return fmt.Errorf("%w: position %q is not part of spread %q",
				ErrInvalidRequest, p.Position, spread.Name)
		}
		if used[p.Position] {
			return fmt.Errorf("%w: position %q is used more than once", ErrInvalidRequest, p.Position)
		}
		used[p.Position] = true
	}
	return nil
}

// ValidateSpreadDefinition checks a spread before it is stored.
func ValidateSpreadDefinition(spread Spread) error {
	if spread.Name == "" {
		return fmt.Errorf("%w: spread name is required", ErrInvalidRequest)
	}
	if spread.CardCount < 1 {
		return fmt.Errorf("%w: spread must hold at least one card", ErrInvalidRequest)
	}
	if len(spread.Positions) != spread.CardCount {
		return fmt.Errorf("%w: spread declares %d cards but %d positions",
			ErrInvalidRequest, spread.CardCount, len(spread.Positions))
	}
	seen := make(map[string]bool, len(spread.Positions))
	for _, p := range spread.Positions {
		if p.Name == "" {
			return fmt.Errorf("%w: position name is required", ErrInvalidRequest)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate position %q", ErrInvalidRequest, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// MatchCardIDs checks that positions reference exactly the given card ids,
// each one once.
func MatchCardIDs(cardIDs []uint, positions []CardPosition) error {
	want := make(map[uint]bool, len(cardIDs))
	for _, id := range cardIDs {
		if want[id] {
			return fmt.Errorf("%w: card %d selected more than once", ErrInvalidRequest, id)
		}
		want[id] = true
	}
	if len(positions) != len(cardIDs) {
		return fmt.Errorf("%w: %d cards selected but %d positions given",
			ErrInvalidRequest, len(cardIDs), len(positions))
	}
	placed := make(map[uint]bool, len(positions))
	for _, p := range positions {
		if !want[p.CardID] {
			return fmt.Errorf("%w: position %q references card %d which was not selected",
				ErrInvalidRequest, p.Position, p.CardID)
		}
		if placed[p.CardID] {
			return fmt.Errorf("%w: card %d placed more than once", ErrInvalidRequest, p.CardID)
		}
		placed[p.CardID] = true
	}
	return nil
}

// PairCards resolves every position's card id against cards, keeping the
// order of positions.
func PairCards(cards []Card, positions []CardPosition) ([]Placement, error) {
	byID := make(map[uint]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	out := make([]Placement, len(positions))
	for i, p := range positions {
		c, ok := byID[p.CardID]
		if !ok {
			return nil, fmt.Errorf("%w: card %d", ErrNotFound, p.CardID)
		}
		out[i] = Placement{Card: c, Position: p.Position, IsReversed: p.IsReversed}
	}
	return out, nil
}
