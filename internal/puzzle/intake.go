package puzzle

import (
	"fmt"

	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
)

// AllSolvedError signals that every puzzle in a batch was filtered out
// because it is already solved. Not a failure; callers report the count.
type AllSolvedError struct {
	Count int
}

func (e *AllSolvedError) Error() string {
	return fmt.Sprintf("all %d puzzles already solved", e.Count)
}

// BuildSet normalizes raw puzzle records, drops any whose id is already
// solved in the collection, and returns the remainder in input order.
// Returns *AllSolvedError when nothing is left to train on.
func BuildSet(store progress.Store, key core.CollectionKey, raw []Puzzle) (*Set, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no puzzles provided")
	}

	solved, err := store.SolvedIDs(key)
	if err != nil {
		return nil, fmt.Errorf("load solved ids: %w", err)
	}

	puzzles := make([]Puzzle, 0, len(raw))
	for _, p := range raw {
		normalized, err := Normalize(p)
		if err != nil {
			return nil, err
		}
		if _, done := solved[normalized.ID]; done {
			continue
		}
		puzzles = append(puzzles, normalized)
	}

	if len(puzzles) == 0 {
		return nil, &AllSolvedError{Count: len(raw)}
	}

	return &Set{Key: key, Puzzles: puzzles}, nil
}
