package core

import (
	"fmt"
	"strings"
)

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return "-"
	}
}

// ParseColor accepts both the single-letter and full forms
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	}
	return 0, fmt.Errorf("invalid color: %q", s)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Color) UnmarshalJSON(data []byte) error {
	parsed, err := ParseColor(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type PuzzleType string

const (
	// PuzzleMistake asks the player to correct a blunder from their game
	PuzzleMistake PuzzleType = "mistake"
	// PuzzleTactical asks the player to find a missed opportunity
	PuzzleTactical PuzzleType = "tactical"
)

// CollectionKey identifies the game archive a puzzle set was generated
// from. Progress is scoped per key and never leaks between collections.
type CollectionKey string

func (k CollectionKey) String() string {
	return string(k)
}
