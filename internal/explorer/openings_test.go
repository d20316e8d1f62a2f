// FILE: internal/explorer/openings_test.go
package explorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOpeningTree = `{
	"e2e4": {
		"name": "King's Pawn Game",
		"eco": "B00",
		"moves": {
			"e7e5": {
				"name": "King's Pawn Game",
				"eco": "C20",
				"moves": {
					"g1f3": {
						"name": "King's Knight Opening",
						"eco": "C40",
						"moves": {
							"b8c6": {
								"name": "King's Knight Opening: Normal Variation",
								"eco": "C44"
							}
						}
					}
				}
			}
		}
	},
	"d2d4": {
		"name": "Queen's Pawn Game",
		"eco": "A40"
	}
}`

func loadTestBook(t *testing.T) *OpeningBook {
	t.Helper()

	path := filepath.Join(t.TempDir(), "openings.json")
	require.NoError(t, os.WriteFile(path, []byte(testOpeningTree), 0o644))

	book := LoadOpeningBook(path)
	require.False(t, book.Empty())
	return book
}

func TestDetectOpening(t *testing.T) {
	book := loadTestBook(t)

	t.Run("SAN moves", func(t *testing.T) {
		op := book.Detect([]string{"e4", "e5", "Nf3", "Nc6"})
		assert.Equal(t, "King's Knight Opening: Normal Variation", op.Name)
		assert.Equal(t, "C44", op.ECO)
	})

	t.Run("UCI moves", func(t *testing.T) {
		op := book.Detect([]string{"e2e4", "e7e5", "g1f3"})
		assert.Equal(t, "King's Knight Opening", op.Name)
		assert.Equal(t, "C40", op.ECO)
	})

	t.Run("deepest known line wins", func(t *testing.T) {
		// Continues past the book; last named node sticks
		op := book.Detect([]string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"})
		assert.Equal(t, "King's Knight Opening: Normal Variation", op.Name)
	})

	t.Run("unknown line", func(t *testing.T) {
		op := book.Detect([]string{"Nf3"})
		assert.Equal(t, UnknownOpening, op.Name)
		assert.Empty(t, op.ECO)
	})

	t.Run("no moves", func(t *testing.T) {
		op := book.Detect(nil)
		assert.Equal(t, UnknownOpening, op.Name)
	})
}

func TestDetectFromPGN(t *testing.T) {
	book := loadTestBook(t)

	op := book.DetectFromPGN("1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0")
	assert.Equal(t, "King's Knight Opening: Normal Variation", op.Name)
	assert.Equal(t, "C44", op.ECO)
}

func TestMissingOpeningFile(t *testing.T) {
	book := LoadOpeningBook(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, book.Empty())

	op := book.Detect([]string{"e4"})
	assert.Equal(t, UnknownOpening, op.Name)
}
