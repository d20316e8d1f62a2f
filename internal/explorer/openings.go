// FILE: internal/explorer/openings.go
package explorer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/corentings/chess/v2"
)

const UnknownOpening = "Unknown Opening"

// Opening identifies a named opening line
type Opening struct {
	Name string `json:"name"`
	ECO  string `json:"eco"`
}

type openingNode struct {
	Name  string                  `json:"name"`
	ECO   string                  `json:"eco"`
	Moves map[string]*openingNode `json:"moves"`
}

// OpeningBook matches move sequences against a tree of named openings
// keyed by UCI moves.
type OpeningBook struct {
	root map[string]*openingNode
}

// LoadOpeningBook reads the opening tree from a JSON file. A missing
// or malformed file yields an empty book, not an error, so the server
// can run without opening data.
func LoadOpeningBook(path string) *OpeningBook {
	data, err := os.ReadFile(path)
	if err != nil {
		return &OpeningBook{}
	}

	var root map[string]*openingNode
	if err := json.Unmarshal(data, &root); err != nil {
		return &OpeningBook{}
	}

	return &OpeningBook{root: root}
}

func (b *OpeningBook) Empty() bool {
	return len(b.root) == 0
}

// Detect walks the opening tree along the given moves (SAN or UCI)
// and returns the deepest named opening reached.
func (b *OpeningBook) Detect(moves []string) Opening {
	opening := Opening{Name: UnknownOpening}
	if len(moves) == 0 || b.Empty() {
		return opening
	}

	uciMoves, err := toUCI(moves)
	if err != nil || len(uciMoves) == 0 {
		return opening
	}

	current := b.root
	for _, move := range uciMoves {
		node, ok := current[move]
		if !ok {
			break
		}
		if node.Name != "" {
			opening = Opening{Name: node.Name, ECO: node.ECO}
		}
		current = node.Moves
	}

	return opening
}

// DetectFromPGN detects the opening of a full game record
func (b *OpeningBook) DetectFromPGN(pgn string) Opening {
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return Opening{Name: UnknownOpening}
	}
	game := chess.NewGame(opt)

	positions := game.Positions()
	moves := game.Moves()

	uciMoves := make([]string, 0, len(moves))
	for i, move := range moves {
		uciMoves = append(uciMoves, chess.UCINotation{}.Encode(positions[i], move))
	}

	return b.Detect(uciMoves)
}

// toUCI converts a move list that may be SAN, UCI, or a mix into pure
// UCI by replaying from the starting position. Conversion stops at the
// first move that is neither.
func toUCI(moves []string) ([]string, error) {
	game := chess.NewGame()
	uciMoves := make([]string, 0, len(moves))

	for _, raw := range moves {
		pos := game.Position()

		move, err := chess.AlgebraicNotation{}.Decode(pos, raw)
		if err != nil {
			move, err = chess.UCINotation{}.Decode(pos, raw)
			if err != nil {
				break
			}
		}

		uci := chess.UCINotation{}.Encode(pos, move)
		if err := game.Move(move, nil); err != nil {
			break
		}
		uciMoves = append(uciMoves, uci)
	}

	if len(uciMoves) == 0 && len(moves) > 0 {
		return nil, fmt.Errorf("no playable moves in %v", moves)
	}
	return uciMoves, nil
}
