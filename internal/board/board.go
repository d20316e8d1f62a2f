// FILE: internal/board/board.go
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// ErrIllegalMove is returned when an encoded move violates movement rules
// for the given position, including moves that leave the own king in check.
var ErrIllegalMove = errors.New("illegal move")

// Applied is the result of applying one encoded move to a position.
// The input position is never mutated; callers own their history.
type Applied struct {
	FEN string // position after the move
	SAN string // human-readable form of the move
	UCI string // encoding actually applied, promotion letter included
}

// Apply validates and applies a single encoded move (from-square +
// to-square + optional promotion letter) against the position in fen.
//
// When defaultQueen is set, a promotion move given without a promotion
// letter is retried as a queen promotion; scripted replies are replayed
// with defaultQueen false so malformed puzzle data is not papered over.
func Apply(fen, encoded string, defaultQueen bool) (Applied, error) {
	if !IsEncodedMove(encoded) {
		return Applied{}, fmt.Errorf("%w: malformed encoding %q", ErrIllegalMove, encoded)
	}

	applied, err := apply(fen, encoded)
	if err == nil {
		return applied, nil
	}

	// A bare promotion push like e7e8 decodes without a promotion piece
	// and fails validation; retry with the queen default.
	if defaultQueen && len(encoded) == 4 && (encoded[3] == '8' || encoded[3] == '1') {
		if applied, retryErr := apply(fen, encoded+"q"); retryErr == nil {
			return applied, nil
		}
	}

	return Applied{}, fmt.Errorf("%w: %s", ErrIllegalMove, encoded)
}

func apply(fen, encoded string) (Applied, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return Applied{}, fmt.Errorf("invalid FEN: %w", err)
	}
	game := chess.NewGame(opt)

	move, err := chess.UCINotation{}.Decode(game.Position(), encoded)
	if err != nil {
		return Applied{}, err
	}

	// Encode SAN against the pre-move position before pushing the move
	san := chess.AlgebraicNotation{}.Encode(game.Position(), move)

	if err := game.Move(move, nil); err != nil {
		return Applied{}, err
	}

	return Applied{
		FEN: game.FEN(),
		SAN: san,
		UCI: move.String(),
	}, nil
}

// Turn reports which side moves next in fen.
func Turn(fen string) (byte, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 || (parts[1] != "w" && parts[1] != "b") {
		return 0, fmt.Errorf("invalid FEN: %q", fen)
	}
	return parts[1][0], nil
}

// IsEncodedMove reports whether s is a well-formed move encoding.
// Valid encodings are 4-5 characters: [a-h][1-8][a-h][1-8][qrbn]?
func IsEncodedMove(s string) bool {
	if len(s) < 4 || len(s) > 5 {
		return false
	}

	if s[0] < 'a' || s[0] > 'h' ||
		s[1] < '1' || s[1] > '8' ||
		s[2] < 'a' || s[2] > 'h' ||
		s[3] < '1' || s[3] > '8' {
		return false
	}

	// Promotion piece if present
	if len(s) == 5 {
		promotion := s[4]
		if promotion != 'q' && promotion != 'r' && promotion != 'b' && promotion != 'n' {
			return false
		}
	}

	return true
}

// ValidateFEN checks fen by round-tripping it through the rules library.
func ValidateFEN(fen string) error {
	if _, err := chess.FEN(fen); err != nil {
		return fmt.Errorf("invalid FEN: %w", err)
	}
	return nil
}

// ToASCII renders the piece placement of fen as an ASCII diagram.
// When flipped, the board is drawn from black's perspective.
func ToASCII(fen string, flipped bool) string {
	placement := strings.SplitN(fen, " ", 2)[0]
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return ""
	}

	var squares [8][8]byte
	for r := 0; r < 8; r++ {
		file := 0
		for _, ch := range ranks[r] {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
			} else if file < 8 {
				squares[r][file] = byte(ch)
				file++
			}
		}
	}

	files := "a b c d e f g h"
	if flipped {
		files = "h g f e d c b a"
	}

	var sb strings.Builder
	sb.WriteString("  " + files + "\n")
	for i := 0; i < 8; i++ {
		r := i
		if flipped {
			r = 7 - i
		}
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for j := 0; j < 8; j++ {
			f := j
			if flipped {
				f = 7 - j
			}
			if squares[r][f] == 0 {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", squares[r][f]))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  " + files)

	return sb.String()
}
