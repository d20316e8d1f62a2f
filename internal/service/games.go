// FILE: internal/service/games.go
package service

import (
	"strings"

	"github.com/corentings/chess/v2"

	"chesstrainer/internal/explorer"
	"chesstrainer/internal/storage"
)

// GameDetail is a single archived game with its replayed moves and
// detected opening.
type GameDetail struct {
	storage.GameRecord
	Moves   []string         `json:"moves"` // SAN
	Opening explorer.Opening `json:"opening"`
}

// ListGames returns archived games matching the filter
func (s *Service) ListGames(filter storage.GameFilter) ([]storage.GameRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.QueryGames(filter)
}

// GetGameDetail retrieves one game with moves and opening information.
// Returns nil when the game does not exist.
func (s *Service) GetGameDetail(gameID string) (*GameDetail, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record, err := s.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	detail := &GameDetail{
		GameRecord: *record,
		Moves:      sanMoves(record.PGN),
		Opening:    s.book.DetectFromPGN(record.PGN),
	}
	return detail, nil
}

// sanMoves replays a PGN and returns its mainline in SAN. A PGN that
// fails to parse yields an empty move list, not an error.
func sanMoves(pgn string) []string {
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return nil
	}
	game := chess.NewGame(opt)

	positions := game.Positions()
	moves := game.Moves()

	sans := make([]string, 0, len(moves))
	for i, move := range moves {
		sans = append(sans, chess.AlgebraicNotation{}.Encode(positions[i], move))
	}
	return sans
}
