// FILE: internal/storage/game.go
package storage

import (
	"database/sql"
	"fmt"
)

// GameFilter narrows archive queries. Zero values match everything.
type GameFilter struct {
	Collection string
	FromDate   string // inclusive, ISO date or datetime
	ToDate     string // inclusive; a bare date covers the whole day
	Color      string // "white" or "black", combined with Username
	Username   string
}

// RecordGame asynchronously records an imported game. Duplicate rows
// (same collection, platform, date and players) are ignored so repeated
// imports of the same archive month are safe.
func (s *Store) RecordGame(record GameRecord) error {
	return s.enqueueWrite("game record", func(tx *sql.Tx) error {
		query := `INSERT OR IGNORE INTO games (
			game_id, collection_id, platform, played_at,
			white_player, black_player, result,
			time_control, time_class, rated, pgn, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.Collection, record.Platform, record.PlayedAt,
			record.WhitePlayer, record.BlackPlayer, record.Result,
			record.TimeControl, record.TimeClass, record.Rated, record.PGN, record.ImportedAt,
		)
		return err
	})
}

// GameExists checks whether a game is already archived, for dedup
// before fetching full PGNs.
func (s *Store) GameExists(collection, platform, playedAt, white, black string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM games
		WHERE collection_id = ? AND platform = ? AND played_at = ?
		AND white_player = ? AND black_player = ?`,
		collection, platform, playedAt, white, black,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return count > 0, nil
}

// GetGame retrieves a single archived game
func (s *Store) GetGame(gameID string) (*GameRecord, error) {
	var g GameRecord
	err := s.db.QueryRow(`SELECT
		game_id, collection_id, platform, played_at,
		white_player, black_player, result,
		time_control, time_class, rated, pgn, imported_at
		FROM games WHERE game_id = ?`, gameID,
	).Scan(
		&g.GameID, &g.Collection, &g.Platform, &g.PlayedAt,
		&g.WhitePlayer, &g.BlackPlayer, &g.Result,
		&g.TimeControl, &g.TimeClass, &g.Rated, &g.PGN, &g.ImportedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

// QueryGames retrieves archived games with optional filtering
func (s *Store) QueryGames(filter GameFilter) ([]GameRecord, error) {
	query := `SELECT
		game_id, collection_id, platform, played_at,
		white_player, black_player, result,
		time_control, time_class, rated, pgn, imported_at
	FROM games WHERE 1=1`

	var args []interface{}

	if filter.Collection != "" {
		query += " AND collection_id = ?"
		args = append(args, filter.Collection)
	}

	if filter.FromDate != "" {
		query += " AND played_at >= ?"
		args = append(args, filter.FromDate)
	}

	if filter.ToDate != "" {
		to := filter.ToDate
		// A bare date means through the end of that day
		if len(to) == len("2006-01-02") {
			to += "T23:59:59"
		}
		query += " AND played_at <= ?"
		args = append(args, to)
	}

	if filter.Color != "" && filter.Username != "" {
		switch filter.Color {
		case "white":
			query += " AND white_player = ?"
			args = append(args, filter.Username)
		case "black":
			query += " AND black_player = ?"
			args = append(args, filter.Username)
		}
	} else if filter.Username != "" {
		query += " AND (white_player = ? OR black_player = ?)"
		args = append(args, filter.Username, filter.Username)
	}

	query += " ORDER BY played_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.Collection, &g.Platform, &g.PlayedAt,
			&g.WhitePlayer, &g.BlackPlayer, &g.Result,
			&g.TimeControl, &g.TimeClass, &g.Rated, &g.PGN, &g.ImportedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}
