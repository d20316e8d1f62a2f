// FILE: internal/storage/schema.go
package storage

import "time"

// UserRecord represents a user account in the database
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// SessionRecord represents an active user session
type SessionRecord struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// CollectionRecord represents a named game collection
type CollectionRecord struct {
	CollectionID string    `db:"collection_id" json:"collectionId"`
	Name         string    `db:"name" json:"name"`
	Platform     string    `db:"platform" json:"platform"` // "chess.com" or "lichess"
	Username     string    `db:"username" json:"username"` // account the games were fetched for
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	GameCount    int       `db:"game_count" json:"gameCount"` // derived, not stored
}

// GameRecord represents an archived game inside a collection
type GameRecord struct {
	GameID      string    `db:"game_id" json:"gameId"`
	Collection  string    `db:"collection_id" json:"collection"`
	Platform    string    `db:"platform" json:"platform"`
	PlayedAt    string    `db:"played_at" json:"playedAt"` // ISO datetime string as reported by the platform
	WhitePlayer string    `db:"white_player" json:"whitePlayer"`
	BlackPlayer string    `db:"black_player" json:"blackPlayer"`
	Result      string    `db:"result" json:"result"` // "1-0", "0-1", "1/2-1/2"
	TimeControl string    `db:"time_control" json:"timeControl"`
	TimeClass   string    `db:"time_class" json:"timeClass"` // bullet/blitz/rapid/classical/correspondence
	Rated       bool      `db:"rated" json:"rated"`
	PGN         string    `db:"pgn" json:"pgn"`
	ImportedAt  time.Time `db:"imported_at" json:"importedAt"`
}

// SolveRecord represents a solved puzzle row
type SolveRecord struct {
	Collection string    `db:"collection_key"`
	PuzzleID   string    `db:"puzzle_id"`
	Difficulty string    `db:"difficulty"`
	SolvedAt   time.Time `db:"solved_at"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL COLLATE NOCASE,
	email TEXT COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email) WHERE email IS NOT NULL AND email != '';

CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

CREATE TABLE IF NOT EXISTS collections (
	collection_id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL COLLATE NOCASE,
	platform TEXT NOT NULL CHECK(platform IN ('chess.com', 'lichess')),
	username TEXT NOT NULL COLLATE NOCASE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	collection_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	played_at TEXT NOT NULL,
	white_player TEXT NOT NULL COLLATE NOCASE,
	black_player TEXT NOT NULL COLLATE NOCASE,
	result TEXT NOT NULL,
	time_control TEXT NOT NULL DEFAULT '',
	time_class TEXT NOT NULL DEFAULT '',
	rated INTEGER NOT NULL DEFAULT 0,
	pgn TEXT NOT NULL,
	imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (collection_id) REFERENCES collections(collection_id) ON DELETE CASCADE,
	UNIQUE(collection_id, platform, played_at, white_player, black_player)
);

CREATE INDEX IF NOT EXISTS idx_games_collection ON games(collection_id);
CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at);
CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player);
CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player);

CREATE TABLE IF NOT EXISTS solved_puzzles (
	collection_key TEXT NOT NULL,
	puzzle_id TEXT NOT NULL,
	difficulty TEXT NOT NULL CHECK(difficulty IN ('easy', 'medium', 'hard')),
	solved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection_key, puzzle_id)
);

CREATE INDEX IF NOT EXISTS idx_solved_collection ON solved_puzzles(collection_key);

CREATE TABLE IF NOT EXISTS collection_stats (
	collection_key TEXT PRIMARY KEY,
	attempted INTEGER NOT NULL DEFAULT 0
);
`
