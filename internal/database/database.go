package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		profile_picture TEXT,
		-- Store list-valued fields as JSON text
		skills_offered_json TEXT NOT NULL DEFAULT '[]',
		skills_wanted_json TEXT NOT NULL DEFAULT '[]',
		rating REAL NOT NULL DEFAULT 0,
		reviews_json TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'active', -- active | inactive
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT NOT NULL PRIMARY KEY,
		from_user_id TEXT NOT NULL REFERENCES users(id),
		to_user_id TEXT NOT NULL REFERENCES users(id),
		skills_offered_json TEXT NOT NULL DEFAULT '[]',
		skills_wanted_json TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'pending', -- pending | accepted | rejected
		accepted_at DATETIME,
		rejected_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- At most one pending request per ordered (from, to) pair.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_pair
		ON requests(from_user_id, to_user_id) WHERE status = 'pending';

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT NOT NULL PRIMARY KEY,
		-- Participant pair stored canonicalized (user_a < user_b) so the
		-- unique index serializes concurrent first contact from both sides.
		user_a TEXT NOT NULL REFERENCES users(id),
		user_b TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_a, user_b)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT NOT NULL PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		sender_id TEXT NOT NULL REFERENCES users(id),
		receiver_id TEXT NOT NULL REFERENCES users(id),
		text TEXT NOT NULL,
		read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation
		ON messages(conversation_id, created_at);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		user_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
