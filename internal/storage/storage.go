package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrNoNickname = errors.New("nickname not set")
	ErrOpenEntry  = errors.New("open entry exists")
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// New creates a new Storage instance and initializes the database
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS participants (
			user_id INTEGER PRIMARY KEY,
			nickname TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user_id ON entries(user_id)`,

		// At most one open entry per participant.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_open ON entries(user_id)
			WHERE status IN ('pending', 'pending_confirmation')`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

// --- Participants ---

// UpsertParticipant inserts a participant or overwrites the nickname
func (s *Storage) UpsertParticipant(userID int64, nickname string) error {
	_, err := s.db.Exec(
		`INSERT INTO participants (user_id, nickname) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET nickname = excluded.nickname`,
		userID, nickname,
	)
	return err
}

// GetParticipant returns a participant by Telegram identity
func (s *Storage) GetParticipant(userID int64) (*Participant, error) {
	var p Participant
	err := s.db.QueryRow(
		"SELECT user_id, nickname FROM participants WHERE user_id = ?",
		userID,
	).Scan(&p.UserID, &p.Nickname)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Entries ---

// CreateEntry inserts a new pending entry for a participant. The participant
// must have a nickname on file, and must not already have an open entry.
func (s *Storage) CreateEntry(userID int64, amount int) (*Entry, error) {
	p, err := s.GetParticipant(userID)
	if err == ErrNotFound || (err == nil && p.Nickname == "") {
		return nil, ErrNoNickname
	}
	if err != nil {
		return nil, err
	}

	var count int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM entries
		 WHERE user_id = ? AND status IN ('pending', 'pending_confirmation')`,
		userID,
	).Scan(&count)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrOpenEntry
	}

	now := time.Now().Unix()
	result, err := s.db.Exec(
		`INSERT INTO entries (user_id, amount, status, created_at)
		 VALUES (?, ?, 'pending', ?)`,
		userID, amount, now,
	)
	if err != nil {
		return nil, err
	}

	id, _ := result.LastInsertId()
	return &Entry{
		ID:        id,
		UserID:    userID,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

// CurrentEntry returns the most recently created entry for a participant,
// by entry id order.
func (s *Storage) CurrentEntry(userID int64) (*Entry, error) {
	return s.scanEntry(s.db.QueryRow(
		`SELECT id, user_id, amount, status, created_at
		 FROM entries WHERE user_id = ? ORDER BY id DESC LIMIT 1`,
		userID,
	))
}

// openEntry returns the participant's single open entry, if any.
func (s *Storage) openEntry(userID int64) (*Entry, error) {
	return s.scanEntry(s.db.QueryRow(
		`SELECT id, user_id, amount, status, created_at
		 FROM entries
		 WHERE user_id = ? AND status IN ('pending', 'pending_confirmation')
		 ORDER BY id DESC LIMIT 1`,
		userID,
	))
}

// MarkProofSubmitted moves the participant's open entry to pending_confirmation.
// Idempotent when the entry is already awaiting confirmation. The update targets
// a single row by id in one statement.
func (s *Storage) MarkProofSubmitted(userID int64) (*Entry, error) {
	result, err := s.db.Exec(
		`UPDATE entries SET status = 'pending_confirmation'
		 WHERE id = (
			SELECT id FROM entries
			WHERE user_id = ? AND status IN ('pending', 'pending_confirmation')
			ORDER BY id DESC LIMIT 1
		 )`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrNotFound
	}

	return s.openEntry(userID)
}

// CloseEntry moves the participant's open entry to a terminal status
// (paid or rejected) in one statement.
func (s *Storage) CloseEntry(userID int64, status Status) (*Entry, error) {
	if !status.Terminal() {
		return nil, errors.New("close requires a terminal status")
	}

	result, err := s.db.Exec(
		`UPDATE entries SET status = ?
		 WHERE id = (
			SELECT id FROM entries
			WHERE user_id = ? AND status IN ('pending', 'pending_confirmation')
			ORDER BY id DESC LIMIT 1
		 )`,
		status, userID,
	)
	if err != nil {
		return nil, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrNotFound
	}

	return s.CurrentEntry(userID)
}

// ListEntries returns all entries for a participant, newest first
func (s *Storage) ListEntries(userID int64) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, amount, status, created_at
		 FROM entries WHERE user_id = ? ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64

		err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Status, &createdAt)
		if err != nil {
			return nil, err
		}

		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Storage) scanEntry(row *sql.Row) (*Entry, error) {
	var e Entry
	var createdAt int64

	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e.CreatedAt = time.Unix(createdAt, 0)
	return &e, nil
}
