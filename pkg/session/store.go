// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package session persists a per-request activity log: one row per role
// composition and per tool dispatch. The store is best-effort by
// contract; callers log write failures and carry on.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const eventTable = "rolekit_events"

// Kind labels the recorded activity.
type Kind string

const (
	KindComposition Kind = "composition"
	KindDispatch    Kind = "dispatch"
	KindRoute       Kind = "route"
)

// Event is one recorded engine activity.
type Event struct {
	ID        string
	Kind      Kind
	Role      string
	Tool      string
	Outcome   string // success | failure
	Detail    string
	CreatedAt time.Time
}

// Store persists events in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates a SQLite-backed store at path and ensures schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle and ensures schema.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			role TEXT NOT NULL,
			tool TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`, eventTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_kind ON %s(kind);`, eventTable, eventTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_role ON %s(role);`, eventTable, eventTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created ON %s(created_at);`, eventTable, eventTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record persists one event, assigning it an id and timestamp.
func (s *Store) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, kind, role, tool, outcome, detail, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, eventTable),
		event.ID, string(event.Kind), event.Role, event.Tool,
		event.Outcome, event.Detail, event.CreatedAt.UnixMilli())
	return err
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, kind, role, tool, outcome, detail, created_at
			FROM %s ORDER BY created_at DESC, id LIMIT ?`, eventTable), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		var createdAt int64
		if err := rows.Scan(&e.ID, &kind, &e.Role, &e.Tool, &e.Outcome, &e.Detail, &createdAt); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
