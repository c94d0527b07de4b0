// Package fakehost emulates the flashcards host app for tests. The store
// keeps notes, cards, decks and models in an in-memory SQLite database so
// constraint behavior (duplicate deck names, checksum duplicates, card
// generation) matches what the real host does, instead of being stubbed.
package fakehost

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ankidroid/flashcards.go/pkg/contract"
	"github.com/ankidroid/flashcards.go/pkg/record"
)

const schema = `
CREATE TABLE notes (
	_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	guid  TEXT    NOT NULL,
	mid   INTEGER NOT NULL,
	mod   INTEGER NOT NULL DEFAULT 0,
	usn   INTEGER NOT NULL DEFAULT -1,
	tags  TEXT    NOT NULL DEFAULT '',
	flds  TEXT    NOT NULL,
	sfld  TEXT    NOT NULL DEFAULT '',
	csum  INTEGER NOT NULL DEFAULT 0,
	flags INTEGER NOT NULL DEFAULT 0,
	data  TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE cards (
	_id    INTEGER PRIMARY KEY AUTOINCREMENT,
	nid    INTEGER NOT NULL,
	did    INTEGER NOT NULL,
	ord    INTEGER NOT NULL,
	mod    INTEGER NOT NULL DEFAULT 0,
	type   INTEGER NOT NULL DEFAULT 0,
	queue  INTEGER NOT NULL DEFAULT 0,
	due    INTEGER NOT NULL DEFAULT 0,
	ivl    INTEGER NOT NULL DEFAULT 0,
	factor INTEGER NOT NULL DEFAULT 0,
	reps   INTEGER NOT NULL DEFAULT 0,
	lapses INTEGER NOT NULL DEFAULT 0,
	left   INTEGER NOT NULL DEFAULT 0,
	odue   INTEGER NOT NULL DEFAULT 0,
	odid   INTEGER NOT NULL DEFAULT 0,
	flags  INTEGER NOT NULL DEFAULT 0,
	data   TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE decks (
	did  INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE models (
	_id              INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT    NOT NULL,
	field_names      TEXT    NOT NULL,
	num_cards        INTEGER NOT NULL,
	css              TEXT    NOT NULL DEFAULT '',
	deck_id          INTEGER NOT NULL DEFAULT 1,
	sort_field_index INTEGER NOT NULL DEFAULT 0,
	type             INTEGER NOT NULL DEFAULT 0,
	latex_pre        TEXT    NOT NULL DEFAULT '',
	latex_post       TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE templates (
	model_id           INTEGER NOT NULL,
	ord                INTEGER NOT NULL,
	card_template_name TEXT    NOT NULL,
	question_format    TEXT    NOT NULL DEFAULT '',
	answer_format      TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (model_id, ord)
);
CREATE TABLE media (
	fname TEXT PRIMARY KEY
);
`

// Store is the SQLite state behind a fake host.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// NewStore opens an empty in-memory collection seeded with the Default
// deck and the built-in Basic model, like a fresh host install.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// The in-memory database vanishes if its only connection closes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) seed() error {
	if _, err := s.db.Exec(`INSERT INTO decks (did, name) VALUES (?, ?)`,
		contract.DefaultDeckID, "Default"); err != nil {
		return fmt.Errorf("seed default deck: %w", err)
	}

	fields := record.JoinFields([]string{"Front", "Back"})
	if _, err := s.db.Exec(
		`INSERT INTO models (_id, name, field_names, num_cards, deck_id) VALUES (?, ?, ?, 1, ?)`,
		contract.DefaultBasicModelID, contract.DefaultModelName, fields, contract.DefaultDeckID,
	); err != nil {
		return fmt.Errorf("seed basic model: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO templates (model_id, ord, card_template_name, question_format, answer_format)
		 VALUES (?, 0, 'Card 1', '{{Front}}', '{{FrontSide}}<hr id="answer">{{Back}}')`,
		contract.DefaultBasicModelID,
	); err != nil {
		return fmt.Errorf("seed basic template: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// selectRows runs a built query and returns the values in projection
// order, with []byte columns folded to string.
func (s *Store) selectRows(query string, args ...any) ([]string, [][]any, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]any
	for rows.Next() {
		scan := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range scan {
			ptrs[i] = &scan[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range scan {
			if b, ok := v.([]byte); ok {
				scan[i] = string(b)
			}
		}
		out = append(out, scan)
	}
	return cols, out, rows.Err()
}

func quoteIdent(col string) string {
	return `"` + strings.ReplaceAll(col, `"`, ``) + `"`
}
