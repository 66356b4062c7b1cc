package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patrickudo2004/parchments/core/errors"
)

// Schema versions are tracked in PRAGMA user_version. Each migration only
// adds tables and indexes; existing data is never rebuilt or dropped.
type migration struct {
	version int
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, apply: migrateV1},
	{version: 2, apply: migrateV2},
}

// migrate applies all pending schema migrations in order.
func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return errors.NewStore("migrate", "", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := s.inTx(ctx, func(tx *sql.Tx) error {
			if err := m.apply(tx); err != nil {
				return errors.NewStore("migrate", fmt.Sprintf("v%d", m.version), err)
			}
			// PRAGMA does not support bind parameters.
			if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
				return errors.NewStore("migrate", fmt.Sprintf("v%d", m.version), err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 introduces the user-content tables: notes, folders, voice
// notes, users and settings.
func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			content     TEXT NOT NULL DEFAULT '',
			folder_id   TEXT,
			tags        TEXT NOT NULL DEFAULT '[]',
			type        TEXT NOT NULL DEFAULT 'text',
			word_count  INTEGER NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at)`,

		`CREATE TABLE IF NOT EXISTS folders (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			parent_id   TEXT,
			sort_order  INTEGER NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id)`,

		`CREATE TABLE IF NOT EXISTS voice_notes (
			id                   TEXT PRIMARY KEY,
			note_id              TEXT NOT NULL,
			audio                BLOB,
			duration             REAL NOT NULL DEFAULT 0,
			transcription        TEXT,
			transcription_status TEXT NOT NULL DEFAULT 'pending',
			created_at           INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_voice_notes_note ON voice_notes(note_id)`,

		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			full_name     TEXT,
			password_hash TEXT NOT NULL,
			created_at    INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV2 adds the Bible reference-content tables.
func migrateV2(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bible_versions (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			abbreviation  TEXT NOT NULL,
			language      TEXT NOT NULL DEFAULT '',
			copyright     TEXT NOT NULL DEFAULT '',
			is_downloaded INTEGER NOT NULL DEFAULT 0,
			is_default    INTEGER NOT NULL DEFAULT 0,
			download_url  TEXT NOT NULL DEFAULT '',
			verse_count   INTEGER NOT NULL DEFAULT 0,
			installed_at  INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS bible_verses (
			id          TEXT PRIMARY KEY,
			version_id  TEXT NOT NULL,
			book        TEXT NOT NULL COLLATE NOCASE,
			chapter     INTEGER NOT NULL,
			verse       INTEGER NOT NULL,
			text        TEXT NOT NULL,
			interlinear TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_verses_coord
			ON bible_verses(version_id, book, chapter, verse)`,
		`CREATE INDEX IF NOT EXISTS idx_verses_chapter
			ON bible_verses(version_id, book, chapter)`,

		`CREATE TABLE IF NOT EXISTS strongs_entries (
			id              TEXT PRIMARY KEY,
			lemma           TEXT NOT NULL DEFAULT '',
			transliteration TEXT NOT NULL DEFAULT '',
			pronunciation   TEXT NOT NULL DEFAULT '',
			derivation      TEXT NOT NULL DEFAULT '',
			definition      TEXT NOT NULL DEFAULT '',
			kjv_usage       TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS chapter_summaries (
			id      TEXT PRIMARY KEY,
			book    TEXT NOT NULL COLLATE NOCASE,
			chapter INTEGER NOT NULL,
			summary TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_summaries_coord
			ON chapter_summaries(book, chapter)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
