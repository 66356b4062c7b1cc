package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/patrickudo2004/parchments/core/errors"
)

// BulkPutStrongs upserts lexicon entries in one transaction. Entries are
// immutable in practice; the upsert keeps re-seeding idempotent.
func (s *Store) BulkPutStrongs(ctx context.Context, entries []StrongsEntry) error {
	for i := range entries {
		id, err := NormalizeStrongsID(entries[i].ID)
		if err != nil {
			return err
		}
		entries[i].ID = id
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO strongs_entries (id, lemma, transliteration, pronunciation, derivation, definition, kjv_usage)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				lemma = excluded.lemma,
				transliteration = excluded.transliteration,
				pronunciation = excluded.pronunciation,
				derivation = excluded.derivation,
				definition = excluded.definition,
				kjv_usage = excluded.kjv_usage`)
		if err != nil {
			return storeErr("prepare", "strongs_entries", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.ID, e.Lemma, e.Transliteration,
				e.Pronunciation, e.Derivation, e.Definition, e.KJVUsage); err != nil {
				return storeErr("bulk put", "strongs_entries", err)
			}
		}
		return nil
	})
}

// GetStrongsEntry looks up a lexicon entry by its canonical tag. The ID
// is case-normalized and shape-validated before any query executes; a
// malformed ID is a ParseError, not a store miss.
func (s *Store) GetStrongsEntry(ctx context.Context, id string) (StrongsEntry, error) {
	normalized, err := NormalizeStrongsID(id)
	if err != nil {
		return StrongsEntry{}, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, lemma, transliteration, pronunciation, derivation, definition, kjv_usage
		 FROM strongs_entries WHERE id = ?`, normalized)
	var e StrongsEntry
	err = row.Scan(&e.ID, &e.Lemma, &e.Transliteration, &e.Pronunciation,
		&e.Derivation, &e.Definition, &e.KJVUsage)
	if err == sql.ErrNoRows {
		return StrongsEntry{}, errors.NewNotFound("lexicon entry", normalized)
	}
	if err != nil {
		return StrongsEntry{}, storeErr("get", "strongs_entries", err)
	}
	return e, nil
}

// CountStrongs returns the number of lexicon entries for one language
// prefix ("H" or "G"), or all entries when prefix is empty.
func (s *Store) CountStrongs(ctx context.Context, prefix string) (int, error) {
	var count int
	var err error
	if prefix == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM strongs_entries`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM strongs_entries WHERE id LIKE ?`,
			strings.ToUpper(prefix)+"%").Scan(&count)
	}
	if err != nil {
		return 0, storeErr("count", "strongs_entries", err)
	}
	return count, nil
}

// BulkPutSummaries upserts chapter summaries in one transaction.
func (s *Store) BulkPutSummaries(ctx context.Context, summaries []ChapterSummary) error {
	for i := range summaries {
		if summaries[i].Book == "" || summaries[i].Chapter < 1 {
			return errors.NewParse("chapter summary", summaries[i].ID, "missing book or chapter")
		}
		summaries[i].ID = SummaryID(summaries[i].Book, summaries[i].Chapter)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO chapter_summaries (id, book, chapter, summary)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				book = excluded.book,
				chapter = excluded.chapter,
				summary = excluded.summary`)
		if err != nil {
			return storeErr("prepare", "chapter_summaries", err)
		}
		defer stmt.Close()

		for _, cs := range summaries {
			if _, err := stmt.ExecContext(ctx, cs.ID, cs.Book, cs.Chapter, cs.Summary); err != nil {
				return storeErr("bulk put", "chapter_summaries", err)
			}
		}
		return nil
	})
}

// GetChapterSummary returns the summary for a book/chapter coordinate.
func (s *Store) GetChapterSummary(ctx context.Context, book string, chapter int) (ChapterSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, book, chapter, summary FROM chapter_summaries WHERE book = ? AND chapter = ?`,
		book, chapter)
	var cs ChapterSummary
	err := row.Scan(&cs.ID, &cs.Book, &cs.Chapter, &cs.Summary)
	if err == sql.ErrNoRows {
		return ChapterSummary{}, errors.NewNotFound("chapter summary", SummaryID(book, chapter))
	}
	if err != nil {
		return ChapterSummary{}, storeErr("get", "chapter_summaries", err)
	}
	return cs, nil
}
