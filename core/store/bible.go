package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/patrickudo2004/parchments/core/errors"
)

// PutVersion inserts or overwrites a Bible version record.
func (s *Store) PutVersion(ctx context.Context, v BibleVersion) error {
	v.ID = strings.ToLower(v.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bible_versions
			(id, name, abbreviation, language, copyright, is_downloaded, is_default, download_url, verse_count, installed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			abbreviation = excluded.abbreviation,
			language = excluded.language,
			copyright = excluded.copyright,
			is_downloaded = excluded.is_downloaded,
			is_default = excluded.is_default,
			download_url = excluded.download_url,
			verse_count = excluded.verse_count,
			installed_at = excluded.installed_at`,
		v.ID, v.Name, v.Abbreviation, v.Language, v.Copyright,
		v.IsDownloaded, v.IsDefault, v.DownloadURL, v.VerseCount, v.InstalledAt)
	if err != nil {
		return storeErr("put", "bible_versions", err)
	}
	return nil
}

// GetVersion returns a version by its lowercase short code.
func (s *Store) GetVersion(ctx context.Context, id string) (BibleVersion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, abbreviation, language, copyright, is_downloaded, is_default, download_url, verse_count, installed_at
		 FROM bible_versions WHERE id = ?`, strings.ToLower(id))
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return BibleVersion{}, errors.NewNotFound("version", id)
	}
	if err != nil {
		return BibleVersion{}, storeErr("get", "bible_versions", err)
	}
	return v, nil
}

// ListVersions returns all known versions, downloaded or not.
func (s *Store) ListVersions(ctx context.Context) ([]BibleVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, abbreviation, language, copyright, is_downloaded, is_default, download_url, verse_count, installed_at
		 FROM bible_versions ORDER BY id`)
	if err != nil {
		return nil, storeErr("query", "bible_versions", err)
	}
	defer rows.Close()

	var versions []BibleVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, storeErr("scan", "bible_versions", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// DefaultVersionKey is the settings key mirroring the is_default flag,
// so the selection survives deleting and re-adding a version record.
const DefaultVersionKey = "default_version"

// SetDefaultVersion marks one version as the default, clears the flag
// on all others and mirrors the selection into settings, in a single
// transaction.
func (s *Store) SetDefaultVersion(ctx context.Context, id string) error {
	id = strings.ToLower(id)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE bible_versions SET is_default = 0`); err != nil {
			return storeErr("update", "bible_versions", err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE bible_versions SET is_default = 1 WHERE id = ?`, id)
		if err != nil {
			return storeErr("update", "bible_versions", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.NewNotFound("version", id)
		}
		value, err := json.Marshal(id)
		if err != nil {
			return errors.NewStore("set", "settings", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			DefaultVersionKey, string(value)); err != nil {
			return storeErr("set", "settings", err)
		}
		return nil
	})
}

// DefaultVersion returns the version marked as default, if any.
func (s *Store) DefaultVersion(ctx context.Context) (BibleVersion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, abbreviation, language, copyright, is_downloaded, is_default, download_url, verse_count, installed_at
		 FROM bible_versions WHERE is_default = 1 LIMIT 1`)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return BibleVersion{}, errors.NewNotFound("default version", "")
	}
	if err != nil {
		return BibleVersion{}, storeErr("get", "bible_versions", err)
	}
	return v, nil
}

// MarkDownloaded flips a version's downloaded flag after a successful
// bulk verse write. Ingestion that fails partway never reaches this.
func (s *Store) MarkDownloaded(ctx context.Context, id string, verseCount int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bible_versions SET is_downloaded = 1, verse_count = ?, installed_at = ? WHERE id = ?`,
		verseCount, time.Now().UnixMilli(), strings.ToLower(id))
	if err != nil {
		return storeErr("update", "bible_versions", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("version", id)
	}
	return nil
}

// DeleteVersion removes a version and all of its verses.
func (s *Store) DeleteVersion(ctx context.Context, id string) error {
	id = strings.ToLower(id)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bible_verses WHERE version_id = ?`, id); err != nil {
			return storeErr("delete", "bible_verses", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bible_versions WHERE id = ?`, id); err != nil {
			return storeErr("delete", "bible_versions", err)
		}
		return nil
	})
}

func scanVersion(row rowScanner) (BibleVersion, error) {
	var v BibleVersion
	err := row.Scan(&v.ID, &v.Name, &v.Abbreviation, &v.Language, &v.Copyright,
		&v.IsDownloaded, &v.IsDefault, &v.DownloadURL, &v.VerseCount, &v.InstalledAt)
	return v, err
}

// BulkPutVerses upserts verses in one transaction. Records are validated
// before the transaction begins; IDs are regenerated from coordinates so
// re-importing a version overwrites rather than duplicates.
func (s *Store) BulkPutVerses(ctx context.Context, verses []BibleVerse) error {
	for i := range verses {
		verses[i].VersionID = strings.ToLower(verses[i].VersionID)
		verses[i].ID = VerseID(verses[i].VersionID, verses[i].Book, verses[i].Chapter, verses[i].Verse)
		if err := validateVerse(verses[i]); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO bible_verses (id, version_id, book, chapter, verse, text, interlinear)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				version_id = excluded.version_id,
				book = excluded.book,
				chapter = excluded.chapter,
				verse = excluded.verse,
				text = excluded.text,
				interlinear = excluded.interlinear`)
		if err != nil {
			return storeErr("prepare", "bible_verses", err)
		}
		defer stmt.Close()

		for _, v := range verses {
			var interlinear interface{}
			if len(v.Interlinear) > 0 {
				data, err := json.Marshal(v.Interlinear)
				if err != nil {
					return errors.NewStore("bulk put", "bible_verses", err)
				}
				interlinear = string(data)
			}
			if _, err := stmt.ExecContext(ctx, v.ID, v.VersionID, v.Book, v.Chapter, v.Verse, v.Text, interlinear); err != nil {
				return storeErr("bulk put", "bible_verses", err)
			}
		}
		return nil
	})
}

// GetVerse returns a single verse by coordinate.
func (s *Store) GetVerse(ctx context.Context, versionID, book string, chapter, verse int) (BibleVerse, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, version_id, book, chapter, verse, text, interlinear
		 FROM bible_verses WHERE version_id = ? AND book = ? AND chapter = ? AND verse = ?`,
		strings.ToLower(versionID), book, chapter, verse)
	v, err := scanVerse(row)
	if err == sql.ErrNoRows {
		return BibleVerse{}, errors.NewNotFound("verse", VerseID(versionID, book, chapter, verse))
	}
	if err != nil {
		return BibleVerse{}, storeErr("get", "bible_verses", err)
	}
	return v, nil
}

// GetChapter returns all verses of a chapter sorted ascending by verse.
func (s *Store) GetChapter(ctx context.Context, versionID, book string, chapter int) ([]BibleVerse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version_id, book, chapter, verse, text, interlinear
		 FROM bible_verses WHERE version_id = ? AND book = ? AND chapter = ?
		 ORDER BY verse`,
		strings.ToLower(versionID), book, chapter)
	if err != nil {
		return nil, storeErr("query", "bible_verses", err)
	}
	defer rows.Close()
	return collectVerses(rows)
}

// BooksForVersion returns the distinct book names stored for a version
// in canonical insertion order (rowid order follows ingest order, which
// follows the payload's book order).
func (s *Store) BooksForVersion(ctx context.Context, versionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book FROM bible_verses WHERE version_id = ?
		 GROUP BY book ORDER BY min(rowid)`,
		strings.ToLower(versionID))
	if err != nil {
		return nil, storeErr("query", "bible_verses", err)
	}
	defer rows.Close()

	var books []string
	for rows.Next() {
		var book string
		if err := rows.Scan(&book); err != nil {
			return nil, storeErr("scan", "bible_verses", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate", "bible_verses", err)
	}
	return books, nil
}

// GetVerseRange returns verses start..end inclusive within one chapter,
// sorted ascending.
func (s *Store) GetVerseRange(ctx context.Context, versionID, book string, chapter, start, end int) ([]BibleVerse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version_id, book, chapter, verse, text, interlinear
		 FROM bible_verses
		 WHERE version_id = ? AND book = ? AND chapter = ? AND verse BETWEEN ? AND ?
		 ORDER BY verse`,
		strings.ToLower(versionID), book, chapter, start, end)
	if err != nil {
		return nil, storeErr("query", "bible_verses", err)
	}
	defer rows.Close()
	return collectVerses(rows)
}

// DefaultSearchLimit bounds full-text search results when the caller
// does not specify a limit.
const DefaultSearchLimit = 100

// SearchVerses performs a case-insensitive substring search within one
// version, returning at most limit results in canonical order.
func (s *Store) SearchVerses(ctx context.Context, versionID, query string, limit int) ([]BibleVerse, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version_id, book, chapter, verse, text, interlinear
		 FROM bible_verses
		 WHERE version_id = ? AND lower(text) LIKE ?
		 ORDER BY book, chapter, verse LIMIT ?`,
		strings.ToLower(versionID), pattern, limit)
	if err != nil {
		return nil, storeErr("query", "bible_verses", err)
	}
	defer rows.Close()
	return collectVerses(rows)
}

// CountVerses returns the number of stored verses for a version.
func (s *Store) CountVerses(ctx context.Context, versionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bible_verses WHERE version_id = ?`,
		strings.ToLower(versionID)).Scan(&count)
	if err != nil {
		return 0, storeErr("count", "bible_verses", err)
	}
	return count, nil
}

func collectVerses(rows *sql.Rows) ([]BibleVerse, error) {
	var verses []BibleVerse
	for rows.Next() {
		v, err := scanVerse(rows)
		if err != nil {
			return nil, storeErr("scan", "bible_verses", err)
		}
		verses = append(verses, v)
	}
	return verses, rows.Err()
}

func scanVerse(row rowScanner) (BibleVerse, error) {
	var v BibleVerse
	var interlinear sql.NullString
	if err := row.Scan(&v.ID, &v.VersionID, &v.Book, &v.Chapter, &v.Verse, &v.Text, &interlinear); err != nil {
		return BibleVerse{}, err
	}
	if interlinear.Valid && interlinear.String != "" {
		// Annotations are best-effort enrichment; a corrupt blob should
		// not make the verse unreadable.
		_ = json.Unmarshal([]byte(interlinear.String), &v.Interlinear)
	}
	return v, nil
}
