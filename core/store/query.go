package store

import (
	"context"

	"github.com/patrickudo2004/parchments/core/ref"
)

// VersesForReference resolves a parsed scripture reference against one
// version. Chapter-only references return the whole chapter; ranged
// references return the inclusive verse span.
func (s *Store) VersesForReference(ctx context.Context, versionID string, r ref.Reference) ([]BibleVerse, error) {
	switch {
	case r.Verse == 0:
		return s.GetChapter(ctx, versionID, r.Book, r.Chapter)
	case r.VerseEnd > 0:
		return s.GetVerseRange(ctx, versionID, r.Book, r.Chapter, r.Verse, r.VerseEnd)
	default:
		v, err := s.GetVerse(ctx, versionID, r.Book, r.Chapter, r.Verse)
		if err != nil {
			return nil, err
		}
		return []BibleVerse{v}, nil
	}
}
