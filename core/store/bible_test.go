package store

import (
	"context"
	"testing"

	"github.com/patrickudo2004/parchments/core/errors"
)

func seedVersion(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.PutVersion(context.Background(), BibleVersion{
		ID:           id,
		Name:         "Test Version",
		Abbreviation: id,
		Language:     "en",
	}); err != nil {
		t.Fatalf("PutVersion: %v", err)
	}
}

func TestVerseIDIsLowercaseAndStable(t *testing.T) {
	tests := []struct {
		versionID, book string
		chapter, verse  int
		want            string
	}{
		{"KJV", "John", 3, 16, "kjv-john-3-16"},
		{"web", "1 John", 2, 1, "web-1 john-2-1"},
		{"kjv", "Song of Solomon", 4, 1, "kjv-song of solomon-4-1"},
	}
	for _, tt := range tests {
		if got := VerseID(tt.versionID, tt.book, tt.chapter, tt.verse); got != tt.want {
			t.Errorf("VerseID(%q, %q, %d, %d) = %q, want %q",
				tt.versionID, tt.book, tt.chapter, tt.verse, got, tt.want)
		}
	}
}

func TestBulkPutVersesIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")

	verses := []BibleVerse{
		{VersionID: "KJV", Book: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world..."},
		{VersionID: "KJV", Book: "John", Chapter: 3, Verse: 17, Text: "For God sent not his Son..."},
	}
	if err := s.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}
	// Re-ingesting the same payload must overwrite, not duplicate.
	if err := s.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses (again): %v", err)
	}

	count, err := s.CountVerses(ctx, "kjv")
	if err != nil {
		t.Fatalf("CountVerses: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	v, err := s.GetVerse(ctx, "kjv", "John", 3, 16)
	if err != nil {
		t.Fatalf("GetVerse: %v", err)
	}
	if v.ID != "kjv-john-3-16" {
		t.Errorf("ID = %q", v.ID)
	}
}

func TestBulkPutVersesValidatesBeforeWriting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")

	verses := []BibleVerse{
		{VersionID: "kjv", Book: "John", Chapter: 3, Verse: 16, Text: "ok"},
		{VersionID: "kjv", Book: "", Chapter: 3, Verse: 17, Text: "missing book"},
	}
	if err := s.BulkPutVerses(ctx, verses); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("BulkPutVerses = %v, want ErrInvalidInput", err)
	}

	// Validation failed before the transaction, so nothing was written.
	count, err := s.CountVerses(ctx, "kjv")
	if err != nil {
		t.Fatalf("CountVerses: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after rejected batch", count)
	}
}

func TestGetChapterSortedAscending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "web")

	// Insert out of order.
	verses := []BibleVerse{
		{VersionID: "web", Book: "Psalms", Chapter: 23, Verse: 3, Text: "He restores my soul."},
		{VersionID: "web", Book: "Psalms", Chapter: 23, Verse: 1, Text: "The Lord is my shepherd."},
		{VersionID: "web", Book: "Psalms", Chapter: 23, Verse: 2, Text: "He makes me lie down."},
	}
	if err := s.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}

	chapter, err := s.GetChapter(ctx, "web", "Psalms", 23)
	if err != nil {
		t.Fatalf("GetChapter: %v", err)
	}
	if len(chapter) != 3 {
		t.Fatalf("len = %d", len(chapter))
	}
	for i, v := range chapter {
		if v.Verse != i+1 {
			t.Errorf("position %d holds verse %d", i, v.Verse)
		}
	}
}

func TestGetVerseRangeInclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")

	var verses []BibleVerse
	for v := 1; v <= 10; v++ {
		verses = append(verses, BibleVerse{
			VersionID: "kjv", Book: "Romans", Chapter: 8, Verse: v, Text: "text",
		})
	}
	if err := s.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}

	got, err := s.GetVerseRange(ctx, "kjv", "Romans", 8, 3, 5)
	if err != nil {
		t.Fatalf("GetVerseRange: %v", err)
	}
	if len(got) != 3 || got[0].Verse != 3 || got[2].Verse != 5 {
		t.Errorf("range = %+v", got)
	}
}

func TestSearchVersesCaseInsensitiveAndBounded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")

	verses := []BibleVerse{
		{VersionID: "kjv", Book: "John", Chapter: 3, Verse: 16, Text: "For God so LOVED the world"},
		{VersionID: "kjv", Book: "John", Chapter: 13, Verse: 34, Text: "love one another"},
		{VersionID: "kjv", Book: "John", Chapter: 1, Verse: 1, Text: "In the beginning was the Word"},
	}
	if err := s.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}

	got, err := s.SearchVerses(ctx, "kjv", "Love", 0)
	if err != nil {
		t.Fatalf("SearchVerses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}

	limited, err := s.SearchVerses(ctx, "kjv", "love", 1)
	if err != nil {
		t.Fatalf("SearchVerses (limit): %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited matches = %d, want 1", len(limited))
	}
}

func TestInterlinearRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")

	verses := []BibleVerse{{
		VersionID: "kjv", Book: "John", Chapter: 1, Verse: 1,
		Text: "In the beginning was the Word",
		Interlinear: []WordTag{
			{Text: "In the beginning", Number: "G746"},
			{Text: "was", Number: "G2258"},
			{Text: "the Word", Number: "G3056"},
		},
	}}
	if err := s.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}

	v, err := s.GetVerse(ctx, "kjv", "John", 1, 1)
	if err != nil {
		t.Fatalf("GetVerse: %v", err)
	}
	if len(v.Interlinear) != 3 || v.Interlinear[2].Number != "G3056" {
		t.Errorf("Interlinear = %+v", v.Interlinear)
	}
}

func TestSetDefaultVersionIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")
	seedVersion(t, s, "web")

	if err := s.SetDefaultVersion(ctx, "kjv"); err != nil {
		t.Fatalf("SetDefaultVersion: %v", err)
	}
	if err := s.SetDefaultVersion(ctx, "WEB"); err != nil {
		t.Fatalf("SetDefaultVersion: %v", err)
	}

	def, err := s.DefaultVersion(ctx)
	if err != nil {
		t.Fatalf("DefaultVersion: %v", err)
	}
	if def.ID != "web" {
		t.Errorf("default = %q, want web", def.ID)
	}

	versions, err := s.ListVersions(ctx)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	defaults := 0
	for _, v := range versions {
		if v.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("defaults = %d, want exactly 1", defaults)
	}

	if err := s.SetDefaultVersion(ctx, "asv"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("SetDefaultVersion(unknown) = %v, want ErrNotFound", err)
	}

	var stored string
	if err := s.GetSetting(ctx, DefaultVersionKey, &stored); err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if stored != "web" {
		t.Errorf("settings mirror = %q, want web", stored)
	}
}

func TestDeleteVersionRemovesVerses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")

	if err := s.BulkPutVerses(ctx, []BibleVerse{
		{VersionID: "kjv", Book: "John", Chapter: 3, Verse: 16, Text: "x"},
	}); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}
	if err := s.MarkDownloaded(ctx, "kjv", 1); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}

	if err := s.DeleteVersion(ctx, "KJV"); err != nil {
		t.Fatalf("DeleteVersion: %v", err)
	}
	if _, err := s.GetVersion(ctx, "kjv"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("version still present: %v", err)
	}
	count, err := s.CountVerses(ctx, "kjv")
	if err != nil {
		t.Fatalf("CountVerses: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned verses: %d", count)
	}
}

func TestNormalizeStrongsID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"g3056", "G3056", false},
		{" H430 ", "H430", false},
		{"G25", "G25", false},
		{"X999", "", true},
		{"H", "", true},
		{"3056", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeStrongsID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("NormalizeStrongsID(%q) err = %v, want ErrInvalidInput", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeStrongsID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeStrongsID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStrongsLookupNormalizesBeforeQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.BulkPutStrongs(ctx, []StrongsEntry{
		{ID: "g3056", Lemma: "λόγος", Transliteration: "logos", Definition: "word, speech"},
		{ID: "H430", Lemma: "אֱלֹהִים", Transliteration: "elohim", Definition: "God, gods"},
	}); err != nil {
		t.Fatalf("BulkPutStrongs: %v", err)
	}

	e, err := s.GetStrongsEntry(ctx, "g3056")
	if err != nil {
		t.Fatalf("GetStrongsEntry: %v", err)
	}
	if e.ID != "G3056" || e.Transliteration != "logos" {
		t.Errorf("entry = %+v", e)
	}
	if e.Language() != "greek" {
		t.Errorf("Language() = %q", e.Language())
	}

	if _, err := s.GetStrongsEntry(ctx, "X1"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("malformed ID = %v, want ErrInvalidInput before query", err)
	}
	if _, err := s.GetStrongsEntry(ctx, "G9999"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing entry = %v, want ErrNotFound", err)
	}

	hebrew, err := s.CountStrongs(ctx, "h")
	if err != nil {
		t.Fatalf("CountStrongs: %v", err)
	}
	if hebrew != 1 {
		t.Errorf("hebrew count = %d", hebrew)
	}
}

func TestChapterSummaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.BulkPutSummaries(ctx, []ChapterSummary{
		{Book: "John", Chapter: 3, Summary: "Jesus teaches Nicodemus about being born again."},
	}); err != nil {
		t.Fatalf("BulkPutSummaries: %v", err)
	}

	cs, err := s.GetChapterSummary(ctx, "John", 3)
	if err != nil {
		t.Fatalf("GetChapterSummary: %v", err)
	}
	if cs.ID != SummaryID("John", 3) {
		t.Errorf("ID = %q", cs.ID)
	}

	if _, err := s.GetChapterSummary(ctx, "John", 4); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing summary = %v, want ErrNotFound", err)
	}

	if err := s.BulkPutSummaries(ctx, []ChapterSummary{{Book: "", Chapter: 1}}); err == nil {
		t.Error("summary without book should be rejected")
	}
}

func TestBooksForVersionFollowsIngestOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, s, "kjv")

	verses := []BibleVerse{
		{VersionID: "kjv", Book: "Genesis", Chapter: 1, Verse: 1, Text: "In the beginning"},
		{VersionID: "kjv", Book: "Genesis", Chapter: 1, Verse: 2, Text: "And the earth"},
		{VersionID: "kjv", Book: "Exodus", Chapter: 1, Verse: 1, Text: "Now these are the names"},
	}
	if err := s.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}

	books, err := s.BooksForVersion(ctx, "KJV")
	if err != nil {
		t.Fatalf("BooksForVersion: %v", err)
	}
	if len(books) != 2 || books[0] != "Genesis" || books[1] != "Exodus" {
		t.Errorf("books = %v", books)
	}

	books, err = s.BooksForVersion(ctx, "missing")
	if err != nil {
		t.Fatalf("BooksForVersion(missing): %v", err)
	}
	if len(books) != 0 {
		t.Errorf("books for missing version = %v", books)
	}
}
