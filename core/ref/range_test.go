package ref

import (
	"testing"

	"github.com/patrickudo2004/parchments/core/errors"
)

func intPtr(n int) *int { return &n }

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Range
	}{
		{
			name: "single verse",
			in:   "Genesis 1:1",
			want: Range{Book: "Genesis", ChapterStart: intPtr(1), VerseStart: intPtr(1)},
		},
		{
			name: "dot separators",
			in:   "Gen.1.1",
			want: Range{Book: "Genesis", ChapterStart: intPtr(1), VerseStart: intPtr(1)},
		},
		{
			name: "verse range within chapter",
			in:   "Genesis 1:1-5",
			want: Range{Book: "Genesis", ChapterStart: intPtr(1), VerseStart: intPtr(1), VerseEnd: intPtr(5)},
		},
		{
			name: "cross chapter range",
			in:   "Genesis 1:1-2:5",
			want: Range{Book: "Genesis", ChapterStart: intPtr(1), VerseStart: intPtr(1), ChapterEnd: intPtr(2), VerseEnd: intPtr(5)},
		},
		{
			name: "chapter range",
			in:   "Genesis 1-2",
			want: Range{Book: "Genesis", ChapterStart: intPtr(1), ChapterEnd: intPtr(2)},
		},
		{
			name: "whole chapter",
			in:   "Genesis 1",
			want: Range{Book: "Genesis", ChapterStart: intPtr(1)},
		},
		{
			name: "whole book",
			in:   "Genesis",
			want: Range{Book: "Genesis"},
		},
		{
			name: "abbreviation resolves",
			in:   "Song 4:1",
			want: Range{Book: "Song of Solomon", ChapterStart: intPtr(4), VerseStart: intPtr(1)},
		},
		{
			name: "ordinal book",
			in:   "1 John 2",
			want: Range{Book: "1 John", ChapterStart: intPtr(2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if err != nil {
				t.Fatalf("ParseRange(%q): %v", tt.in, err)
			}
			if got.Book != tt.want.Book {
				t.Errorf("Book = %q, want %q", got.Book, tt.want.Book)
			}
			checkIntPtr(t, "ChapterStart", got.ChapterStart, tt.want.ChapterStart)
			checkIntPtr(t, "VerseStart", got.VerseStart, tt.want.VerseStart)
			checkIntPtr(t, "ChapterEnd", got.ChapterEnd, tt.want.ChapterEnd)
			checkIntPtr(t, "VerseEnd", got.VerseEnd, tt.want.VerseEnd)
		})
	}
}

func checkIntPtr(t *testing.T, field string, got, want *int) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, fmtPtr(got), fmtPtr(want))
	case *got != *want:
		t.Errorf("%s = %d, want %d", field, *got, *want)
	}
}

func fmtPtr(p *int) interface{} {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestParseRangeUnknownBook(t *testing.T) {
	_, err := ParseRange("Hezekiah 3:16")
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("ParseRange(unknown book) = %v, want ErrInvalidInput", err)
	}
}

func TestRangeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Gen 1:1", "Genesis 1:1"},
		{"Genesis 1:1-5", "Genesis 1:1-5"},
		{"Genesis 1:1-2:5", "Genesis 1:1-2:5"},
		{"Genesis 1-2", "Genesis 1-2"},
		{"Genesis", "Genesis"},
	}
	for _, tt := range tests {
		r, err := ParseRange(tt.in)
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", tt.in, err)
		}
		if got := r.String(); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRangePredicates(t *testing.T) {
	book, _ := ParseRange("Jude")
	if !book.IsBookOnly() || book.IsRange() {
		t.Error("book-only predicates wrong")
	}

	chapter, _ := ParseRange("John 3")
	if !chapter.IsChapterOnly() || chapter.IsBookOnly() {
		t.Error("chapter-only predicates wrong")
	}

	verses, _ := ParseRange("John 3:16-18")
	if !verses.IsRange() || verses.IsChapterOnly() {
		t.Error("verse-range predicates wrong")
	}
	start := verses.Start()
	if start.Book != "John" || start.Chapter != 3 || start.Verse != 16 || start.VerseEnd != 18 {
		t.Errorf("Start() = %+v", start)
	}
}
