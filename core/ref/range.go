package ref

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/patrickudo2004/parchments/core/errors"
)

// Range is a parsed scripture reference that may span chapters or
// verses. Unlike Parse, which scans free text, ParseRange expects the
// whole input to be a reference and accepts chapter-only and book-only
// forms.
type Range struct {
	Book         string `parser:"@Book"`
	ChapterStart *int   `parser:"( @Number"`
	VerseStart   *int   `parser:"( ':' @Number )?"`
	ChapterEnd   *int   `parser:"( '-' ( @Number"`
	VerseEnd     *int   `parser:"    ( ':' @Number )? )? )? )?"`
}

var rangeLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names: optional ordinal digit, one or more words, optional
	// trailing period. Covers "Genesis", "Gen.", "1 John", "Song of
	// Solomon".
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var rangeParser = participle.MustBuild[Range](
	participle.Lexer(rangeLexer),
	participle.Elide("Whitespace"),
)

// ParseRange parses an explicit reference string. Supported forms:
//
//	"Genesis 1:1"      single verse
//	"Gen.1.1"          dot separators
//	"Genesis 1:1-5"    verse range within a chapter
//	"Genesis 1:1-2:5"  range across chapters
//	"Genesis 1-2"      chapter range
//	"Genesis 1"        whole chapter
//	"Genesis"          whole book
//
// The book name must resolve through the abbreviation table; unknown
// books are an error rather than passed through verbatim.
func ParseRange(input string) (*Range, error) {
	r, err := rangeParser.ParseString("", normalizeSeparators(input))
	if err != nil {
		return nil, errors.NewParse("reference", input, err.Error())
	}

	book, ok := CanonicalBook(r.Book)
	if !ok {
		return nil, errors.NewParse("reference", input, fmt.Sprintf("unknown book %q", r.Book))
	}
	r.Book = book

	// The grammar reads "Genesis 1:1-5" as chapter 1:1 through chapter
	// 5. When a start verse is present and the part after the dash has
	// no colon, that number is the end verse, not an end chapter.
	if r.VerseStart != nil && r.ChapterEnd != nil && r.VerseEnd == nil {
		r.VerseEnd = r.ChapterEnd
		r.ChapterEnd = nil
	}

	return r, nil
}

// normalizeSeparators rewrites "Gen.1.1" and "Gen 1.1" style dot
// separators into the canonical "Gen 1:1" form before parsing.
func normalizeSeparators(input string) string {
	parts := strings.Split(input, ".")
	if len(parts) < 2 {
		return input
	}

	book, rest := parts[0], parts[1:]
	for _, p := range rest {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return input
			}
		}
	}

	if len(rest) == 1 {
		return book + " " + rest[0]
	}
	return book + " " + rest[0] + ":" + strings.Join(rest[1:], ":")
}

// String renders the range in canonical form.
func (r *Range) String() string {
	if r.ChapterStart == nil {
		return r.Book
	}

	var sb strings.Builder
	sb.WriteString(r.Book)
	fmt.Fprintf(&sb, " %d", *r.ChapterStart)
	if r.VerseStart != nil {
		fmt.Fprintf(&sb, ":%d", *r.VerseStart)
	}
	switch {
	case r.ChapterEnd != nil:
		fmt.Fprintf(&sb, "-%d", *r.ChapterEnd)
		if r.VerseEnd != nil {
			fmt.Fprintf(&sb, ":%d", *r.VerseEnd)
		}
	case r.VerseEnd != nil:
		fmt.Fprintf(&sb, "-%d", *r.VerseEnd)
	}
	return sb.String()
}

// IsRange reports whether the reference spans multiple verses or
// chapters.
func (r *Range) IsRange() bool { return r.ChapterEnd != nil || r.VerseEnd != nil }

// IsChapterOnly reports whether the reference names whole chapters.
func (r *Range) IsChapterOnly() bool { return r.ChapterStart != nil && r.VerseStart == nil }

// IsBookOnly reports whether the reference names an entire book.
func (r *Range) IsBookOnly() bool { return r.ChapterStart == nil }

// Start returns the range's starting point as a simple Reference.
func (r *Range) Start() Reference {
	ref := Reference{Book: r.Book}
	if r.ChapterStart != nil {
		ref.Chapter = *r.ChapterStart
	}
	if r.VerseStart != nil {
		ref.Verse = *r.VerseStart
	}
	if r.VerseEnd != nil && r.ChapterEnd == nil {
		ref.VerseEnd = *r.VerseEnd
	}
	return ref
}
