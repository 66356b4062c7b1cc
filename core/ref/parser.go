// Package ref recognizes and parses scripture references.
//
// Two parsers live here. Parse scans free text (note content, search
// boxes) for the first reference-shaped substring using a single
// regular expression. ParseRange parses an explicit reference string
// with a small grammar and understands chapter and cross-chapter
// ranges. Both resolve book names through the same abbreviation table.
package ref

import (
	"fmt"
	"regexp"
	"strings"
)

// Reference is a resolved scripture coordinate. Verse 0 means the whole
// chapter; VerseEnd 0 means a single verse.
type Reference struct {
	Book     string `json:"book"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse,omitempty"`
	VerseEnd int    `json:"verse_end,omitempty"`
}

// String renders the reference in canonical "Book C:V" or "Book C:V-V"
// form.
func (r Reference) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter > 0 {
		fmt.Fprintf(&sb, " %d", r.Chapter)
	}
	if r.Verse > 0 {
		fmt.Fprintf(&sb, ":%d", r.Verse)
	}
	if r.VerseEnd > 0 {
		fmt.Fprintf(&sb, "-%d", r.VerseEnd)
	}
	return sb.String()
}

// IsRange reports whether the reference spans multiple verses.
func (r Reference) IsRange() bool { return r.VerseEnd > 0 }

// scripturePattern matches one reference in running text: an optional
// ordinal prefix (1/2/3 or roman I/II/III), a book name of one or more
// words, then chapter:verse with an optional -verseEnd.
var scripturePattern = regexp.MustCompile(
	`(?i)\b((?:1|2|3|I|II|III)\s*)?([a-zA-Z]+(?:\s+[a-zA-Z]+)*?)\.?\s+(\d+):(\d+)(?:-(\d+))?\b`)

// Parse scans text for the first scripture reference and resolves its
// book name. It returns false when no recognizable reference occurs;
// a reference-shaped substring with an unknown book is not a match.
func Parse(text string) (Reference, bool) {
	m := scripturePattern.FindStringSubmatch(text)
	if m == nil {
		return Reference{}, false
	}
	return resolveMatch(m)
}

// ParseAll scans text for every scripture reference, in order of
// appearance. Substrings whose book name does not resolve are skipped.
func ParseAll(text string) []Reference {
	var refs []Reference
	for _, m := range scripturePattern.FindAllStringSubmatch(text, -1) {
		if r, ok := resolveMatch(m); ok {
			refs = append(refs, r)
		}
	}
	return refs
}

func resolveMatch(m []string) (Reference, bool) {
	prefix, bookName := m[1], m[2]

	key := strings.ToLower(strings.TrimSpace(bookName))
	if prefix != "" {
		// "1 John" is stored under both "1jn" and "1 john"; try the
		// glued form first, then prefix and name separated by a space.
		key = ordinalPrefix(prefix) + key
	}
	book, ok := bookAbbreviations[key]
	if !ok && prefix != "" {
		key = ordinalPrefix(prefix) + " " + strings.ToLower(strings.TrimSpace(bookName))
		book, ok = bookAbbreviations[key]
	}
	if !ok && prefix == "" {
		// A match that starts mid-sentence absorbs leading prose words
		// into the book token ("Compare Romans 8:28"); retry with
		// trailing word subsets until one resolves.
		words := strings.Fields(key)
		for i := 1; i < len(words) && !ok; i++ {
			book, ok = bookAbbreviations[strings.Join(words[i:], " ")]
		}
	}
	if !ok {
		return Reference{}, false
	}

	r := Reference{
		Book:    book,
		Chapter: mustAtoi(m[3]),
		Verse:   mustAtoi(m[4]),
	}
	if m[5] != "" {
		r.VerseEnd = mustAtoi(m[5])
	}
	return r, true
}

// ordinalPrefix maps roman ordinals to their arabic form; arabic
// prefixes pass through.
func ordinalPrefix(prefix string) string {
	switch strings.ToUpper(strings.TrimSpace(prefix)) {
	case "I":
		return "1"
	case "II":
		return "2"
	case "III":
		return "3"
	default:
		return strings.TrimSpace(prefix)
	}
}

func mustAtoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
