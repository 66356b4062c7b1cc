package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/patrickudo2004/parchments/core/errors"
)

// NoteType distinguishes how a note was authored.
type NoteType string

const (
	NoteTypeText        NoteType = "text"
	NoteTypeVoice       NoteType = "voice"
	NoteTypeTranscribed NoteType = "transcribed"
)

// TranscriptionStatus tracks the lifecycle of a voice note's transcript.
type TranscriptionStatus string

const (
	TranscriptionPending    TranscriptionStatus = "pending"
	TranscriptionProcessing TranscriptionStatus = "processing"
	TranscriptionCompleted  TranscriptionStatus = "completed"
	TranscriptionFailed     TranscriptionStatus = "failed"
)

// Note is a user-authored document. Content holds the editor's rich
// markup blob; the store does not interpret it.
type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	FolderID  *string  `json:"folder_id"` // nil = root level
	Tags      []string `json:"tags"`
	Type      NoteType `json:"type"`
	WordCount int      `json:"word_count"`
	CreatedAt int64    `json:"created_at"` // Unix milliseconds
	UpdatedAt int64    `json:"updated_at"`
}

// VoiceNote is the audio sub-record linked to a voice Note. Deleting the
// owning note cascades to its voice notes.
type VoiceNote struct {
	ID                  string              `json:"id"`
	NoteID              string              `json:"note_id"`
	Audio               []byte              `json:"-"`
	Duration            float64             `json:"duration"` // seconds
	Transcription       string              `json:"transcription,omitempty"`
	TranscriptionStatus TranscriptionStatus `json:"transcription_status"`
	CreatedAt           int64               `json:"created_at"`
}

// Folder groups notes into a tree via weak ParentID references.
// Acyclicity is an application policy, not a store invariant.
type Folder struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"` // nil = root level
	Order     int     `json:"order"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// BibleVersion describes one translation. IsDownloaded flips to true only
// after a successful bulk verse write.
type BibleVersion struct {
	ID           string `json:"id"` // lowercase short code, e.g. "kjv"
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Language     string `json:"language"`
	Copyright    string `json:"copyright"`
	IsDownloaded bool   `json:"is_downloaded"`
	IsDefault    bool   `json:"is_default"`
	DownloadURL  string `json:"download_url,omitempty"`
	VerseCount   int    `json:"verse_count"`
	InstalledAt  int64  `json:"installed_at"`
}

// WordTag is one interlinear annotation: a translated word linked to its
// original-language Strong's number.
type WordTag struct {
	Text   string `json:"text"`
	Number string `json:"number"`
}

// BibleVerse is a single verse of a translation. Its ID is deterministic
// from (version, book, chapter, verse) so re-ingestion overwrites rather
// than duplicates.
type BibleVerse struct {
	ID          string    `json:"id"`
	VersionID   string    `json:"version_id"`
	Book        string    `json:"book"` // canonical English name
	Chapter     int       `json:"chapter"`
	Verse       int       `json:"verse"`
	Text        string    `json:"text"`
	Interlinear []WordTag `json:"interlinear,omitempty"`
}

// StrongsEntry is a lexicon record. Immutable once ingested.
type StrongsEntry struct {
	ID              string `json:"id"` // "H1234" or "G5678"
	Lemma           string `json:"lemma"`
	Transliteration string `json:"transliteration"`
	Pronunciation   string `json:"pronunciation"`
	Derivation      string `json:"derivation"`
	Definition      string `json:"definition"`
	KJVUsage        string `json:"kjv_usage"`
}

// Language reports whether the entry is Hebrew (H prefix) or Greek (G).
func (e StrongsEntry) Language() string {
	if strings.HasPrefix(e.ID, "H") {
		return "hebrew"
	}
	return "greek"
}

// ChapterSummary is optional enrichment keyed by the same book/chapter
// coordinate space as verses.
type ChapterSummary struct {
	ID      string `json:"id"` // book-chapter composite
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Summary string `json:"summary"`
}

// User exists for the v1 schema; credential handling lives elsewhere.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name,omitempty"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

// VerseID builds the deterministic, case-normalized verse primary key.
func VerseID(versionID, book string, chapter, verse int) string {
	return strings.ToLower(fmt.Sprintf("%s-%s-%d-%d", versionID, book, chapter, verse))
}

// SummaryID builds the deterministic chapter summary primary key.
func SummaryID(book string, chapter int) string {
	return strings.ToLower(fmt.Sprintf("%s-%d", book, chapter))
}

// strongsIDPattern validates canonical Strong's tags: one letter H or G
// followed by digits.
var strongsIDPattern = regexp.MustCompile(`^[HG][0-9]+$`)

// NormalizeStrongsID uppercases and validates a Strong's identifier.
// Invalid identifiers are rejected before any store query executes.
func NormalizeStrongsID(id string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(id))
	if !strongsIDPattern.MatchString(normalized) {
		return "", errors.NewParse("strongs id", "", fmt.Sprintf("%q is not a valid Strong's number", id))
	}
	return normalized, nil
}

// validateVerse rejects malformed verse records before they reach a
// transaction. Shape mismatches here are local bugs, not user errors.
func validateVerse(v BibleVerse) error {
	switch {
	case v.VersionID == "":
		return errors.NewParse("verse", v.ID, "missing version id")
	case v.Book == "":
		return errors.NewParse("verse", v.ID, "missing book")
	case v.Chapter < 1:
		return errors.NewParse("verse", v.ID, fmt.Sprintf("chapter %d out of range", v.Chapter))
	case v.Verse < 1:
		return errors.NewParse("verse", v.ID, fmt.Sprintf("verse %d out of range", v.Verse))
	}
	return nil
}
