// Package ingest normalizes raw translation and lexicon payloads into
// store records and performs the bulk writes.
//
// Verse sources arrive in one of three shapes: structured JSON (nested
// or flat chapter arrays), USFM-tagged text, or OSIS XML. Each shape
// has its own normalization function feeding a common flattened verse
// list that goes to the store in a single bulk put.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/store"
	"github.com/patrickudo2004/parchments/internal/logging"
)

// Kind discriminates the raw payload shape at the ingestion entry
// point.
type Kind string

const (
	KindJSON Kind = "json"
	KindUSFM Kind = "usfm"
	KindOSIS Kind = "osis"
)

// KindFromString resolves a payload kind name, case-insensitively.
func KindFromString(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindJSON:
		return KindJSON, nil
	case KindUSFM:
		return KindUSFM, nil
	case KindOSIS:
		return KindOSIS, nil
	}
	return "", errors.NewUnsupported("import kind", fmt.Sprintf("unknown kind %q", s))
}

// ProgressFunc receives a completion percentage (0-100) and a
// human-readable label for the item being processed. Implementations
// must be cheap; the pipeline calls it from the parse loop.
type ProgressFunc func(pct float64, label string)

// progressInterval bounds progress cadence to once every N chapters so
// large imports do not flood the event channel.
const progressInterval = 10

// versionIDPattern restricts version IDs to short lowercase codes.
var versionIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Metadata describes the version a payload belongs to. It is written
// to the version table before verses are ingested, with the downloaded
// flag clear until the bulk write succeeds.
type Metadata struct {
	VersionID    string `json:"version_id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Language     string `json:"language"`
	Copyright    string `json:"copyright,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
}

// Validate checks the metadata block before any store write.
func (m Metadata) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.VersionID, validation.Required, validation.Length(2, 16),
			validation.Match(versionIDPattern)),
		validation.Field(&m.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&m.Abbreviation, validation.Required, validation.Length(1, 16)),
		validation.Field(&m.Language, validation.Required, validation.Length(2, 8)),
	)
	if err != nil {
		return errors.NewParse("version metadata", m.VersionID, err.Error())
	}
	return nil
}

// MetadataFromPayload extracts an embedded metadata block from a JSON
// payload, for manual imports that carry their own version details. The
// block is optional; ok is false when the payload is not JSON or has no
// metadata object.
func MetadataFromPayload(payload []byte) (Metadata, bool) {
	var envelope struct {
		Metadata *struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			Abbreviation string `json:"abbreviation"`
			Language     string `json:"language"`
			Copyright    string `json:"copyright"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Metadata == nil {
		return Metadata{}, false
	}
	m := envelope.Metadata
	return Metadata{
		VersionID:    strings.ToLower(m.ID),
		Name:         m.Name,
		Abbreviation: m.Abbreviation,
		Language:     m.Language,
		Copyright:    m.Copyright,
	}, true
}

// Pipeline performs verse and lexicon ingestion against one store.
type Pipeline struct {
	store *store.Store
}

// New returns a pipeline writing to st.
func New(st *store.Store) *Pipeline {
	return &Pipeline{store: st}
}

// ParseVerses normalizes a raw payload into a flattened verse list.
// progress may be nil. The returned verses carry lowercase version IDs
// and deterministic coordinate-derived IDs.
func ParseVerses(kind Kind, versionID string, payload []byte, progress ProgressFunc) ([]store.BibleVerse, error) {
	versionID = strings.ToLower(strings.TrimSpace(versionID))
	switch kind {
	case KindJSON:
		return parseJSON(versionID, payload, progress)
	case KindUSFM:
		return parseUSFM(versionID, payload, progress)
	case KindOSIS:
		return parseOSIS(versionID, payload, progress)
	}
	return nil, errors.NewUnsupported("import kind", fmt.Sprintf("unknown kind %q", kind))
}

// ImportVerses runs a full verse import: validate metadata, parse,
// then save. A failure at any stage leaves the version not-downloaded;
// partial verse writes are harmless because puts are idempotent
// upserts.
func (p *Pipeline) ImportVerses(ctx context.Context, meta Metadata, kind Kind, payload []byte, progress ProgressFunc) (int, error) {
	if err := meta.Validate(); err != nil {
		return 0, err
	}
	versionID := strings.ToLower(meta.VersionID)

	logging.ImportEvent(versionID, "parse", "kind", string(kind), "bytes", len(payload))
	verses, err := ParseVerses(kind, versionID, payload, progress)
	if err != nil {
		return 0, err
	}
	if len(verses) == 0 {
		return 0, errors.NewIngest(versionID, "parse",
			errors.NewParse(string(kind), versionID, "payload contains no verses"))
	}
	return p.SaveVerses(ctx, meta, verses)
}

// SaveVerses registers the version with the downloaded flag clear,
// bulk-writes the flattened verse list, then marks the version
// downloaded. The flag flips only after the bulk write succeeds, so a
// cancelled or failed import never reports a version as ready.
func (p *Pipeline) SaveVerses(ctx context.Context, meta Metadata, verses []store.BibleVerse) (int, error) {
	versionID := strings.ToLower(meta.VersionID)

	if err := p.store.PutVersion(ctx, store.BibleVersion{
		ID:           versionID,
		Name:         meta.Name,
		Abbreviation: meta.Abbreviation,
		Language:     meta.Language,
		Copyright:    meta.Copyright,
		DownloadURL:  meta.SourceURL,
		IsDownloaded: false,
	}); err != nil {
		return 0, errors.NewIngest(versionID, "register", err)
	}

	logging.ImportEvent(versionID, "save", "verses", len(verses))
	if err := p.store.BulkPutVerses(ctx, verses); err != nil {
		return 0, errors.NewIngest(versionID, "save", err)
	}
	if err := p.store.MarkDownloaded(ctx, versionID, len(verses)); err != nil {
		return 0, errors.NewIngest(versionID, "finalize", err)
	}

	logging.ImportEvent(versionID, "complete", "verses", len(verses))
	return len(verses), nil
}
