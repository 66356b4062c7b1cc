package ingest

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/store"
	"github.com/patrickudo2004/parchments/internal/logging"
)

// lexiconEntry is the raw dictionary record shape. The Hebrew source
// stores transliteration under "xlit", the Greek source under
// "translit"; the two are coalesced during normalization.
type lexiconEntry struct {
	Lemma      string `json:"lemma"`
	Xlit       string `json:"xlit"`
	Translit   string `json:"translit"`
	Pron       string `json:"pron"`
	Derivation string `json:"derivation"`
	StrongsDef string `json:"strongs_def"`
	KJVDef     string `json:"kjv_def"`
}

// ParseLexicon flattens an id-to-record dictionary payload into
// lexicon rows. source names the dictionary ("hebrew", "greek") for
// error reporting only; the entry IDs themselves carry the language.
func ParseLexicon(source string, payload []byte) ([]store.StrongsEntry, error) {
	var raw map[string]lexiconEntry
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.NewParse("lexicon", source, err.Error())
	}
	if len(raw) == 0 {
		return nil, errors.NewParse("lexicon", source, "dictionary is empty")
	}

	entries := make([]store.StrongsEntry, 0, len(raw))
	for id, e := range raw {
		normalized, err := store.NormalizeStrongsID(id)
		if err != nil {
			return nil, err
		}
		translit := e.Xlit
		if translit == "" {
			translit = e.Translit
		}
		entries = append(entries, store.StrongsEntry{
			ID:              normalized,
			Lemma:           e.Lemma,
			Transliteration: translit,
			Pronunciation:   e.Pron,
			Derivation:      e.Derivation,
			Definition:      e.StrongsDef,
			KJVUsage:        e.KJVDef,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// ImportLexicon parses and bulk-writes one source dictionary.
func (p *Pipeline) ImportLexicon(ctx context.Context, source string, payload []byte) (int, error) {
	entries, err := ParseLexicon(source, payload)
	if err != nil {
		return 0, err
	}
	if err := p.store.BulkPutStrongs(ctx, entries); err != nil {
		return 0, err
	}
	logging.Info("lexicon imported", "source", source, "entries", len(entries))
	return len(entries), nil
}
