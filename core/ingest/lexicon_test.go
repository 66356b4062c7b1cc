package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/patrickudo2004/parchments/core/errors"
)

func TestParseLexiconCoalescesTransliteration(t *testing.T) {
	hebrew := `{"H430": {"lemma": "אֱלֹהִים", "xlit": "ʼĕlôhîym", "pron": "el-o-heem'",
		"derivation": "plural of H433", "strongs_def": "gods in the ordinary sense", "kjv_def": "God, gods"}}`
	greek := `{"g3056": {"lemma": "λόγος", "translit": "lógos", "pron": "log'-os",
		"strongs_def": "something said", "kjv_def": "word, speech"}}`

	hEntries, err := ParseLexicon("hebrew", []byte(hebrew))
	if err != nil {
		t.Fatalf("ParseLexicon(hebrew): %v", err)
	}
	if len(hEntries) != 1 || hEntries[0].ID != "H430" {
		t.Fatalf("hebrew entries = %+v", hEntries)
	}
	if hEntries[0].Transliteration != "ʼĕlôhîym" {
		t.Errorf("xlit not used: %q", hEntries[0].Transliteration)
	}

	gEntries, err := ParseLexicon("greek", []byte(greek))
	if err != nil {
		t.Fatalf("ParseLexicon(greek): %v", err)
	}
	if gEntries[0].ID != "G3056" {
		t.Errorf("ID not uppercased: %q", gEntries[0].ID)
	}
	if gEntries[0].Transliteration != "lógos" {
		t.Errorf("translit not coalesced: %q", gEntries[0].Transliteration)
	}
}

func TestParseLexiconRejectsBadIDs(t *testing.T) {
	payload := `{"X999": {"lemma": "bogus"}}`
	if _, err := ParseLexicon("hebrew", []byte(payload)); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("ParseLexicon = %v, want ErrInvalidInput", err)
	}
	if _, err := ParseLexicon("hebrew", []byte(`{}`)); err == nil {
		t.Error("empty dictionary accepted")
	}
}

func TestImportLexicon(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	payload := `{"G26": {"lemma": "ἀγάπη", "translit": "agápē", "strongs_def": "love"}}`
	count, err := p.ImportLexicon(ctx, "greek", []byte(payload))
	if err != nil {
		t.Fatalf("ImportLexicon: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d", count)
	}
	entry, err := st.GetStrongsEntry(ctx, "g26")
	if err != nil {
		t.Fatalf("GetStrongsEntry: %v", err)
	}
	if entry.Lemma != "ἀγάπη" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestBookSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Genesis", "genesis"},
		{"Song of Solomon", "song_of_solomon"},
		{"1 John", "i_john"},
		{"2 Samuel", "ii_samuel"},
		{"3 John", "iii_john"},
	}
	for _, tt := range tests {
		if got := BookSlug(tt.in); got != tt.want {
			t.Errorf("BookSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func seedJohnChapterOne(t *testing.T, p *Pipeline) {
	t.Helper()
	meta := Metadata{VersionID: "test", Name: "Test", Abbreviation: "TST", Language: "en"}
	if _, err := p.ImportVerses(context.Background(), meta, KindJSON, []byte(flatJSON), nil); err != nil {
		t.Fatalf("seed import: %v", err)
	}
}

func TestEnrichInterlinear(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()
	seedJohnChapterOne(t, p)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/john.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"1": {"1": [{"text": "In the beginning", "number": "G746"}]}}`))
	}))
	defer srv.Close()

	fetcher := &InterlinearFetcher{BaseURL: srv.URL}
	// "Acts" has no data file; it must be skipped, not fail the pass.
	updated, err := p.EnrichInterlinear(ctx, "test", []string{"John", "Acts"}, fetcher)
	if err != nil {
		t.Fatalf("EnrichInterlinear: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	v, err := st.GetVerse(ctx, "test", "John", 1, 1)
	if err != nil {
		t.Fatalf("GetVerse: %v", err)
	}
	if len(v.Interlinear) != 1 || v.Interlinear[0].Number != "G746" {
		t.Errorf("Interlinear = %+v", v.Interlinear)
	}

	// Verse 2 had no annotation and must be untouched.
	v2, err := st.GetVerse(ctx, "test", "John", 1, 2)
	if err != nil {
		t.Fatalf("GetVerse: %v", err)
	}
	if len(v2.Interlinear) != 0 {
		t.Errorf("verse 2 gained annotations: %+v", v2.Interlinear)
	}
}

func TestFetchBookRejectsNonJSONContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>soft error page</html>"))
	}))
	defer srv.Close()

	fetcher := &InterlinearFetcher{BaseURL: srv.URL}
	if _, err := fetcher.FetchBook(context.Background(), "John"); err == nil {
		t.Error("HTML response parsed as data")
	}
}

func TestImportSummaries(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	payload := `[{"book": "John", "chapter": 3, "summary": "Jesus and Nicodemus."}]`
	count, err := p.ImportSummaries(ctx, []byte(payload))
	if err != nil {
		t.Fatalf("ImportSummaries: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d", count)
	}
	if _, err := st.GetChapterSummary(ctx, "John", 3); err != nil {
		t.Errorf("GetChapterSummary: %v", err)
	}

	if _, err := p.ImportSummaries(ctx, []byte(`[]`)); err == nil {
		t.Error("empty payload accepted")
	}
}
