package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/store"
	"github.com/patrickudo2004/parchments/internal/logging"
)

// enrichConcurrency bounds parallel per-book interlinear fetches.
const enrichConcurrency = 4

// BookSlug converts a canonical book name to the slug used by the
// interlinear data source: lowercase, words joined by underscores, and
// numeric ordinal prefixes written as roman numerals ("1 John" becomes
// "i_john").
func BookSlug(book string) string {
	words := strings.Fields(strings.ToLower(book))
	if len(words) > 0 {
		switch words[0] {
		case "1":
			words[0] = "i"
		case "2":
			words[0] = "ii"
		case "3":
			words[0] = "iii"
		}
	}
	return strings.Join(words, "_")
}

// bookInterlinear is one book's annotation payload: chapter number to
// verse number to per-word tags, with numbers as JSON object keys.
type bookInterlinear map[string]map[string][]store.WordTag

// InterlinearFetcher retrieves per-book interlinear payloads over HTTP.
type InterlinearFetcher struct {
	Client  *http.Client
	BaseURL string
}

// FetchBook downloads the annotation payload for one canonical book
// name. A non-JSON content type is rejected so an HTML error page is
// never parsed as data.
func (f *InterlinearFetcher) FetchBook(ctx context.Context, book string) (bookInterlinear, error) {
	url := fmt.Sprintf("%s/%s.json", strings.TrimSuffix(f.BaseURL, "/"), BookSlug(book))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewFetch(url, err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, errors.NewFetch(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFound("interlinear book", book)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetch(url, fmt.Errorf("unexpected status %s", resp.Status))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
		return nil, errors.NewFetch(url, fmt.Errorf("unexpected content type %q", ct))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetch(url, err)
	}
	var data bookInterlinear
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.NewParse("interlinear", book, err.Error())
	}
	return data, nil
}

func (f *InterlinearFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

// EnrichInterlinear attaches word-level annotations to stored verses,
// one book at a time with bounded concurrency. Enrichment is
// best-effort: a book whose data source is missing or malformed is
// logged and skipped, never aborting the remaining books. Returns the
// number of verses updated.
func (p *Pipeline) EnrichInterlinear(ctx context.Context, versionID string, books []string, fetcher *InterlinearFetcher) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	var mu sync.Mutex
	updated := 0

	for _, book := range books {
		book := book
		g.Go(func() error {
			n, err := p.enrichBook(ctx, versionID, book, fetcher)
			if err != nil {
				if errors.Is(err, errors.ErrCancelled) || ctx.Err() != nil {
					return err
				}
				logging.Warn("skipping interlinear book", "book", book, "error", err)
				return nil
			}
			mu.Lock()
			updated += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return updated, err
	}
	return updated, nil
}

func (p *Pipeline) enrichBook(ctx context.Context, versionID, book string, fetcher *InterlinearFetcher) (int, error) {
	data, err := fetcher.FetchBook(ctx, book)
	if err != nil {
		return 0, err
	}

	chapters := make([]string, 0, len(data))
	for c := range data {
		chapters = append(chapters, c)
	}
	sort.Strings(chapters)

	updated := 0
	for _, chapterKey := range chapters {
		chapter, err := strconv.Atoi(chapterKey)
		if err != nil || chapter < 1 {
			return updated, errors.NewParse("interlinear", book,
				fmt.Sprintf("bad chapter key %q", chapterKey))
		}

		verses, err := p.store.GetChapter(ctx, versionID, book, chapter)
		if err != nil {
			return updated, err
		}
		if len(verses) == 0 {
			continue
		}

		var changed []store.BibleVerse
		for _, v := range verses {
			tags, ok := data[chapterKey][strconv.Itoa(v.Verse)]
			if !ok || len(tags) == 0 {
				continue
			}
			v.Interlinear = tags
			changed = append(changed, v)
		}
		if len(changed) == 0 {
			continue
		}
		if err := p.store.BulkPutVerses(ctx, changed); err != nil {
			return updated, err
		}
		updated += len(changed)
	}
	return updated, nil
}
