// Package catalog resolves available translations from a remote
// manifest and orchestrates download and ingestion.
package catalog

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/zeebo/blake3"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/ingest"
	"github.com/patrickudo2004/parchments/core/store"
	"github.com/patrickudo2004/parchments/core/worker"
	"github.com/patrickudo2004/parchments/internal/cache"
	"github.com/patrickudo2004/parchments/internal/logging"
)

// DefaultCatalogURL is the published manifest of available
// translations.
const DefaultCatalogURL = "https://raw.githubusercontent.com/patrickudo2004/bible-data/main/versions.json"

// fetchTimeout bounds catalog and payload fetches; failures are not
// retried beyond it.
const fetchTimeout = 30 * time.Second

// catalogTTL is how long a fetched manifest is served from memory
// before the remote is consulted again.
const catalogTTL = 5 * time.Minute

// Entry is one catalog manifest record.
type Entry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Language     string `json:"language"`
	Size         string `json:"size,omitempty"`
	URL          string `json:"url"`
	Copyright    string `json:"copyright,omitempty"`
	// Checksum is an optional BLAKE3 hex digest of the payload.
	Checksum string `json:"checksum,omitempty"`
	// Kind names the payload shape; empty means JSON.
	Kind string `json:"kind,omitempty"`
}

// Validate checks an entry before a download begins.
func (e Entry) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Language, validation.Required),
		validation.Field(&e.URL, validation.Required, is.URL),
	)
	if err != nil {
		return errors.NewParse("catalog entry", e.ID, err.Error())
	}
	return nil
}

type manifest struct {
	Versions []Entry `json:"versions"`
}

// FallbackCatalog is the built-in manifest used when the remote one is
// unreachable, so catalog discovery degrades instead of failing.
func FallbackCatalog() []Entry {
	return []Entry{
		{
			ID:           "kjv",
			Name:         "King James Version",
			Abbreviation: "KJV",
			Language:     "eng",
			Size:         "2.4MB",
			URL:          "https://raw.githubusercontent.com/scrollmapper/bible_databases/master/json/kjv.json",
			Copyright:    "Public Domain",
		},
		{
			ID:           "web",
			Name:         "World English Bible",
			Abbreviation: "WEB",
			Language:     "eng",
			Size:         "2.6MB",
			URL:          "https://raw.githubusercontent.com/scrollmapper/bible_databases/master/json/web.json",
			Copyright:    "Public Domain",
		},
	}
}

// Config adjusts a Service; zero values select defaults.
type Config struct {
	CatalogURL string
	Client     *http.Client
}

// Service fetches the catalog and runs downloads through the import
// worker.
type Service struct {
	store      *store.Store
	pipeline   *ingest.Pipeline
	manager    *worker.Manager
	client     *http.Client
	catalogURL string
	cached     *cache.TTLValue[[]Entry]
}

// NewService returns a catalog service over st, running imports via
// mgr.
func NewService(st *store.Store, mgr *worker.Manager, cfg Config) *Service {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	url := cfg.CatalogURL
	if url == "" {
		url = DefaultCatalogURL
	}
	return &Service{
		store:      st,
		pipeline:   ingest.New(st),
		manager:    mgr,
		client:     client,
		catalogURL: url,
		cached:     cache.NewTTL[[]Entry](catalogTTL),
	}
}

// CatalogURL reports the manifest URL in use.
func (s *Service) CatalogURL() string {
	return s.catalogURL
}

// FetchCatalog retrieves the remote manifest, serving a cached copy
// while it is fresh. Any failure degrades to the non-empty built-in
// fallback; discovery never fails outright.
func (s *Service) FetchCatalog(ctx context.Context) []Entry {
	if entries, ok := s.cached.Get(); ok {
		return entries
	}
	entries, err := s.fetchManifest(ctx)
	if err != nil {
		logging.Warn("catalog fetch failed, using fallback", "url", s.catalogURL, "error", err)
		return FallbackCatalog()
	}
	s.cached.Set(entries)
	return entries
}

func (s *Service) fetchManifest(ctx context.Context) ([]Entry, error) {
	body, err := s.fetchJSON(ctx, s.catalogURL)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, errors.NewFetch(s.catalogURL, err)
	}
	if len(m.Versions) == 0 {
		return nil, errors.NewFetch(s.catalogURL, fmt.Errorf("manifest lists no versions"))
	}
	return m.Versions, nil
}

// fetchJSON downloads a URL, rejecting non-JSON content types so an
// HTML error page is never handed to a parser.
func (s *Service) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewFetch(url, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewFetch(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetch(url, fmt.Errorf("unexpected status %s", resp.Status))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") && !strings.Contains(ct, "text/plain") {
		return nil, errors.NewFetch(url, fmt.Errorf("unexpected content type %q", ct))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetch(url, err)
	}
	return body, nil
}

// verifyChecksum compares the payload against the entry's BLAKE3
// digest when one is published.
func verifyChecksum(entry Entry, payload []byte) error {
	if entry.Checksum == "" {
		return nil
	}
	sum := blake3.Sum256(payload)
	if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, entry.Checksum) {
		return errors.NewFetch(entry.URL,
			fmt.Errorf("checksum mismatch: got %s, want %s", got, entry.Checksum))
	}
	return nil
}

// metadataFor builds import metadata from a catalog entry.
func metadataFor(entry Entry) ingest.Metadata {
	return ingest.Metadata{
		VersionID:    strings.ToLower(entry.ID),
		Name:         entry.Name,
		Abbreviation: entry.Abbreviation,
		Language:     entry.Language,
		Copyright:    entry.Copyright,
		SourceURL:    entry.URL,
	}
}

// prepare fetches and verifies a catalog entry's payload and ensures a
// version record exists with the downloaded flag clear.
func (s *Service) prepare(ctx context.Context, entry Entry) (worker.Request, error) {
	if err := entry.Validate(); err != nil {
		return worker.Request{}, err
	}
	kind := ingest.KindJSON
	if entry.Kind != "" {
		var err error
		kind, err = ingest.KindFromString(entry.Kind)
		if err != nil {
			return worker.Request{}, err
		}
	}

	payload, err := s.fetchJSON(ctx, entry.URL)
	if err != nil {
		return worker.Request{}, err
	}
	if err := verifyChecksum(entry, payload); err != nil {
		return worker.Request{}, err
	}

	versionID := strings.ToLower(entry.ID)
	if _, err := s.store.GetVersion(ctx, versionID); errors.Is(err, errors.ErrNotFound) {
		if err := s.store.PutVersion(ctx, store.BibleVersion{
			ID:           versionID,
			Name:         entry.Name,
			Abbreviation: entry.Abbreviation,
			Language:     entry.Language,
			Copyright:    entry.Copyright,
			DownloadURL:  entry.URL,
			IsDownloaded: false,
		}); err != nil {
			return worker.Request{}, err
		}
	} else if err != nil {
		return worker.Request{}, err
	}

	return worker.Request{Meta: metadataFor(entry), Kind: kind, Payload: payload}, nil
}

// DownloadVersion fetches a translation payload and starts a
// background import job for it. Progress flows through the manager's
// event observer.
func (s *Service) DownloadVersion(ctx context.Context, entry Entry) (worker.Job, error) {
	req, err := s.prepare(ctx, entry)
	if err != nil {
		return worker.Job{}, err
	}
	logging.ImportEvent(req.Meta.VersionID, "download", "url", entry.URL, "bytes", len(req.Payload))
	return s.manager.Start(req), nil
}

// ProgressFunc receives download/import progress for the synchronous
// flow.
type ProgressFunc func(status string, pct float64, message string)

// DownloadAndImport fetches a translation payload and runs the import
// to completion, forwarding worker events to onProgress. It returns
// once the worker emits its terminal event.
func (s *Service) DownloadAndImport(ctx context.Context, entry Entry, onProgress ProgressFunc) error {
	req, err := s.prepare(ctx, entry)
	if err != nil {
		return err
	}

	for ev := range worker.Run(ctx, s.pipeline, req) {
		if onProgress != nil {
			onProgress(string(ev.Status), ev.Progress, ev.Message)
		}
		if ev.Status == worker.StatusError {
			return errors.NewIngest(req.Meta.VersionID, "import", fmt.Errorf("%s", ev.Message))
		}
	}
	return nil
}
