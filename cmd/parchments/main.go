// Command parchments is the CLI for the Parchments data layer.
// It serves the HTTP API and runs catalog, import, and query
// operations against the local database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/patrickudo2004/parchments/core/catalog"
	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/ingest"
	"github.com/patrickudo2004/parchments/core/ref"
	"github.com/patrickudo2004/parchments/core/store"
	"github.com/patrickudo2004/parchments/core/worker"
	"github.com/patrickudo2004/parchments/internal/logging"
	"github.com/patrickudo2004/parchments/internal/payload"
	"github.com/patrickudo2004/parchments/internal/server"
)

const version = "0.1.0"

// CLI defines the command-line interface for parchments.
var CLI struct {
	// Global flags
	DB        string `name:"db" help:"Database file path" default:"parchments.db" env:"PARCHMENTS_DB" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" env:"PARCHMENTS_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text" env:"PARCHMENTS_LOG_FORMAT"`

	Serve    ServeCmd     `cmd:"" help:"Start the HTTP API server"`
	Catalog  CatalogCmd   `cmd:"" help:"List translations available for download"`
	Download DownloadCmd  `cmd:"" help:"Download and import a translation from the catalog"`
	Import   ImportGroup  `cmd:"" help:"Import local files (bible, lexicon, summaries)"`
	Versions VersionsCmd  `cmd:"" help:"List installed translations"`
	Default  DefaultCmd   `cmd:"" help:"Set the default translation"`
	Remove   RemoveCmd    `cmd:"" help:"Remove an installed translation"`
	Query    QueryCmd     `cmd:"" help:"Look up verses by scripture reference"`
	Search   SearchCmd    `cmd:"" help:"Search verse text"`
	Parse    ParseCmd     `cmd:"" help:"Parse scripture references out of free text"`
	Lexicon  LexiconCmd   `cmd:"" help:"Look up a Strong's lexicon entry"`
	Version  VersionCmd   `cmd:"" help:"Print version information"`
}

// ImportGroup contains local-file import operations.
type ImportGroup struct {
	Bible       ImportBibleCmd       `cmd:"" help:"Import a translation from a local payload file"`
	Lexicon     ImportLexiconCmd     `cmd:"" help:"Import a Strong's lexicon JSON file"`
	Summaries   ImportSummariesCmd   `cmd:"" help:"Import chapter summaries from a JSON file"`
	Interlinear ImportInterlinearCmd `cmd:"" help:"Enrich an installed translation with interlinear data"`
}

func openStore() (*store.Store, error) {
	return store.Open(CLI.DB)
}

// printJSON writes indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printProgress renders worker progress on one console line.
func printProgress(status string, pct float64, message string) {
	switch status {
	case string(worker.StatusProgress):
		fmt.Printf("\r%s %.0f%%", status, pct)
	case string(worker.StatusComplete):
		fmt.Printf("\r%s        \n", status)
	default:
		fmt.Printf("\r%s\n", status)
	}
}

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Port       int      `help:"Listen port" default:"8750" env:"PARCHMENTS_PORT"`
	Origins    []string `help:"Allowed CORS origins (empty = allow all)" env:"PARCHMENTS_ORIGINS"`
	CatalogURL string   `name:"catalog-url" help:"Override the catalog manifest URL" env:"PARCHMENTS_CATALOG_URL"`
}

func (c *ServeCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(st, server.Config{
		Port:           c.Port,
		AllowedOrigins: c.Origins,
		CatalogURL:     c.CatalogURL,
	})
	return srv.Start()
}

// CatalogCmd lists available translations.
type CatalogCmd struct {
	CatalogURL string `name:"catalog-url" help:"Override the catalog manifest URL" env:"PARCHMENTS_CATALOG_URL"`
	JSON       bool   `help:"Output as JSON"`
}

func (c *CatalogCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	mgr := worker.NewManager(ingest.New(st), nil)
	svc := catalog.NewService(st, mgr, catalog.Config{CatalogURL: c.CatalogURL})
	entries := svc.FetchCatalog(context.Background())
	if c.JSON {
		return printJSON(entries)
	}
	for _, e := range entries {
		size := e.Size
		if size == "" {
			size = "?"
		}
		fmt.Printf("%-8s %-35s %-4s %s\n", e.ID, e.Name, e.Language, size)
	}
	return nil
}

// DownloadCmd downloads and imports one or more translations.
type DownloadCmd struct {
	IDs        []string `arg:"" help:"Catalog entry IDs (e.g. kjv web)"`
	CatalogURL string   `name:"catalog-url" help:"Override the catalog manifest URL" env:"PARCHMENTS_CATALOG_URL"`
}

// downloadConcurrency bounds parallel version downloads.
const downloadConcurrency = 2

func (c *DownloadCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	mgr := worker.NewManager(ingest.New(st), nil)
	svc := catalog.NewService(st, mgr, catalog.Config{CatalogURL: c.CatalogURL})

	available := svc.FetchCatalog(ctx)
	entries := make([]catalog.Entry, 0, len(c.IDs))
	for _, id := range c.IDs {
		found := false
		for _, e := range available {
			if strings.EqualFold(e.ID, id) {
				entries = append(entries, e)
				found = true
				break
			}
		}
		if !found {
			return errors.NewNotFound("catalog entry", id)
		}
	}

	// Single downloads get live progress; batches keep the console
	// readable with per-version lines only.
	if len(entries) == 1 {
		entry := entries[0]
		fmt.Printf("downloading %s (%s)\n", entry.Name, entry.ID)
		if err := svc.DownloadAndImport(ctx, entry, printProgress); err != nil {
			return err
		}
		return reportInstalled(ctx, st, entry.ID)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			fmt.Printf("downloading %s (%s)\n", entry.Name, entry.ID)
			if err := svc.DownloadAndImport(ctx, entry, nil); err != nil {
				return err
			}
			return reportInstalled(ctx, st, entry.ID)
		})
	}
	return g.Wait()
}

func reportInstalled(ctx context.Context, st *store.Store, id string) error {
	v, err := st.GetVersion(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("installed %s: %d verses\n", v.ID, v.VerseCount)
	return nil
}

// ImportBibleCmd imports a translation payload from disk. Version
// details come from flags, or from the payload's embedded metadata
// block when present; flags win.
type ImportBibleCmd struct {
	Path         string `arg:"" help:"Payload file (.json, .usfm, .osis; .gz/.xz accepted)" type:"existingfile"`
	ID           string `help:"Version ID (e.g. kjv)"`
	Name         string `help:"Version display name"`
	Abbreviation string `help:"Short display code"`
	Language     string `help:"ISO language code"`
	Copyright    string `help:"Rights statement"`
	Kind         string `help:"Payload kind (json, usfm, osis); inferred from the file name when omitted"`
}

func (c *ImportBibleCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var kind ingest.Kind
	if c.Kind != "" {
		if kind, err = ingest.KindFromString(c.Kind); err != nil {
			return err
		}
	} else {
		var ok bool
		if kind, ok = payload.GuessKind(c.Path); !ok {
			return errors.NewUnsupported("payload file "+c.Path, "cannot infer kind; pass --kind")
		}
	}

	data, err := payload.ReadFile(c.Path)
	if err != nil {
		return err
	}

	meta, _ := ingest.MetadataFromPayload(data)
	if c.ID != "" {
		meta.VersionID = strings.ToLower(c.ID)
	}
	if c.Name != "" {
		meta.Name = c.Name
	}
	if c.Abbreviation != "" {
		meta.Abbreviation = c.Abbreviation
	}
	if c.Language != "" {
		meta.Language = c.Language
	}
	if c.Copyright != "" {
		meta.Copyright = c.Copyright
	}
	if meta.Language == "" {
		meta.Language = "en"
	}
	ctx := context.Background()
	p := ingest.New(st)
	for ev := range worker.Run(ctx, p, worker.Request{Meta: meta, Kind: kind, Payload: data}) {
		printProgress(string(ev.Status), ev.Progress, ev.Message)
		if ev.Status == worker.StatusError {
			return errors.NewIngest(meta.VersionID, "import", fmt.Errorf("%s", ev.Message))
		}
	}
	v, err := st.GetVersion(ctx, meta.VersionID)
	if err != nil {
		return err
	}
	fmt.Printf("imported %s: %d verses\n", v.ID, v.VerseCount)
	return nil
}

// ImportLexiconCmd imports a Strong's lexicon file.
type ImportLexiconCmd struct {
	Path string `arg:"" help:"Lexicon JSON file (.gz/.xz accepted)" type:"existingfile"`
}

func (c *ImportLexiconCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := payload.ReadFile(c.Path)
	if err != nil {
		return err
	}
	count, err := ingest.New(st).ImportLexicon(context.Background(), c.Path, data)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d lexicon entries\n", count)
	return nil
}

// ImportSummariesCmd imports chapter summaries.
type ImportSummariesCmd struct {
	Path string `arg:"" help:"Summaries JSON file (.gz/.xz accepted)" type:"existingfile"`
}

func (c *ImportSummariesCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := payload.ReadFile(c.Path)
	if err != nil {
		return err
	}
	count, err := ingest.New(st).ImportSummaries(context.Background(), data)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d chapter summaries\n", count)
	return nil
}

// ImportInterlinearCmd enriches stored verses with interlinear tags.
type ImportInterlinearCmd struct {
	VersionID string `arg:"" help:"Installed version to enrich"`
	BaseURL   string `name:"base-url" help:"Base URL serving per-book interlinear JSON" required:""`
}

func (c *ImportInterlinearCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	books, err := st.BooksForVersion(ctx, c.VersionID)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return errors.NewNotFound("version verses", c.VersionID)
	}

	fetcher := &ingest.InterlinearFetcher{BaseURL: c.BaseURL}
	updated, err := ingest.New(st).EnrichInterlinear(ctx, c.VersionID, books, fetcher)
	if err != nil {
		return err
	}
	fmt.Printf("enriched %d verses\n", updated)
	return nil
}

// VersionsCmd lists installed translations.
type VersionsCmd struct {
	JSON bool `help:"Output as JSON"`
}

func (c *VersionsCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.ListVersions(context.Background())
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(versions)
	}
	for _, v := range versions {
		marker := " "
		if v.IsDefault {
			marker = "*"
		}
		state := "not downloaded"
		if v.IsDownloaded {
			state = fmt.Sprintf("%d verses", v.VerseCount)
		}
		fmt.Printf("%s %-8s %-35s %s\n", marker, v.ID, v.Name, state)
	}
	return nil
}

// DefaultCmd sets the default translation.
type DefaultCmd struct {
	ID string `arg:"" help:"Version ID to make default"`
}

func (c *DefaultCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SetDefaultVersion(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("default version: %s\n", strings.ToLower(c.ID))
	return nil
}

// RemoveCmd deletes an installed translation and its verses.
type RemoveCmd struct {
	ID string `arg:"" help:"Version ID to remove"`
}

func (c *RemoveCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteVersion(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", strings.ToLower(c.ID))
	return nil
}

// QueryCmd resolves a scripture reference to verse text.
type QueryCmd struct {
	Reference []string `arg:"" help:"Scripture reference (e.g. 'John 3:16-18')"`
	VersionID string   `name:"version" help:"Version to query; defaults to the default version"`
	JSON      bool     `help:"Output as JSON"`
}

func (c *QueryCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	versionID := c.VersionID
	if versionID == "" {
		v, err := st.DefaultVersion(ctx)
		if err != nil {
			return errors.Wrap(err, "no version given and no default set")
		}
		versionID = v.ID
	}

	text := strings.Join(c.Reference, " ")
	reference, ok := ref.Parse(text)
	if !ok {
		return errors.NewParse("reference", text, "no scripture reference found")
	}
	verses, err := st.VersesForReference(ctx, versionID, reference)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(verses)
	}
	fmt.Printf("%s (%s)\n", reference.String(), versionID)
	for _, v := range verses {
		fmt.Printf("%3d  %s\n", v.Verse, v.Text)
	}
	return nil
}

// SearchCmd searches verse text.
type SearchCmd struct {
	Query     []string `arg:"" help:"Search terms"`
	VersionID string   `name:"version" help:"Version to search" required:""`
	Limit     int      `help:"Maximum results" default:"25"`
	JSON      bool     `help:"Output as JSON"`
}

func (c *SearchCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	verses, err := st.SearchVerses(context.Background(), c.VersionID, strings.Join(c.Query, " "), c.Limit)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(verses)
	}
	for _, v := range verses {
		fmt.Printf("%s %d:%d  %s\n", v.Book, v.Chapter, v.Verse, v.Text)
	}
	return nil
}

// ParseCmd extracts scripture references from free text.
type ParseCmd struct {
	Text []string `arg:"" help:"Text to scan for references"`
	JSON bool     `help:"Output as JSON"`
}

func (c *ParseCmd) Run() error {
	references := ref.ParseAll(strings.Join(c.Text, " "))
	if c.JSON {
		return printJSON(references)
	}
	for _, r := range references {
		fmt.Println(r.String())
	}
	return nil
}

// LexiconCmd looks up a Strong's entry.
type LexiconCmd struct {
	ID   string `arg:"" help:"Strong's number (e.g. G26, h7225)"`
	JSON bool   `help:"Output as JSON"`
}

func (c *LexiconCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	entry, err := st.GetStrongsEntry(context.Background(), c.ID)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(entry)
	}
	fmt.Printf("%s (%s) %s\n", entry.ID, entry.Language(), entry.Lemma)
	if entry.Transliteration != "" {
		fmt.Printf("  transliteration: %s\n", entry.Transliteration)
	}
	if entry.Pronunciation != "" {
		fmt.Printf("  pronunciation:   %s\n", entry.Pronunciation)
	}
	if entry.Definition != "" {
		fmt.Printf("  definition:      %s\n", entry.Definition)
	}
	if entry.KJVUsage != "" {
		fmt.Printf("  kjv usage:       %s\n", entry.KJVUsage)
	}
	return nil
}

// VersionCmd prints build version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("parchments version %s\n", version)
	return nil
}

func initLogging() {
	level := logging.LevelInfo
	switch strings.ToLower(CLI.LogLevel) {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if strings.EqualFold(CLI.LogFormat, "json") {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	// A .env file is optional; environment variables win either way.
	godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("parchments"),
		kong.Description("Parchments - offline Bible study data layer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
