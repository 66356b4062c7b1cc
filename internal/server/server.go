// Package server exposes the data layer over a JSON HTTP API with a
// WebSocket channel for import progress.
package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/patrickudo2004/parchments/core/catalog"
	"github.com/patrickudo2004/parchments/core/ingest"
	"github.com/patrickudo2004/parchments/core/store"
	"github.com/patrickudo2004/parchments/core/worker"
	"github.com/patrickudo2004/parchments/internal/logging"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	CatalogURL     string
}

// Server wires the store, the import manager, and the catalog service
// behind HTTP handlers.
type Server struct {
	cfg      Config
	store    *store.Store
	pipeline *ingest.Pipeline
	manager  *worker.Manager
	catalog  *catalog.Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// New builds a server over st. Import progress events are fanned out to
// WebSocket clients through the hub.
func New(st *store.Store, cfg Config) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		pipeline: ingest.New(st),
		hub:      NewHub(),
	}
	s.manager = worker.NewManager(s.pipeline, s.hub.JobEvent)
	s.catalog = catalog.NewService(st, s.manager, catalog.Config{CatalogURL: cfg.CatalogURL})
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(cfg.AllowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, candidate := range cfg.AllowedOrigins {
				if origin == candidate {
					return true
				}
			}
			return false
		},
	}
	return s
}

// Manager exposes the import job manager, for callers embedding the
// server.
func (s *Server) Manager() *worker.Manager {
	return s.manager
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	handler = SecurityHeadersMiddleware(handler)
	handler = TimingMiddleware(handler)
	handler = CORSMiddleware(CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	return handler
}

// Start runs the hub and serves HTTP until the listener fails.
func (s *Server) Start() error {
	go s.hub.Run()

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	logging.ServerStartup(addr, s.store.Path(),
		"catalog_url", s.catalog.CatalogURL(),
		"cors_origins", len(s.cfg.AllowedOrigins))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/catalog", s.handleCatalog)
	mux.HandleFunc("/download", s.handleDownload)
	mux.HandleFunc("/versions", s.handleVersions)
	mux.HandleFunc("/versions/", s.handleVersionByID)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJobByID)
	mux.HandleFunc("/verses", s.handleVerses)
	mux.HandleFunc("/verses/search", s.handleSearch)
	mux.HandleFunc("/verses/reference", s.handleReference)
	mux.HandleFunc("/parse", s.handleParse)
	mux.HandleFunc("/lexicon/", s.handleLexicon)
	mux.HandleFunc("/summaries", s.handleSummary)
	mux.HandleFunc("/notes", s.handleNotes)
	mux.HandleFunc("/notes/", s.handleNoteByID)
	mux.HandleFunc("/folders", s.handleFolders)
	mux.HandleFunc("/folders/", s.handleFolderByID)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return mux
}
