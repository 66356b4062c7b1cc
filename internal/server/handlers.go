package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickudo2004/parchments/core/catalog"
	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/ref"
	"github.com/patrickudo2004/parchments/core/store"
)

// APIResponse is the standard response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Versions int    `json:"versions"`
	Jobs     int    `json:"jobs"`
}

var startTime = time.Now()

func respond(w http.ResponseWriter, status int, data interface{}) {
	respondWithMeta(w, status, data, nil)
}

func respondList(w http.ResponseWriter, data interface{}, total int) {
	respondWithMeta(w, http.StatusOK, data, &APIMeta{
		Total:     total,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func respondWithMeta(w http.ResponseWriter, status int, data interface{}, meta *APIMeta) {
	if meta == nil {
		meta = &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

// respondErr maps domain errors onto HTTP statuses.
func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, errors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, errors.ErrUnsupported):
		respondError(w, http.StatusBadRequest, "UNSUPPORTED", err.Error())
	case errors.Is(err, errors.ErrQuotaExceeded):
		respondError(w, http.StatusInsufficientStorage, "QUOTA_EXCEEDED", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed JSON body: "+err.Error())
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only "+allowed+" allowed")
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"name": "Parchments API",
		"endpoints": []string{
			"GET /health",
			"GET /catalog",
			"POST /download",
			"GET /versions",
			"GET /versions/default",
			"GET /versions/:id",
			"DELETE /versions/:id",
			"POST /versions/:id/default",
			"GET /jobs",
			"GET /jobs/:id",
			"POST /jobs/:id/cancel",
			"DELETE /jobs/:id",
			"GET /verses",
			"GET /verses/search",
			"GET /verses/reference",
			"POST /parse",
			"GET /lexicon/:id",
			"GET /summaries",
			"GET /notes",
			"POST /notes",
			"GET /notes/:id",
			"PUT /notes/:id",
			"DELETE /notes/:id",
			"GET /folders",
			"GET /folders/tree",
			"POST /folders",
			"GET /folders/:id",
			"PUT /folders/:id",
			"DELETE /folders/:id",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	versions, err := s.store.ListVersions(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:   "healthy",
		Uptime:   time.Since(startTime).String(),
		Versions: len(versions),
		Jobs:     len(s.manager.List()),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	entries := s.catalog.FetchCatalog(r.Context())
	respondList(w, entries, len(entries))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var entry catalog.Entry
	if !decodeJSON(w, r, &entry) {
		return
	}
	job, err := s.catalog.DownloadVersion(r.Context(), entry)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusAccepted, job)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	versions, err := s.store.ListVersions(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondList(w, versions, len(versions))
}

func (s *Server) handleVersionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/versions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "missing version id")
		return
	}

	switch {
	case id == "default" && action == "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}
		version, err := s.store.DefaultVersion(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, version)

	case action == "default":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		if err := s.store.SetDefaultVersion(r.Context(), id); err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]string{"default": id})

	case action != "":
		respondError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")

	case r.Method == http.MethodGet:
		version, err := s.store.GetVersion(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, version)

	case r.Method == http.MethodDelete:
		if err := s.store.DeleteVersion(r.Context(), id); err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		methodNotAllowed(w, "GET and DELETE")
	}
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	jobs := s.manager.List()
	respondList(w, jobs, len(jobs))
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/jobs/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "missing job id")
		return
	}

	switch {
	case action == "cancel":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		if err := s.manager.Cancel(id); err != nil {
			respondErr(w, err)
			return
		}
		job, _ := s.manager.Get(id)
		respond(w, http.StatusOK, job)

	case action != "":
		respondError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")

	case r.Method == http.MethodGet:
		job, ok := s.manager.Get(id)
		if !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "job not found: "+id)
			return
		}
		respond(w, http.StatusOK, job)

	case r.Method == http.MethodDelete:
		if err := s.manager.Delete(id); err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		methodNotAllowed(w, "GET and DELETE")
	}
}

// queryInt parses an integer query parameter, returning fallback when
// absent.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "parameter %s: %q is not a number", key, raw)
	}
	return n, nil
}

func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	q := r.URL.Query()
	versionID, book := q.Get("version"), q.Get("book")
	if versionID == "" || book == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "version and book parameters are required")
		return
	}
	chapter, err := queryInt(r, "chapter", 0)
	if err != nil {
		respondErr(w, err)
		return
	}
	if chapter < 1 {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "chapter parameter is required")
		return
	}
	verse, err := queryInt(r, "verse", 0)
	if err != nil {
		respondErr(w, err)
		return
	}
	end, err := queryInt(r, "end", 0)
	if err != nil {
		respondErr(w, err)
		return
	}

	verses, err := s.store.VersesForReference(r.Context(), versionID, ref.Reference{
		Book: book, Chapter: chapter, Verse: verse, VerseEnd: end,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	respondList(w, verses, len(verses))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	q := r.URL.Query()
	versionID, query := q.Get("version"), q.Get("q")
	if versionID == "" || query == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "version and q parameters are required")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondErr(w, err)
		return
	}

	verses, err := s.store.SearchVerses(r.Context(), versionID, query, limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondList(w, verses, len(verses))
}

// handleReference resolves a free-text scripture reference to verses in
// one request.
func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	q := r.URL.Query()
	versionID, text := q.Get("version"), q.Get("q")
	if versionID == "" || text == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "version and q parameters are required")
		return
	}

	reference, ok := ref.Parse(text)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "no scripture reference found in "+strconv.Quote(text))
		return
	}
	verses, err := s.store.VersesForReference(r.Context(), versionID, reference)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"reference": reference,
		"verses":    verses,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	references := ref.ParseAll(body.Text)
	respondList(w, references, len(references))
}

func (s *Server) handleLexicon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/lexicon/")
	entry, err := s.store.GetStrongsEntry(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, entry)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	book := r.URL.Query().Get("book")
	chapter, err := queryInt(r, "chapter", 0)
	if err != nil {
		respondErr(w, err)
		return
	}
	if book == "" || chapter < 1 {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "book and chapter parameters are required")
		return
	}
	summary, err := s.store.GetChapterSummary(r.Context(), book, chapter)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

// folderParam reads an optional folder/parent ID parameter; absent or
// empty means root level.
func folderParam(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		notes, err := s.store.NotesByFolder(r.Context(), folderParam(r, "folder"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondList(w, notes, len(notes))

	case http.MethodPost:
		var note store.Note
		if !decodeJSON(w, r, &note) {
			return
		}
		created, err := s.store.CreateNote(r.Context(), note)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusCreated, created)

	default:
		methodNotAllowed(w, "GET and POST")
	}
}

func (s *Server) handleNoteByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/notes/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		note, err := s.store.GetNote(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, note)

	case http.MethodPut:
		var note store.Note
		if !decodeJSON(w, r, &note) {
			return
		}
		note.ID = id
		if err := s.store.UpdateNote(r.Context(), note); err != nil {
			respondErr(w, err)
			return
		}
		updated, err := s.store.GetNote(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.store.DeleteNote(r.Context(), id); err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		methodNotAllowed(w, "GET, PUT and DELETE")
	}
}

func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		folders, err := s.store.FoldersByParent(r.Context(), folderParam(r, "parent"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondList(w, folders, len(folders))

	case http.MethodPost:
		var folder store.Folder
		if !decodeJSON(w, r, &folder) {
			return
		}
		created, err := s.store.CreateFolder(r.Context(), folder)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusCreated, created)

	default:
		methodNotAllowed(w, "GET and POST")
	}
}

func (s *Server) handleFolderByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/folders/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}

	if id == "tree" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}
		tree, err := s.store.FolderTree(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		respondList(w, tree, len(tree))
		return
	}

	switch r.Method {
	case http.MethodGet:
		folder, err := s.store.GetFolder(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, folder)

	case http.MethodPut:
		var folder store.Folder
		if !decodeJSON(w, r, &folder) {
			return
		}
		folder.ID = id
		if err := s.store.UpdateFolder(r.Context(), folder); err != nil {
			respondErr(w, err)
			return
		}
		updated, err := s.store.GetFolder(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.store.DeleteFolder(r.Context(), id); err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		methodNotAllowed(w, "GET, PUT and DELETE")
	}
}
