// Package geminitest provides an in-memory stand-in for the Gemini file
// search API, served over httptest.
package geminitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gemrag/src/infrastructure/integrations/gemini"
)

const APIKey = "test-key"

// Import is a recorded importFile call
type Import struct {
	Store    string
	FileName string
}

// Server fakes files, file search stores, import operations and
// generateContent. Exported fields configure responses before the first
// request; recorded calls are read through the accessor methods.
type Server struct {
	*httptest.Server

	// Answer is the text of every generated candidate. An empty Answer
	// yields a candidate without text parts.
	Answer string
	// Chunks are returned verbatim as groundingMetadata.groundingChunks.
	Chunks []map[string]any
	// PendingPolls is the number of operation polls answered with done=false.
	PendingPolls int

	mu        sync.Mutex
	files     map[string]string
	stores    []map[string]any
	sessions  map[string]map[string]any
	polls     map[string]int
	uploads   map[string]string
	imports   []Import
	generated []map[string]any
	apiKeys   map[string]bool
	nextID    int
}

func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		files:    map[string]string{},
		sessions: map[string]map[string]any{},
		polls:    map[string]int{},
		uploads:  map[string]string{},
		apiKeys:  map[string]bool{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Config returns client settings pointing at the server
func (s *Server) Config() gemini.Config {
	return gemini.Config{BaseURL: s.URL + "/", APIKey: APIKey}
}

// AddFile marks a file resource as already present
func (s *Server) AddFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[gemini.FileResourceName(name)] = ""
}

// AddStore seeds an existing store
func (s *Server) AddStore(name, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores = append(s.stores, map[string]any{"name": name, "displayName": displayName})
}

// Uploads returns the content of every uploaded file keyed by resource name
func (s *Server) Uploads() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.uploads))
	for k, v := range s.uploads {
		out[k] = v
	}
	return out
}

func (s *Server) Imports() []Import {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Import(nil), s.imports...)
}

// StoreNames returns the resource names of all stores in listing order
func (s *Server) StoreNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.stores))
	for _, st := range s.stores {
		names = append(names, st["name"].(string))
	}
	return names
}

// GenerateRequests returns the decoded generateContent bodies
func (s *Server) GenerateRequests() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.generated...)
}

// SawAPIKey reports whether every request so far carried APIKey
func (s *Server) SawAPIKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.apiKeys) == 1 && s.apiKeys[APIKey]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys[r.Header.Get("x-goog-api-key")] = true

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && path == "/upload/v1beta/files":
		s.startUpload(w, r)
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/upload/session/"):
		s.finishUpload(w, r, strings.TrimPrefix(path, "/upload/session/"))
	case r.Method == http.MethodGet && path == "/v1beta/fileSearchStores":
		writeJSON(w, http.StatusOK, map[string]any{"fileSearchStores": s.stores})
	case r.Method == http.MethodPost && path == "/v1beta/fileSearchStores":
		s.createStore(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":importFile"):
		s.importFile(w, r, strings.TrimSuffix(strings.TrimPrefix(path, "/v1beta/"), ":importFile"))
	case r.Method == http.MethodGet && strings.Contains(path, "/operations/"):
		s.getOperation(w, strings.TrimPrefix(path, "/v1beta/"))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":generateContent"):
		s.generate(w, r)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("no route for %s %s", r.Method, path))
	}
}

func (s *Server) startUpload(w http.ResponseWriter, r *http.Request) {
	var body struct {
		File map[string]any `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	name, _ := body.File["name"].(string)
	if _, ok := s.files[name]; ok && name != "" {
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", fmt.Sprintf("File %s already exists.", name))
		return
	}
	if mimeType := r.Header.Get("X-Goog-Upload-Header-Content-Type"); mimeType != "" {
		body.File["mimeType"] = mimeType
	}

	s.nextID++
	id := fmt.Sprintf("%d", s.nextID)
	s.sessions[id] = body.File
	w.Header().Set("X-Goog-Upload-Url", s.URL+"/upload/session/"+id)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) finishUpload(w http.ResponseWriter, r *http.Request, id string) {
	file, ok := s.sessions[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown upload session")
		return
	}
	data, _ := io.ReadAll(r.Body)
	name, _ := file["name"].(string)
	if name == "" {
		name = "files/generated-" + id
		file["name"] = name
	}
	s.files[name] = string(data)
	s.uploads[name] = string(data)
	file["state"] = "ACTIVE"

	w.Header().Set("X-Goog-Upload-Status", "final")
	writeJSON(w, http.StatusOK, map[string]any{"file": file})
}

func (s *Server) createStore(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.nextID++
	store := map[string]any{
		"name":        fmt.Sprintf("fileSearchStores/store-%d", s.nextID),
		"displayName": body["displayName"],
	}
	s.stores = append(s.stores, store)
	writeJSON(w, http.StatusOK, store)
}

func (s *Server) importFile(w http.ResponseWriter, r *http.Request, store string) {
	var body struct {
		FileName string `json:"fileName"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if _, ok := s.files[body.FileName]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("File %s not found.", body.FileName))
		return
	}
	s.imports = append(s.imports, Import{Store: store, FileName: body.FileName})

	s.nextID++
	name := fmt.Sprintf("%s/operations/import-%d", store, s.nextID)
	s.polls[name] = s.PendingPolls
	writeJSON(w, http.StatusOK, map[string]any{"name": name})
}

func (s *Server) getOperation(w http.ResponseWriter, name string) {
	pending, ok := s.polls[name]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown operation")
		return
	}
	if pending > 0 {
		s.polls[name] = pending - 1
		writeJSON(w, http.StatusOK, map[string]any{"name": name})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name": name,
		"done": true,
		"response": map[string]any{
			"parent":       strings.SplitN(name, "/operations/", 2)[0],
			"documentName": "documents/doc-1",
		},
	})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	s.generated = append(s.generated, body)

	content := map[string]any{"role": "model"}
	if s.Answer != "" {
		content["parts"] = []map[string]any{{"text": s.Answer}}
	}
	candidate := map[string]any{"content": content, "finishReason": "STOP"}
	if len(s.Chunks) > 0 {
		candidate["groundingMetadata"] = map[string]any{"groundingChunks": s.Chunks}
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": []map[string]any{candidate}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": message, "status": code},
	})
}
