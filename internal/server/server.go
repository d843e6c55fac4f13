package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"neardup/internal/fileutil"
	"neardup/internal/index"
	"neardup/internal/storage"
)

//go:embed static/*
var staticFiles embed.FS

// queryCacheSize bounds the LRU of materialized search responses
const queryCacheSize = 512

// Server serves the local web UI and JSON API over one catalog. It
// keeps a live fuzzy word index in memory; every mutation goes through
// the index first and the catalog second, so the two stay in step.
type Server struct {
	storage     *storage.Storage
	index       *index.WordIndex
	cache       *lru.Cache[string, []index.Match]
	logger      *slog.Logger
	port        int
	idleTimeout time.Duration
	httpServer  *http.Server

	// Idle timeout management
	mu            sync.Mutex
	lastActivity  time.Time
	tabActive     bool
	activeClients int
	shutdownChan  chan struct{}
}

// New creates a Server over the catalog at dbPath, building the word
// index from the stored vocabulary.
func New(dbPath string, port int, idleTimeout time.Duration, metric index.Metric, ignoreCase bool) (*Server, error) {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return nil, err
	}

	vocab, err := store.GetVocabulary()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	ix, err := index.Build(vocab, metric, ignoreCase)
	if err != nil {
		store.Close()
		return nil, err
	}
	indexedWords.Set(float64(ix.Len()))

	cache, err := lru.New[string, []index.Match](queryCacheSize)
	if err != nil {
		store.Close()
		return nil, err
	}

	s := &Server{
		storage:      store,
		index:        ix,
		cache:        cache,
		logger:       slog.Default().With("system", "server"),
		port:         port,
		idleTimeout:  idleTimeout,
		lastActivity: time.Now(),
		shutdownChan: make(chan struct{}),
	}

	return s, nil
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/groups", s.handleGroups)
	mux.HandleFunc("/api/clean", s.handleClean)
	mux.HandleFunc("/api/file", s.handleFile)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/words", s.handleWords)
	mux.HandleFunc("/api/index/prune", s.handlePrune)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// WebSocket for connection monitoring
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	// Start idle timeout checker
	if s.idleTimeout > 0 {
		go s.idleTimeoutChecker()
	}

	// Handle shutdown signals
	go s.handleShutdownSignals()

	s.logger.Info("listening", "port", s.port, "indexed_words", s.index.Len())

	err = s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleShutdownSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		s.logger.Info("shutting down on signal")
	case <-s.shutdownChan:
		s.logger.Info("shutting down after idle timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.httpServer.Shutdown(ctx)
	s.storage.Close()
}

func (s *Server) idleTimeoutChecker() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			// Don't timeout if tab is active or there are active WebSocket clients
			if s.tabActive || s.activeClients > 0 {
				s.lastActivity = time.Now()
				s.mu.Unlock()
				continue
			}

			idle := time.Since(s.lastActivity)
			s.mu.Unlock()

			if idle >= s.idleTimeout {
				close(s.shutdownChan)
				return
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *Server) recordActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Server) setTabActive(active bool) {
	s.mu.Lock()
	s.tabActive = active
	if active {
		s.lastActivity = time.Now()
	}
	s.mu.Unlock()
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Info("response write failed", "error", err)
	}
}

// API Handlers

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	s.recordActivity()

	groups, err := s.storage.GetDuplicateGroups()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, groups)
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.recordActivity()

	var req struct {
		Paths  []string `json:"paths"`
		MoveTo string   `json:"move_to,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var results []map[string]any

	for _, path := range req.Paths {
		result := map[string]any{"path": path}

		// Check if file exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// File doesn't exist, just remove from DB
			s.storage.DeleteFile(path)
			result["status"] = "not_found"
		} else if req.MoveTo != "" {
			// Move file
			err := fileutil.MoveFile(path, req.MoveTo)
			if err != nil {
				result["error"] = err.Error()
			} else {
				result["status"] = "moved"
				s.storage.DeleteFile(path)
				filesCleanedTotal.Inc()
			}
		} else {
			// Move to trash
			err := fileutil.MoveToTrash(path)
			if err != nil {
				result["error"] = err.Error()
			} else {
				result["status"] = "trashed"
				s.storage.DeleteFile(path)
				filesCleanedTotal.Inc()
			}
		}

		results = append(results, result)
	}

	s.writeJSON(w, map[string]any{
		"results": results,
	})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.recordActivity()

	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	http.ServeFile(w, r, path)
}

// handleSearch answers fuzzy vocabulary lookups. Responses are cached
// per (query, radius, limit); every index mutation purges the cache.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.recordActivity()

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q required", http.StatusBadRequest)
		return
	}
	radius := intParam(r, "radius", 2)
	limit := intParam(r, "limit", 20)

	searchesTotal.Inc()

	key := fmt.Sprintf("%s\x00%d\x00%d", query, radius, limit)
	matches, ok := s.cache.Get(key)
	if ok {
		searchCacheHits.Inc()
	} else {
		matches = s.index.Lookup(query, radius, limit)
		s.cache.Add(key, matches)
	}

	s.writeJSON(w, map[string]any{
		"query":   query,
		"radius":  radius,
		"matches": matches,
	})
}

// handleWords adds or deletes vocabulary words, keeping the live index
// and the catalog in step.
func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	s.recordActivity()

	switch r.Method {
	case http.MethodPost:
		var req struct {
			Word  string `json:"word"`
			Count int    `json:"count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		added, err := s.index.Insert(req.Word, req.Count)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		count := req.Count
		if count < 1 {
			count = 1
		}
		if err := s.storage.AddWord(req.Word, count); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.cache.Purge()
		indexedWords.Set(float64(s.index.Len()))
		s.writeJSON(w, map[string]any{"word": req.Word, "added": added})

	case http.MethodDelete:
		var req struct {
			Words []string `json:"words"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		deleted := 0
		for _, word := range req.Words {
			if s.index.Delete(word) {
				deleted++
			}
		}
		if err := s.storage.DeleteWords(req.Words); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.cache.Purge()
		indexedWords.Set(float64(s.index.Len()))
		s.writeJSON(w, map[string]any{"deleted": deleted})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePrune drops rare or short words from the live index and the
// catalog in one pass.
func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.recordActivity()

	var req struct {
		MinLength int `json:"min_length"`
		MinCount  int `json:"min_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	removed := s.index.Prune(func(word string, count int) bool {
		return len(word) >= req.MinLength && count >= req.MinCount
	})
	if err := s.storage.DeleteWords(removed); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.cache.Purge()
	indexedWords.Set(float64(s.index.Len()))

	s.logger.Info("pruned index", "removed", len(removed), "remaining", s.index.Len())

	s.writeJSON(w, map[string]any{
		"removed":   len(removed),
		"remaining": s.index.Len(),
	})
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
