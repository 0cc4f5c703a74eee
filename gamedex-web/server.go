package main

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrowan/gamedex/gamedex-lib/blobstore"
	"github.com/mrowan/gamedex/gamedex-lib/catalog"
	"github.com/mrowan/gamedex/gamedex-lib/db"
	"github.com/mrowan/gamedex/gamedex-lib/logging"
	"github.com/mrowan/gamedex/gamedex-lib/metrics"
)

//go:embed assets/*
var assets embed.FS

// Server handles HTTP requests.
type Server struct {
	db    *db.DB
	svc   *catalog.Service
	blobs *blobstore.Store
	mux   *http.ServeMux
	log   *slog.Logger
}

// NewServer creates a new web server.
func NewServer(database *db.DB, svc *catalog.Service, blobs *blobstore.Store) *Server {
	s := &Server{
		db:    database,
		svc:   svc,
		blobs: blobs,
		mux:   http.NewServeMux(),
		log:   logging.Component("web"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/games", s.handleGames)
	s.mux.HandleFunc("/api/games/", s.handleGame)
	s.mux.HandleFunc("/api/search", s.handleSearch)
	s.mux.HandleFunc("/api/suggest", s.handleSuggest)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/blob/", s.handleBlob)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
	s.mux.HandleFunc("/", s.handleDashboard)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleGames serves the library list and accepts new names.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		games, err := s.svc.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"games": games})

	case http.MethodPost:
		var req struct {
			Names []string `json:"names"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if len(req.Names) == 0 {
			http.Error(w, "names is required", http.StatusBadRequest)
			return
		}
		added := s.svc.Add(r.Context(), req.Names)
		writeJSON(w, http.StatusOK, map[string]any{"added": len(added), "ids": added})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGame serves a single game by sort name, and updates its shelf
// state on PUT to /api/games/{sortName}/state.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/games/")

	if sortName, ok := strings.CutSuffix(rest, "/state"); ok {
		s.handleGameState(w, r, sortName)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, err := s.svc.Get(r.Context(), rest)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request, sortName string) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !db.ValidPlayState(req.State) {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	game, err := s.db.GetGameBySortName(r.Context(), sortName)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.db.SetPlayState(r.Context(), game.ID, req.State); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch is the search front door: local ranked results, falling
// through to the external catalog on a miss.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := s.svc.Search(r.Context(), query, limit)
	if err != nil {
		s.log.Error("search failed", "query", query, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []catalog.GameView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleSuggest serves name completions from the Steam catalog seed.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	apps, err := s.db.SearchSteamApps(r.Context(), prefix, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(apps))
	for _, a := range apps {
		names = append(names, a.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": names})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	games, _ := s.db.CountGames(r.Context())
	blobs, _ := s.db.CountBlobs(r.Context())
	steamApps, _ := s.db.CountSteamApps(r.Context())

	writeJSON(w, http.StatusOK, map[string]int{
		"totalGames":     games,
		"totalBlobs":     blobs,
		"totalSteamApps": steamApps,
	})
}

// handleBlob streams a stored artwork object. Content is addressed by
// digest, so a hit can be cached forever.
func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	digest := strings.TrimPrefix(r.URL.Path, "/blob/")

	blob, err := s.db.GetBlob(r.Context(), digest)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "blob not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reader, err := s.blobs.Open(digest)
	if err != nil {
		s.log.Error("blob missing from store", "digest", digest, "error", err)
		http.Error(w, "blob not found", http.StatusNotFound)
		return
	}
	defer func() { _ = reader.Close() }()

	w.Header().Set("Content-Type", blob.Mime)
	w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = io.Copy(w, reader)
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	content, err := assets.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(content)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if err := metrics.UpdateDBMetrics(s.db.Conn()); err != nil {
		log.Printf("Error updating metrics: %v", err)
	}
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	err := s.db.Conn().PingContext(r.Context())
	status := "healthy"
	statusCode := http.StatusOK

	if err != nil {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]string{
		"status": status,
		"db":     strconv.FormatBool(err == nil),
	})
}
