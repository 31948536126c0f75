// Package server implements the chat core: the per-room session hub with
// its registry and bounded history, the WebSocket transport, and the
// read-only REST surface over the room directory.
package server

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/okeefe/banter/internal/web"
)

// New creates a configured HTTP server with all routes registered.
func New(hub *Hub, addr string, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	h := &Handlers{
		Hub:       hub,
		Log:       log,
		StartTime: time.Now(),
	}

	// REST API routes.
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/rooms", h.ListRooms)
	mux.HandleFunc("GET /api/rooms/{room}", h.RoomInfo)
	mux.HandleFunc("GET /api/rooms/{room}/history", h.RoomHistory)

	// WebSocket route.
	mux.HandleFunc("GET /ws/{room}", h.HandleWS)

	// Serve the embedded lobby/chat UI (must be after API routes).
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		log.Error("embedded static fs", "error", err)
	} else {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, err := web.StaticFS.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	handler := loggingMiddleware(log, corsMiddleware(mux))

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).Round(time.Microsecond))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
