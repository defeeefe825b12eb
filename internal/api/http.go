// internal/api/http.go
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/taiyakiedu/edugames/internal/config"
	"github.com/taiyakiedu/edugames/internal/game"
)

// Allow any origin; the server is meant for local use.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server serves the game index, the game sites, shared assets and the
// live catalog feed.
type Server struct {
	cfg     config.Config
	catalog *game.Catalog
	router  *mux.Router
	handler http.Handler
	httpSrv *http.Server
}

// NewServer wires every route onto a fresh router.
func NewServer(cfg config.Config, catalog *game.Catalog) (*Server, error) {
	index, err := newIndexPage()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		router:  mux.NewRouter(),
	}

	registerIndexRoutes(s.router, catalog, index) // game list
	registerStaticRoutes(s.router, cfg, catalog)  // game sites, assets, static
	registerFeedRoutes(s.router, catalog, cfg.PollInterval)
	registerHealthRoutes(s.router)

	// Wrapped outside the router so 404s and 405s are logged too.
	s.handler = requestIDMiddleware(accessLogMiddleware(s.router))

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	log.Printf("HTTP server listening on %s (games: %s)", s.cfg.Addr, s.catalog.Dir())
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func registerHealthRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet, http.MethodHead)
}
