package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logoden/internal/config"
	"logoden/internal/history"
	"logoden/internal/store"
)

// NewServer creates and configures the HTTP server for the logoden JSON API.
func NewServer(session *history.Session, st store.Store, cfg *config.Config, version, bind string, port int) *http.Server {
	h := &Handlers{
		session: session,
		store:   st,
		cfg:     cfg,
		version: version,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /logos", h.HandleList)
	mux.HandleFunc("GET /logos/{id}", h.HandleGet)
	mux.HandleFunc("GET /logos/{id}/image", h.HandleImage)
	mux.HandleFunc("PATCH /logos/{id}", h.HandleRename)
	mux.HandleFunc("DELETE /logos/{id}", h.HandleDelete)
	mux.HandleFunc("POST /logos/bulk-delete", h.HandleBulkDelete)
	mux.HandleFunc("GET /logos/{id}/catalog", h.HandleCatalogStatus)
	mux.HandleFunc("POST /logos/{id}/catalog", h.HandleCatalogAdd)
	mux.HandleFunc("POST /export", h.HandleExport)
	mux.HandleFunc("GET /healthz", h.HandleHealth)

	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders applies a restrictive header set to every response; the
// API serves JSON only, so scripts, frames, and sniffing are all denied.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves until SIGINT/SIGTERM, then shuts down with a short drain window.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("logoden API running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
