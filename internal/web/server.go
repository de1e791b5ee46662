// Package web exposes the case search and document pipeline over HTTP for
// the browser shell: search relay, document open, progressive page images,
// print and download.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1Sheikhhamza/case-search-app/internal/config"
	"github.com/1Sheikhhamza/case-search-app/internal/document"
	"github.com/1Sheikhhamza/case-search-app/internal/extract"
	"github.com/1Sheikhhamza/case-search-app/internal/relay"
)

// Server is the HTTP front of the case search app.
type Server struct {
	cfg      *config.Config
	relay    *relay.Client
	engine   *extract.Engine
	docs     *document.Service
	sessions *sessionStore
}

// NewServer creates the HTTP server around the shared services.
func NewServer(cfg *config.Config, relayClient *relay.Client, engine *extract.Engine,
	docs *document.Service,
) (*Server, error) {
	if relayClient == nil || engine == nil || docs == nil {
		return nil, fmt.Errorf("server dependencies cannot be nil")
	}
	return &Server{
		cfg:      cfg,
		relay:    relayClient,
		engine:   engine,
		docs:     docs,
		sessions: newSessionStore(),
	}, nil
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	if !s.cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/search", s.handleSearch)
		api.POST("/documents", s.handleOpenDocument)
		api.GET("/documents/:id", s.handleDocumentInfo)
		api.GET("/documents/:id/pages/:page", s.handlePage)
		api.GET("/documents/:id/print", s.handlePrint)
		api.GET("/documents/:id/download", s.handleDownload)
		api.DELETE("/documents/:id", s.handleCloseDocument)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.Version})
	})

	return router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", s.cfg.Address())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}
