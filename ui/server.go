package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ssea/adapters/report"
	"ssea/domain/core"
	"ssea/internal"
	apperrors "ssea/internal/errors"
	"ssea/ports"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is a read-only browser over one SSEA output directory
type Server struct {
	router  *gin.Engine
	dir     string
	name    string
	catalog ports.RunCatalog
	logger  *internal.Logger
}

// Options configures a Server
type Options struct {
	// Name of the run inside Dir; found from the summary file when empty
	Name    string
	GinMode string
	// Catalog enables /api/runs when set
	Catalog ports.RunCatalog
	Logger  *internal.Logger
}

// NewServer creates a server for dir
func NewServer(dir string, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = internal.NewDiscardLogger()
	}
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}

	name := opts.Name
	if name == "" {
		found, err := FindSummary(dir)
		if err != nil {
			return nil, err
		}
		name = found
	}

	s := &Server{
		router:  gin.New(),
		dir:     dir,
		name:    name,
		catalog: opts.Catalog,
		logger:  opts.Logger,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Name returns the run name being served
func (s *Server) Name() string {
	return s.name
}

func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/reports/")
	})
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "name": s.name})
	})

	api := s.router.Group("/api")
	api.GET("/summary", s.handleSummary)
	api.GET("/sets/:set", s.handleSet)
	api.GET("/runs", s.handleRuns)
	api.GET("/runs/:id", s.handleRunRecords)

	// report files: compressed, never cached
	files := chi.NewRouter()
	files.Use(middleware.Compress(5))
	files.Use(middleware.NoCache)
	files.Handle("/*", http.StripPrefix("/reports", http.FileServer(http.Dir(s.dir))))
	s.router.Any("/reports/*path", gin.WrapH(files))
}

func (s *Server) handleSummary(c *gin.Context) {
	s.serveJSONFile(c, report.SummaryFileName(s.name))
}

func (s *Server) handleSet(c *gin.Context) {
	set := c.Param("set")
	if set == "" || strings.ContainsAny(set, `/\`) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sample set name"})
		return
	}
	s.serveJSONFile(c, report.SetFileName(s.name, set, "json"))
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.catalog == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run catalog configured"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := s.catalog.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("[Runs] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleRunRecords(c *gin.Context) {
	if s.catalog == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run catalog configured"})
		return
	}
	runID, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	records, err := s.catalog.GetRecords(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) serveJSONFile(c *gin.Context, file string) {
	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%s not found", file)})
		return
	}
	if err != nil {
		s.logger.Error("[API] reading %s: %v", file, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read report"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Start serves on addr until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving %s (%s) on http://%s", s.dir, s.name, addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// FindSummary returns the run name of the summary file in dir: the one JSON
// document carrying a results array
func FindSummary(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	for _, path := range matches {
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, ".json")
		if strings.Contains(name, ".") {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var candidate struct {
			Results []json.RawMessage `json:"results"`
		}
		if json.Unmarshal(data, &candidate) == nil && candidate.Results != nil {
			return name, nil
		}
	}
	return "", apperrors.NotFound(fmt.Sprintf("SSEA summary in %s", dir))
}
