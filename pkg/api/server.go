// Package api provides the REST API server for ledcostume
package api

import (
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/ledcostume/pkg/audio"
	"github.com/james-see/ledcostume/pkg/config"
	"github.com/james-see/ledcostume/pkg/converter"
	"github.com/james-see/ledcostume/pkg/debug"
	"github.com/james-see/ledcostume/pkg/document"
	"github.com/james-see/ledcostume/pkg/merge"
	"github.com/james-see/ledcostume/pkg/show"
)

// @title ledcostume API
// @version 1.0
// @description API for resolving, merging and previewing LED costume light sequences
// @host localhost:8080
// @BasePath /api/v1

// Server serves the API for one data directory
type Server struct {
	dataDir       string
	frameInterval time.Duration
	cache         *merge.Cache
	conv          *converter.Converter
	probe         show.Prober
	router        *gin.Engine
}

// NewServer creates a server for the data directory named in cfg
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		dataDir:       cfg.DataDir,
		frameInterval: cfg.FrameInterval(),
		cache:         merge.NewCache(cfg.CacheSize),
		conv:          converter.New(cfg.Export.Resolution, cfg.Export.Tempo),
		probe:         audio.Duration,
	}
	s.router = s.routes()
	return s
}

// SetProber replaces the audio duration probe
func (s *Server) SetProber(p show.Prober) {
	s.probe = p
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// StartServer starts the API server on the configured address
func StartServer(cfg *config.Config) error {
	return NewServer(cfg).router.Run(cfg.Addr())
}

func (s *Server) routes() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/catalog", s.handleCatalog)
		v1.POST("/resolve", s.handleResolve)
		v1.POST("/merge", s.handleMerge)
		v1.GET("/scenario/timeline", s.handleScenarioTimeline)
		v1.POST("/export/midi", s.handleExportMIDI)
		v1.POST("/import/midi", s.handleImportMIDI)
		v1.GET("/formats", listFormats)
		v1.GET("/preview/ws", s.handlePreview)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ledcostume",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the exchange formats and conversions
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"pattern", "midi"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// composer builds a show composer reading from the data directory
func (s *Server) composer() *show.Composer {
	return &show.Composer{
		Store:     document.NewFileStore(s.dataDir),
		MusicDir:  filepath.Join(s.dataDir, document.MusicDir),
		Probe:     s.probe,
		Cache:     s.cache,
		LocalOnly: true,
	}
}

// loadShow composes the scenario at a path relative to the data directory
func (s *Server) loadShow(path string) (*show.Show, error) {
	if path == "" || !filepath.IsLocal(path) {
		return nil, errBadPath
	}
	store := document.NewFileStore(s.dataDir)
	sc, err := document.LoadScenario(store, path)
	if err != nil {
		return nil, err
	}
	sh, err := s.composer().Compose(sc)
	if err != nil {
		return nil, err
	}
	debug.Log("api", "composed %s: %d rows, %s", path, len(sh.Rows), sh.Duration)
	return sh, nil
}

var errBadPath = errors.New("path must be relative to the data directory")

// writeError maps domain errors to HTTP statuses
func writeError(c *gin.Context, err error) {
	var (
		malformed *document.MalformedDocumentError
		ioErr     *document.IoError
		missing   *merge.MissingDurationError
		meta      *audio.MetadataError
	)
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}
	switch {
	case errors.Is(err, errBadPath), errors.Is(err, show.ErrNonLocalRef):
		status = http.StatusBadRequest
	case errors.As(err, &malformed):
		status = http.StatusBadRequest
	case errors.As(err, &missing):
		status = http.StatusUnprocessableEntity
		body["index"] = missing.Index
	case errors.As(err, &meta):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &ioErr) && errors.Is(ioErr.Err, fs.ErrNotExist):
		status = http.StatusNotFound
	}
	c.JSON(status, body)
}
