// Package server exposes the scan pipeline and snapshot store over REST.
package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/codescape/internal/manager"
	"github.com/duynguyendang/codescape/pkg/common/errors"
	"github.com/duynguyendang/codescape/pkg/index"
)

// Server holds the state for the REST API server.
type Server struct {
	store     *manager.SnapshotStore
	cfg       index.Config
	sourceDir string
	router    *gin.Engine

	mu         sync.RWMutex
	lastReport *index.Report
}

// NewServer creates a new Server instance.
func NewServer(store *manager.SnapshotStore, sourceDir string, cfg index.Config) *Server {
	r := gin.Default()
	s := &Server{
		store:     store,
		cfg:       cfg,
		sourceDir: sourceDir,
		router:    r,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.POST("/v1/scan", s.handleScan)
	s.router.GET("/v1/snapshots", s.handleListSnapshots)
	s.router.GET("/v1/snapshots/:label", s.handleGetSnapshot)
	s.router.GET("/v1/graph", s.handleGraph)
	s.router.GET("/v1/stats", s.handleStats)
	s.router.GET("/v1/unresolved", s.handleUnresolved)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
