package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/codescape/pkg/common/errors"
	"github.com/duynguyendang/codescape/pkg/export"
	"github.com/duynguyendang/codescape/pkg/index"
)

// DefaultLabel is used when a scan request does not name its snapshot.
const DefaultLabel = "latest"

// handleScan runs the full pipeline over the configured source directory,
// persists the snapshot under the requested label and returns it.
func (s *Server) handleScan(c *gin.Context) {
	var req struct {
		Label string `json:"label"`
	}
	// An empty body is fine; it means "scan into the default label".
	_ = c.ShouldBindJSON(&req)
	if req.Label == "" {
		req.Label = DefaultLabel
	}

	if s.sourceDir == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "No source directory configured", nil))
		return
	}

	snap, report, err := index.Run(c.Request.Context(), s.sourceDir, s.cfg)
	if err != nil {
		handleError(c, err)
		return
	}

	meta, err := s.store.Save(req.Label, snap)
	if err != nil {
		handleError(c, err)
		return
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"meta": meta, "snapshot": snap})
}

// handleListSnapshots returns metadata for all stored snapshots.
func (s *Server) handleListSnapshots(c *gin.Context) {
	metas, err := s.store.List()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, metas)
}

// handleGetSnapshot returns the most recent snapshot for a label.
func (s *Server) handleGetSnapshot(c *gin.Context) {
	snap, meta, err := s.store.Load(c.Param("label"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meta": meta, "snapshot": snap})
}

// handleGraph returns the D3 projection of a stored snapshot.
func (s *Server) handleGraph(c *gin.Context) {
	label := c.DefaultQuery("label", DefaultLabel)
	snap, _, err := s.store.Load(label)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, export.BuildGraph(snap))
}

// handleStats returns only the aggregate stats of a stored snapshot.
func (s *Server) handleStats(c *gin.Context) {
	label := c.DefaultQuery("label", DefaultLabel)
	snap, _, err := s.store.Load(label)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap.Stats)
}

// handleUnresolved returns the resolution diagnostics of the most recent
// scan performed by this process.
func (s *Server) handleUnresolved(c *gin.Context) {
	s.mu.RLock()
	report := s.lastReport
	s.mu.RUnlock()

	if report == nil {
		handleError(c, errors.NewAppError(http.StatusNotFound, "No scan has run yet", nil))
		return
	}
	c.JSON(http.StatusOK, report)
}
