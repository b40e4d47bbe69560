package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/codescape/internal/manager"
	"github.com/duynguyendang/codescape/pkg/export"
	"github.com/duynguyendang/codescape/pkg/index"
	"github.com/duynguyendang/codescape/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	source := t.TempDir()
	writeFixture(t, source, "pages/Home.tsx", `import { listUsers } from "../apis/users"
import leftPad from "left-pad"
`)
	writeFixture(t, source, "apis/users/__init__.py", "import os\n")

	store, err := manager.NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	return NewServer(store, source, index.DefaultConfig())
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScanAndGetSnapshot(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/scan", []byte(`{"label":"main"}`))
	require.Equal(t, http.StatusOK, w.Code)

	var scanResp struct {
		Meta     manager.SnapshotMeta `json:"meta"`
		Snapshot model.Snapshot       `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scanResp))
	assert.Equal(t, "main", scanResp.Meta.Label)
	assert.Equal(t, 2, scanResp.Snapshot.Stats.TotalFiles)
	assert.Contains(t, scanResp.Snapshot.Links, model.ResolvedLink{
		Source: "pages/Home.tsx",
		Target: "apis/users/__init__.py",
		Kind:   model.RefInternal,
	})

	w = doRequest(t, srv, http.MethodGet, "/v1/snapshots/main", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var getResp struct {
		Snapshot model.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	assert.Equal(t, scanResp.Snapshot.Stats, getResp.Snapshot.Stats)
	assert.Equal(t, scanResp.Snapshot.Links, getResp.Snapshot.Links)
}

func TestScanDefaultLabel(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meta manager.SnapshotMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, DefaultLabel, resp.Meta.Label)
}

func TestScanWithoutSourceDir(t *testing.T) {
	store, err := manager.NewSnapshotStore(t.TempDir())
	require.NoError(t, err)
	srv := NewServer(store, "", index.DefaultConfig())

	w := doRequest(t, srv, http.MethodPost, "/v1/scan", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSnapshotNotFound(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(t, srv, http.MethodGet, "/v1/snapshots/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSnapshots(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/scan", []byte(`{"label":"alpha"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var metas []manager.SnapshotMeta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metas))
	require.Len(t, metas, 1)
	assert.Equal(t, "alpha", metas[0].Label)
}

func TestGraphEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/v1/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var graph export.D3Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &graph))
	assert.NotEmpty(t, graph.Nodes)
	assert.NotEmpty(t, graph.Links)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats model.CodebaseStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 1, stats.FileTypes[model.TagTypedScript])
	assert.Equal(t, 1, stats.FileTypes[model.TagBackendScript])
}

func TestStatsUnknownLabel(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(t, srv, http.MethodGet, "/v1/stats?label=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnresolvedEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Before any scan there is nothing to report.
	w := doRequest(t, srv, http.MethodGet, "/v1/unresolved", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, srv, http.MethodPost, "/v1/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/v1/unresolved", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report index.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
}
