// Package mcp exposes the scan pipeline and stored snapshots to MCP tool
// callers over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duynguyendang/codescape/internal/manager"
	"github.com/duynguyendang/codescape/pkg/index"
)

const snapshotLabel = "latest"

// MCPServer wraps the pipeline and snapshot store for MCP access.
type MCPServer struct {
	store     *manager.SnapshotStore
	sourceDir string
	cfg       index.Config
}

// Run starts the MCP server on Stdio.
func Run(ctx context.Context, store *manager.SnapshotStore, sourceDir string, cfg index.Config) error {
	s := server.NewMCPServer(
		"codescape",
		"0.1.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	ms := &MCPServer{store: store, sourceDir: sourceDir, cfg: cfg}

	// --- Resources ---

	s.AddResource(
		mcp.NewResource(
			"codescape://snapshot/latest",
			"Latest Snapshot",
			mcp.WithResourceDescription("The most recent codebase snapshot (tree, stats, links)"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleLatestSnapshot,
	)

	// --- Tools ---

	s.AddTool(
		mcp.NewTool(
			"scan_codebase",
			mcp.WithDescription("Scan the configured source tree and store a fresh snapshot."),
			mcp.WithString("label", mcp.Description("Snapshot label (default: latest)")),
		),
		ms.handleScanCodebase,
	)

	s.AddTool(
		mcp.NewTool(
			"get_stats",
			mcp.WithDescription("Get aggregate stats (file/dir counts, sizes, language breakdown) for a stored snapshot."),
			mcp.WithString("label", mcp.Description("Snapshot label (default: latest)")),
		),
		ms.handleGetStats,
	)

	s.AddTool(
		mcp.NewTool(
			"get_file_links",
			mcp.WithDescription("List resolved reference links into and out of a specific file."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Root-relative file path")),
			mcp.WithString("label", mcp.Description("Snapshot label (default: latest)")),
		),
		ms.handleGetFileLinks,
	)

	slog.Info("Starting MCP server on Stdio")
	return server.ServeStdio(s)
}

// --- Resource Handlers ---

func (ms *MCPServer) handleLatestSnapshot(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, _, err := ms.store.Load(snapshotLabel)
	if err != nil {
		return nil, fmt.Errorf("no snapshot available: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// --- Tool Handlers ---

func (ms *MCPServer) handleScanCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	label, _ := args["label"].(string)
	if label == "" {
		label = snapshotLabel
	}

	snap, report, err := index.Run(ctx, ms.sourceDir, ms.cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	meta, err := ms.store.Save(label, snap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}

	summary := fmt.Sprintf("Snapshot %s (%s): %d files, %d directories, %d links, %d unresolved references",
		meta.Label, meta.ID,
		snap.Stats.TotalFiles, snap.Stats.TotalDirectories,
		len(snap.Links), len(report.Unresolved))
	return mcp.NewToolResultText(summary), nil
}

func (ms *MCPServer) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	label, _ := args["label"].(string)
	if label == "" {
		label = snapshotLabel
	}

	snap, _, err := ms.store.Load(label)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot not found: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(snap.Stats, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (ms *MCPServer) handleGetFileLinks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path argument required"), nil
	}
	label, _ := args["label"].(string)
	if label == "" {
		label = snapshotLabel
	}

	snap, _, err := ms.store.Load(label)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot not found: %v", err)), nil
	}

	var formatted []string
	for _, link := range snap.Links {
		switch path {
		case link.Source:
			formatted = append(formatted, fmt.Sprintf("-> %s (%s)", link.Target, link.Kind))
		case link.Target:
			formatted = append(formatted, fmt.Sprintf("<- %s (%s)", link.Source, link.Kind))
		}
	}

	if len(formatted) == 0 {
		return mcp.NewToolResultText("No links found for " + path), nil
	}
	return mcp.NewToolResultText(strings.Join(formatted, "\n")), nil
}
