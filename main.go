package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/duynguyendang/codescape/internal/manager"
	"github.com/duynguyendang/codescape/pkg/export"
	"github.com/duynguyendang/codescape/pkg/index"
	"github.com/duynguyendang/codescape/pkg/mcp"
	"github.com/duynguyendang/codescape/pkg/server"
)

func main() {
	// Define flags
	scanMode := flag.Bool("scan", false, "run one scan (requires a source folder argument)")
	serverMode := flag.Bool("server", false, "run REST API server")
	mcpMode := flag.Bool("mcp", false, "run MCP server on stdio")
	sourceFlag := flag.String("source", "", "path to the source tree to scan")
	dataFlag := flag.String("data", "./data", "snapshot storage directory")
	configFlag := flag.String("config", "", "path to codescape.yaml")
	labelFlag := flag.String("label", "latest", "snapshot label for scan mode")
	graphOut := flag.String("graph", "", "also write a D3 graph JSON file (scan mode)")

	flag.Parse()

	_ = godotenv.Load()

	cfg := index.DefaultConfig()
	if *configFlag != "" {
		loaded, err := index.LoadConfig(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	sourceDir := *sourceFlag
	args := flag.Args()
	if sourceDir == "" && len(args) >= 1 {
		sourceDir = args[0]
	}

	store, err := manager.NewSnapshotStore(*dataFlag)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}

	switch {
	case *serverMode:
		fmt.Printf("Starting REST API Server. Source: %s Data: %s\n", sourceDir, *dataFlag)
		srv := server.NewServer(store, sourceDir, cfg)
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(":" + port); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	case *mcpMode:
		if err := mcp.Run(context.Background(), store, sourceDir, cfg); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case *scanMode:
		if sourceDir == "" {
			fmt.Println("Error: --scan requires a source folder")
			fmt.Println("Usage: codescape --scan <source_folder> [--data <dir>] [--label <name>]")
			os.Exit(1)
		}
		runScan(sourceDir, *labelFlag, *graphOut, store, cfg)

	default:
		flag.Usage()
		os.Exit(1)
	}
}

func runScan(sourceDir, label, graphOut string, store *manager.SnapshotStore, cfg index.Config) {
	fmt.Printf("Scanning %s...\n", sourceDir)
	snap, report, err := index.Run(context.Background(), sourceDir, cfg)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	meta, err := store.Save(label, snap)
	if err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}

	fmt.Printf("Snapshot %s saved (%s)\n", meta.Label, meta.ID)
	fmt.Printf("  files: %d  directories: %d  bytes: %d\n",
		snap.Stats.TotalFiles, snap.Stats.TotalDirectories, snap.Stats.TotalSizeBytes)
	fmt.Printf("  links: %d  unresolved: %d\n", len(snap.Links), len(report.Unresolved))
	for _, u := range report.Unresolved {
		if len(u.Suggestions) > 0 {
			fmt.Printf("  unresolved %s -> %q (did you mean %s?)\n", u.Source, u.Target, u.Suggestions[0])
		}
	}

	if graphOut != "" {
		if err := export.SaveGraph(export.BuildGraph(snap), graphOut); err != nil {
			log.Fatalf("Failed to write graph: %v", err)
		}
		fmt.Printf("Graph written to %s\n", graphOut)
	}
}
