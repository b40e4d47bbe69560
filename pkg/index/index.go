// Package index runs the full scan pipeline: walk the tree, classify nodes,
// extract raw references, resolve them into links and aggregate stats. The
// stages are sequential; within the extraction stage files are processed by
// a bounded worker pool.
package index

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/duynguyendang/codescape/pkg/extract"
	"github.com/duynguyendang/codescape/pkg/lang"
	"github.com/duynguyendang/codescape/pkg/model"
	"github.com/duynguyendang/codescape/pkg/resolve"
	"github.com/duynguyendang/codescape/pkg/scan"
)

const maxWorkers = 8

// Report carries per-run diagnostics that are not part of the snapshot.
type Report struct {
	Unresolved []resolve.Unresolved `json:"unresolved,omitempty"`
}

// Run executes one complete pipeline pass over root and returns the
// snapshot plus a resolution report. The only fatal condition is the root
// being missing or unreadable; everything below it degrades gracefully.
// If ctx is cancelled mid-run, the partial results are discarded.
func Run(ctx context.Context, root string, cfg Config) (*model.Snapshot, *Report, error) {
	scanner := scan.NewScanner(cfg.IgnorePatterns)
	tree, err := scanner.Scan(root)
	if err != nil {
		return nil, nil, err
	}

	lang.Annotate(tree)

	if err := extractAll(ctx, root, tree, cfg); err != nil {
		return nil, nil, err
	}

	result := resolve.Resolve(tree, cfg.RootAliases)
	stats := scan.ComputeStats(tree)

	snap := &model.Snapshot{
		Tree:  tree,
		Stats: stats,
		Links: result.Links,
	}
	return snap, &Report{Unresolved: result.Unresolved}, nil
}

// extractAll populates each file node's reference list. Every worker owns
// the nodes it is handed exclusively, so no synchronization is needed
// beyond the final join.
func extractAll(ctx context.Context, root string, tree *model.FileNode, cfg Config) error {
	ext := extract.New(extract.Config{
		ExternalPackages: cfg.ExternalPackages,
		InternalRoots:    cfg.InternalRoots,
		APIClients:       cfg.APIClients,
	})

	jobs := make(chan *model.FileNode, 100)
	var wg sync.WaitGroup

	workerCount := runtime.NumCPU()
	if workerCount > maxWorkers {
		workerCount = maxWorkers
	}

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for node := range jobs {
				extractFile(root, node, ext, cfg.MaxFileBytes)
			}
		}()
	}

	var cancelled error
	for _, node := range tree.Files() {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		jobs <- node
	}
	close(jobs)
	wg.Wait()

	return cancelled
}

// extractFile reads one file and records its references. Unreadable or
// oversized files simply keep an empty reference list.
func extractFile(root string, node *model.FileNode, ext *extract.Extractor, maxBytes int64) {
	switch node.Language {
	case model.TagScript, model.TagTypedScript, model.TagBackendScript:
	default:
		return
	}
	if maxBytes > 0 && node.Size > maxBytes {
		return
	}
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(node.Path)))
	if err != nil {
		return
	}
	node.References = ext.Extract(content, node.Language)
}
