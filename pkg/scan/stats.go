package scan

import "github.com/duynguyendang/codescape/pkg/model"

// ComputeStats aggregates totals from a finished tree in one pass. The tree
// is never mutated. The root directory node counts toward
// TotalDirectories, so TotalFiles+TotalDirectories equals the node count of
// the whole tree.
func ComputeStats(root *model.FileNode) model.CodebaseStats {
	stats := model.CodebaseStats{
		FileTypes: make(map[model.LanguageTag]int),
	}
	root.Walk(func(n *model.FileNode) {
		switch n.Kind {
		case model.KindDirectory:
			stats.TotalDirectories++
		case model.KindFile:
			stats.TotalFiles++
			stats.TotalSizeBytes += n.Size
			tag := n.Language
			if tag == "" {
				tag = model.TagOther
			}
			stats.FileTypes[tag]++
		}
	})
	return stats
}
