// Package model defines the data structures shared by the scan pipeline:
// the file tree, raw references, resolved links, and the snapshot that is
// handed to the rendering and persistence layers.
package model

import "time"

// NodeKind distinguishes files from directories.
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindDirectory NodeKind = "directory"
)

// LanguageTag is the coarse classification assigned to a file by extension.
type LanguageTag string

const (
	TagScript         LanguageTag = "script"         // .js, .jsx, .mjs, .cjs
	TagTypedScript    LanguageTag = "typed-script"   // .ts, .tsx
	TagBackendScript  LanguageTag = "backend-script" // .py
	TagMarkup         LanguageTag = "markup"         // .html, .htm, .svg
	TagStylesheet     LanguageTag = "stylesheet"     // .css, .scss, .less
	TagStructuredData LanguageTag = "structured-data"
	TagDocumentation  LanguageTag = "documentation"
	TagOther          LanguageTag = "other"
)

// RefKind is the coarse category of a reference or link.
// It is a closed set; code that branches on it should switch over every
// constant rather than go through a string-keyed map.
type RefKind string

const (
	RefExternal RefKind = "external"  // targets a dependency outside the project
	RefModule   RefKind = "module"    // bare specifier in an import-from statement
	RefDirect   RefKind = "direct"    // side-effect import of a concrete path
	RefRequire  RefKind = "require"   // call-style require("...")
	RefInternal RefKind = "internal"  // relative or root-relative project import
	RefAPIUsage RefKind = "api-usage" // frontend call into a generated backend client
)

// RawReference is one import-like statement found in a file, before
// resolution. Path holds the literal specifier as written in the source.
type RawReference struct {
	Path string  `json:"path"`
	Kind RefKind `json:"type"`
}

// FileNode is one file or directory in the scanned tree.
//
// Path is slash-separated and root-relative with no leading slash; the root
// node itself carries ".". Paths are unique across the tree and a child's
// path is always parent path + "/" + name.
type FileNode struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Kind       NodeKind       `json:"type"`
	Size       int64          `json:"size"`
	ModifiedAt *time.Time     `json:"last_modified,omitempty"`
	Language   LanguageTag    `json:"language,omitempty"`
	Category   string         `json:"category,omitempty"`
	Children   []*FileNode    `json:"children,omitempty"`
	References []RawReference `json:"imports,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *FileNode) IsDir() bool { return n.Kind == KindDirectory }

// Walk visits the node and every descendant in tree order.
func (n *FileNode) Walk(visit func(*FileNode)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Files returns every file node in the tree in tree order.
func (n *FileNode) Files() []*FileNode {
	var files []*FileNode
	n.Walk(func(node *FileNode) {
		if node.Kind == KindFile {
			files = append(files, node)
		}
	})
	return files
}

// ResolvedLink is a validated directed edge between two file nodes. Both
// endpoints name files that exist in the same snapshot's tree.
type ResolvedLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Kind   RefKind `json:"type"`
}

// CodebaseStats is a projection of the tree, recomputed on every scan.
// The root directory node is counted in TotalDirectories.
type CodebaseStats struct {
	TotalFiles       int                 `json:"total_files"`
	TotalDirectories int                 `json:"total_directories"`
	TotalSizeBytes   int64               `json:"total_size_bytes"`
	FileTypes        map[LanguageTag]int `json:"file_types"`
}

// Snapshot is the output of one complete pipeline run. It is immutable once
// returned; consumers must treat the tree as read-only and the link list as
// pre-validated.
type Snapshot struct {
	Tree  *FileNode      `json:"structure"`
	Stats CodebaseStats  `json:"stats"`
	Links []ResolvedLink `json:"links"`
}
