// Package scan walks a project root and builds the FileNode tree.
package scan

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "github.com/duynguyendang/codescape/pkg/common/errors"
	"github.com/duynguyendang/codescape/pkg/model"
)

// Scanner builds a FileNode tree from a directory. Ignore patterns are
// doublestar globs matched against root-relative slash paths; a pattern that
// matches a directory prunes its whole subtree.
type Scanner struct {
	ignore []string
}

// NewScanner creates a Scanner with the given ignore patterns.
func NewScanner(ignorePatterns []string) *Scanner {
	return &Scanner{ignore: ignorePatterns}
}

// Scan walks root and returns the tree. The only fatal condition is the root
// itself being missing or unreadable; unreadable entries below the root are
// skipped and the scan continues. Repeated scans of an unchanged tree yield
// byte-identical structure: children are ordered lexicographically by name.
//
// Directories left empty after ignore filtering are kept as placeholder
// nodes so the host project's layout survives in the output.
func (s *Scanner) Scan(root string) (*model.FileNode, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrRootInaccessible, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", apperrors.ErrRootInaccessible, root)
	}

	node := &model.FileNode{
		Name: filepath.Base(filepath.Clean(root)),
		Path: ".",
		Kind: model.KindDirectory,
	}
	if mod := info.ModTime(); !mod.IsZero() {
		m := mod
		node.ModifiedAt = &m
	}
	s.scanDir(root, "", node)
	return node, nil
}

func (s *Scanner) scanDir(absDir, relDir string, dir *model.FileNode) {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		// Unreadable below the root is non-fatal; the directory stays as
		// an empty placeholder.
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		rel := name
		if relDir != "" {
			rel = relDir + "/" + name
		}
		if s.ignored(rel) {
			continue
		}
		// Symlinks are skipped outright: a dangling one cannot be stat'd and
		// a directory one could loop back into the tree.
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		child := &model.FileNode{
			Name: name,
			Path: rel,
		}
		if mod := info.ModTime(); !mod.IsZero() {
			m := mod
			child.ModifiedAt = &m
		}

		if entry.IsDir() {
			child.Kind = model.KindDirectory
			s.scanDir(filepath.Join(absDir, name), rel, child)
		} else {
			child.Kind = model.KindFile
			child.Size = info.Size()
		}
		dir.Children = append(dir.Children, child)
	}
}

// ignored reports whether a root-relative path matches any ignore pattern.
// Patterns are tried against the full relative path and against the entry
// name alone, so a bare "node_modules" prunes the directory at any depth.
func (s *Scanner) ignored(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range s.ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
