// Package resolve maps raw reference strings onto canonical nodes of a
// scanned tree and produces the resolved link set.
//
// Raw targets arrive in heterogeneous shapes: exact relative paths, paths
// without extension, root-aliased paths, package-index elisions and bare
// basenames. Resolution runs an ordered fallback chain over an immutable
// index built once from the finished tree; ambiguity is never guessed.
package resolve

import (
	"path"
	"sort"
	"strings"

	"github.com/duynguyendang/codescape/pkg/model"
)

// sourceExts is the fixed priority order tried when a specifier elides its
// extension.
var sourceExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".py", ".css", ".json"}

// Index is the build-once, read-many lookup over a tree's file nodes. It is
// never mutated after New, so resolution workers may share it freely.
type Index struct {
	paths    map[string]string   // canonical path -> itself
	noExt    map[string][]string // lowercased extension-stripped path -> canonical paths
	aliases  map[string][]string // alias key -> canonical paths
	byBase   map[string][]string // lowercased extension-stripped basename -> canonical paths
	rewrites []rewrite           // alias prefix -> real prefix, sorted for determinism
}

type rewrite struct {
	alias string
	real  string
}

// NewIndex builds the lookup tables for every file node in the tree.
// rootAliases maps an alias prefix written in source (e.g. "@/") to the real
// path prefix it stands for (e.g. "ui/src/").
func NewIndex(root *model.FileNode, rootAliases map[string]string) *Index {
	ix := &Index{
		paths:   make(map[string]string),
		noExt:   make(map[string][]string),
		aliases: make(map[string][]string),
		byBase:  make(map[string][]string),
	}
	for alias, real := range rootAliases {
		ix.rewrites = append(ix.rewrites, rewrite{alias: alias, real: real})
	}
	sort.Slice(ix.rewrites, func(i, j int) bool { return ix.rewrites[i].alias < ix.rewrites[j].alias })
	for _, f := range root.Files() {
		p := f.Path
		ix.paths[p] = p
		ix.noExt[strings.ToLower(stripExt(p))] = append(ix.noExt[strings.ToLower(stripExt(p))], p)
		ix.addAlias("/"+p, p)

		for alias, real := range rootAliases {
			if real != "" && strings.HasPrefix(p, real) {
				ix.addAlias(alias+strings.TrimPrefix(p, real), p)
				ix.addAlias(strings.TrimPrefix(p, real), p)
			}
		}

		base := path.Base(p)
		ix.byBase[strings.ToLower(stripExt(base))] = append(ix.byBase[strings.ToLower(stripExt(base))], p)

		// A package-index file answers for its directory: lookups of the
		// directory path or its bare name land on the index file.
		if isPackageIndex(base) {
			dir := path.Dir(p)
			if dir != "." {
				ix.addAlias(dir, p)
				ix.addAlias(path.Base(dir), p)
			}
		}
	}
	return ix
}

func (ix *Index) addAlias(key, target string) {
	ix.aliases[key] = append(ix.aliases[key], target)
}

// Resolve maps one raw reference from sourcePath to a canonical file path.
// External references are never resolved against the tree. The fallback
// chain stops at the first hit; a step that matches more than one node
// leaves the reference unresolved rather than picking arbitrarily.
func (ix *Index) Resolve(sourcePath string, ref model.RawReference) (string, bool) {
	if ref.Kind == model.RefExternal {
		return "", false
	}

	raw := ref.Path
	candidate := raw
	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") {
		candidate = path.Join(path.Dir(sourcePath), raw)
	} else {
		candidate = path.Clean(raw)
	}

	// (a) direct lookup, (b) extension fallback
	if hit, ok := ix.lookup(candidate); ok {
		return hit, true
	}

	// (c) leading-slash variants
	if trimmed := strings.TrimPrefix(candidate, "/"); trimmed != candidate {
		if hit, ok := ix.lookup(trimmed); ok {
			return hit, true
		}
	} else if hit, ok := ix.lookup("/" + candidate); ok {
		return hit, true
	}

	// (d) configured alias prefix rewritten to its real path prefix
	for _, rw := range ix.rewrites {
		if strings.HasPrefix(raw, rw.alias) {
			if hit, ok := ix.lookup(path.Clean(rw.real + strings.TrimPrefix(raw, rw.alias))); ok {
				return hit, true
			}
		}
	}

	// alias keys: root-stripped forms and package-index elisions
	for _, key := range []string{candidate, strings.TrimPrefix(candidate, "/")} {
		if targets := ix.aliases[key]; len(targets) == 1 {
			return targets[0], true
		}
	}

	// (e) last resort: unique basename match
	base := strings.ToLower(stripExt(path.Base(candidate)))
	if targets := ix.byBase[base]; len(targets) == 1 {
		return targets[0], true
	}
	return "", false
}

// lookup tries the literal key, then the configured extension priority, then
// a case-insensitive extension-stripped comparison.
func (ix *Index) lookup(candidate string) (string, bool) {
	if hit, ok := ix.paths[candidate]; ok {
		return hit, true
	}
	for _, ext := range sourceExts {
		if hit, ok := ix.paths[candidate+ext]; ok {
			return hit, true
		}
	}
	if targets := ix.noExt[strings.ToLower(stripExt(candidate))]; len(targets) == 1 {
		return targets[0], true
	}
	return "", false
}

// Unresolved describes a reference that could not be mapped to a node.
// Suggestions are nearest-candidate hints for diagnostics only; they never
// become links.
type Unresolved struct {
	Source      string        `json:"source"`
	Target      string        `json:"target"`
	Kind        model.RefKind `json:"type"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// Result is the outcome of one global resolution pass.
type Result struct {
	Links      []model.ResolvedLink
	Unresolved []Unresolved
}

// Resolve runs the global pass: it consumes the complete tree plus every
// reference list once and produces the deduplicated, sorted link set.
// External references are dropped outright, not reported as unresolved.
func Resolve(root *model.FileNode, rootAliases map[string]string) Result {
	ix := NewIndex(root, rootAliases)

	var allPaths []string
	for p := range ix.paths {
		allPaths = append(allPaths, p)
	}
	sort.Strings(allPaths)

	seen := make(map[model.ResolvedLink]bool)
	var res Result
	for _, f := range root.Files() {
		for _, ref := range f.References {
			if ref.Kind == model.RefExternal {
				continue
			}
			target, ok := ix.Resolve(f.Path, ref)
			if !ok {
				res.Unresolved = append(res.Unresolved, Unresolved{
					Source:      f.Path,
					Target:      ref.Path,
					Kind:        ref.Kind,
					Suggestions: Suggest(ref.Path, allPaths, 3),
				})
				continue
			}
			if target == f.Path {
				continue
			}
			link := model.ResolvedLink{Source: f.Path, Target: target, Kind: ref.Kind}
			if seen[link] {
				continue
			}
			seen[link] = true
			res.Links = append(res.Links, link)
		}
	}

	sort.Slice(res.Links, func(i, j int) bool {
		a, b := res.Links[i], res.Links[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Kind < b.Kind
	})
	return res
}

func stripExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

func isPackageIndex(base string) bool {
	if base == "__init__.py" {
		return true
	}
	return strings.EqualFold(stripExt(base), "index")
}
