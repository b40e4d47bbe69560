// Package extract pulls raw import references out of file content using
// lightweight pattern matching tuned per language family. It does not parse;
// a reference here is just the literal specifier string plus a coarse kind.
package extract

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/duynguyendang/codescape/pkg/model"
)

var (
	// import X from 'Y' / import { a, b } from 'Y'
	reImportFrom = regexp.MustCompile(`import\s+.*?from\s+['"]([^'"]+)['"]`)
	// import 'Y' (side-effect form)
	reImportBare = regexp.MustCompile(`(?m)^\s*import\s+['"]([^'"]+)['"]`)
	// require('Y')
	reRequire = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	// from X import ...
	rePyFrom = regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import\b`)
	// import X
	rePyImport = regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`)
)

// Config controls classification boundaries and the api-usage pattern.
type Config struct {
	// ExternalPackages are bare-specifier roots known to live outside the
	// project (e.g. react, fastapi). References to them get RefExternal.
	ExternalPackages []string
	// InternalRoots are bare-specifier roots that by project convention
	// resolve inside the tree (e.g. app, components). The boundary between
	// module and external is configuration, not a hardcoded guess.
	InternalRoots []string
	// APIClients are generated-client identifiers; a call like
	// client.listUsers(...) becomes an api-usage reference to "listUsers".
	APIClients []string
}

// Extractor produces RawReference records for one file at a time. It is
// stateless after construction and safe for concurrent use.
type Extractor struct {
	external  map[string]bool
	internal  map[string]bool
	apiClient []*regexp.Regexp
}

// New compiles an Extractor from the given config.
func New(cfg Config) *Extractor {
	e := &Extractor{
		external: make(map[string]bool),
		internal: make(map[string]bool),
	}
	for _, p := range cfg.ExternalPackages {
		e.external[p] = true
	}
	for _, r := range cfg.InternalRoots {
		e.internal[r] = true
	}
	for _, ident := range cfg.APIClients {
		e.apiClient = append(e.apiClient,
			regexp.MustCompile(`\b`+regexp.QuoteMeta(ident)+`\.(\w+)\s*\(`))
	}
	return e
}

// Extract returns the references found in content. Content that does not
// decode as text yields an empty list; extraction never fails a scan.
func (e *Extractor) Extract(content []byte, tag model.LanguageTag) []model.RawReference {
	if len(content) == 0 || !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return nil
	}
	switch tag {
	case model.TagScript, model.TagTypedScript:
		return e.extractScript(string(content))
	case model.TagBackendScript:
		return e.extractBackendScript(string(content))
	default:
		return nil
	}
}

func (e *Extractor) extractScript(content string) []model.RawReference {
	var refs []model.RawReference

	for _, m := range reImportFrom.FindAllStringSubmatch(content, -1) {
		refs = append(refs, e.classifyScript(m[1], model.RefInternal))
	}
	for _, m := range reImportBare.FindAllStringSubmatch(content, -1) {
		refs = append(refs, e.classifyScript(m[1], model.RefDirect))
	}
	for _, m := range reRequire.FindAllStringSubmatch(content, -1) {
		refs = append(refs, e.classifyScript(m[1], model.RefRequire))
	}
	for _, re := range e.apiClient {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			refs = append(refs, model.RawReference{Path: m[1], Kind: model.RefAPIUsage})
		}
	}
	return refs
}

// classifyScript assigns the kind for one script-family specifier.
// relKind is the kind used when the specifier is relative or root-relative;
// bare specifiers become external or module depending on configuration.
func (e *Extractor) classifyScript(spec string, relKind model.RefKind) model.RawReference {
	if isRelative(spec) {
		return model.RawReference{Path: spec, Kind: relKind}
	}
	root := spec
	if idx := strings.IndexByte(spec, '/'); idx >= 0 {
		root = spec[:idx]
	}
	switch {
	case e.external[root]:
		return model.RawReference{Path: spec, Kind: model.RefExternal}
	case e.internal[root]:
		return model.RawReference{Path: spec, Kind: model.RefInternal}
	case relKind == model.RefRequire:
		return model.RawReference{Path: spec, Kind: model.RefRequire}
	default:
		return model.RawReference{Path: spec, Kind: model.RefModule}
	}
}

func (e *Extractor) extractBackendScript(content string) []model.RawReference {
	var refs []model.RawReference
	for _, m := range rePyFrom.FindAllStringSubmatch(content, -1) {
		refs = append(refs, e.classifyModulePath(m[1]))
	}
	for _, m := range rePyImport.FindAllStringSubmatch(content, -1) {
		refs = append(refs, e.classifyModulePath(m[1]))
	}
	return refs
}

// classifyModulePath handles dotted backend module paths. A leading dot is a
// relative import; a configured internal root makes the reference internal
// with the dotted path rewritten to slashes so the resolver can look it up.
func (e *Extractor) classifyModulePath(mod string) model.RawReference {
	if strings.HasPrefix(mod, ".") {
		dots := 0
		for dots < len(mod) && mod[dots] == '.' {
			dots++
		}
		rest := strings.ReplaceAll(mod[dots:], ".", "/")
		rel := "./" + rest
		if dots > 1 {
			rel = strings.Repeat("../", dots-1) + rest
		}
		return model.RawReference{Path: rel, Kind: model.RefInternal}
	}
	root := mod
	if idx := strings.IndexByte(mod, '.'); idx >= 0 {
		root = mod[:idx]
	}
	switch {
	case e.external[root]:
		return model.RawReference{Path: mod, Kind: model.RefExternal}
	case e.internal[root]:
		return model.RawReference{Path: strings.ReplaceAll(mod, ".", "/"), Kind: model.RefInternal}
	default:
		return model.RawReference{Path: mod, Kind: model.RefModule}
	}
}

func isRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || strings.HasPrefix(spec, "/")
}
