// Package lang classifies files by extension and path location.
package lang

import (
	"path"
	"strings"

	"github.com/duynguyendang/codescape/pkg/model"
)

var tagByExt = map[string]model.LanguageTag{
	".js":    model.TagScript,
	".jsx":   model.TagScript,
	".mjs":   model.TagScript,
	".cjs":   model.TagScript,
	".ts":    model.TagTypedScript,
	".tsx":   model.TagTypedScript,
	".py":    model.TagBackendScript,
	".html":  model.TagMarkup,
	".htm":   model.TagMarkup,
	".svg":   model.TagMarkup,
	".css":   model.TagStylesheet,
	".scss":  model.TagStylesheet,
	".less":  model.TagStylesheet,
	".json":  model.TagStructuredData,
	".yml":   model.TagStructuredData,
	".yaml":  model.TagStructuredData,
	".toml":  model.TagStructuredData,
	".md":    model.TagDocumentation,
	".rst":   model.TagDocumentation,
	".txt":   model.TagDocumentation,
}

// categoryByDir maps well-known top-level directory names to a structural
// category label. The label is used for aggregate grouping only; resolution
// never looks at it.
var categoryByDir = map[string]string{
	"pages":      "page",
	"components": "component",
	"apis":       "api-endpoint",
	"api":        "api-endpoint",
	"static":     "static-asset",
	"public":     "static-asset",
	"assets":     "static-asset",
}

// Classify returns the language tag for a file path. Unknown extensions map
// to TagOther, never an error.
func Classify(filePath string) model.LanguageTag {
	ext := strings.ToLower(path.Ext(filePath))
	if tag, ok := tagByExt[ext]; ok {
		return tag
	}
	return model.TagOther
}

// Category returns the structural category for a file path, derived from the
// first recognized directory segment, or "" when none applies.
func Category(filePath string) string {
	for _, seg := range strings.Split(path.Dir(filePath), "/") {
		if cat, ok := categoryByDir[seg]; ok {
			return cat
		}
	}
	return ""
}

// Annotate walks the tree and assigns language tags and categories to file
// nodes in place. Directories are left untagged.
func Annotate(root *model.FileNode) {
	root.Walk(func(n *model.FileNode) {
		if n.Kind != model.KindFile {
			return
		}
		n.Language = Classify(n.Path)
		n.Category = Category(n.Path)
	})
}
