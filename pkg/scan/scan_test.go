package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/duynguyendang/codescape/pkg/common/errors"
	"github.com/duynguyendang/codescape/pkg/lang"
	"github.com/duynguyendang/codescape/pkg/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScanBuildsTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/Home.tsx", "export default {}")
	writeFile(t, root, "pages/About.tsx", "export default {}")
	writeFile(t, root, "apis/users/__init__.py", "pass")

	tree, err := NewScanner(nil).Scan(root)
	require.NoError(t, err)

	assert.Equal(t, ".", tree.Path)
	assert.Equal(t, model.KindDirectory, tree.Kind)

	// Every path is unique and equals parent path + "/" + name.
	seen := make(map[string]bool)
	var check func(n *model.FileNode)
	check = func(n *model.FileNode) {
		assert.False(t, seen[n.Path], "duplicate path %s", n.Path)
		seen[n.Path] = true
		for _, c := range n.Children {
			if n.Path == "." {
				assert.Equal(t, c.Name, c.Path)
			} else {
				assert.Equal(t, n.Path+"/"+c.Name, c.Path)
			}
			check(c)
		}
	}
	check(tree)

	assert.True(t, seen["pages/Home.tsx"])
	assert.True(t, seen["apis/users/__init__.py"])
}

func TestScanDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.ts", "")
	writeFile(t, root, "a.ts", "")
	writeFile(t, root, "c/d.ts", "")

	first, err := NewScanner(nil).Scan(root)
	require.NoError(t, err)
	second, err := NewScanner(nil).Scan(root)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second))
	assert.Equal(t, "a.ts", first.Children[0].Name)
	assert.Equal(t, "b.ts", first.Children[1].Name)
	assert.Equal(t, "c", first.Children[2].Name)
}

func TestScanIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.ts", "")
	writeFile(t, root, "node_modules/react/index.js", "")
	writeFile(t, root, "src/generated/api.ts", "")

	tree, err := NewScanner([]string{"node_modules", "src/generated/**"}).Scan(root)
	require.NoError(t, err)

	paths := make(map[string]bool)
	tree.Walk(func(n *model.FileNode) { paths[n.Path] = true })

	assert.True(t, paths["src/main.ts"])
	assert.False(t, paths["node_modules"])
	assert.False(t, paths["node_modules/react/index.js"])
	assert.False(t, paths["src/generated/api.ts"])
}

func TestScanKeepsFilteredEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendor/node_modules/pkg/index.js", "")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	tree, err := NewScanner([]string{"node_modules"}).Scan(root)
	require.NoError(t, err)

	var emptyDir, vendorDir *model.FileNode
	tree.Walk(func(n *model.FileNode) {
		switch n.Path {
		case "empty":
			emptyDir = n
		case "vendor":
			vendorDir = n
		}
	})

	// Both the genuinely empty directory and the one emptied by ignore
	// filtering stay as placeholder nodes.
	require.NotNil(t, emptyDir)
	assert.Empty(t, emptyDir.Children)
	require.NotNil(t, vendorDir)
	assert.Empty(t, vendorDir.Children)
}

func TestScanSkipsBrokenSymlink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.ts", "")
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))

	tree, err := NewScanner(nil).Scan(root)
	require.NoError(t, err)

	names := make([]string, 0, len(tree.Children))
	for _, c := range tree.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"ok.ts"}, names)
}

func TestScanMissingRootIsFatal(t *testing.T) {
	_, err := NewScanner(nil).Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRootInaccessible)
}

func TestComputeStats(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/Home.tsx", "12345")
	writeFile(t, root, "apis/users.py", "123")
	writeFile(t, root, "README.md", "1")

	tree, err := NewScanner(nil).Scan(root)
	require.NoError(t, err)
	lang.Annotate(tree)

	stats := ComputeStats(tree)

	assert.Equal(t, 3, stats.TotalFiles)
	// root + pages + apis
	assert.Equal(t, 3, stats.TotalDirectories)
	assert.Equal(t, int64(9), stats.TotalSizeBytes)
	assert.Equal(t, 1, stats.FileTypes[model.TagTypedScript])
	assert.Equal(t, 1, stats.FileTypes[model.TagBackendScript])
	assert.Equal(t, 1, stats.FileTypes[model.TagDocumentation])

	// files + directories covers every node in the tree.
	total := 0
	tree.Walk(func(*model.FileNode) { total++ })
	assert.Equal(t, total, stats.TotalFiles+stats.TotalDirectories)
}
