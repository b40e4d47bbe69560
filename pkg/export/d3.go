// Package export transforms a snapshot into the document shape the
// force-directed rendering layer consumes. The renderer treats the output as
// pre-validated: every link endpoint names a node present in the node list.
package export

import (
	"encoding/json"
	"os"

	"github.com/duynguyendang/codescape/pkg/model"
)

// D3Node represents a node in the D3 force-directed graph.
type D3Node struct {
	ID       string `json:"id"`                 // canonical root-relative path
	Name     string `json:"name"`               // display name (basename)
	Kind     string `json:"kind"`               // "file" or "directory"
	Group    string `json:"group,omitempty"`    // language tag, used for coloring
	Category string `json:"category,omitempty"` // structural category (page, component, ...)
	Size     int64  `json:"size,omitempty"`
	ParentID string `json:"parentId,omitempty"` // containing directory
}

// D3Link represents a link/edge in the D3 force-directed graph.
type D3Link struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"` // reference kind
}

// D3Graph represents the full graph structure for D3.js.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

// BuildGraph flattens a snapshot into a D3 graph. Directories become nodes
// too so the renderer can draw containment; resolved links connect files.
func BuildGraph(snap *model.Snapshot) *D3Graph {
	graph := &D3Graph{Nodes: []D3Node{}, Links: []D3Link{}}
	if snap == nil || snap.Tree == nil {
		return graph
	}

	var flatten func(n *model.FileNode, parentID string)
	flatten = func(n *model.FileNode, parentID string) {
		node := D3Node{
			ID:       n.Path,
			Name:     n.Name,
			Kind:     string(n.Kind),
			Group:    string(n.Language),
			Category: n.Category,
			Size:     n.Size,
			ParentID: parentID,
		}
		graph.Nodes = append(graph.Nodes, node)
		for _, c := range n.Children {
			flatten(c, n.Path)
		}
	}
	flatten(snap.Tree, "")

	for _, link := range snap.Links {
		graph.Links = append(graph.Links, D3Link{
			Source:   link.Source,
			Target:   link.Target,
			Relation: string(link.Kind),
		})
	}
	return graph
}

// SaveGraph writes the graph to a JSON file.
func SaveGraph(graph *D3Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(graph)
}
