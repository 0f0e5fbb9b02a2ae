// Package graph implements the in-memory knowledge graph that the
// extraction strategies populate: nodes keyed by a normalized ID,
// an append-only edge list, and a serialization-ready export view.
package graph

import (
	"regexp"
	"strings"
)

const (
	maxIDLength        = 100
	displayLabelLength = 60
	displayDescLength  = 150
)

var (
	// Word characters are Unicode letters and digits, not just ASCII,
	// so accented entity names keep their letters.
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Node is an entity in the knowledge graph, uniquely keyed by a
// normalized ID. Label and Description are stored untruncated;
// truncation happens only in the export view.
type Node struct {
	ID          string                 `json:"id"`
	Label       string                 `json:"label"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	SourceFile  string                 `json:"source_file,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Edge is a directed, typed relationship between two node IDs. The
// referenced IDs are not required to exist in the graph.
type Edge struct {
	Source   string                 `json:"source"`
	Target   string                 `json:"target"`
	Type     string                 `json:"type"`
	Weight   float64                `json:"weight"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type edgeKey struct {
	source, target, edgeType string
}

// Graph owns the node map and the ordered edge list for one extraction
// run. It is not safe for concurrent writers; a caller driving multiple
// jobs constructs one Graph per job.
type Graph struct {
	Title       string
	Description string

	nodes map[string]*Node
	order []string
	edges []Edge
	seen  map[edgeKey]struct{}
}

// New creates an empty graph with the given title.
func New(title string) *Graph {
	return &Graph{
		Title: title,
		nodes: make(map[string]*Node),
		seen:  make(map[edgeKey]struct{}),
	}
}

// NormalizeID cleans raw text into a valid node ID: everything except
// word characters, whitespace and hyphens is stripped, whitespace runs
// collapse to a single space, and the result is trimmed and capped at
// 100 characters. Idempotent by construction.
func NormalizeID(raw string) string {
	cleaned := nonWordRe.ReplaceAllString(raw, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if r := []rune(cleaned); len(r) > maxIDLength {
		cleaned = string(r[:maxIDLength])
	}
	return cleaned
}

// AddNode inserts a node under the normalized form of rawID and returns
// that ID. If a node with the same normalized ID already exists the
// call is a no-op: the first write wins.
func (g *Graph) AddNode(rawID, label, category, description, sourceFile string) string {
	id := NormalizeID(rawID)
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = &Node{
			ID:          id,
			Label:       label,
			Category:    category,
			Description: description,
			SourceFile:  sourceFile,
		}
		g.order = append(g.order, id)
	}
	return id
}

// AddEdge appends a directed edge between the normalized source and
// target IDs. Self-loops and exact duplicates of the
// (source, target, type) triple are rejected; the referenced nodes do
// not have to exist.
func (g *Graph) AddEdge(rawSource, rawTarget, edgeType string) bool {
	source := NormalizeID(rawSource)
	target := NormalizeID(rawTarget)

	if source == target {
		return false
	}

	key := edgeKey{source, target, edgeType}
	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = struct{}{}
	g.edges = append(g.edges, Edge{
		Source: source,
		Target: target,
		Type:   edgeType,
		Weight: 1.0,
	})
	return true
}

// Node returns the stored node for a raw or normalized ID, or nil.
func (g *Graph) Node(rawID string) *Node {
	return g.nodes[NormalizeID(rawID)]
}

// Nodes returns the stored nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the edge list in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Stats summarizes the graph. The category histogram is recomputed on
// every call; it is cheap next to extraction cost.
type Stats struct {
	Nodes      int            `json:"nodes"`
	Edges      int            `json:"edges"`
	Categories map[string]int `json:"categories"`
}

// Stats returns node/edge counts and a category histogram.
func (g *Graph) Stats() Stats {
	categories := make(map[string]int)
	for _, node := range g.nodes {
		categories[node.Category]++
	}
	return Stats{
		Nodes:      len(g.nodes),
		Edges:      len(g.edges),
		Categories: categories,
	}
}

// NodeView is the display form of a node in an export snapshot. Label
// and description are truncated for rendering; storage is untouched.
type NodeView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// EdgeView is the display form of an edge in an export snapshot.
type EdgeView struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Export is the serialization-ready snapshot handed to renderers.
type Export struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
	Title string     `json:"title"`
	Stats Stats      `json:"stats"`
}

// Export builds a snapshot of the graph with nodes in insertion order.
func (g *Graph) Export() *Export {
	out := &Export{
		Nodes: make([]NodeView, 0, len(g.order)),
		Edges: make([]EdgeView, 0, len(g.edges)),
		Title: g.Title,
		Stats: g.Stats(),
	}
	for _, id := range g.order {
		node := g.nodes[id]
		out.Nodes = append(out.Nodes, NodeView{
			ID:          node.ID,
			Label:       truncate(node.Label, displayLabelLength),
			Category:    node.Category,
			Description: truncate(node.Description, displayDescLength),
		})
	}
	for _, edge := range g.edges {
		out.Edges = append(out.Edges, EdgeView{
			Source: edge.Source,
			Target: edge.Target,
			Type:   edge.Type,
		})
	}
	return out
}

func truncate(s string, limit int) string {
	if r := []rune(s); len(r) > limit {
		return string(r[:limit])
	}
	return s
}
