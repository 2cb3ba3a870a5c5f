package layout

import "github.com/firemesscode/drevorod/pkg/family"

// Default footprints and spacing, in pixels.
const (
	DefaultNodeWidth  = 250
	DefaultNodeHeight = 100
	DefaultUnionSize  = 10
	DefaultRankSep    = 100
	DefaultNodeSep    = 50
)

// Options controls node footprints and spacing. Zero fields take the
// defaults.
type Options struct {
	NodeWidth  float64 `json:"node_width,omitempty" mapstructure:"node_width"`
	NodeHeight float64 `json:"node_height,omitempty" mapstructure:"node_height"`
	UnionSize  float64 `json:"union_size,omitempty" mapstructure:"union_size"`
	RankSep    float64 `json:"rank_sep,omitempty" mapstructure:"rank_sep"`
	NodeSep    float64 `json:"node_sep,omitempty" mapstructure:"node_sep"`
}

// WithDefaults returns o with zero or negative fields replaced by defaults.
func (o Options) WithDefaults() Options {
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&o.NodeWidth, DefaultNodeWidth)
	def(&o.NodeHeight, DefaultNodeHeight)
	def(&o.UnionSize, DefaultUnionSize)
	def(&o.RankSep, DefaultRankSep)
	def(&o.NodeSep, DefaultNodeSep)
	return o
}

// NodeType distinguishes person cards from union points.
type NodeType string

const (
	NodePerson NodeType = "person"
	NodeUnion  NodeType = "union"
)

// EdgeStyle is a rendering hint.
type EdgeStyle string

const (
	EdgeSpouse      EdgeStyle = "spouse"
	EdgeParentChild EdgeStyle = "parent_child"
)

// Position is a point in diagram space; y grows downward.
type Position struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Node is a positioned diagram node. Position is the top-left corner.
type Node struct {
	ID       string   `json:"id" toml:"id"`
	Type     NodeType `json:"type" toml:"type"`
	Position Position `json:"position" toml:"position"`
	Width    float64  `json:"width" toml:"width"`
	Height   float64  `json:"height" toml:"height"`
	Rank     int      `json:"rank" toml:"rank"`
	Order    int      `json:"order" toml:"order"`

	// Person is set for person nodes.
	Person *family.Person `json:"person,omitempty" toml:"person,omitempty"`
	// ParentIDs is set for union nodes: the couple, sorted.
	ParentIDs []string `json:"parent_ids,omitempty" toml:"parent_ids,omitempty"`
}

// Center returns the centre point of the node.
func (n Node) Center() Position {
	return Position{X: n.Position.X + n.Width/2, Y: n.Position.Y + n.Height/2}
}

// Edge is a diagram edge. Edges carry no coordinates.
type Edge struct {
	ID     string    `json:"id" toml:"id"`
	Source string    `json:"source" toml:"source"`
	Target string    `json:"target" toml:"target"`
	Label  string    `json:"label,omitempty" toml:"label,omitempty"`
	Style  EdgeStyle `json:"style" toml:"style"`
}

// Diagnostic describes input the engine skipped.
type Diagnostic struct {
	RelationshipID string `json:"relationship_id,omitempty" toml:"relationship_id,omitempty"`
	NodeID         string `json:"node_id,omitempty" toml:"node_id,omitempty"`
	Reason         string `json:"reason" toml:"reason"`
}

// Subject names what was skipped, e.g. "relationship r4".
func (d Diagnostic) Subject() string {
	if d.NodeID != "" {
		return "node " + d.NodeID
	}
	return "relationship " + d.RelationshipID
}

// Layout is the engine's output.
type Layout struct {
	Nodes       []Node       `json:"nodes" toml:"nodes"`
	Edges       []Edge       `json:"edges" toml:"edges"`
	Width       float64      `json:"width" toml:"width"`
	Height      float64      `json:"height" toml:"height"`
	Engine      string       `json:"engine,omitempty" toml:"engine,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" toml:"diagnostics,omitempty"`
}

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Unions returns the union nodes in output order.
func (l *Layout) Unions() []Node {
	var out []Node
	for _, n := range l.Nodes {
		if n.Type == NodeUnion {
			out = append(out, n)
		}
	}
	return out
}
