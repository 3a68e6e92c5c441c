package domain

import (
	"fmt"
	"strings"
)

// Document is the complete node and edge collection at a point in time.
// Slices keep insertion order; lookups are linear since documents are small.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func NewDocument() *Document {
	return &Document{
		Nodes: []Node{},
		Edges: []Edge{},
	}
}

// Normalize replaces nil collections so the document serializes as
// {"nodes":[],"edges":[]}.
func (d *Document) Normalize() *Document {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	return d
}

// Clone returns a deep copy. Node and Edge hold only values.
func (d *Document) Clone() *Document {
	out := &Document{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	copy(out.Nodes, d.Nodes)
	copy(out.Edges, d.Edges)
	return out
}

func (d *Document) NodeIndex(id string) int {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) HasNode(id string) bool {
	return d.NodeIndex(id) >= 0
}

func (d *Document) EdgeIndex(source, target string) int {
	for i := range d.Edges {
		if d.Edges[i].Source == source && d.Edges[i].Target == target {
			return i
		}
	}
	return -1
}

func (d *Document) HasEdgeID(id string) bool {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return true
		}
	}
	return false
}

// CheckNewNode reports why n cannot be appended, or nil.
func (d *Document) CheckNewNode(n Node) error {
	if strings.TrimSpace(n.ID) == "" {
		return InvalidArgument("id", "node id must not be empty")
	}
	if d.HasNode(n.ID) {
		return DuplicateID(n.ID)
	}
	return ValidateNodeFields(n)
}

// CheckNewEdge enforces referential integrity and pair uniqueness for e.
func (d *Document) CheckNewEdge(e Edge) error {
	if e.Source == "" {
		return InvalidArgument("source", "source is required")
	}
	if e.Target == "" {
		return InvalidArgument("target", "target is required")
	}
	if !d.HasNode(e.Source) {
		return NotFound("source", fmt.Sprintf("source node %q does not exist", e.Source))
	}
	if !d.HasNode(e.Target) {
		return NotFound("target", fmt.Sprintf("target node %q does not exist", e.Target))
	}
	if d.EdgeIndex(e.Source, e.Target) >= 0 {
		return Conflict(fmt.Sprintf("edge %s -> %s already exists", e.Source, e.Target))
	}
	if strings.TrimSpace(e.ID) == "" {
		return InvalidArgument("id", "edge id must not be empty")
	}
	if d.HasEdgeID(e.ID) {
		return DuplicateID(e.ID)
	}
	return ValidateEdgeFields(e)
}

// RemoveNode deletes the node and every edge touching it. It returns the
// number of edges removed, or a NotFound error.
func (d *Document) RemoveNode(id string) (int, error) {
	idx := d.NodeIndex(id)
	if idx < 0 {
		return 0, NotFound("id", fmt.Sprintf("node %q not found", id))
	}
	d.Nodes = append(d.Nodes[:idx], d.Nodes[idx+1:]...)

	kept := d.Edges[:0]
	removed := 0
	for _, e := range d.Edges {
		if e.Source == id || e.Target == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	d.Edges = kept
	return removed, nil
}

func (d *Document) RemoveEdge(source, target string) error {
	idx := d.EdgeIndex(source, target)
	if idx < 0 {
		return NotFound("edge", fmt.Sprintf("edge %s -> %s not found", source, target))
	}
	d.Edges = append(d.Edges[:idx], d.Edges[idx+1:]...)
	return nil
}

// Validate checks every document invariant. It is run before each persist.
func (d *Document) Validate() error {
	nodeIDs := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return InvalidArgument("id", "node with empty id")
		}
		if _, dup := nodeIDs[n.ID]; dup {
			return DuplicateID(n.ID)
		}
		nodeIDs[n.ID] = struct{}{}
	}

	type pair struct{ source, target string }
	pairs := make(map[pair]struct{}, len(d.Edges))
	edgeIDs := make(map[string]struct{}, len(d.Edges))
	for _, e := range d.Edges {
		if _, ok := nodeIDs[e.Source]; !ok {
			return NotFound("source", fmt.Sprintf("edge %q references missing source %q", e.ID, e.Source))
		}
		if _, ok := nodeIDs[e.Target]; !ok {
			return NotFound("target", fmt.Sprintf("edge %q references missing target %q", e.ID, e.Target))
		}
		p := pair{e.Source, e.Target}
		if _, dup := pairs[p]; dup {
			return Conflict(fmt.Sprintf("duplicate edge %s -> %s", e.Source, e.Target))
		}
		pairs[p] = struct{}{}
		if e.ID == "" {
			return InvalidArgument("id", "edge with empty id")
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return DuplicateID(e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
	}
	return nil
}

// SearchByName returns nodes whose name contains query, case-insensitively.
func (d *Document) SearchByName(query string) []Node {
	q := strings.ToLower(query)
	out := []Node{}
	for _, n := range d.Nodes {
		if strings.Contains(strings.ToLower(n.Name), q) {
			out = append(out, n)
		}
	}
	return out
}

// FilterByType returns nodes whose type equals typ, case-insensitively.
func (d *Document) FilterByType(typ string) []Node {
	out := []Node{}
	for _, n := range d.Nodes {
		if strings.EqualFold(n.Type, typ) {
			out = append(out, n)
		}
	}
	return out
}

func ValidateNodeFields(n Node) error {
	if n.Latency < 0 {
		return InvalidArgument("latency", "latency must be non-negative")
	}
	if n.Traffic < 0 {
		return InvalidArgument("traffic", "traffic must be non-negative")
	}
	if n.ErrorRate < 0 || n.ErrorRate > 1 {
		return InvalidArgument("errorRate", "errorRate must be within [0,1]")
	}
	return nil
}

func ValidateEdgeFields(e Edge) error {
	if e.Traffic < 0 {
		return InvalidArgument("traffic", "traffic must be non-negative")
	}
	if e.RPS < 0 {
		return InvalidArgument("rps", "rps must be non-negative")
	}
	if e.ErrorRate < 0 || e.ErrorRate > 1 {
		return InvalidArgument("errorRate", "errorRate must be within [0,1]")
	}
	return nil
}

// Merge applies the present fields of in over n. The id is never changed.
func (n Node) Merge(in NodeInput) Node {
	if in.Name != nil {
		n.Name = *in.Name
	}
	if in.Type != nil {
		n.Type = *in.Type
	}
	if in.Latency != nil {
		n.Latency = *in.Latency
	}
	if in.ErrorRate != nil {
		n.ErrorRate = *in.ErrorRate
	}
	if in.Traffic != nil {
		n.Traffic = *in.Traffic
	}
	if in.X != nil {
		n.X = *in.X
	}
	if in.Y != nil {
		n.Y = *in.Y
	}
	return n
}
