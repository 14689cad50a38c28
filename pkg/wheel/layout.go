// Package wheel draws a taxonomy as an interactive sunburst chart.
//
// The chart is a retained scene of arcs and labels keyed by node id. Data,
// theme and language changes are reconciled against the scene and animated;
// hosts read interpolated frames and render them as SVG, PNG or terminal
// cells. Pointer input arrives through Hover, Leave and Click.
package wheel

import (
	"fmt"
	"math"
	"sort"

	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
)

// LayoutNode is the placement of one taxonomy node on the wheel. Angles are
// in radians, measured clockwise from 12 o'clock.
type LayoutNode struct {
	Data     *taxonomy.Node
	Depth    int
	Parent   *LayoutNode
	Children []*LayoutNode
	X0, X1   float64
	Value    float64 // leaf descendants
}

// ID returns the id of the underlying taxonomy node.
func (n *LayoutNode) ID() string { return n.Data.ID }

// Layer returns the taxonomy layer. The synthetic root is layer 0.
func (n *LayoutNode) Layer() int { return n.Data.Layer }

// Span returns the angular width of the node.
func (n *LayoutNode) Span() float64 { return n.X1 - n.X0 }

// MidAngle returns the angle halfway along the node.
func (n *LayoutNode) MidAngle() float64 { return (n.X0 + n.X1) / 2 }

// Ancestors returns the node and its ancestors, nearest first.
func (n *LayoutNode) Ancestors() []*LayoutNode {
	var out []*LayoutNode
	for p := n; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Descendants returns the node and all nodes below it in breadth-first
// order, which is also the order arcs are painted in.
func (n *LayoutNode) Descendants() []*LayoutNode {
	out := []*LayoutNode{n}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].Children...)
	}
	return out
}

// Find returns the node with the given id below n (inclusive), or nil.
func (n *LayoutNode) Find(id string) *LayoutNode {
	for _, d := range n.Descendants() {
		if d.Data.ID == id {
			return d
		}
	}
	return nil
}

// Category returns the depth-1 ancestor of the node, or nil for the root.
func (n *LayoutNode) Category() *LayoutNode {
	for p := n; p != nil; p = p.Parent {
		if p.Depth == 1 {
			return p
		}
	}
	return nil
}

// Related reports whether other is n, one of its ancestors or one of its
// descendants.
func (n *LayoutNode) Related(other *LayoutNode) bool {
	for p := n; p != nil; p = p.Parent {
		if p == other {
			return true
		}
	}
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// OrderMode selects how siblings are arranged around the wheel.
type OrderMode int

const (
	// OrderWeight places categories by index and deeper siblings by
	// descending leaf count.
	OrderWeight OrderMode = iota
	// OrderIndex places categories by index and keeps document order below.
	OrderIndex
	// OrderDocument keeps document order everywhere.
	OrderDocument
)

var orderModeNames = map[OrderMode]string{
	OrderWeight:   "weight",
	OrderIndex:    "index",
	OrderDocument: "document",
}

func (m OrderMode) String() string {
	if s, ok := orderModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("OrderMode(%d)", int(m))
}

// ParseOrderMode converts a name ("weight", "index", "document") to a mode.
func ParseOrderMode(s string) (OrderMode, error) {
	for m, name := range orderModeNames {
		if name == s {
			return m, nil
		}
	}
	return OrderWeight, fmt.Errorf("unknown ordering %q", s)
}

// Ordering is the sibling ordering policy of the layout.
type Ordering struct {
	Mode OrderMode
	// KeepOrderUnder lists node ids whose children keep document order even
	// under OrderWeight.
	KeepOrderUnder []string
}

func (o Ordering) keeps(id string) bool {
	for _, k := range o.KeepOrderUnder {
		if k == id {
			return true
		}
	}
	return false
}

// Partition lays out the tree under root as a full circle. Each node's span
// is proportional to its number of leaf descendants.
func Partition(root *taxonomy.Node, ord Ordering) *LayoutNode {
	top := build(root, nil, 0)
	arrange(top, ord)
	top.X0, top.X1 = 0, 2*math.Pi
	place(top)
	return top
}

func build(n *taxonomy.Node, parent *LayoutNode, depth int) *LayoutNode {
	ln := &LayoutNode{Data: n, Depth: depth, Parent: parent}
	if len(n.Children) == 0 {
		ln.Value = 1
		return ln
	}
	ln.Children = make([]*LayoutNode, 0, len(n.Children))
	for _, c := range n.Children {
		child := build(c, ln, depth+1)
		ln.Value += child.Value
		ln.Children = append(ln.Children, child)
	}
	return ln
}

func arrange(n *LayoutNode, ord Ordering) {
	if len(n.Children) > 1 && ord.Mode != OrderDocument {
		switch {
		case n.Depth == 0:
			sort.SliceStable(n.Children, func(i, j int) bool {
				return n.Children[i].Data.OrderIndex() < n.Children[j].Data.OrderIndex()
			})
		case ord.Mode == OrderWeight && !ord.keeps(n.Data.ID):
			sort.SliceStable(n.Children, func(i, j int) bool {
				return n.Children[i].Value > n.Children[j].Value
			})
		}
	}
	for _, c := range n.Children {
		arrange(c, ord)
	}
}

func place(n *LayoutNode) {
	if n.Value == 0 {
		return
	}
	k := n.Span() / n.Value
	x := n.X0
	for _, c := range n.Children {
		c.X0 = x
		x += c.Value * k
		c.X1 = x
		place(c)
	}
	if len(n.Children) > 0 {
		// absorb rounding so siblings tile the parent exactly
		n.Children[len(n.Children)-1].X1 = n.X1
	}
}
