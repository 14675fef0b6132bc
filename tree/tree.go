// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package tree

import "fmt"

// unnamedPrefix is the synthetic edge name a desugared OR/AND/NOT node
// gives its (at most two) children, when the tree itself carries no
// edge name for that (parent, child) pair. Grounded on the UNNAMED
// constant in the original implementation's structs.rs.
const unnamedPrefix = "UNNAMED - "

func unnamedEdge(childIdx int) string {
	return fmt.Sprintf("%s%d", unnamedPrefix, childIdx)
}

// NewEventVariables and NewObjectVariables record, for a BindingBox,
// which variables it introduces and the set of event/object types each
// introduced variable may range over (an empty set means "any type").
type NewEventVariables map[EventVariable][]string
type NewObjectVariables map[ObjectVariable][]string

// BindingBox is one node's local declaration: the variables it
// introduces, the filters and size filters that prune its expansion,
// and the constraints checked once its children have been evaluated.
// Grounded on BindingBox in the original implementation's structs.rs.
type BindingBox struct {
	NewEventVars  NewEventVariables
	NewObjectVars NewObjectVariables
	Filters       []Filter
	SizeFilters   []SizeFilter
	Constraints   []Constraint
}

// NodeKind tags the shape of a BindingBoxTreeNode before desugaring.
type NodeKind int

const (
	NodeBox NodeKind = iota
	NodeOR
	NodeAND
	NodeNOT
)

// BindingBoxTreeNode is one node of a BindingBoxTree. Box carries an
// explicit BindingBox and a list of child node indices; OR, AND and NOT
// are syntactic sugar over a pair (or singleton) of child indices and
// are desugared into an equivalent Box via ToBox before evaluation.
// Grounded on BindingBoxTreeNode in the original implementation's
// structs.rs.
type BindingBoxTreeNode struct {
	Kind NodeKind

	// NodeBox
	Box      BindingBox
	Children []int

	// NodeOR / NodeAND: two child indices. NodeNOT: one, in C1.
	C1 int
	C2 int
}

// ToBox desugars n into an equivalent (BindingBox, children) pair. A
// Box node is returned unchanged; OR/AND/NOT are rewritten into an
// empty BindingBox with a single OR/AND/NOT-kind Constraint over
// synthetic UNNAMED child edge names, mirroring
// BindingBoxTreeNode::to_box in the original implementation exactly
// (including its choice of Constraint::OR/AND/NOT rather than a fresh
// desugaring primitive).
func (n *BindingBoxTreeNode) ToBox() (BindingBox, []int) {
	switch n.Kind {
	case NodeBox:
		return n.Box, n.Children
	case NodeOR:
		names := []string{unnamedEdge(n.C1), unnamedEdge(n.C2)}
		return BindingBox{
			Constraints: []Constraint{{Kind: ConstraintOR, ChildNames: names}},
		}, []int{n.C1, n.C2}
	case NodeAND:
		names := []string{unnamedEdge(n.C1), unnamedEdge(n.C2)}
		return BindingBox{
			Constraints: []Constraint{{Kind: ConstraintAND, ChildNames: names}},
		}, []int{n.C1, n.C2}
	case NodeNOT:
		names := []string{unnamedEdge(n.C1)}
		return BindingBox{
			Constraints: []Constraint{{Kind: ConstraintNOT, ChildNames: names}},
		}, []int{n.C1}
	default:
		return BindingBox{}, nil
	}
}

// edgeKey identifies a (parent, child) node-index pair in a
// BindingBoxTree's EdgeNames map.
type edgeKey struct {
	Parent int
	Child  int
}

// BindingBoxTree is the full tree: a flat node list plus a sparse map
// of human-readable names for (parent, child) edges, referenced by
// SAT/NOT/OR/AND/SizeFilter constraints via ChildNames/Edge(s).
// Grounded on BindingBoxTree in the original implementation's
// structs.rs.
type BindingBoxTree struct {
	Nodes     []BindingBoxTreeNode
	edgeNames map[edgeKey]string
}

// NewTree builds an (initially edge-name-less) tree over nodes.
func NewTree(nodes []BindingBoxTreeNode) *BindingBoxTree {
	return &BindingBoxTree{Nodes: nodes, edgeNames: make(map[edgeKey]string)}
}

// SetEdgeName names the edge from parent to child, overriding the
// synthetic UNNAMED name a desugared node would otherwise report.
func (t *BindingBoxTree) SetEdgeName(parent, child int, name string) {
	if t.edgeNames == nil {
		t.edgeNames = make(map[edgeKey]string)
	}
	t.edgeNames[edgeKey{parent, child}] = name
}

// EdgeName returns the name of the edge from parent to child: the
// explicitly assigned name if there is one, otherwise the synthetic
// UNNAMED fallback the original implementation uses for edges with no
// assigned name (this is the common case for children of a desugared
// OR/AND/NOT, but an explicit Box node's children fall back to it too
// if the caller never named them).
func (t *BindingBoxTree) EdgeName(parent, child int) string {
	if name, ok := t.edgeNames[edgeKey{parent, child}]; ok {
		return name
	}
	return unnamedEdge(child)
}

// EventVariables returns the set of event variables introduced by any
// Box node in t.
func (t *BindingBoxTree) EventVariables() []EventVariable {
	seen := make(map[EventVariable]bool)
	var out []EventVariable
	for _, n := range t.Nodes {
		if n.Kind != NodeBox {
			continue
		}
		for v := range n.Box.NewEventVars {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// ObjectVariables returns the set of object variables introduced by any
// Box node in t.
func (t *BindingBoxTree) ObjectVariables() []ObjectVariable {
	seen := make(map[ObjectVariable]bool)
	var out []ObjectVariable
	for _, n := range t.Nodes {
		if n.Kind != NodeBox {
			continue
		}
		for v := range n.Box.NewObjectVars {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
