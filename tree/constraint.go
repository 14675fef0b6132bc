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

import "github.com/aarkue/bindbox/ocel"

// ConstraintKind tags which shape of constraint a Constraint node wraps,
// per spec.md §4.5.
type ConstraintKind int

const (
	ConstraintFilter ConstraintKind = iota
	ConstraintSizeFilter
	ConstraintSAT
	ConstraintNOT
	ConstraintOR
	ConstraintAND
)

// Constraint is a boolean test evaluated once a binding's children have
// already been evaluated. Filter/SizeFilter wrap a local predicate;
// SAT/NOT/OR/AND instead name a set of edges out of the enclosing node
// and test properties of those children's already-computed
// ChildResults — they do NOT nest other Constraint values. This shape
// mirrors the original implementation's Constraint enum exactly
// (Constraint::{SAT,NOT,OR,AND} all carry a child_names: Vec<String>,
// never a Box<Constraint>), which is why BindingBoxTreeNode's desugared
// OR/AND/NOT wrap a single-constraint Box referencing its two (or one)
// real children by edge name rather than by nested constraint trees.
type Constraint struct {
	Kind ConstraintKind

	Filter     *Filter
	SizeFilter *SizeFilter

	// SAT / NOT / OR / AND
	ChildNames []string
}

// allChildrenHaveAViolation reports whether every named child has at
// least one violated outcome in childRes — or false if any name is
// absent from childRes.
func allChildrenHaveAViolation(names []string, childRes ChildResults) bool {
	for _, name := range names {
		outcomes, ok := childRes[name]
		if !ok {
			return false
		}
		anyViolated := false
		for _, o := range outcomes {
			if !o.Satisfied() {
				anyViolated = true
				break
			}
		}
		if !anyViolated {
			return false
		}
	}
	return true
}

// allOutcomesSatisfied reports whether every outcome reported under
// name is satisfied. A missing name is not satisfied.
func allOutcomesSatisfied(name string, childRes ChildResults) bool {
	outcomes, ok := childRes[name]
	if !ok {
		return false
	}
	for _, o := range outcomes {
		if !o.Satisfied() {
			return false
		}
	}
	return true
}

// Check evaluates c against a single binding b (resolved through log)
// and the already-computed ChildResults of the enclosing node. It is
// grounded, arm by arm, on Constraint::check in the original
// implementation's structs.rs (the body inlined into
// BindingBoxTreeNode::evaluate's constraint loop).
//
// SAT and NOT are NOT logical negations of each other in the way their
// names suggest: SAT is satisfied ("passes") when NOT every named child
// is (at least partially) violated — i.e. a missing child name, just
// like an all-satisfied child, counts as passing SAT. NOT is satisfied
// when every named child both exists in childRes AND has at least one
// violated outcome. This asymmetry (a missing edge name vacuously
// satisfies SAT but never satisfies NOT) is preserved here exactly as
// it behaves in the original implementation, rather than "corrected" to
// a cleaner De Morgan pair — see SPEC_FULL.md §9, O1.
func (c *Constraint) Check(b Binding, log *ocel.IOCEL, childRes ChildResults) bool {
	switch c.Kind {
	case ConstraintFilter:
		// A ConstraintFilter is evaluated against the binding the tree
		// structure promises is fully bound by this node — unlike a
		// filter pushed down mid-expansion, where "not yet bound" is
		// expected and Check's own "missing => false" handles it. If a
		// variable is still unbound here, the tree itself is
		// malformed; spec.md §7 item 2 requires that surface as a
		// fatal error, not a silent false.
		if v, unbound := c.Filter.UnboundVariable(b); unbound {
			panic(ErrUnboundVariable.New(v.String()))
		}
		return c.Filter.Check(b, log)
	case ConstraintSizeFilter:
		return c.SizeFilter.Check(childRes)
	case ConstraintSAT:
		return !allChildrenHaveAViolation(c.ChildNames, childRes)
	case ConstraintNOT:
		return allChildrenHaveAViolation(c.ChildNames, childRes)
	case ConstraintOR:
		for _, name := range c.ChildNames {
			if allOutcomesSatisfied(name, childRes) {
				return true
			}
		}
		return false
	case ConstraintAND:
		for _, name := range c.ChildNames {
			if !allOutcomesSatisfied(name, childRes) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
