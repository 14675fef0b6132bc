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

// SizeFilterKind tags which predicate over child_res a SizeFilter
// applies, per spec.md §4.4.
type SizeFilterKind int

const (
	SizeFilterNumChilds SizeFilterKind = iota
	SizeFilterBindingSetEqual
	SizeFilterBindingSetProjectionEqual
)

// edgeVar pairs an edge name with the variable to project its bindings
// onto, for BindingSetProjectionEqual.
type edgeVar struct {
	Edge string
	Var  Variable
}

// SizeFilter is a predicate over the multiset of a node's children's
// evaluation outcomes, per spec.md §4.4.
type SizeFilter struct {
	Kind SizeFilterKind

	// NumChilds
	Edge string
	Min  *int
	Max  *int

	// BindingSetEqual
	Edges []string

	// BindingSetProjectionEqual
	EdgeVars []edgeVar
}

// NewBindingSetProjectionEqual builds the EdgeVars list for a
// BindingSetProjectionEqual filter from parallel edge/variable slices.
func NewBindingSetProjectionEqual(edges []string, vars []Variable) SizeFilter {
	evs := make([]edgeVar, len(edges))
	for i := range edges {
		evs[i] = edgeVar{Edge: edges[i], Var: vars[i]}
	}
	return SizeFilter{Kind: SizeFilterBindingSetProjectionEqual, EdgeVars: evs}
}

// Check reports whether sf holds against childRes, grounded on
// SizeFilter::check in the original implementation's structs.rs.
func (sf *SizeFilter) Check(childRes ChildResults) bool {
	switch sf.Kind {
	case SizeFilterNumChilds:
		outcomes, ok := childRes[sf.Edge]
		if !ok {
			return false
		}
		n := len(outcomes)
		if sf.Min != nil && n < *sf.Min {
			return false
		}
		if sf.Max != nil && n > *sf.Max {
			return false
		}
		return true
	case SizeFilterBindingSetEqual:
		if len(sf.Edges) == 0 {
			return true
		}
		first, ok := childRes[sf.Edges[0]]
		if !ok {
			return false
		}
		firstSet := bindingSet(first)
		for _, edge := range sf.Edges[1:] {
			other, ok := childRes[edge]
			if !ok {
				return false
			}
			if !bindingSetEqual(firstSet, bindingSet(other)) {
				return false
			}
		}
		return true
	case SizeFilterBindingSetProjectionEqual:
		if len(sf.EdgeVars) == 0 {
			return true
		}
		first, ok := childRes[sf.EdgeVars[0].Edge]
		if !ok {
			return false
		}
		firstSet := projectionSet(first, sf.EdgeVars[0].Var)
		for _, ev := range sf.EdgeVars[1:] {
			other, ok := childRes[ev.Edge]
			if !ok {
				return false
			}
			if !projectionSetEqual(firstSet, projectionSet(other, ev.Var)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// bindingKey is a hashable stand-in for a Binding, used to build sets of
// bindings for BindingSetEqual. Binding.Hash alone is not collision-free
// enough to trust as an equality check (two different bindings could in
// principle hash the same); bindingKey carries the hash plus enough of
// the binding to break ties deterministically via Binding.Equal.
type bindingKey struct {
	hash uint64
	b    Binding
}

// bindingSet dedups outcomes' bindings into a true set, mirroring the
// original implementation's HashSet<&Binding> collection in
// SizeFilter::check.
func bindingSet(outcomes []Outcome) []bindingKey {
	var out []bindingKey
	for _, o := range outcomes {
		k := bindingKey{hash: o.Binding.Hash(), b: o.Binding}
		if !containsBindingKey(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func containsBindingKey(set []bindingKey, k bindingKey) bool {
	for _, x := range set {
		if x.hash == k.hash && x.b.Equal(k.b) {
			return true
		}
	}
	return false
}

func bindingSetEqual(a, b []bindingKey) bool {
	return setEqual(a, b, func(x, y bindingKey) bool {
		return x.hash == y.hash && x.b.Equal(y.b)
	})
}

// projectionKey is the image of a binding under projection to a single
// variable: either the log index it is bound to, or "missing".
type projectionKey struct {
	present bool
	index   int
}

// projectionSet dedups outcomes' projections into a true set, mirroring
// the original implementation's HashSet<Option<usize>> collection.
func projectionSet(outcomes []Outcome, v Variable) []projectionKey {
	var out []projectionKey
	for _, o := range outcomes {
		idx, ok := o.Binding.GetProjection(v)
		k := projectionKey{present: ok, index: idx}
		if !containsProjectionKey(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func containsProjectionKey(set []projectionKey, k projectionKey) bool {
	for _, x := range set {
		if x == k {
			return true
		}
	}
	return false
}

func projectionSetEqual(a, b []projectionKey) bool {
	return setEqual(a, b, func(x, y projectionKey) bool { return x == y })
}

// setEqual reports whether deduped sets a and b (as produced by
// bindingSet/projectionSet) contain exactly the same elements, ignoring
// order, per spec.md §4.2's "treat bindings as a set" requirement.
func setEqual[T any](a, b []T, eq func(x, y T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if eq(x, y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
