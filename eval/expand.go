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

// Package eval implements the Binding Box Tree evaluator: expanding a
// BindingBox's declared variables into the Cartesian product of
// candidate bindings, applying its filters as early as possible, and
// recursively evaluating a BindingBoxTree in parallel over the
// resulting binding sets.
package eval

import (
	"sort"

	"github.com/aarkue/bindbox/ocel"
	"github.com/aarkue/bindbox/tree"
)

// introKind tags whether an introduction step binds an event or object
// variable.
type introKind int

const (
	introEvent introKind = iota
	introObject
)

type introStep struct {
	kind  introKind
	event tree.EventVariable
	obj   tree.ObjectVariable
	types []string
}

func (s introStep) variable() tree.Variable {
	if s.kind == introEvent {
		return tree.EventVar(s.event)
	}
	return tree.ObjectVar(s.obj)
}

// buildSteps orders bbox's variable declarations deterministically
// (event variables then object variables, each ascending by tag), which
// is what lets the filter-push schedule below be computed
// reproducibly — spec.md §4.2 explicitly allows any dependency-respecting
// order.
func buildSteps(bbox *tree.BindingBox) []introStep {
	evs := make([]tree.EventVariable, 0, len(bbox.NewEventVars))
	for v := range bbox.NewEventVars {
		evs = append(evs, v)
	}
	sort.Slice(evs, func(i, j int) bool { return evs[i] < evs[j] })

	obs := make([]tree.ObjectVariable, 0, len(bbox.NewObjectVars))
	for v := range bbox.NewObjectVars {
		obs = append(obs, v)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i] < obs[j] })

	steps := make([]introStep, 0, len(evs)+len(obs))
	for _, v := range evs {
		steps = append(steps, introStep{kind: introEvent, event: v, types: bbox.NewEventVars[v]})
	}
	for _, v := range obs {
		steps = append(steps, introStep{kind: introObject, obj: v, types: bbox.NewObjectVars[v]})
	}
	return steps
}

// schedule returns, for each step index, the filters of bbox whose
// GetInvolvedVariables() become fully bound exactly after that step
// (i.e. the step introducing the last of their variables) — the
// earliest point at which they can be pushed, per spec.md §4.2 P4.
// Filters none of whose variables bbox itself declares (all bound
// higher up the tree, in parent_binding) are scheduled at step -1: they
// are already applicable before any introduction happens. A filter
// mixing parent-bound and newly declared variables is scheduled at the
// step introducing the last of its declared ones.
func schedule(steps []introStep, filters []tree.Filter) map[int][]*tree.Filter {
	boundAt := make(map[tree.Variable]int, len(steps))
	for i, s := range steps {
		boundAt[s.variable()] = i
	}
	out := make(map[int][]*tree.Filter)
	for i := range filters {
		f := &filters[i]
		readyAt := -1
		for _, v := range f.GetInvolvedVariables() {
			if step, ok := boundAt[v]; ok && step > readyAt {
				readyAt = step
			}
		}
		out[readyAt] = append(out[readyAt], f)
	}
	return out
}

// Expand computes the Cartesian expansion of bbox over parentBindings,
// pushing each filter as soon as every variable it reads has been
// introduced. It is grounded on spec.md §4.2's Binding Expander
// contract (there is no standalone `BindingBox::expand` in the retrieved
// original source to port directly — it was filtered out of the kept
// file set — so this implementation follows the spec's algorithm
// description directly, cross-checked against Filter::check_binding's
// variable usage in structs.rs).
func Expand(bbox *tree.BindingBox, parentBindings []tree.Binding, log *ocel.IOCEL) []tree.Binding {
	steps := buildSteps(bbox)
	sched := schedule(steps, bbox.Filters)

	cur := parentBindings
	cur = applyFilters(cur, sched[-1], log)

	for i, s := range steps {
		cur = introduce(cur, s, log)
		cur = applyFilters(cur, sched[i], log)
	}
	return cur
}

func introduce(bindings []tree.Binding, s introStep, log *ocel.IOCEL) []tree.Binding {
	if s.kind == introEvent {
		pool := candidateEvents(s.types, log)
		out := make([]tree.Binding, 0, len(bindings)*len(pool))
		for _, b := range bindings {
			for _, idx := range pool {
				out = append(out, b.ExpandWithEvent(s.event, idx))
			}
		}
		return out
	}
	pool := candidateObjects(s.types, log)
	out := make([]tree.Binding, 0, len(bindings)*len(pool))
	for _, b := range bindings {
		for _, idx := range pool {
			out = append(out, b.ExpandWithObject(s.obj, idx))
		}
	}
	return out
}

func candidateEvents(types []string, log *ocel.IOCEL) []ocel.EventIndex {
	if len(types) == 0 {
		return log.AllEventIndices()
	}
	return log.EventsOfType(types...)
}

func candidateObjects(types []string, log *ocel.IOCEL) []ocel.ObjectIndex {
	if len(types) == 0 {
		return log.AllObjectIndices()
	}
	return log.ObjectsOfType(types...)
}

func applyFilters(bindings []tree.Binding, filters []*tree.Filter, log *ocel.IOCEL) []tree.Binding {
	if len(filters) == 0 {
		return bindings
	}
	out := bindings[:0:0]
	for _, b := range bindings {
		ok := true
		for _, f := range filters {
			if !f.Check(b, log) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, b)
		}
	}
	return out
}

// expandNaive is the reference "introduce everything, then filter
// everything" implementation kept only to prove P4 (filter-push
// equivalence) in expand_test.go — it must never be reached from
// Evaluate.
func expandNaive(bbox *tree.BindingBox, parentBindings []tree.Binding, log *ocel.IOCEL) []tree.Binding {
	steps := buildSteps(bbox)
	cur := parentBindings
	for _, s := range steps {
		cur = introduce(cur, s, log)
	}
	return applyFilters(cur, filterPointers(bbox.Filters), log)
}

func filterPointers(filters []tree.Filter) []*tree.Filter {
	out := make([]*tree.Filter, len(filters))
	for i := range filters {
		out[i] = &filters[i]
	}
	return out
}
