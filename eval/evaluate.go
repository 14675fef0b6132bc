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

package eval

import (
	"runtime"
	"sync"

	"github.com/aarkue/bindbox/ocel"
	"github.com/aarkue/bindbox/tree"
)

// ErrUnboundVariable is the fatal "binding-time programming error" class
// spec.md §7 item 2 requires: a constraint reaching for a variable the
// current binding never bound. Constraint.Check raises it (it lives in
// package tree to avoid an import cycle back into eval); it is recovered
// here, at the per-binding goroutine boundary in evalOne, and turned
// into a ChildNotSatisfied violation rather than crossing the
// evaluator's public API, per the spec's "MUST NOT silently return
// false" requirement. Any other panic is not this Kind and is left to
// propagate, so an unrelated bug is never mistaken for a satisfied-enough
// violation.
var ErrUnboundVariable = tree.ErrUnboundVariable

// evaluator holds the state shared by every node in one tree
// evaluation: the tree and log being evaluated, and the goroutine pool
// that runs each binding's size-filter/constraint check (the fan-out
// over a node's expanded binding set itself uses plain goroutines; see
// evalNode).
type evaluator struct {
	tree  *tree.BindingBoxTree
	log   *ocel.IOCEL
	pool  pool
	stats *ExecStats
}

// Evaluate runs t against log, returning the full flat result list.
// Grounded on BindingBoxTreeNode::evaluate in the original
// implementation's structs.rs (the per-binding rayon
// map/fold/reduce is reproduced here with one goroutine per binding and
// a fixed pool for the leaf checks, per plan/exec.go's mkpool/Tree.exec
// idiom).
func Evaluate(t *tree.BindingBoxTree, log *ocel.IOCEL, measurePerformance bool) (Result, error) {
	if len(t.Nodes) == 0 {
		return Result{}, nil
	}
	var stats *ExecStats
	if measurePerformance {
		stats = newExecStats()
	}
	ev := &evaluator{
		tree:  t,
		log:   log,
		pool:  mkpool(runtime.NumCPU()),
		stats: stats,
	}
	defer close(ev.pool)

	flat, _ := ev.evalNode(0, tree.Empty())
	result := Result{FlatResults: flat, Stats: stats}
	if stats != nil {
		stats.finish()
	}
	return result, nil
}

// evalNode evaluates tree.Nodes[nodeIdx] under parentBinding, returning
// the flat results to propagate to the global collector and the
// outcomes the caller (the parent node) sees in its own child_res.
func (ev *evaluator) evalNode(nodeIdx int, parentBinding tree.Binding) ([]FlatResult, []tree.Outcome) {
	node := &ev.tree.Nodes[nodeIdx]
	box, children := node.ToBox()
	ev.observeVisit()

	if ev.stats != nil {
		span := traceNode(nodeIdx)
		defer span.Finish()
	}

	expanded := Expand(&box, []tree.Binding{parentBinding}, ev.log)
	ev.observeExpanded(len(expanded))

	type perBinding struct {
		flat    []FlatResult
		outcome *tree.Outcome // nil iff filtered out by a size filter
	}
	results := make([]perBinding, len(expanded))

	var wg sync.WaitGroup
	wg.Add(len(expanded))
	for i, b := range expanded {
		i, b := i, b
		// Unbounded on purpose: this task recurses into evalNode for
		// every child and wg.Wait()s on it, so it must never be
		// dispatched through the same fixed pool its own recursion
		// needs (see pool.go). The pool still bounds the one thing in
		// evalOne that's genuine leaf work: the size-filter/constraint
		// checks once children are resolved.
		go func() {
			defer wg.Done()
			results[i] = ev.evalOne(nodeIdx, &box, children, b)
		}()
	}
	wg.Wait()

	var flat []FlatResult
	var outcomes []tree.Outcome
	for _, r := range results {
		flat = append(flat, r.flat...)
		if r.outcome != nil {
			outcomes = append(outcomes, *r.outcome)
		}
	}
	return flat, outcomes
}

func (ev *evaluator) evalOne(nodeIdx int, box *tree.BindingBox, children []int, b tree.Binding) (res struct {
	flat    []FlatResult
	outcome *tree.Outcome
}) {
	var acc []FlatResult
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); !ok || !ErrUnboundVariable.Is(err) {
			// Not the fatal-but-recoverable unbound-variable class:
			// re-raise so an unrelated bug surfaces as a crash instead
			// of being swallowed as an ordinary constraint violation.
			panic(r)
		}
		// acc already holds every FlatResult this node's children
		// produced before the panic — keep those, per spec.md's
		// "final result is the concatenation of all emitted triples",
		// the same way the size-filter-failure branch below does.
		reason := tree.ViolationReason{Kind: tree.ChildNotSatisfied}
		res.flat = append(acc, FlatResult{NodeIndex: nodeIdx, Binding: b, Reason: &reason})
		o := tree.Outcome{Binding: b, Reason: &reason}
		res.outcome = &o
	}()

	childRes := make(tree.ChildResults, len(children))
	for _, c := range children {
		name := ev.tree.EdgeName(nodeIdx, c)
		subFlat, subOutcomes := ev.evalNode(c, b)
		acc = append(acc, subFlat...)
		childRes[name] = subOutcomes
	}

	// Children are fully resolved; the remaining work — size filters,
	// then constraints, in order, short-circuiting on first failure —
	// never recurses and never touches the pool again, so it is the
	// genuine leaf work the pool is for. ev.pool.do blocks this
	// (non-worker) goroutine until a worker runs it, re-raising any
	// panic here so the defer/recover above still sees it.
	var sizeFilterFailed bool
	failedConstraint := -1
	ev.pool.do(func() {
		for i := range box.SizeFilters {
			if !box.SizeFilters[i].Check(childRes) {
				sizeFilterFailed = true
				return
			}
		}
		for i := range box.Constraints {
			if !box.Constraints[i].Check(b, ev.log, childRes) {
				failedConstraint = i
				return
			}
		}
	})

	if sizeFilterFailed {
		res.flat = acc
		res.outcome = nil
		return res
	}
	if failedConstraint >= 0 {
		reason := tree.ConstraintNotSatisfied(failedConstraint)
		acc = append(acc, FlatResult{NodeIndex: nodeIdx, Binding: b, Reason: &reason})
		res.flat = acc
		o := tree.Outcome{Binding: b, Reason: &reason}
		res.outcome = &o
		return res
	}

	acc = append(acc, FlatResult{NodeIndex: nodeIdx, Binding: b})
	res.flat = acc
	o := tree.Outcome{Binding: b}
	res.outcome = &o
	return res
}

func (ev *evaluator) observeVisit() {
	if ev.stats != nil {
		ev.stats.addNodesVisited(1)
	}
}

func (ev *evaluator) observeExpanded(n int) {
	if ev.stats != nil {
		ev.stats.addBindingsExpanded(int64(n))
	}
}
