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
	"testing"
	"time"

	"github.com/aarkue/bindbox/ocel"
	"github.com/aarkue/bindbox/tree"
)

// TestRootCoverage is property P2: every binding the root admits after
// expansion gets exactly one (0, b, reason?) triple, unless a size
// filter on box.SizeFilters dropped it entirely (zero triples for that
// binding, no outcome).
func TestRootCoverage(t *testing.T) {
	log := linkTestLog(t, []ocel.Event{
		{ID: "e1", Type: "t"},
		{ID: "e2", Type: "t"},
		{ID: "e3", Type: "other"},
	}, nil)

	tr := tree.NewTree([]tree.BindingBoxTreeNode{
		{Kind: tree.NodeBox, Box: tree.BindingBox{NewEventVars: tree.NewEventVariables{0: {"t"}}}},
	})

	res, err := Evaluate(tr, log, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Only e1 and e2 are of type "t"; e3 must never appear.
	if len(res.FlatResults) != 2 {
		t.Fatalf("got %d triples, want 2 (one per admitted binding): %+v", len(res.FlatResults), res.FlatResults)
	}
	seen := make(map[ocel.EventIndex]bool)
	for _, r := range res.FlatResults {
		if r.NodeIndex != 0 {
			t.Fatalf("unexpected node_idx %d", r.NodeIndex)
		}
		if !r.Satisfied() {
			t.Fatalf("triple unexpectedly unsatisfied: %+v", r.Reason)
		}
		idx, ok := r.Binding.GetEventIndex(0)
		if !ok {
			t.Fatalf("triple binding has no ev_0: %+v", r)
		}
		seen[idx] = true
	}
	if !seen[0] || !seen[1] || seen[2] {
		t.Fatalf("seen = %v, want {0,1} only", seen)
	}
}

// TestShortCircuit is property P3: once constraint i fails for a
// binding, no later constraint's ConstraintNotSatisfied appears for
// that same binding.
func TestShortCircuit(t *testing.T) {
	log := linkTestLog(t, []ocel.Event{{ID: "e1", Type: "t"}}, nil)

	alwaysFail := tree.Filter{
		Kind: tree.FilterEventAttributeValue, Event: 0, AttributeName: "missing",
		ValueFilter: ocel.ValueFilter{Kind: ocel.FilterBoolean, IsTrue: true},
	}
	tr := tree.NewTree([]tree.BindingBoxTreeNode{
		{Kind: tree.NodeBox, Box: tree.BindingBox{
			NewEventVars: tree.NewEventVariables{0: {"t"}},
			Constraints: []tree.Constraint{
				{Kind: tree.ConstraintFilter, Filter: &alwaysFail},
				{Kind: tree.ConstraintFilter, Filter: &alwaysFail},
			},
		}},
	})

	res, err := Evaluate(tr, log, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.FlatResults) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(res.FlatResults), res.FlatResults)
	}
	r := res.FlatResults[0]
	if r.Satisfied() || r.Reason.ConstraintIndex != 0 {
		t.Fatalf("reason = %+v, want ConstraintNotSatisfied(0)", r.Reason)
	}
}

// --- S4: NumChilds size filter used as a constraint ----------------------

func buildS4Tree() *tree.BindingBoxTree {
	min, max := 1, 1
	return tree.NewTree([]tree.BindingBoxTreeNode{
		{
			Kind: tree.NodeBox,
			Box: tree.BindingBox{
				NewObjectVars: tree.NewObjectVariables{0: {"Order"}},
				Constraints: []tree.Constraint{
					{Kind: tree.ConstraintSizeFilter, SizeFilter: &tree.SizeFilter{
						Kind: tree.SizeFilterNumChilds, Edge: "pays", Min: &min, Max: &max,
					}},
				},
			},
			Children: []int{1},
		},
		{
			Kind: tree.NodeBox,
			Box: tree.BindingBox{
				NewEventVars: tree.NewEventVariables{0: {"pay"}},
				Filters: []tree.Filter{
					{Kind: tree.FilterO2E, Object: 0, Event: 0},
				},
			},
		},
	})
}

func TestScenarioS4TwoPaysViolates(t *testing.T) {
	log := linkTestLog(t,
		[]ocel.Event{
			{ID: "p1", Type: "pay", Relationships: []ocel.Relationship{{ObjectID: "o1"}}},
			{ID: "p2", Type: "pay", Relationships: []ocel.Relationship{{ObjectID: "o1"}}},
		},
		[]ocel.Object{{ID: "o1", Type: "Order"}},
	)
	tr := buildS4Tree()
	tr.SetEdgeName(0, 1, "pays")

	res, err := Evaluate(tr, log, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	var root *FlatResult
	for i := range res.FlatResults {
		if res.FlatResults[i].NodeIndex == 0 {
			root = &res.FlatResults[i]
		}
	}
	if root == nil {
		t.Fatalf("no root triple: %+v", res.FlatResults)
	}
	if root.Satisfied() || root.Reason.ConstraintIndex != 0 {
		t.Fatalf("root reason = %+v, want ConstraintNotSatisfied(0) (two pays violates NumChilds(1,1))", root.Reason)
	}
}

func TestScenarioS4OnePaySatisfies(t *testing.T) {
	log := linkTestLog(t,
		[]ocel.Event{
			{ID: "p1", Type: "pay", Relationships: []ocel.Relationship{{ObjectID: "o1"}}},
		},
		[]ocel.Object{{ID: "o1", Type: "Order"}},
	)
	tr := buildS4Tree()
	tr.SetEdgeName(0, 1, "pays")

	res, err := Evaluate(tr, log, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	var root *FlatResult
	for i := range res.FlatResults {
		if res.FlatResults[i].NodeIndex == 0 {
			root = &res.FlatResults[i]
		}
	}
	if root == nil {
		t.Fatalf("no root triple: %+v", res.FlatResults)
	}
	if !root.Satisfied() {
		t.Fatalf("root reason = %+v, want satisfied (exactly one pay)", root.Reason)
	}
}

func TestMeasurePerformanceStats(t *testing.T) {
	log := linkTestLog(t, []ocel.Event{{ID: "e1", Type: "t", Time: time.Unix(0, 0)}}, nil)
	tr := tree.NewTree([]tree.BindingBoxTreeNode{
		{Kind: tree.NodeBox, Box: tree.BindingBox{NewEventVars: tree.NewEventVariables{0: {"t"}}}},
	})

	res, err := Evaluate(tr, log, true)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Stats == nil {
		t.Fatal("Stats is nil with measurePerformance=true")
	}
	if res.Stats.NodesVisited == 0 {
		t.Fatal("NodesVisited not recorded")
	}
	if res.Stats.BindingsExpanded == 0 {
		t.Fatal("BindingsExpanded not recorded")
	}
}

// TestConstraintUnboundVariableIsFatalButKeepsChildResults checks spec.md
// §7 item 2: a ConstraintFilter reading a variable the current binding
// never bound must surface as ChildNotSatisfied on the offending node,
// not as a silently-false ordinary violation — and must not discard the
// FlatResults its children already produced.
func TestConstraintUnboundVariableIsFatalButKeepsChildResults(t *testing.T) {
	log := linkTestLog(t,
		[]ocel.Event{
			{ID: "p1", Type: "pay", Relationships: []ocel.Relationship{{ObjectID: "o1"}}},
			{ID: "p2", Type: "pay", Relationships: []ocel.Relationship{{ObjectID: "o1"}}},
		},
		[]ocel.Object{{ID: "o1", Type: "Order"}},
	)

	// unboundVar references event variable 1, which this tree never
	// declares anywhere — reading it at constraint time must panic
	// ErrUnboundVariable rather than return false.
	unboundVar := tree.Filter{
		Kind: tree.FilterEventAttributeValue, Event: 1, AttributeName: "whatever",
		ValueFilter: ocel.ValueFilter{Kind: ocel.FilterBoolean, IsTrue: true},
	}
	tr := tree.NewTree([]tree.BindingBoxTreeNode{
		{
			Kind: tree.NodeBox,
			Box: tree.BindingBox{
				NewObjectVars: tree.NewObjectVariables{0: {"Order"}},
				Constraints: []tree.Constraint{
					{Kind: tree.ConstraintFilter, Filter: &unboundVar},
				},
			},
			Children: []int{1},
		},
		{
			Kind: tree.NodeBox,
			Box: tree.BindingBox{
				NewEventVars: tree.NewEventVariables{0: {"pay"}},
				Filters: []tree.Filter{
					{Kind: tree.FilterO2E, Object: 0, Event: 0},
				},
			},
		},
	})
	tr.SetEdgeName(0, 1, "pays")

	res, err := Evaluate(tr, log, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	var root, child *FlatResult
	for i := range res.FlatResults {
		switch res.FlatResults[i].NodeIndex {
		case 0:
			root = &res.FlatResults[i]
		case 1:
			child = &res.FlatResults[i]
		}
	}
	if child == nil {
		t.Fatalf("child's own triple was lost: %+v", res.FlatResults)
	}
	if root == nil || root.Satisfied() || root.Reason.Kind != tree.ChildNotSatisfied {
		t.Fatalf("root reason = %+v, want ChildNotSatisfied (unbound-variable panic)", root)
	}
}

func TestEmptyTreeYieldsEmptyResult(t *testing.T) {
	log := linkTestLog(t, nil, nil)
	res, err := Evaluate(tree.NewTree(nil), log, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.FlatResults) != 0 {
		t.Fatalf("got %d triples for an empty tree, want 0", len(res.FlatResults))
	}
}
