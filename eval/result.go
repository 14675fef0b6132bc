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
	"encoding/json"
	"strconv"

	"github.com/aarkue/bindbox/tree"
)

// FlatResult is one (node_idx, binding, reason?) triple, per spec.md's
// EvaluationResult. The aggregate over a whole evaluation is the
// concatenation of all emitted triples — no deduplication (spec.md
// §4.8).
type FlatResult struct {
	NodeIndex int
	Binding   tree.Binding
	Reason    *tree.ViolationReason
}

func (r FlatResult) Satisfied() bool { return r.Reason == nil }

// Result is what Evaluate returns: the flat result list plus, when
// requested, the performance aggregates gathered along the way.
type Result struct {
	FlatResults []FlatResult
	Stats       *ExecStats
}

type wireViolationReason struct {
	Kind            string `json:"kind"`
	Count           int    `json:"count,omitempty"`
	ConstraintIndex int    `json:"constraintIndex,omitempty"`
}

var violationReasonNames = map[tree.ViolationReasonKind]string{
	tree.TooFewMatchingEvents:         "tooFewMatchingEvents",
	tree.TooManyMatchingEvents:        "tooManyMatchingEvents",
	tree.NoChildrenOfORSatisfied:      "noChildrenOfORSatisfied",
	tree.LeftChildOfANDUnsatisfied:    "leftChildOfANDUnsatisfied",
	tree.RightChildOfANDUnsatisfied:   "rightChildOfANDUnsatisfied",
	tree.BothChildrenOfANDUnsatisfied: "bothChildrenOfANDUnsatisfied",
	tree.ChildrenOfNOTSatisfied:       "childrenOfNOTSatisfied",
	tree.ChildNotSatisfied:            "childNotSatisfied",
	tree.ConstraintNotSatisfiedKind:   "constraintNotSatisfied",
	tree.UnknownChildSet:              "unknownChildSet",
}

type wireFlatResult struct {
	NodeIndex int                  `json:"nodeIndex"`
	EventMap  map[string]int       `json:"eventMap"`
	ObjectMap map[string]int       `json:"objectMap"`
	Reason    *wireViolationReason `json:"reason,omitempty"`
}

// EncodeResults serializes a Result's flat results to the JSON wire
// shape described in spec.md §6: one object per triple, with the
// binding written out as eventMap/objectMap sub-objects containing
// variable-index -> log-index entries. The keys are decimal strings and
// encoding/json writes them in ascending string order, so "10" comes
// before "2" (this differs from Binding.EventVars/ObjectVars' numeric
// sort once a tag reaches 10).
func EncodeResults(res Result) ([]byte, error) {
	out := make([]wireFlatResult, len(res.FlatResults))
	for i, r := range res.FlatResults {
		w := wireFlatResult{
			NodeIndex: r.NodeIndex,
			EventMap:  make(map[string]int),
			ObjectMap: make(map[string]int),
		}
		for _, v := range r.Binding.EventVars() {
			idx, _ := r.Binding.GetEventIndex(v)
			w.EventMap[strconv.Itoa(int(v))] = int(idx)
		}
		for _, v := range r.Binding.ObjectVars() {
			idx, _ := r.Binding.GetObjectIndex(v)
			w.ObjectMap[strconv.Itoa(int(v))] = int(idx)
		}
		if r.Reason != nil {
			w.Reason = &wireViolationReason{
				Kind:            violationReasonNames[r.Reason.Kind],
				Count:           r.Reason.Count,
				ConstraintIndex: r.Reason.ConstraintIndex,
			}
		}
		out[i] = w
	}
	return json.Marshal(out)
}
