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

// ViolationReasonKind enumerates the class of a ViolationReason, per
// spec.md §3. Most tags beyond ConstraintNotSatisfiedKind and
// ChildNotSatisfied are carried over from the original implementation's
// enum for completeness (the generic constraint-evaluation algorithm in
// package eval only ever produces those two; UnknownChildSet is never
// produced), since spec.md still names them as part of the
// ViolationReason type.
type ViolationReasonKind int

const (
	TooFewMatchingEvents ViolationReasonKind = iota
	TooManyMatchingEvents
	NoChildrenOfORSatisfied
	LeftChildOfANDUnsatisfied
	RightChildOfANDUnsatisfied
	BothChildrenOfANDUnsatisfied
	ChildrenOfNOTSatisfied
	ChildNotSatisfied
	ConstraintNotSatisfiedKind
	UnknownChildSet
)

// ViolationReason is a tagged reason a binding failed to satisfy a node,
// per spec.md §3. Count is meaningful for TooFewMatchingEvents /
// TooManyMatchingEvents; ConstraintIndex is meaningful for
// ConstraintNotSatisfiedKind.
type ViolationReason struct {
	Kind            ViolationReasonKind
	Count           int
	ConstraintIndex int
}

func ConstraintNotSatisfied(i int) ViolationReason {
	return ViolationReason{Kind: ConstraintNotSatisfiedKind, ConstraintIndex: i}
}

// Outcome is the (binding, violation?) pair a child reports upward to
// its parent's child_res, per spec.md's GLOSSARY.
type Outcome struct {
	Binding Binding
	Reason  *ViolationReason
}

func (o Outcome) Satisfied() bool { return o.Reason == nil }

// ChildResults maps an edge name to the outcomes the corresponding child
// produced under the current binding, per spec.md §4.4.
type ChildResults map[string][]Outcome
