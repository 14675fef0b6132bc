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

// Package tree defines the Binding Box Tree data model: variables,
// bindings, filters, size filters, constraints, the tree of nodes
// itself, and its wire codec. Evaluation lives in package eval; this
// package only defines values and their local (per-binding, or
// per-child-result) predicates.
package tree

import "fmt"

// EventVariable and ObjectVariable are small-integer-tagged distinct
// sorts. Two variables of the same kind compare equal iff their tags
// are equal; an EventVariable(0) and an ObjectVariable(0) are always
// distinct, since they belong to different sorts.
type EventVariable int

type ObjectVariable int

func (v EventVariable) String() string  { return fmt.Sprintf("ev_%d", int(v)) }
func (v ObjectVariable) String() string { return fmt.Sprintf("ob_%d", int(v)) }

// VariableKind tags which sort a Variable names.
type VariableKind int

const (
	EventVarKind VariableKind = iota
	ObjectVarKind
)

// Variable is the tagged union of EventVariable and ObjectVariable, used
// wherever a binding-set projection needs to name either sort generically
// (see BindingSetProjectionEqual).
type Variable struct {
	Kind  VariableKind
	Event EventVariable
	Obj   ObjectVariable
}

func EventVar(v EventVariable) Variable  { return Variable{Kind: EventVarKind, Event: v} }
func ObjectVar(v ObjectVariable) Variable { return Variable{Kind: ObjectVarKind, Obj: v} }

func (v Variable) String() string {
	if v.Kind == EventVarKind {
		return v.Event.String()
	}
	return v.Obj.String()
}

// Qualifier is an optional relationship qualifier: nil means "any
// qualifier matches".
type Qualifier = *string

func Qual(s string) Qualifier { return &s }
