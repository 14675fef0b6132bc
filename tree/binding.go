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

import (
	"github.com/mitchellh/hashstructure"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/aarkue/bindbox/ocel"
)

// Binding is a partial variable→index assignment surviving filters at a
// node. It is immutable after construction: ExpandWithEvent and
// ExpandWithObject return a new Binding extending the receiver by
// exactly one entry, never mutating it in place (so a Binding can be
// shared across the goroutines that fan out over a node's expanded
// binding set without synchronization).
type Binding struct {
	eventMap  map[EventVariable]ocel.EventIndex
	objectMap map[ObjectVariable]ocel.ObjectIndex
}

// Empty is the binding with no entries, the seed passed to the root
// node of a tree.
func Empty() Binding {
	return Binding{}
}

// ExpandWithEvent returns a new Binding equal to b plus one entry
// ev -> idx. ev must not already be bound in b.
func (b Binding) ExpandWithEvent(ev EventVariable, idx ocel.EventIndex) Binding {
	out := Binding{
		eventMap:  cloneEventMap(b.eventMap),
		objectMap: b.objectMap,
	}
	if out.eventMap == nil {
		out.eventMap = make(map[EventVariable]ocel.EventIndex, 1)
	}
	out.eventMap[ev] = idx
	return out
}

// ExpandWithObject returns a new Binding equal to b plus one entry
// ob -> idx. ob must not already be bound in b.
func (b Binding) ExpandWithObject(ob ObjectVariable, idx ocel.ObjectIndex) Binding {
	out := Binding{
		eventMap:  b.eventMap,
		objectMap: cloneObjectMap(b.objectMap),
	}
	if out.objectMap == nil {
		out.objectMap = make(map[ObjectVariable]ocel.ObjectIndex, 1)
	}
	out.objectMap[ob] = idx
	return out
}

func cloneEventMap(m map[EventVariable]ocel.EventIndex) map[EventVariable]ocel.EventIndex {
	if m == nil {
		return nil
	}
	out := make(map[EventVariable]ocel.EventIndex, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneObjectMap(m map[ObjectVariable]ocel.ObjectIndex) map[ObjectVariable]ocel.ObjectIndex {
	if m == nil {
		return nil
	}
	out := make(map[ObjectVariable]ocel.ObjectIndex, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetEventIndex returns the index bound to ev, if any.
func (b Binding) GetEventIndex(ev EventVariable) (ocel.EventIndex, bool) {
	idx, ok := b.eventMap[ev]
	return idx, ok
}

// GetObjectIndex returns the index bound to ob, if any.
func (b Binding) GetObjectIndex(ob ObjectVariable) (ocel.ObjectIndex, bool) {
	idx, ok := b.objectMap[ob]
	return idx, ok
}

// GetEvent resolves ev through iocel, returning nil if ev is unbound.
func (b Binding) GetEvent(ev EventVariable, log *ocel.IOCEL) *ocel.Event {
	idx, ok := b.eventMap[ev]
	if !ok {
		return nil
	}
	return log.EventByIndex(idx)
}

// GetObject resolves ob through iocel, returning nil if ob is unbound.
func (b Binding) GetObject(ob ObjectVariable, log *ocel.IOCEL) *ocel.Object {
	idx, ok := b.objectMap[ob]
	if !ok {
		return nil
	}
	return log.ObjectByIndex(idx)
}

// EventVars returns the event variables bound in b, in ascending tag
// order (used for deterministic wire serialization).
func (b Binding) EventVars() []EventVariable {
	vars := maps.Keys(b.eventMap)
	slices.Sort(vars)
	return vars
}

// ObjectVars returns the object variables bound in b, in ascending tag
// order (used for deterministic wire serialization).
func (b Binding) ObjectVars() []ObjectVariable {
	vars := maps.Keys(b.objectMap)
	slices.Sort(vars)
	return vars
}

// GetProjection resolves v (an EventVariable or ObjectVariable, wrapped
// generically) to its underlying log index, or reports it missing. It
// backs SizeFilter's BindingSetProjectionEqual (spec.md §4.4).
func (b Binding) GetProjection(v Variable) (int, bool) {
	if v.Kind == EventVarKind {
		idx, ok := b.GetEventIndex(v.Event)
		return int(idx), ok
	}
	idx, ok := b.GetObjectIndex(v.Obj)
	return int(idx), ok
}

// Equal reports whether b and other bind exactly the same variables to
// exactly the same indices.
func (b Binding) Equal(other Binding) bool {
	if len(b.eventMap) != len(other.eventMap) || len(b.objectMap) != len(other.objectMap) {
		return false
	}
	for k, v := range b.eventMap {
		if ov, ok := other.eventMap[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range b.objectMap {
		if ov, ok := other.objectMap[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Hash returns a hash of b suitable for using a Binding as a set
// element (§4.2: "the evaluator MUST treat bindings as a set"). It is
// the Go analogue of the original implementation's #[derive(Hash)] on
// Binding, which backs its HashSet<&Binding> comparisons.
func (b Binding) Hash() uint64 {
	h, err := hashstructure.Hash(struct {
		E map[EventVariable]ocel.EventIndex
		O map[ObjectVariable]ocel.ObjectIndex
	}{b.eventMap, b.objectMap}, nil)
	if err != nil {
		// hashstructure only fails on unhashable types (channels,
		// funcs); Binding's fields are plain integer maps, so this
		// cannot happen.
		panic(err)
	}
	return h
}
