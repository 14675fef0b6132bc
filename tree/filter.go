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
	"time"

	"github.com/aarkue/bindbox/ocel"
)

// FilterKind tags which per-binding predicate a Filter applies.
type FilterKind int

const (
	FilterO2E FilterKind = iota
	FilterO2O
	FilterTimeBetweenEvents
	FilterEventAttributeValue
	FilterObjectAttributeValue
)

// ObjectValueFilterTimepointKind tags when an ObjectAttributeValueFilter
// samples a time-varying attribute.
type ObjectValueFilterTimepointKind int

const (
	AtAlways ObjectValueFilterTimepointKind = iota
	AtSometime
	AtEvent
)

// ObjectValueFilterTimepoint selects which snapshot(s) of a time-varying
// object attribute an ObjectAttributeValueFilter inspects.
type ObjectValueFilterTimepoint struct {
	Kind  ObjectValueFilterTimepointKind
	Event EventVariable // meaningful iff Kind == AtEvent
}

// Filter is a per-binding boolean predicate over the IOCEL, per
// spec.md §4.3. Exactly one of the Kind-tagged field groups is
// meaningful.
type Filter struct {
	Kind FilterKind

	// O2E / O2O
	Object      ObjectVariable
	Event       EventVariable
	OtherObject ObjectVariable
	Qualifier   Qualifier

	// TimeBetweenEvents
	FromEvent  EventVariable
	ToEvent    EventVariable
	MinSeconds *float64
	MaxSeconds *float64

	// EventAttributeValue / ObjectAttributeValue
	AttributeName string
	ValueFilter   ocel.ValueFilter
	AtTime        ObjectValueFilterTimepoint
}

// Check reports whether f holds for b against log. It is grounded,
// predicate by predicate, on Filter::check_binding in the original
// implementation's structs.rs.
//
// Per spec.md §4.2, a missing variable lookup during filter evaluation
// is treated as "filter does not hold", not as an error — Check never
// panics on an unbound variable, unlike Constraint.Check, which raises
// ErrUnboundVariable for a filter constraint (recovered in package
// eval).
func (f *Filter) Check(b Binding, log *ocel.IOCEL) bool {
	switch f.Kind {
	case FilterO2E:
		ob := b.GetObject(f.Object, log)
		ev := b.GetEvent(f.Event, log)
		if ob == nil || ev == nil {
			return false
		}
		return hasRelationship(ev.Relationships, ob.ID, f.Qualifier)
	case FilterO2O:
		ob1 := b.GetObject(f.Object, log)
		ob2 := b.GetObject(f.OtherObject, log)
		if ob1 == nil || ob2 == nil {
			return false
		}
		return hasRelationship(ob1.Relationships, ob2.ID, f.Qualifier)
	case FilterTimeBetweenEvents:
		from := b.GetEvent(f.FromEvent, log)
		to := b.GetEvent(f.ToEvent, log)
		if from == nil || to == nil {
			return false
		}
		diff := to.Time.Sub(from.Time).Seconds()
		if f.MinSeconds != nil && diff < *f.MinSeconds {
			return false
		}
		if f.MaxSeconds != nil && diff > *f.MaxSeconds {
			return false
		}
		return true
	case FilterEventAttributeValue:
		ev := b.GetEvent(f.Event, log)
		if ev == nil {
			return false
		}
		attr, ok := findAttribute(ev.Attributes, f.AttributeName)
		if !ok {
			return false
		}
		return f.ValueFilter.Check(attr.Value)
	case FilterObjectAttributeValue:
		ob := b.GetObject(f.Object, log)
		if ob == nil {
			return false
		}
		switch f.AtTime.Kind {
		case AtAlways:
			for _, at := range ob.Attributes {
				if at.Name != f.AttributeName {
					continue
				}
				if !f.ValueFilter.Check(at.Value) {
					return false
				}
			}
			return true
		case AtSometime:
			for _, at := range ob.Attributes {
				if at.Name == f.AttributeName && f.ValueFilter.Check(at.Value) {
					return true
				}
			}
			return false
		case AtEvent:
			ev := b.GetEvent(f.AtTime.Event, log)
			if ev == nil {
				return false
			}
			last, ok := lastAttributeBefore(ob.Attributes, f.AttributeName, ev.Time)
			if !ok {
				return false
			}
			return f.ValueFilter.Check(last.Value)
		default:
			return false
		}
	default:
		return false
	}
}

func hasRelationship(rels []ocel.Relationship, objectID string, qualifier Qualifier) bool {
	for _, rel := range rels {
		if rel.ObjectID != objectID {
			continue
		}
		if qualifier == nil || rel.Qualifier == *qualifier {
			return true
		}
	}
	return false
}

func findAttribute(attrs []ocel.Attribute, name string) (ocel.Attribute, bool) {
	for _, at := range attrs {
		if at.Name == name {
			return at, true
		}
	}
	return ocel.Attribute{}, false
}

// lastAttributeBefore finds the most-recent update of the named
// attribute whose timestamp is <= at, per spec.md's
// ObjectAttributeValueFilter AtEvent semantics. Grounded on
// structs.rs's AtEvent arm, which does
// `.filter(...).sorted_by_key(|x| x.time).last()`: a stable sort by
// time followed by last() picks, among updates tied for the latest
// timestamp, the one that appears last in attrs' original order — so
// ties are broken by >= (not the stricter >), keeping the candidate
// walking forward through attrs.
func lastAttributeBefore(attrs []ocel.Attribute, name string, at time.Time) (ocel.Attribute, bool) {
	var (
		best  ocel.Attribute
		found bool
	)
	for _, a := range attrs {
		if a.Name != name || a.Time.After(at) {
			continue
		}
		if !found || !a.Time.Before(best.Time) {
			best, found = a, true
		}
	}
	return best, found
}

// UnboundVariable returns the first variable f reads that isn't bound in
// b, or reports ok=false if every variable f needs is already bound.
// Constraint.Check uses this to distinguish a constraint-time reference
// to a variable the tree never bound for this binding (a fatal
// programming error, spec.md §7 item 2) from the ordinary §4.2
// filter-pushdown "missing => false" Check itself applies during
// expansion.
func (f *Filter) UnboundVariable(b Binding) (v Variable, ok bool) {
	for _, v := range f.GetInvolvedVariables() {
		if _, bound := b.GetProjection(v); !bound {
			return v, true
		}
	}
	return Variable{}, false
}

// GetInvolvedVariables returns the set of variables f reads, used by the
// binding expander to push a filter as soon as all of its variables are
// bound (spec.md §4.2 P4).
func (f *Filter) GetInvolvedVariables() []Variable {
	var vars []Variable
	switch f.Kind {
	case FilterO2E:
		vars = []Variable{ObjectVar(f.Object), EventVar(f.Event)}
	case FilterO2O:
		vars = []Variable{ObjectVar(f.Object), ObjectVar(f.OtherObject)}
	case FilterTimeBetweenEvents:
		vars = []Variable{EventVar(f.FromEvent), EventVar(f.ToEvent)}
	case FilterEventAttributeValue:
		vars = []Variable{EventVar(f.Event)}
	case FilterObjectAttributeValue:
		vars = []Variable{ObjectVar(f.Object)}
		if f.AtTime.Kind == AtEvent {
			vars = append(vars, EventVar(f.AtTime.Event))
		}
	}
	return vars
}
