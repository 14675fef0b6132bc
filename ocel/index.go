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

package ocel

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// EventIndex and ObjectIndex are opaque, compact integer addresses into
// an IOCEL. They are only ever produced by an IOCEL itself (via
// events_of_type/objects_of_type or by iterating EventCount/ObjectCount)
// — callers never construct one out of thin air.
type EventIndex int

type ObjectIndex int

// IOCEL is the immutable, indexed view of an OCEL that the evaluator
// queries. All accessors are pure, side-effect free, and never fail:
// passing an index that Link did not hand out is a programming error
// and panics, per spec.
//
// An IOCEL is built once by Link and then borrowed immutably for the
// entire lifetime of one tree evaluation (see package eval).
type IOCEL struct {
	events  []Event
	objects []Object

	eventsOfType  map[string][]EventIndex
	objectsOfType map[string][]ObjectIndex

	// objectRelsPerType[t] is the set of relationship qualifiers that
	// appear on any object of type t, which lets callers (and tests)
	// enumerate the qualifier vocabulary without scanning every object.
	objectRelsPerType map[string][]string
}

// Link builds an IOCEL from a raw OCEL. This is the one pass over the
// unindexed log; afterwards the indexed form owns the data and the
// caller's OCEL value can be discarded.
//
// The four independent index builds (event-by-id/object-by-id duplicate
// checks, events-of-type, objects-of-type, object-relationships-per-type)
// are fanned out over goroutines, mirroring the rayon par_iter fan-out
// used by the original implementation's link_ocel_info.
func Link(raw *OCEL) (*IOCEL, error) {
	iocel := &IOCEL{
		events:            raw.Events,
		objects:           raw.Objects,
		eventsOfType:      make(map[string][]EventIndex, len(raw.EventTypes)),
		objectsOfType:     make(map[string][]ObjectIndex, len(raw.ObjectTypes)),
		objectRelsPerType: make(map[string][]string, len(raw.ObjectTypes)),
	}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	wg.Add(4)

	go func() {
		defer wg.Done()
		errs[0] = checkUniqueEventIDs(raw.Events)
	}()
	go func() {
		defer wg.Done()
		errs[1] = checkUniqueObjectIDs(raw.Objects)
	}()
	go func() {
		defer wg.Done()
		iocel.eventsOfType = indexEventsOfType(raw.Events)
	}()
	go func() {
		defer wg.Done()
		iocel.objectsOfType, iocel.objectRelsPerType = indexObjectsOfType(raw.Objects)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return iocel, nil
}

func checkUniqueEventIDs(events []Event) error {
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.ID]; ok {
			return fmt.Errorf("ocel: duplicate event id %q", ev.ID)
		}
		seen[ev.ID] = struct{}{}
	}
	return nil
}

func checkUniqueObjectIDs(objects []Object) error {
	seen := make(map[string]struct{}, len(objects))
	for _, ob := range objects {
		if _, ok := seen[ob.ID]; ok {
			return fmt.Errorf("ocel: duplicate object id %q", ob.ID)
		}
		seen[ob.ID] = struct{}{}
	}
	return nil
}

func indexEventsOfType(events []Event) map[string][]EventIndex {
	m := make(map[string][]EventIndex)
	for i, ev := range events {
		m[ev.Type] = append(m[ev.Type], EventIndex(i))
	}
	return m
}

func indexObjectsOfType(objects []Object) (map[string][]ObjectIndex, map[string][]string) {
	byType := make(map[string][]ObjectIndex)
	quals := make(map[string]map[string]struct{})
	for i, ob := range objects {
		byType[ob.Type] = append(byType[ob.Type], ObjectIndex(i))
		set := quals[ob.Type]
		if set == nil {
			set = make(map[string]struct{})
			quals[ob.Type] = set
		}
		for _, rel := range ob.Relationships {
			set[rel.Qualifier] = struct{}{}
		}
	}
	relsPerType := make(map[string][]string, len(quals))
	for t, set := range quals {
		names := make([]string, 0, len(set))
		for q := range set {
			names = append(names, q)
		}
		slices.Sort(names)
		relsPerType[t] = names
	}
	return byType, relsPerType
}

// EventByIndex returns the event addressed by idx. idx must have been
// obtained from this IOCEL (e.g. via EventsOfType); any other value is a
// programming error and panics.
func (o *IOCEL) EventByIndex(idx EventIndex) *Event {
	return &o.events[idx]
}

// ObjectByIndex returns the object addressed by idx, under the same
// contract as EventByIndex.
func (o *IOCEL) ObjectByIndex(idx ObjectIndex) *Object {
	return &o.objects[idx]
}

// EventsOfType returns the indices of every event whose Type is one of
// typeNames, in ascending index order.
func (o *IOCEL) EventsOfType(typeNames ...string) []EventIndex {
	if len(typeNames) == 1 {
		return o.eventsOfType[typeNames[0]]
	}
	var out []EventIndex
	for _, t := range typeNames {
		out = append(out, o.eventsOfType[t]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ObjectsOfType returns the indices of every object whose Type is one of
// typeNames, in ascending index order.
func (o *IOCEL) ObjectsOfType(typeNames ...string) []ObjectIndex {
	if len(typeNames) == 1 {
		return o.objectsOfType[typeNames[0]]
	}
	var out []ObjectIndex
	for _, t := range typeNames {
		out = append(out, o.objectsOfType[t]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ObjectRelsPerType returns the sorted, de-duplicated set of
// relationship qualifiers observed on any object of type objectType.
func (o *IOCEL) ObjectRelsPerType(objectType string) []string {
	return o.objectRelsPerType[objectType]
}

// EventCount and ObjectCount report the size of the underlying log.
func (o *IOCEL) EventCount() int  { return len(o.events) }
func (o *IOCEL) ObjectCount() int { return len(o.objects) }

// AllEventIndices returns the index of every event in the log, in
// ascending order. Used by the binding expander when a declared
// variable carries no type restriction.
func (o *IOCEL) AllEventIndices() []EventIndex {
	out := make([]EventIndex, len(o.events))
	for i := range out {
		out[i] = EventIndex(i)
	}
	return out
}

// AllObjectIndices returns the index of every object in the log, in
// ascending order. Used by the binding expander when a declared
// variable carries no type restriction.
func (o *IOCEL) AllObjectIndices() []ObjectIndex {
	out := make([]ObjectIndex, len(o.objects))
	for i := range out {
		out[i] = ObjectIndex(i)
	}
	return out
}
