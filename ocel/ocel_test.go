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
	"testing"
	"time"
)

func sample() *OCEL {
	t0 := time.Unix(0, 0).UTC()
	t1 := t0.Add(120 * time.Second)
	return &OCEL{
		Events: []Event{
			{ID: "e1", Type: "place_order", Time: t0},
			{ID: "e2", Type: "deliver", Time: t1, Relationships: []Relationship{
				{ObjectID: "o1", Qualifier: "item"},
			}},
		},
		Objects: []Object{
			{ID: "o1", Type: "Item"},
			{ID: "o2", Type: "Order"},
		},
		EventTypes:  []EventType{{Name: "place_order"}, {Name: "deliver"}},
		ObjectTypes: []ObjectType{{Name: "Item"}, {Name: "Order"}},
	}
}

func TestLinkBasic(t *testing.T) {
	iocel, err := Link(sample())
	if err != nil {
		t.Fatal(err)
	}
	if iocel.EventCount() != 2 || iocel.ObjectCount() != 2 {
		t.Fatalf("unexpected counts: %d events, %d objects", iocel.EventCount(), iocel.ObjectCount())
	}
	orders := iocel.EventsOfType("place_order")
	if len(orders) != 1 || iocel.EventByIndex(orders[0]).ID != "e1" {
		t.Fatalf("EventsOfType(place_order) = %v", orders)
	}
	items := iocel.ObjectsOfType("Item")
	if len(items) != 1 || iocel.ObjectByIndex(items[0]).ID != "o1" {
		t.Fatalf("ObjectsOfType(Item) = %v", items)
	}
	both := iocel.EventsOfType("place_order", "deliver")
	if len(both) != 2 {
		t.Fatalf("EventsOfType(both) = %v", both)
	}
	quals := iocel.ObjectRelsPerType("Item")
	_ = quals // Item objects have no outgoing relationships in this fixture
}

func TestLinkDuplicateEventID(t *testing.T) {
	raw := sample()
	raw.Events = append(raw.Events, Event{ID: "e1", Type: "place_order"})
	if _, err := Link(raw); err == nil {
		t.Fatal("expected error for duplicate event id")
	}
}

func TestLinkDuplicateObjectID(t *testing.T) {
	raw := sample()
	raw.Objects = append(raw.Objects, Object{ID: "o1", Type: "Item"})
	if _, err := Link(raw); err == nil {
		t.Fatal("expected error for duplicate object id")
	}
}

func TestEventsOfTypeUnknown(t *testing.T) {
	iocel, err := Link(sample())
	if err != nil {
		t.Fatal(err)
	}
	if got := iocel.EventsOfType("nonexistent"); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestAllIndices(t *testing.T) {
	iocel, err := Link(sample())
	if err != nil {
		t.Fatal(err)
	}
	evs := iocel.AllEventIndices()
	if len(evs) != 2 || evs[0] != 0 || evs[1] != 1 {
		t.Fatalf("AllEventIndices() = %v, want [0 1]", evs)
	}
	obs := iocel.AllObjectIndices()
	if len(obs) != 2 || obs[0] != 0 || obs[1] != 1 {
		t.Fatalf("AllObjectIndices() = %v, want [0 1]", obs)
	}
}
