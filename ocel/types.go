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

// Package ocel holds the raw object-centric event log types and the
// indexed, read-only view of them (IOCEL) that the binding-box tree
// evaluator queries.
//
// Everything in this package is built once, by an external collaborator
// that has already parsed a log out of JSON/XML/SQLite, and is borrowed
// immutably for the lifetime of one evaluation. None of the types here
// are ever mutated after construction.
package ocel

import "time"

// AttributeKind tags the dynamic type carried by an AttributeValue.
type AttributeKind int

const (
	KindFloat AttributeKind = iota
	KindInteger
	KindBoolean
	KindString
	KindTime
)

// AttributeValue is a typed attribute value: exactly one of the Kind-
// tagged fields is meaningful, selected by Kind.
type AttributeValue struct {
	Kind    AttributeKind
	Float   float64
	Integer int64
	Boolean bool
	String  string
	Time    time.Time
}

func Float(v float64) AttributeValue  { return AttributeValue{Kind: KindFloat, Float: v} }
func Integer(v int64) AttributeValue  { return AttributeValue{Kind: KindInteger, Integer: v} }
func Boolean(v bool) AttributeValue   { return AttributeValue{Kind: KindBoolean, Boolean: v} }
func String(v string) AttributeValue  { return AttributeValue{Kind: KindString, String: v} }
func Time(v time.Time) AttributeValue { return AttributeValue{Kind: KindTime, Time: v} }

// Attribute is a single named, timestamped value on an event or object.
// Objects may carry several Attributes with the same Name at different
// Time values, representing a time-varying attribute.
type Attribute struct {
	Name  string
	Value AttributeValue
	Time  time.Time
}

// Relationship is a qualified, directed link from an event to an object
// or from an object to another object.
type Relationship struct {
	ObjectID string
	Qualifier string
}

// Event is a single timestamped occurrence in the log.
type Event struct {
	ID            string
	Type          string
	Time          time.Time
	Attributes    []Attribute
	Relationships []Relationship
}

// Object is a typed entity referenced by events, carrying its own
// (possibly time-varying) attributes and qualified relationships to
// other objects.
type Object struct {
	ID            string
	Type          string
	Attributes    []Attribute
	Relationships []Relationship
}

// EventType and ObjectType name the event/object type vocabulary of a
// log; the binding-box tree refers to types by these names when
// declaring new variables.
type EventType struct {
	Name string
}

type ObjectType struct {
	Name string
}

// OCEL is the raw, unindexed object-centric event log as produced by an
// external importer. It is never queried directly by the evaluator —
// Link builds the indexed IOCEL view from it.
type OCEL struct {
	Events      []Event
	Objects     []Object
	EventTypes  []EventType
	ObjectTypes []ObjectType
}
