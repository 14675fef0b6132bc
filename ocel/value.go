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

import "time"

// ValueFilterKind tags which of ValueFilter's bound kinds is active.
type ValueFilterKind int

const (
	FilterFloat ValueFilterKind = iota
	FilterInteger
	FilterBoolean
	FilterString
	FilterTime
)

// ValueFilter is a predicate over a single AttributeValue. Exactly one
// of the Kind-tagged bound groups is meaningful.
//
// Bounds are inclusive; a nil/zero bound on Min or Max means "unbounded"
// in that direction. A ValueFilter of one Kind checked against an
// AttributeValue of a different Kind always returns false — there is no
// implicit numeric coercion between Float and Integer.
type ValueFilter struct {
	Kind ValueFilterKind

	FloatMin, FloatMax *float64
	IntMin, IntMax     *int64
	IsTrue             bool
	IsIn               []string
	TimeFrom, TimeTo   *time.Time
}

// Check reports whether val satisfies the filter, per spec.md §4.3.
func (f *ValueFilter) Check(val AttributeValue) bool {
	switch f.Kind {
	case FilterFloat:
		if val.Kind != KindFloat {
			return false
		}
		if f.FloatMin != nil && val.Float < *f.FloatMin {
			return false
		}
		if f.FloatMax != nil && val.Float > *f.FloatMax {
			return false
		}
		return true
	case FilterInteger:
		if val.Kind != KindInteger {
			return false
		}
		if f.IntMin != nil && val.Integer < *f.IntMin {
			return false
		}
		if f.IntMax != nil && val.Integer > *f.IntMax {
			return false
		}
		return true
	case FilterBoolean:
		if val.Kind != KindBoolean {
			return false
		}
		return f.IsTrue == val.Boolean
	case FilterString:
		if val.Kind != KindString {
			return false
		}
		for _, s := range f.IsIn {
			if s == val.String {
				return true
			}
		}
		return false
	case FilterTime:
		if val.Kind != KindTime {
			return false
		}
		if f.TimeFrom != nil && val.Time.Before(*f.TimeFrom) {
			return false
		}
		if f.TimeTo != nil && val.Time.After(*f.TimeTo) {
			return false
		}
		return true
	default:
		return false
	}
}
