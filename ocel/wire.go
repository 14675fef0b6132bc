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
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// wireValueFilter is the camelCase, tag-discriminated wire shape of a
// ValueFilter (see spec.md §6).
type wireValueFilter struct {
	Type string `json:"type"`

	Min json.Number `json:"min,omitempty"`
	Max json.Number `json:"max,omitempty"`

	IsTrue bool     `json:"isTrue,omitempty"`
	IsIn   []string `json:"isIn,omitempty"`

	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// MarshalJSON implements the wire format from spec.md §6.
func (f ValueFilter) MarshalJSON() ([]byte, error) {
	w := wireValueFilter{}
	switch f.Kind {
	case FilterFloat:
		w.Type = "Float"
		if f.FloatMin != nil {
			w.Min = json.Number(fmt.Sprintf("%g", *f.FloatMin))
		}
		if f.FloatMax != nil {
			w.Max = json.Number(fmt.Sprintf("%g", *f.FloatMax))
		}
	case FilterInteger:
		w.Type = "Integer"
		if f.IntMin != nil {
			w.Min = json.Number(fmt.Sprintf("%d", *f.IntMin))
		}
		if f.IntMax != nil {
			w.Max = json.Number(fmt.Sprintf("%d", *f.IntMax))
		}
	case FilterBoolean:
		w.Type = "Boolean"
		w.IsTrue = f.IsTrue
	case FilterString:
		w.Type = "String"
		w.IsIn = f.IsIn
	case FilterTime:
		w.Type = "Time"
		w.From = f.TimeFrom
		w.To = f.TimeTo
	default:
		return nil, fmt.Errorf("ocel: unknown ValueFilter kind %d", f.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire format from spec.md §6.
//
// Integer bounds are decoded through spf13/cast rather than a fixed
// 32-bit integer type: this resolves spec.md §9 Open Question O4 by
// accepting whatever magnitude the wire sends and comparing it as int64
// throughout, so there is no 32-bit truncation step to overflow.
func (f *ValueFilter) UnmarshalJSON(data []byte) error {
	var w wireValueFilter
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "Float":
		f.Kind = FilterFloat
		if w.Min != "" {
			v, err := cast.ToFloat64E(w.Min.String())
			if err != nil {
				return fmt.Errorf("ocel: Float filter min: %w", err)
			}
			f.FloatMin = &v
		}
		if w.Max != "" {
			v, err := cast.ToFloat64E(w.Max.String())
			if err != nil {
				return fmt.Errorf("ocel: Float filter max: %w", err)
			}
			f.FloatMax = &v
		}
	case "Integer":
		f.Kind = FilterInteger
		if w.Min != "" {
			v, err := cast.ToInt64E(w.Min.String())
			if err != nil {
				return fmt.Errorf("ocel: Integer filter min: %w", err)
			}
			f.IntMin = &v
		}
		if w.Max != "" {
			v, err := cast.ToInt64E(w.Max.String())
			if err != nil {
				return fmt.Errorf("ocel: Integer filter max: %w", err)
			}
			f.IntMax = &v
		}
	case "Boolean":
		f.Kind = FilterBoolean
		f.IsTrue = w.IsTrue
	case "String":
		f.Kind = FilterString
		f.IsIn = w.IsIn
	case "Time":
		f.Kind = FilterTime
		f.TimeFrom = w.From
		f.TimeTo = w.To
	default:
		return fmt.Errorf("ocel: unknown ValueFilter type %q", w.Type)
	}
	return nil
}

// MarshalJSON/UnmarshalJSON for AttributeValue use the same tagged
// shape, for use by test fixtures that embed raw log data.
type wireAttributeValue struct {
	Type    string    `json:"type"`
	Float   float64   `json:"float,omitempty"`
	Integer int64     `json:"integer,omitempty"`
	Boolean bool      `json:"boolean,omitempty"`
	String  string    `json:"string,omitempty"`
	Time    time.Time `json:"time,omitempty"`
}

func (v AttributeValue) MarshalJSON() ([]byte, error) {
	w := wireAttributeValue{}
	switch v.Kind {
	case KindFloat:
		w.Type, w.Float = "Float", v.Float
	case KindInteger:
		w.Type, w.Integer = "Integer", v.Integer
	case KindBoolean:
		w.Type, w.Boolean = "Boolean", v.Boolean
	case KindString:
		w.Type, w.String = "String", v.String
	case KindTime:
		w.Type, w.Time = "Time", v.Time
	default:
		return nil, fmt.Errorf("ocel: unknown AttributeValue kind %d", v.Kind)
	}
	return json.Marshal(w)
}

func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var w wireAttributeValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "Float":
		*v = Float(w.Float)
	case "Integer":
		*v = Integer(w.Integer)
	case "Boolean":
		*v = Boolean(w.Boolean)
	case "String":
		*v = String(w.String)
	case "Time":
		*v = Time(w.Time)
	default:
		return fmt.Errorf("ocel: unknown AttributeValue type %q", w.Type)
	}
	return nil
}
