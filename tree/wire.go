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
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/aarkue/bindbox/ocel"
)

// --- Variable -------------------------------------------------------

type wireVariable struct {
	Type  string `json:"type"`
	Event *int   `json:"event,omitempty"`
	Obj   *int   `json:"object,omitempty"`
}

func (v Variable) MarshalJSON() ([]byte, error) {
	w := wireVariable{}
	if v.Kind == EventVarKind {
		w.Type = "event"
		n := int(v.Event)
		w.Event = &n
	} else {
		w.Type = "object"
		n := int(v.Obj)
		w.Obj = &n
	}
	return json.Marshal(w)
}

func (v *Variable) UnmarshalJSON(data []byte) error {
	var w wireVariable
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "event":
		if w.Event == nil {
			return fmt.Errorf("tree: variable type %q missing event", w.Type)
		}
		*v = EventVar(EventVariable(*w.Event))
	case "object":
		if w.Obj == nil {
			return fmt.Errorf("tree: variable type %q missing object", w.Type)
		}
		*v = ObjectVar(ObjectVariable(*w.Obj))
	default:
		return fmt.Errorf("tree: unknown variable type %q", w.Type)
	}
	return nil
}

// --- ObjectValueFilterTimepoint -------------------------------------

type wireTimepoint struct {
	Type  string        `json:"type"`
	Event *EventVariable `json:"event,omitempty"`
}

func (t ObjectValueFilterTimepoint) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case AtAlways:
		return json.Marshal(wireTimepoint{Type: "always"})
	case AtSometime:
		return json.Marshal(wireTimepoint{Type: "sometime"})
	case AtEvent:
		ev := t.Event
		return json.Marshal(wireTimepoint{Type: "atEvent", Event: &ev})
	default:
		return nil, fmt.Errorf("tree: unknown timepoint kind %d", t.Kind)
	}
}

func (t *ObjectValueFilterTimepoint) UnmarshalJSON(data []byte) error {
	var w wireTimepoint
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "always":
		*t = ObjectValueFilterTimepoint{Kind: AtAlways}
	case "sometime":
		*t = ObjectValueFilterTimepoint{Kind: AtSometime}
	case "atEvent":
		if w.Event == nil {
			return fmt.Errorf("tree: timepoint type atEvent missing event")
		}
		*t = ObjectValueFilterTimepoint{Kind: AtEvent, Event: *w.Event}
	default:
		return fmt.Errorf("tree: unknown timepoint type %q", w.Type)
	}
	return nil
}

// --- Filter -----------------------------------------------------------

type wireFilter struct {
	Type string `json:"type"`

	Object      *ObjectVariable `json:"object,omitempty"`
	Event       *EventVariable  `json:"event,omitempty"`
	OtherObject *ObjectVariable `json:"otherObject,omitempty"`
	Qualifier   Qualifier       `json:"qualifier,omitempty"`

	FromEvent  *EventVariable `json:"fromEvent,omitempty"`
	ToEvent    *EventVariable `json:"toEvent,omitempty"`
	MinSeconds *float64       `json:"minSeconds,omitempty"`
	MaxSeconds *float64       `json:"maxSeconds,omitempty"`

	AttributeName string                      `json:"attributeName,omitempty"`
	ValueFilter   *ocel.ValueFilter            `json:"valueFilter,omitempty"`
	AtTime        *ObjectValueFilterTimepoint `json:"atTime,omitempty"`
}

func (f Filter) MarshalJSON() ([]byte, error) {
	w := wireFilter{}
	switch f.Kind {
	case FilterO2E:
		w.Type = "o2e"
		w.Object, w.Event, w.Qualifier = &f.Object, &f.Event, f.Qualifier
	case FilterO2O:
		w.Type = "o2o"
		w.Object, w.OtherObject, w.Qualifier = &f.Object, &f.OtherObject, f.Qualifier
	case FilterTimeBetweenEvents:
		w.Type = "timeBetweenEvents"
		w.FromEvent, w.ToEvent = &f.FromEvent, &f.ToEvent
		w.MinSeconds, w.MaxSeconds = f.MinSeconds, f.MaxSeconds
	case FilterEventAttributeValue:
		w.Type = "eventAttributeValueFilter"
		w.Event = &f.Event
		w.AttributeName = f.AttributeName
		w.ValueFilter = &f.ValueFilter
	case FilterObjectAttributeValue:
		w.Type = "objectAttributeValueFilter"
		w.Object = &f.Object
		w.AttributeName = f.AttributeName
		w.ValueFilter = &f.ValueFilter
		w.AtTime = &f.AtTime
	default:
		return nil, fmt.Errorf("tree: unknown filter kind %d", f.Kind)
	}
	return json.Marshal(w)
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	var w wireFilter
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "o2e":
		*f = Filter{Kind: FilterO2E, Object: deref(w.Object), Event: deref(w.Event), Qualifier: w.Qualifier}
	case "o2o":
		*f = Filter{Kind: FilterO2O, Object: deref(w.Object), OtherObject: deref(w.OtherObject), Qualifier: w.Qualifier}
	case "timeBetweenEvents":
		*f = Filter{
			Kind: FilterTimeBetweenEvents, FromEvent: deref(w.FromEvent), ToEvent: deref(w.ToEvent),
			MinSeconds: w.MinSeconds, MaxSeconds: w.MaxSeconds,
		}
	case "eventAttributeValueFilter":
		if w.ValueFilter == nil {
			return fmt.Errorf("tree: eventAttributeValueFilter missing valueFilter")
		}
		*f = Filter{Kind: FilterEventAttributeValue, Event: deref(w.Event), AttributeName: w.AttributeName, ValueFilter: *w.ValueFilter}
	case "objectAttributeValueFilter":
		if w.ValueFilter == nil || w.AtTime == nil {
			return fmt.Errorf("tree: objectAttributeValueFilter missing valueFilter/atTime")
		}
		*f = Filter{
			Kind: FilterObjectAttributeValue, Object: deref(w.Object), AttributeName: w.AttributeName,
			ValueFilter: *w.ValueFilter, AtTime: *w.AtTime,
		}
	default:
		return fmt.Errorf("tree: unknown filter type %q", w.Type)
	}
	return nil
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// --- SizeFilter ---------------------------------------------------------

type wireEdgeVar struct {
	Edge string   `json:"edge"`
	Var  Variable `json:"var"`
}

type wireSizeFilter struct {
	Type string `json:"type"`

	ChildName string `json:"childName,omitempty"`
	Min       *int   `json:"min,omitempty"`
	Max       *int   `json:"max,omitempty"`

	ChildNames []string `json:"childNames,omitempty"`

	ChildNameWithVarName []wireEdgeVar `json:"childNameWithVarName,omitempty"`
}

func (sf SizeFilter) MarshalJSON() ([]byte, error) {
	w := wireSizeFilter{}
	switch sf.Kind {
	case SizeFilterNumChilds:
		w.Type = "numChilds"
		w.ChildName, w.Min, w.Max = sf.Edge, sf.Min, sf.Max
	case SizeFilterBindingSetEqual:
		w.Type = "bindingSetEqual"
		w.ChildNames = sf.Edges
	case SizeFilterBindingSetProjectionEqual:
		w.Type = "bindingSetProjectionEqual"
		w.ChildNameWithVarName = make([]wireEdgeVar, len(sf.EdgeVars))
		for i, ev := range sf.EdgeVars {
			w.ChildNameWithVarName[i] = wireEdgeVar{Edge: ev.Edge, Var: ev.Var}
		}
	default:
		return nil, fmt.Errorf("tree: unknown size filter kind %d", sf.Kind)
	}
	return json.Marshal(w)
}

func (sf *SizeFilter) UnmarshalJSON(data []byte) error {
	var w wireSizeFilter
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "numChilds":
		*sf = SizeFilter{Kind: SizeFilterNumChilds, Edge: w.ChildName, Min: w.Min, Max: w.Max}
	case "bindingSetEqual":
		*sf = SizeFilter{Kind: SizeFilterBindingSetEqual, Edges: w.ChildNames}
	case "bindingSetProjectionEqual":
		evs := make([]edgeVar, len(w.ChildNameWithVarName))
		for i, ev := range w.ChildNameWithVarName {
			evs[i] = edgeVar{Edge: ev.Edge, Var: ev.Var}
		}
		*sf = SizeFilter{Kind: SizeFilterBindingSetProjectionEqual, EdgeVars: evs}
	default:
		return fmt.Errorf("tree: unknown size filter type %q", w.Type)
	}
	return nil
}

// --- Constraint ---------------------------------------------------------

type wireConstraint struct {
	Type string `json:"type"`

	Filter     *Filter     `json:"filter,omitempty"`
	SizeFilter *SizeFilter `json:"sizeFilter,omitempty"`

	ChildNames []string `json:"childNames,omitempty"`
}

func (c Constraint) MarshalJSON() ([]byte, error) {
	w := wireConstraint{ChildNames: c.ChildNames}
	switch c.Kind {
	case ConstraintFilter:
		w.Type, w.Filter = "filter", c.Filter
	case ConstraintSizeFilter:
		w.Type, w.SizeFilter = "sizeFilter", c.SizeFilter
	case ConstraintSAT:
		w.Type = "sat"
	case ConstraintNOT:
		w.Type = "not"
	case ConstraintOR:
		w.Type = "or"
	case ConstraintAND:
		w.Type = "and"
	default:
		return nil, fmt.Errorf("tree: unknown constraint kind %d", c.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the "type" discriminator first and then decodes
// only the payload that type names: the "filter" key for a filter
// constraint, the "sizeFilter" key for a size-filter constraint, and
// "childNames" for sat/not/or/and.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var head struct {
		Type       string          `json:"type"`
		Filter     json.RawMessage `json:"filter"`
		SizeFilter json.RawMessage `json:"sizeFilter"`
		ChildNames []string        `json:"childNames"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case "filter":
		var f Filter
		if err := json.Unmarshal(head.Filter, &f); err != nil {
			return err
		}
		*c = Constraint{Kind: ConstraintFilter, Filter: &f}
	case "sizeFilter":
		var sf SizeFilter
		if err := json.Unmarshal(head.SizeFilter, &sf); err != nil {
			return err
		}
		*c = Constraint{Kind: ConstraintSizeFilter, SizeFilter: &sf}
	case "sat":
		*c = Constraint{Kind: ConstraintSAT, ChildNames: head.ChildNames}
	case "not":
		*c = Constraint{Kind: ConstraintNOT, ChildNames: head.ChildNames}
	case "or":
		*c = Constraint{Kind: ConstraintOR, ChildNames: head.ChildNames}
	case "and":
		*c = Constraint{Kind: ConstraintAND, ChildNames: head.ChildNames}
	default:
		return fmt.Errorf("tree: unknown constraint type %q", head.Type)
	}
	return nil
}

// --- BindingBoxTreeNode / BindingBoxTree -------------------------------

type wireNode struct {
	Type     string       `json:"type"`
	Box      *BindingBox  `json:"box,omitempty"`
	Children []int        `json:"children,omitempty"`
	C1       *int         `json:"c1,omitempty"`
	C2       *int         `json:"c2,omitempty"`
}

type wireBindingBox struct {
	NewEventVars  NewEventVariables  `json:"newEventVars"`
	NewObjectVars NewObjectVariables `json:"newObjectVars"`
	Filters       []Filter           `json:"filters"`
	SizeFilters   []SizeFilter       `json:"sizeFilters"`
	Constraints   []Constraint       `json:"constraints"`
}

func (b BindingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireBindingBox{b.NewEventVars, b.NewObjectVars, b.Filters, b.SizeFilters, b.Constraints})
}

func (b *BindingBox) UnmarshalJSON(data []byte) error {
	var w wireBindingBox
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = BindingBox{w.NewEventVars, w.NewObjectVars, w.Filters, w.SizeFilters, w.Constraints}
	return nil
}

func (n BindingBoxTreeNode) MarshalJSON() ([]byte, error) {
	w := wireNode{}
	switch n.Kind {
	case NodeBox:
		w.Type, w.Box, w.Children = "box", &n.Box, n.Children
	case NodeOR:
		w.Type, w.C1, w.C2 = "or", &n.C1, &n.C2
	case NodeAND:
		w.Type, w.C1, w.C2 = "and", &n.C1, &n.C2
	case NodeNOT:
		w.Type, w.C1 = "not", &n.C1
	default:
		return nil, fmt.Errorf("tree: unknown node kind %d", n.Kind)
	}
	return json.Marshal(w)
}

func (n *BindingBoxTreeNode) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "box":
		if w.Box == nil {
			return fmt.Errorf("tree: box node missing box")
		}
		*n = BindingBoxTreeNode{Kind: NodeBox, Box: *w.Box, Children: w.Children}
	case "or":
		*n = BindingBoxTreeNode{Kind: NodeOR, C1: deref(w.C1), C2: deref(w.C2)}
	case "and":
		*n = BindingBoxTreeNode{Kind: NodeAND, C1: deref(w.C1), C2: deref(w.C2)}
	case "not":
		*n = BindingBoxTreeNode{Kind: NodeNOT, C1: deref(w.C1)}
	default:
		return fmt.Errorf("tree: unknown node type %q", w.Type)
	}
	return nil
}

type wireEdgeName struct {
	Parent int    `json:"parent"`
	Child  int    `json:"child"`
	Name   string `json:"name"`
}

type wireTree struct {
	Nodes     []BindingBoxTreeNode `json:"nodes"`
	EdgeNames []wireEdgeName       `json:"edgeNames"`
}

func (t BindingBoxTree) MarshalJSON() ([]byte, error) {
	w := wireTree{Nodes: t.Nodes}
	for k, name := range t.edgeNames {
		w.EdgeNames = append(w.EdgeNames, wireEdgeName{Parent: k.Parent, Child: k.Child, Name: name})
	}
	return json.Marshal(w)
}

func (t *BindingBoxTree) UnmarshalJSON(data []byte) error {
	var w wireTree
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Nodes = w.Nodes
	t.edgeNames = make(map[edgeKey]string, len(w.EdgeNames))
	for _, e := range w.EdgeNames {
		t.edgeNames[edgeKey{e.Parent, e.Child}] = e.Name
	}
	return nil
}

// DecodeTree parses the JSON wire representation of a BindingBoxTree,
// per spec.md §6.
func DecodeTree(data []byte) (*BindingBoxTree, error) {
	var t BindingBoxTree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// EncodeTree serializes t to its JSON wire representation.
func EncodeTree(t *BindingBoxTree) ([]byte, error) {
	return json.Marshal(t)
}

// LoadYAML parses a YAML fixture into a BindingBoxTree by round-tripping
// it through JSON via sigs.k8s.io/yaml, mirroring the teacher's
// definition.json|definition.yaml dual-format loader convention.
func LoadYAML(data []byte) (*BindingBoxTree, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("tree: convert yaml fixture: %w", err)
	}
	return DecodeTree(js)
}
