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

package bindbox

import (
	"github.com/aarkue/bindbox/eval"
	"github.com/aarkue/bindbox/ocel"
	"github.com/aarkue/bindbox/tree"
)

// Link builds an indexed, immutable view of a raw OCEL. See ocel.Link.
func Link(raw *ocel.OCEL) (*ocel.IOCEL, error) {
	return ocel.Link(raw)
}

// EvaluateBoxTree evaluates t against log, returning every
// (node, binding, violation?) triple the tree produces. Set
// measurePerformance to gather the optional ExecStats aggregate
// (Result.Stats is nil otherwise).
func EvaluateBoxTree(t *tree.BindingBoxTree, log *ocel.IOCEL, measurePerformance bool) (eval.Result, error) {
	return eval.Evaluate(t, log, measurePerformance)
}

// DecodeTree parses the JSON wire representation of a BindingBoxTree.
func DecodeTree(data []byte) (*tree.BindingBoxTree, error) {
	return tree.DecodeTree(data)
}

// EncodeResults serializes an evaluation Result to its JSON wire shape.
func EncodeResults(res eval.Result) ([]byte, error) {
	return eval.EncodeResults(res)
}
