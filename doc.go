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

// Package bindbox evaluates Binding Box Trees — declarative,
// tree-shaped constraint queries — against an indexed Object-Centric
// Event Log.
//
// A caller links a raw log with Link, decodes or builds a
// BindingBoxTree, and hands both to EvaluateBoxTree. The heavy lifting
// lives in the ocel, tree and eval subpackages; this package is a thin
// facade over them.
package bindbox
