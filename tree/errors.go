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

import goerrors "gopkg.in/src-d/go-errors.v1"

// ErrUnboundVariable is the fatal "binding-time programming error" class
// spec.md §7 item 2 requires: a Constraint reaching for a variable the
// current binding never bound. Constraint.Check raises it directly
// (it lives here, not in package eval, so Check can panic it without an
// import cycle); package eval re-exports it as eval.ErrUnboundVariable
// and recovers it at the per-binding goroutine boundary.
var ErrUnboundVariable = goerrors.NewKind("tree: unbound variable referenced by constraint: %s")
