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

package eval

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

// ExecStats is the optional performance aggregate gathered when
// measure_performance is requested, grounded on plan/stats.go's
// ExecStats/atomicAdd idiom: plain int64 counters updated with
// sync/atomic rather than guarded by a mutex, since they are touched
// from every per-binding goroutine on the hot path.
type ExecStats struct {
	RunID uuid.UUID

	NodesVisited     int64
	BindingsExpanded int64

	start   time.Time
	Elapsed time.Duration
}

func newExecStats() *ExecStats {
	return &ExecStats{RunID: uuid.New(), start: time.Now()}
}

func (e *ExecStats) addNodesVisited(n int64)     { atomic.AddInt64(&e.NodesVisited, n) }
func (e *ExecStats) addBindingsExpanded(n int64) { atomic.AddInt64(&e.BindingsExpanded, n) }

func (e *ExecStats) finish() { e.Elapsed = time.Since(e.start) }

// traceNode starts a span for evaluating node nodeIdx, when a non-noop
// opentracing.Tracer is globally registered. Returns a no-op Span
// otherwise, so the common case of no tracer
// configured costs a single interface check rather than a branch at
// every call site.
func traceNode(nodeIdx int) opentracing.Span {
	tracer := opentracing.GlobalTracer()
	span := tracer.StartSpan("eval.evalNode")
	span.SetTag("node_idx", nodeIdx)
	return span
}
