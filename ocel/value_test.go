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
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestValueFilterFloat(t *testing.T) {
	vf := ValueFilter{Kind: FilterFloat, FloatMin: f64(1), FloatMax: f64(10)}
	if !vf.Check(Float(5)) {
		t.Fatal("5 should be in [1,10]")
	}
	if vf.Check(Float(11)) {
		t.Fatal("11 should not be in [1,10]")
	}
	if vf.Check(Integer(5)) {
		t.Fatal("Integer value against Float filter must be false (kind mismatch)")
	}
}

func TestValueFilterIntegerUnbounded(t *testing.T) {
	vf := ValueFilter{Kind: FilterInteger, IntMin: i64(0)}
	if !vf.Check(Integer(1 << 40)) {
		t.Fatal("unbounded max should admit a large integer")
	}
	if vf.Check(Integer(-1)) {
		t.Fatal("-1 should fail min=0")
	}
}

func TestValueFilterBoolean(t *testing.T) {
	vf := ValueFilter{Kind: FilterBoolean, IsTrue: true}
	if !vf.Check(Boolean(true)) || vf.Check(Boolean(false)) {
		t.Fatal("boolean filter mismatch")
	}
}

func TestValueFilterString(t *testing.T) {
	vf := ValueFilter{Kind: FilterString, IsIn: []string{"a", "b"}}
	if !vf.Check(String("a")) || vf.Check(String("c")) {
		t.Fatal("string filter mismatch")
	}
}

func TestValueFilterTime(t *testing.T) {
	from := time.Unix(100, 0).UTC()
	vf := ValueFilter{Kind: FilterTime, TimeFrom: &from}
	if vf.Check(Time(time.Unix(99, 0).UTC())) {
		t.Fatal("should be excluded before from")
	}
	if !vf.Check(Time(time.Unix(100, 0).UTC())) {
		t.Fatal("from bound is inclusive")
	}
}

func TestValueFilterWireRoundTrip(t *testing.T) {
	vf := ValueFilter{Kind: FilterInteger, IntMin: i64(-5000000000), IntMax: i64(5000000000)}
	data, err := json.Marshal(vf)
	if err != nil {
		t.Fatal(err)
	}
	var got ValueFilter
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if *got.IntMin != -5000000000 || *got.IntMax != 5000000000 {
		t.Fatalf("round trip lost precision beyond int32: %+v", got)
	}
}
