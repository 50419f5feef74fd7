/*
Copyright © 2019 the srgtools authors.
This file is part of srgtools.

srgtools is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

srgtools is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with srgtools.  If not, see <http://www.gnu.org/licenses/>.
*/

package merge

import (
	"math"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/srgtools/srg"
)

func row(code, county int, r, c int64, ratio float64) srg.Row {
	return srg.Row{
		Code:       code,
		Key:        srg.Key{County: county, Primary: r, Secondary: c},
		Ratio:      ratio,
		Annotation: srg.Annotation{GapfillCode: -1},
	}
}

func counties(rows ...srg.Row) *srg.Counties {
	cs := srg.NewCounties()
	for _, r := range rows {
		cs.Add(r)
	}
	return cs
}

func mustEquation(t *testing.T, f ...float64) *Equation {
	eq, err := NewEquation(f...)
	if err != nil {
		t.Fatal(err)
	}
	return eq
}

func TestMergeIdentity(t *testing.T) {
	in := counties(
		row(100, 1001, 1, 1, 0.25),
		row(100, 1001, 1, 2, 0.75),
		row(100, 1003, 2, 2, 1),
	)
	out, err := MergeCounties([]*srg.Counties{in}, mustEquation(t, 1.0), 300)
	if err != nil {
		t.Fatal(err)
	}
	want := []srg.Row{
		row(300, 1001, 1, 1, 0.25),
		row(300, 1001, 1, 2, 0.75),
		row(300, 1003, 2, 2, 1),
	}
	want[0].Comment = "Note: Only surrogate 100 is available for this county\t0.25"
	want[1].Comment = "Note: Only surrogate 100 is available for this county\t1.0"
	want[2].Comment = "Note: Only surrogate 100 is available for this county\t1.0"
	if have := out.Rows(); !reflect.DeepEqual(have, want) {
		t.Error(pretty.Diff(have, want))
	}
}

func TestMergeSingleSourceIgnoresFactor(t *testing.T) {
	in := counties(row(100, 1001, 1, 1, 0.4))
	out, err := MergeCounties([]*srg.Counties{in}, mustEquation(t, 0.5), 300)
	if err != nil {
		t.Fatal(err)
	}
	if r := out.Rows()[0].Ratio; r != 0.4 {
		t.Errorf("ratio: have %g, want 0.4", r)
	}
}

func TestMergeMatching(t *testing.T) {
	set1 := counties(
		row(100, 1001, 1, 1, 0.25),
		row(100, 1001, 1, 2, 0.75),
		row(100, 1003, 2, 2, 1),
	)
	set2 := counties(
		row(110, 1001, 1, 1, 0.5),
		row(110, 1001, 1, 3, 0.5),
		row(110, 1005, 3, 3, 1),
	)
	out, err := MergeCounties([]*srg.Counties{set1, set2}, mustEquation(t, 0.5, 0.5), 300)
	if err != nil {
		t.Fatal(err)
	}
	want := []srg.Row{
		row(300, 1001, 1, 1, 0.375),
		row(300, 1001, 1, 2, 0.375),
		row(300, 1001, 1, 3, 0.25),
		row(300, 1003, 2, 2, 0.5),
		row(300, 1005, 3, 3, 0.5),
	}
	want[0].Comment = "0.5\t0.25\t0.5\t0.5\t\t0.375"
	want[1].Comment = "0.5\t0.75\t0.5\t0.0\t\t0.75"
	want[2].Comment = "0.5\t0.0\t0.5\t0.5\t\t1.0"
	want[3].Comment = "0.5\t1.0\t0.5\t0.0\t\t0.5"
	want[4].Comment = "0.5\t0.0\t0.5\t1.0\t\t0.5"
	if have := out.Rows(); !reflect.DeepEqual(have, want) {
		t.Error(pretty.Diff(have, want))
	}
}

func TestMergeSumInvariant(t *testing.T) {
	var rows1, rows2 []srg.Row
	for i := int64(0); i < 20; i++ {
		rows1 = append(rows1, row(100, 1001, i, i%3, math.Sin(float64(i))*math.Sin(float64(i))/10))
		rows2 = append(rows2, row(110, 1001, i, i%3, math.Cos(float64(i))*math.Cos(float64(i))/10))
	}
	const f1, f2 = 0.3, 0.7
	out, err := MergeCounties([]*srg.Counties{counties(rows1...), counties(rows2...)}, mustEquation(t, f1, f2), 300)
	if err != nil {
		t.Fatal(err)
	}
	have := out.Get(1001).Rows
	if len(have) != len(rows1) {
		t.Fatalf("have %d rows, want %d", len(have), len(rows1))
	}
	want := make(map[srg.Key]float64)
	for i := range rows1 {
		want[rows1[i].Key] = f1*rows1[i].Ratio + f2*rows2[i].Ratio
	}
	for _, r := range have {
		if math.Abs(r.Ratio-want[r.Key]) > 1e-9 {
			t.Errorf("%v: have %g, want %g", r.Key, r.Ratio, want[r.Key])
		}
	}
	for i := 1; i < len(have); i++ {
		if !have[i-1].Key.Less(have[i].Key) {
			t.Errorf("rows are not sorted at %d", i)
		}
	}
}

func TestMergeTooManySets(t *testing.T) {
	cs := counties(row(100, 1001, 1, 1, 1))
	_, err := MergeCounties([]*srg.Counties{cs, cs, cs}, mustEquation(t, 0.5, 0.5), 300)
	if err == nil {
		t.Error("expected an error for three sets")
	}
}

func TestEquation(t *testing.T) {
	eq := mustEquation(t, 0.25, 0.5)
	v, err := eq.Evaluate(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2.5 {
		t.Errorf("have %g, want 2.5", v)
	}
	if eq.String() != "0.25*v1 + 0.5*v2" {
		t.Errorf("string: %s", eq)
	}
	if _, err := NewEquation(); err == nil {
		t.Error("expected an error without factors")
	}
	if _, err := NewEquation(1, 2, 3); err == nil {
		t.Error("expected an error for three factors")
	}
}
