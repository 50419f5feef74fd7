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

package gapfill

import (
	"reflect"
	"testing"

	"github.com/spatialmodel/srgtools/srg"
)

func parse(t *testing.T, lines ...string) *srg.Counties {
	cs := srg.NewCounties()
	for _, l := range lines {
		r, err := srg.ParseRow(l, srg.Grid)
		if err != nil {
			t.Fatal(err)
		}
		cs.Add(r)
	}
	return cs
}

func lines(cs *srg.Counties) []string {
	var l []string
	for _, r := range cs.Rows() {
		l = append(l, Line(r))
	}
	return l
}

func TestGapfillCoverage(t *testing.T) {
	primary := parse(t,
		"5\t00100\t1\t1\t0.6",
		"5\t00100\t1\t2\t0.4",
	)
	secondary := parse(t,
		"7\t00100\t1\t1\t1.0",
		"7\t00200\t2\t2\t1.0",
	)
	out := Gapfill(primary, []*srg.Counties{secondary}, 20)
	want := []string{
		"20\t00100\t1\t1\t0.6",
		"20\t00100\t1\t2\t0.4",
		"20\t00200\t2\t2\t1.0 GF: 7",
	}
	if have := lines(out); !reflect.DeepEqual(have, want) {
		t.Errorf("have %q, want %q", have, want)
	}
	for _, r := range out.Get(100).Rows {
		if r.GapfillCode != -1 {
			t.Errorf("county 100 is in the primary surrogate but has a gap filled row: %v", r)
		}
	}
	r := out.Get(200).Rows[0]
	if r.Code != 20 || r.GapfillCode != 7 || r.Ratio != 1 {
		t.Errorf("gap filled row: %+v", r)
	}
}

func TestGapfillChainOrder(t *testing.T) {
	primary := parse(t, "5\t00100\t1\t1\t1.0")
	secondary := parse(t, "7\t00200\t2\t2\t1.0")
	tertiary := parse(t,
		"9\t00200\t3\t3\t1.0",
		"9\t00300\t3\t3\t0.5",
		"9\t00300\t3\t4\t0.5",
	)
	out := Gapfill(primary, []*srg.Counties{secondary, tertiary}, 20)
	want := []string{
		"20\t00100\t1\t1\t1.0",
		"20\t00200\t2\t2\t1.0 GF: 7",
		"20\t00300\t3\t3\t0.5 GF: 9",
		"20\t00300\t3\t4\t0.5 GF: 9",
	}
	if have := lines(out); !reflect.DeepEqual(have, want) {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestGapfillKeepsComments(t *testing.T) {
	primary := srg.NewCounties()
	fallback := parse(t, "7\t00200\t2\t2\t1.00000000\t!\tfrom the census")
	out := Gapfill(primary, []*srg.Counties{fallback}, 20)
	want := []string{"20\t00200\t2\t2\t1.00000000\t!\tfrom the census GF: 7"}
	if have := lines(out); !reflect.DeepEqual(have, want) {
		t.Errorf("have %q, want %q", have, want)
	}
	r, err := srg.ParseRow(want[0], srg.Grid)
	if err != nil {
		t.Fatal(err)
	}
	if r.GapfillCode != 7 {
		t.Errorf("gapfill code should survive a round trip, have %d", r.GapfillCode)
	}
}
