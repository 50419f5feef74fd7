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

package qa

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/srgtools/srg"
	"github.com/tealeg/xlsx"
)

const (
	testPop = `#GRID	US36
100	01001	1	1	0.5
100	01001	1	2	0.5
100	01003	2	3	0.9
`
	testRoads = `#GRID	US36
200	01001	1	1	0.6 GF: 7
200	01001	1	2	0.4
`
	testFilled = `#GRID	US36
300	01001	1	1	1.0 GF: 7
300	01003	2	3	1.0
100	01003	9	9	0.5
`
)

func writeFile(t *testing.T, dir, name, contents string) string {
	p := filepath.Join(dir, name)
	if err := ioutil.WriteFile(p, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func setup(t *testing.T) (dir, desc string) {
	dir, err := ioutil.TempDir("", "qa")
	if err != nil {
		t.Fatal(err)
	}
	pop := writeFile(t, dir, "pop.txt", testPop)
	roads := writeFile(t, dir, "roads_NOFILL.txt", testRoads)
	filled := writeFile(t, dir, "filled.txt", testFilled)
	desc = writeFile(t, dir, "srgdesc.txt", strings.Join([]string{
		"#GRID\tUS36",
		`USA,100,"Population",` + pop,
		`USA,200,"Roads",` + roads,
		`USA,300,"Filled",` + filled,
	}, "\n")+"\n")
	return dir, desc
}

func TestReporterRun(t *testing.T) {
	dir, desc := setup(t)
	defer os.RemoveAll(dir)

	log, _ := test.NewNullLogger()
	r := NewReporter()
	r.Log = log
	if err := r.Run(desc); err != nil {
		t.Fatal(err)
	}

	header := []string{"#GRID\tUS36", desc}
	columns := []string{"COUNTY,100,200,300", `,"Population","Roads","Filled"`}
	want := map[string][]string{
		"summary": {
			"1001,,,GF:7",
			"1003,NOT1:0.90000000,NODATA,",
		},
		"gapfill": {
			"1001,,,7",
			"1003,,,",
		},
		"nodata": {
			"1003,,NODATA,",
		},
		"not1": {
			"1003,0.90000000,,",
		},
	}
	for name, rows := range want {
		t.Run(name, func(t *testing.T) {
			lines := append(append(append([]string{}, header...), columns...), rows...)
			b, err := ioutil.ReadFile(filepath.Join(dir, "srgdesc_usa_"+name+".csv"))
			if err != nil {
				t.Fatal(err)
			}
			if have := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n"); !reflect.DeepEqual(have, lines) {
				t.Errorf("have %#v\nwant %#v\n%v", have, lines, pretty.Diff(have, lines))
			}
		})
	}

	t.Run("threshold", func(t *testing.T) {
		lines := append(append([]string{}, header...),
			"Threshold: 0.5",
			"COUNTY,COL,ROW,100,200,300",
			`,,,"Population","Roads","Filled"`,
			"1001,1,1,,0.60000000,1.00000000",
			"1003,3,2,0.90000000,,1.00000000",
		)
		b, err := ioutil.ReadFile(filepath.Join(dir, "srgdesc_usa_threshold.csv"))
		if err != nil {
			t.Fatal(err)
		}
		if have := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n"); !reflect.DeepEqual(have, lines) {
			t.Errorf("have %#v\nwant %#v\n%v", have, lines, pretty.Diff(have, lines))
		}
	})

	t.Run("no overwrite", func(t *testing.T) {
		err := r.Run(desc)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("have %v, want an error about the existing report", err)
		}
	})
}

func TestReporterWorkbook(t *testing.T) {
	dir, desc := setup(t)
	defer os.RemoveAll(dir)

	log, _ := test.NewNullLogger()
	r := NewReporter()
	r.Log = log
	r.XLSX = true
	if err := r.Run(desc); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(filepath.Join(dir, "srgdesc_usa_qa.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range Kinds {
		if _, ok := f.Sheet[k.String()]; !ok {
			t.Errorf("missing sheet %s", k)
		}
	}
	s := f.Sheet["summary"]
	if v := s.Cell(5, 1).Value; v != "NOT1:0.90000000" {
		t.Errorf("summary cell: have %q", v)
	}
}

func TestReporterNoData(t *testing.T) {
	dir, err := ioutil.TempDir("", "qa")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	pop := writeFile(t, dir, "pop.txt", testPop)
	desc := writeFile(t, dir, "srgdesc.txt", "#GRID\tUS36\n"+`USA,500,"Other",`+pop+"\n")

	log, _ := test.NewNullLogger()
	r := NewReporter()
	r.Log = log
	err = r.Run(desc)
	if err == nil || !strings.Contains(err.Error(), "there is no data") {
		t.Errorf("have %v, want a no data error", err)
	}
}

func TestAggregateThreshold(t *testing.T) {
	a := NewAggregate(0.5)
	rows := []srg.Row{
		{Code: 1, Key: srg.Key{County: 10, Primary: 1, Secondary: 1}, Ratio: 0.5},
		{Code: 1, Key: srg.Key{County: 10, Primary: 1, Secondary: 2}, Ratio: 0.500001},
		{Code: 1, Key: srg.Key{County: 10, Primary: 2, Secondary: 1}, Ratio: 0.50002},
		{Code: 2, Key: srg.Key{County: 10, Primary: 2, Secondary: 1}, Ratio: 0.7,
			Annotation: srg.Annotation{GapfillCode: 4}},
	}
	for _, r := range rows {
		a.Add(r, false)
	}
	c := a.County(10)
	want := []srg.GridCell{{Row: 2, Col: 1}}
	if have := c.HoldGrids(); !reflect.DeepEqual(have, want) {
		t.Errorf("hold grids: have %v, want %v", have, want)
	}
	cell := c.Cell(1)
	if len(cell.Held) != 1 || cell.Held[0].Ratio != 0.50002 {
		t.Errorf("held rows: %+v", cell.Held)
	}
	if _, ok := cell.HeldAt(srg.GridCell{Row: 1, Col: 1}); ok {
		t.Error("a ratio at the threshold should not be held")
	}
	if c.Cell(2).IsGapfilled() {
		t.Error("gapfill codes should be ignored for files that are not gap filled")
	}
	if !reflect.DeepEqual(a.SurrogateCodes(), []int{1, 2}) {
		t.Errorf("surrogate codes: %v", a.SurrogateCodes())
	}
}

func TestIsGapfilled(t *testing.T) {
	for path, want := range map[string]bool{
		"srg/USA_100_NOFILL.txt": false,
		"srg/USA_100_FILL.txt":   true,
		"srg/USA_100.txt":        true,
	} {
		if have := IsGapfilled(path); have != want {
			t.Errorf("%s: have %v, want %v", path, have, want)
		}
	}
}
