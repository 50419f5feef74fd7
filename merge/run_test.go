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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/srgtools/srg"
)

const (
	testXref = `#GRID	US36
#SRGDESC=100,Population
#SRGDESC=110,Housing
#SRGDESC=300,Half Pop Half Housing
#SRGDESC=310,Pop Copy
`
	testSource = `#GRID	US36
#SRGDESC=100,Population
100	01001	1	1	0.25000000
100	01001	1	2	0.75000000
110	01001	1	1	1.00000000
`
)

type fixture struct {
	dir string
	t   *testing.T
}

func newFixture(t *testing.T) *fixture {
	dir, err := ioutil.TempDir("", "merge")
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{dir: dir, t: t}
}

func (f *fixture) write(name, contents string) string {
	p := filepath.Join(f.dir, name)
	if err := ioutil.WriteFile(p, []byte(contents), 0644); err != nil {
		f.t.Fatal(err)
	}
	return p
}

func quietMerger() *Merger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return &Merger{Log: log}
}

func TestMergerRun(t *testing.T) {
	f := newFixture(t)
	defer os.RemoveAll(f.dir)
	xref := f.write("xref.txt", testXref)
	src := f.write("src.txt", testSource)
	out := filepath.Join(f.dir, "usa_merged.txt")
	lines := []string{
		"# merge test",
		"OUTFILE=" + out,
		"XREFFILE=" + xref,
		"OUTSRG=Half Pop Half Housing; 0.5*({" + src + "|Population})+0.5*({" + src + "|Housing})",
		"OUTSRG=Unknown; 1.0*({" + src + "|Population})",
		"OUTSRG=Pop Copy; 1.0*({" + src + "|Population})",
	}
	input := f.write("merge.txt", strings.Join(lines, "\n")+"\n")
	f.write("usa_merged.txt", "stale contents\n")

	err := quietMerger().Run(input)
	if err == nil || !strings.Contains(err.Error(), "Unknown") {
		t.Errorf("the failed command should be reported, have %v", err)
	}

	want := []string{
		"#GRID\tUS36",
		"#SRGDESC=300,Half Pop Half Housing",
		"#SRGDESC=100,Population",
		"#SRGDESC=110,Housing",
		"#SRGDESC=310,Pop Copy",
	}
	for _, l := range lines {
		want = append(want, "#"+l)
	}
	want = append(want,
		"300\t01001\t1\t1\t0.62500000\t\t!\t0.5\t0.25\t0.5\t1.0\t\t0.625",
		"300\t01001\t1\t2\t0.37500000\t\t!\t0.5\t0.75\t0.5\t0.0\t\t1.0",
		"310\t01001\t1\t1\t0.25000000\t\t!\tNote: Only surrogate 100 is available for this county\t0.25",
		"310\t01001\t1\t2\t0.75000000\t\t!\tNote: Only surrogate 100 is available for this county\t1.0",
	)
	have, err := ioutil.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(have) != strings.Join(want, "\n")+"\n" {
		t.Errorf("have\n%s\nwant\n%s", have, strings.Join(want, "\n"))
	}

	// The merged file can be read back.
	c := srg.NewCatalog("usa")
	cs, err := srg.ReadSurrogate(srg.SourceInfo{File: out, Name: "Half Pop Half Housing"}, c)
	if err != nil {
		t.Fatal(err)
	}
	if different(cs.Get(1001).Sum(), 1) {
		t.Errorf("merged county sum: %g", cs.Get(1001).Sum())
	}
}

func different(a, b float64) bool {
	d := a - b
	return d > 1e-9 || d < -1e-9
}

func TestMergerRunSkipsBadCommand(t *testing.T) {
	f := newFixture(t)
	defer os.RemoveAll(f.dir)
	xref := f.write("xref.txt", testXref)
	src := f.write("src.txt", testSource)
	missing := filepath.Join(f.dir, "missing.txt")
	out := filepath.Join(f.dir, "usa_merged.txt")
	lines := []string{
		"OUTFILE=" + out,
		"XREFFILE=" + xref,
		"OUTSRG=Pop Copy; 1.0*({" + src + "|Population})",
		"OUTSRG=Half Pop Half Housing; 0.5*({" + src + "|Population})+0.5*({" + missing + "|Housing})",
		"OUTSRG=Broken; abc*({" + src + "|Population})",
	}
	input := f.write("merge.txt", strings.Join(lines, "\n")+"\n")

	log, hook := test.NewNullLogger()
	err := (&Merger{Log: log}).Run(input)
	if err == nil || srg.IsStructural(err) {
		t.Fatalf("have %v, want a summary error", err)
	}
	for _, s := range []string{"2 of 3", "Half Pop Half Housing", "Broken"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("error should contain %q: %v", s, err)
		}
	}
	skipped := make(map[string]bool)
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			skipped[e.Data["command"].(string)] = true
		}
	}
	if !skipped[lines[3]] || !skipped[lines[4]] || len(skipped) != 2 {
		t.Errorf("skipped commands: %v", skipped)
	}

	want := []string{
		"#GRID\tUS36",
		"#SRGDESC=310,Pop Copy",
		"#SRGDESC=100,Population",
	}
	for _, l := range lines {
		want = append(want, "#"+l)
	}
	want = append(want,
		"310\t01001\t1\t1\t0.25000000\t\t!\tNote: Only surrogate 100 is available for this county\t0.25",
		"310\t01001\t1\t2\t0.75000000\t\t!\tNote: Only surrogate 100 is available for this county\t1.0",
	)
	have, err := ioutil.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(have) != strings.Join(want, "\n")+"\n" {
		t.Errorf("have\n%s\nwant\n%s", have, strings.Join(want, "\n"))
	}
}

func TestMergerRunStructural(t *testing.T) {
	f := newFixture(t)
	defer os.RemoveAll(f.dir)
	xref := f.write("xref.txt", testXref)
	src := f.write("src.txt", testSource)
	other := f.write("other.txt", "#GRID\tUS12\n100\t01001\t1\t1\t1.0\n")
	out := filepath.Join(f.dir, "usa_merged.txt")

	tests := map[string][]string{
		"no outfile": {
			"XREFFILE=" + xref,
			"OUTSRG=Pop Copy; 1.0*({" + src + "|Population})",
		},
		"no command": {
			"OUTFILE=" + out,
			"XREFFILE=" + xref,
		},
		"grid mismatch": {
			"OUTFILE=" + out,
			"XREFFILE=" + xref,
			"OUTSRG=Half Pop Half Housing; 0.5*({" + src + "|Population})+0.5*({" + other + "|Housing})",
		},
	}
	for name, lines := range tests {
		t.Run(name, func(t *testing.T) {
			input := f.write("merge.txt", strings.Join(lines, "\n")+"\n")
			err := quietMerger().Run(input)
			if !srg.IsStructural(err) {
				t.Errorf("have %v, want a structural error", err)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("no output should be written")
			}
		})
	}
}

func TestMergerRegion(t *testing.T) {
	m := new(Merger)
	if r := m.region("/out/usa_100_NOFILL.txt"); r != "usa" {
		t.Errorf("region: %s", r)
	}
	if r := m.region("/out/merged.txt"); r != "merged" {
		t.Errorf("region: %s", r)
	}
	m.Region = "can"
	if r := m.region("/out/usa_100_NOFILL.txt"); r != "can" {
		t.Errorf("region: %s", r)
	}
}
