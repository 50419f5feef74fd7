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

package srgutil

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

// recorder is a SurrogateGenerator that records its calls.
type recorder struct {
	calls []string
}

func (r *recorder) Merge(ctx context.Context, input string) error {
	r.calls = append(r.calls, "merge "+input)
	return nil
}

func (r *recorder) Gapfill(ctx context.Context, input string) error {
	r.calls = append(r.calls, "gapfill "+input)
	return nil
}

func (r *recorder) Normalize(ctx context.Context, srgdesc, exclude string, precision float64) error {
	r.calls = append(r.calls, fmt.Sprintf("normalize %s %s %g", srgdesc, exclude, precision))
	return nil
}

func (r *recorder) QA(ctx context.Context, srgdesc string, threshold float64) error {
	r.calls = append(r.calls, fmt.Sprintf("qa %s %g", srgdesc, threshold))
	return nil
}

func quietConfig() *Cfg {
	cfg := InitializeConfig()
	l := logrus.New()
	l.Out = ioutil.Discard
	cfg.Log = l
	return cfg
}

func TestCommands(t *testing.T) {
	tests := []struct {
		args []string
		set  map[string]interface{}
		want string
	}{
		{args: []string{"merge", "in.txt"}, want: "merge in.txt"},
		{args: []string{"merge"}, set: map[string]interface{}{"merge.input": "cfg.txt"}, want: "merge cfg.txt"},
		{args: []string{"gapfill", "--gapfill.input=g.txt"}, want: "gapfill g.txt"},
		{args: []string{"normalize", "SRGDESC.txt"}, want: "normalize SRGDESC.txt  1e-05"},
		{args: []string{"normalize", "SRGDESC.txt", "--normalize.exclude=ex.txt", "--normalize.precision=0.001"},
			want: "normalize SRGDESC.txt ex.txt 0.001"},
		{args: []string{"qa", "SRGDESC.txt"}, want: "qa SRGDESC.txt 0.5"},
		{args: []string{"qa", "SRGDESC.txt", "-t", "0.8"}, want: "qa SRGDESC.txt 0.8"},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, " "), func(t *testing.T) {
			cfg := quietConfig()
			r := new(recorder)
			cfg.Generator = r
			for k, v := range test.set {
				cfg.Set(k, v)
			}
			cfg.Root.SetArgs(test.args)
			if err := cfg.Root.Execute(); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(r.calls, []string{test.want}) {
				t.Errorf("have %q, want %q", r.calls, test.want)
			}
		})
	}
}

func TestCommandMissingInput(t *testing.T) {
	cfg := quietConfig()
	cfg.Generator = new(recorder)
	cfg.Root.SetOutput(ioutil.Discard)
	cfg.Root.SetArgs([]string{"merge"})
	if err := cfg.Root.Execute(); err == nil || !strings.Contains(err.Error(), "merge.input") {
		t.Errorf("have %v, want an error naming merge.input", err)
	}
}

func TestConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "srgutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	os.Setenv("SRGUTIL_TEST_DIR", dir)
	defer os.Unsetenv("SRGUTIL_TEST_DIR")
	path := filepath.Join(dir, "config.toml")
	config := "[qa]\nsrgdesc = \"${SRGUTIL_TEST_DIR}/SRGDESC.txt\"\nthreshold = 0.7\n"
	if err := ioutil.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := quietConfig()
	r := new(recorder)
	cfg.Generator = r
	cfg.Set("config", path)
	cfg.Root.SetArgs([]string{"qa"})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	want := []string{fmt.Sprintf("qa %s 0.7", filepath.Join(dir, "SRGDESC.txt"))}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("have %q, want %q", r.calls, want)
	}
}

func TestEnvironment(t *testing.T) {
	os.Setenv("SRGTOOLS_GAPFILL_INPUT", "env.txt")
	defer os.Unsetenv("SRGTOOLS_GAPFILL_INPUT")
	cfg := quietConfig()
	r := new(recorder)
	cfg.Generator = r
	cfg.Root.SetArgs([]string{"gapfill"})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := []string{"gapfill env.txt"}; !reflect.DeepEqual(r.calls, want) {
		t.Errorf("have %q, want %q", r.calls, want)
	}
}

func TestExampleConfig(t *testing.T) {
	var c struct {
		LogLevel  string
		Generator string
		QA        struct {
			SRGDESC   string
			Threshold float64
			XLSX      bool
		}
		Normalize struct {
			Precision float64
		}
		Catalog struct {
			Header string
		}
	}
	f, err := os.Open("../cmd/srgtools/srgtools.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := toml.DecodeReader(f, &c); err != nil {
		t.Fatal(err)
	}
	if c.Generator != "inprocess" || c.QA.Threshold != 0.5 || c.Normalize.Precision != 1e-5 || c.Catalog.Header != "#GRID" {
		t.Errorf("unexpected example configuration: %# v", pretty.Formatter(c))
	}

	// The example file must also be readable by the command.
	cfg := quietConfig()
	cfg.Generator = new(recorder)
	cfg.Set("config", "../cmd/srgtools/srgtools.toml")
	cfg.Root.SetOutput(ioutil.Discard)
	cfg.Root.SetArgs([]string{"version"})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if cfg.GetString("generator") != "inprocess" || cfg.GetFloat64("qa.threshold") != 0.5 {
		t.Errorf("configuration not read: generator=%s", cfg.GetString("generator"))
	}
}

func TestVersion(t *testing.T) {
	cfg := quietConfig()
	var b bytes.Buffer
	cfg.Root.SetOutput(&b)
	cfg.Root.SetArgs([]string{"version"})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "srgtools v") {
		t.Errorf("have %q", b.String())
	}
}

func TestGenerator(t *testing.T) {
	cfg := quietConfig()
	cfg.Set("generator", "external")
	cfg.Set("external.qa", "/usr/local/bin/srgqa")
	g, err := cfg.generator()
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := g.(*External); !ok || e.QAExe != "/usr/local/bin/srgqa" {
		t.Errorf("have %#v", g)
	}

	cfg.Set("generator", "inprocess")
	cfg.Set("merge.strict", true)
	g, err = cfg.generator()
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := g.(*InProcess); !ok || !p.Strict {
		t.Errorf("have %#v", g)
	}

	cfg.Set("generator", "cluster")
	if _, err := cfg.generator(); err == nil {
		t.Error("an invalid generator should cause an error")
	}
}
