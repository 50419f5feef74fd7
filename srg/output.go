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

package srg

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
)

// Output accumulates the contents of a merge or gapfill output file:
// the grid header, the #SRGDESC lines of every surrogate involved, the
// instruction file echoed as comments, and the rows of each command.
type Output struct {
	Header string
	Input  []string

	// Line formats a row. If nil, Row.Format is used.
	Line func(Row) string

	srgDesc []string
	seen    map[string]bool
	sets    []*Counties
}

// AddSrgDesc adds a #SRGDESC line unless an identical line is present.
func (o *Output) AddSrgDesc(code int, name string) {
	if o.seen == nil {
		o.seen = make(map[string]bool)
	}
	l := SrgDescLine(code, name)
	if o.seen[l] {
		return
	}
	o.seen[l] = true
	o.srgDesc = append(o.srgDesc, l)
}

// AddCounties adds the result of one command.
func (o *Output) AddCounties(cs *Counties) {
	o.sets = append(o.sets, cs)
}

// WriteTo writes the output file contents to w.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	line := o.Line
	if line == nil {
		line = Row.Format
	}
	bw := bufio.NewWriter(w)
	var n int64
	p := func(s string) error {
		nn, err := fmt.Fprintln(bw, s)
		n += int64(nn)
		return err
	}
	if err := p(o.Header); err != nil {
		return n, err
	}
	for _, l := range o.srgDesc {
		if err := p(l); err != nil {
			return n, err
		}
	}
	for _, l := range o.Input {
		if err := p("#" + l); err != nil {
			return n, err
		}
	}
	for _, cs := range o.sets {
		for _, code := range cs.Codes() {
			for _, r := range cs.Get(code).Rows {
				if err := p(line(r)); err != nil {
					return n, err
				}
			}
		}
	}
	return n, bw.Flush()
}

// WriteFile writes the output to path. The contents are first written to
// a temporary file in the same directory, which then replaces path.
func (o *Output) WriteFile(path string) error {
	f, err := ioutil.TempFile(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err != nil {
		return &IOError{Op: "creating output file", Path: path, Err: err}
	}
	tmp := f.Name()
	if _, err := o.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Op: "writing output file", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "closing output file", Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "renaming output file", Path: path, Err: err}
	}
	return nil
}
