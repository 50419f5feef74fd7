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

// Package normalize rescales the ratios of surrogate files so that the
// ratios of each county add up to one.
package normalize

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/srgtools/srg"
)

// Suffix is appended to the base name of normalized files.
const Suffix = "_NORM.txt"

// tractFactor separates the county code from the last six digits of a
// polygon index.
const tractFactor = 1000000

// OutputName returns the name of the normalized version of path:
// <dir>/<base without extension>_NORM.txt.
func OutputName(path string) string {
	base := filepath.Base(path)
	return filepath.Join(filepath.Dir(path), strings.TrimSuffix(base, filepath.Ext(base))+Suffix)
}

var errNotOne = errors.New("normalize: county does not add up to one")

// Check returns a *srg.SkipError if every county in the surrogate file at
// path already adds up to one within p, and nil if at least one county
// needs to be normalized.
func Check(path string, layout srg.Layout, p srg.Precision) error {
	fr := srg.NewFileReader(path, layout)
	err := fr.ReadFile(func(c *srg.County) error {
		if !p.IsOne(c.Sum()) {
			return errNotOne
		}
		return nil
	})
	switch err {
	case errNotOne:
		return nil
	case nil:
		return &srg.SkipError{File: path}
	default:
		return err
	}
}

// inCounty returns whether a polygon row's index belongs to the row's
// county. Indices of more than six digits start with the county code.
func inCounty(r srg.Row) bool {
	if r.Secondary != srg.NoColumn || r.Primary < tractFactor {
		return true
	}
	return int(r.Primary/tractFactor) == r.County
}

// Normalize writes the normalized version of the surrogate file read from
// r to w. Comment lines before the first data row are copied. Rows of
// polygon indices that belong to another county are dropped unless the
// county is excluded. Counties that already add up to one within p and
// excluded counties are copied unchanged; the rows of other counties get
// the ratio divided by the county total.
func Normalize(w io.Writer, r io.Reader, file string, layout srg.Layout, p srg.Precision, exclude Exclude) error {
	bw := bufio.NewWriter(w)
	fr := srg.NewFileReader(file, layout)
	preamble := false
	writePreamble := func() error {
		if preamble {
			return nil
		}
		preamble = true
		for _, l := range fr.Preamble {
			if _, err := fmt.Fprintln(bw, l); err != nil {
				return err
			}
		}
		return nil
	}
	err := fr.Read(r, func(c *srg.County) error {
		if err := writePreamble(); err != nil {
			return err
		}
		for _, l := range normalizeCounty(c, p, exclude) {
			if _, err := fmt.Fprintln(bw, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := writePreamble(); err != nil {
		return err
	}
	return bw.Flush()
}

func normalizeCounty(c *srg.County, p srg.Precision, exclude Exclude) []string {
	if exclude[c.Code] {
		return raw(c.Rows)
	}
	var rows []srg.Row
	for _, r := range c.Rows {
		if inCounty(r) {
			rows = append(rows, r)
		}
	}
	c.Rows = rows
	if c.Sum() == 0 || !c.Normalize(p) {
		return raw(c.Rows)
	}
	lines := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		lines[i] = r.FormatNormalized()
	}
	return lines
}

func raw(rows []srg.Row) []string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Raw
	}
	return lines
}

// NormalizeFile checks and normalizes the surrogate file at path and
// returns the name of the output file. Any existing output file is removed
// first. If the file does not need normalization, the returned error is a
// *srg.SkipError and nothing is written.
func NormalizeFile(path string, layout srg.Layout, p srg.Precision, exclude Exclude) (string, error) {
	if err := Check(path, layout, p); err != nil {
		return "", err
	}
	out := OutputName(path)
	if err := removeExisting(out); err != nil {
		return "", err
	}
	in, err := os.Open(path)
	if err != nil {
		return "", &srg.IOError{Op: "opening surrogate file", Path: path, Err: err}
	}
	defer in.Close()
	f, err := os.Create(out)
	if err != nil {
		return "", &srg.IOError{Op: "creating normalized file", Path: out, Err: err}
	}
	if err := Normalize(f, in, path, layout, p, exclude); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", &srg.IOError{Op: "closing normalized file", Path: out, Err: err}
	}
	return out, nil
}

// Copy copies the surrogate file at path unchanged to its normalized file
// name and returns that name.
func Copy(path string) (string, error) {
	out := OutputName(path)
	if err := removeExisting(out); err != nil {
		return "", err
	}
	in, err := os.Open(path)
	if err != nil {
		return "", &srg.IOError{Op: "opening surrogate file", Path: path, Err: err}
	}
	defer in.Close()
	f, err := os.Create(out)
	if err != nil {
		return "", &srg.IOError{Op: "creating normalized file", Path: out, Err: err}
	}
	if _, err := io.Copy(f, in); err != nil {
		f.Close()
		return "", &srg.IOError{Op: "copying surrogate file", Path: out, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &srg.IOError{Op: "closing normalized file", Path: out, Err: err}
	}
	return out, nil
}

func removeExisting(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &srg.IOError{Op: "removing existing file", Path: path, Err: err}
	}
	return nil
}
