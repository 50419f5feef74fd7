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
	"os"
	"strconv"
	"strings"
)

// DescriptionEntry is one row of a SRGDESC catalog.
type DescriptionEntry struct {
	Region string
	Code   int
	Name   string
	File   string
}

func (e DescriptionEntry) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", e.Region, e.Code, e.Name, e.File)
}

// Line returns e formatted as a catalog row.
func (e DescriptionEntry) Line() string {
	return fmt.Sprintf("%s,%d,\"%s\",%s", e.Region, e.Code, e.Name, e.File)
}

type regionCode struct {
	region string
	code   int
}

// Description holds the contents of a SRGDESC catalog file.
type Description struct {
	// Header is the first comment line of the file.
	Header string
	Layout Layout
	// Comments holds every comment line, including Header, in file order.
	Comments []string

	entries  []DescriptionEntry
	index    map[regionCode]int
	catalogs map[string]*Catalog
}

// NewDescription returns an empty catalog with the given header line.
func NewDescription(header string) *Description {
	d := &Description{
		Header:   header,
		Layout:   LayoutOf(header),
		index:    make(map[regionCode]int),
		catalogs: make(map[string]*Catalog),
	}
	if header != "" {
		d.Comments = []string{header}
	}
	return d
}

// ReadDescription reads a SRGDESC catalog. The first comment line
// is the header, which determines the layout of the surrogate files.
func ReadDescription(r io.Reader) (*Description, error) {
	d := NewDescription("")
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLine)
	for s.Scan() {
		line := s.Text()
		if IsComment(line) {
			if d.Header == "" && strings.TrimSpace(line) != "" {
				d.Header = line
				d.Layout = LayoutOf(line)
			}
			d.Comments = append(d.Comments, line)
			continue
		}
		e, err := parseDescriptionEntry(line)
		if err != nil {
			return nil, err
		}
		d.add(e)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// ReadDescriptionFile reads the SRGDESC catalog at path.
func ReadDescriptionFile(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "opening SRGDESC file", Path: path, Err: err}
	}
	defer f.Close()
	d, err := ReadDescription(f)
	if err != nil {
		return nil, withFile(err, path)
	}
	return d, nil
}

func parseDescriptionEntry(line string) (DescriptionEntry, error) {
	tokens := TokenizeComma(line)
	if len(tokens) != 4 {
		return DescriptionEntry{}, formatErr(line, "expected four tokens but found %d", len(tokens))
	}
	code, err := strconv.Atoi(tokens[1])
	if err != nil {
		return DescriptionEntry{}, formatErr(line, "expected int for surrogate code but found '%s'", tokens[1])
	}
	return DescriptionEntry{
		Region: strings.ToLower(tokens[0]),
		Code:   code,
		Name:   tokens[2],
		File:   tokens[3],
	}, nil
}

// add appends e. The region catalog keeps the first name for each code.
func (d *Description) add(e DescriptionEntry) {
	d.index[regionCode{e.Region, e.Code}] = len(d.entries)
	d.entries = append(d.entries, e)
	d.catalog(e.Region).Add(e.Code, e.Name)
}

func (d *Description) catalog(region string) *Catalog {
	c, ok := d.catalogs[region]
	if !ok {
		c = NewCatalog(region)
		d.catalogs[region] = c
	}
	return c
}

// Put adds e to d. An existing entry with the same region and code is
// replaced in place, so the newest entry wins and the order of the
// other entries is unchanged.
func (d *Description) Put(e DescriptionEntry) {
	e.Region = strings.ToLower(e.Region)
	k := regionCode{e.Region, e.Code}
	i, ok := d.index[k]
	if !ok {
		d.add(e)
		return
	}
	d.entries[i] = e
	// Rebuild the region catalog so that the replacement name is used.
	c := NewCatalog(e.Region)
	for _, ee := range d.entries {
		if ee.Region == e.Region {
			c.Add(ee.Code, ee.Name)
		}
	}
	d.catalogs[e.Region] = c
}

// Entries returns all entries in file order.
func (d *Description) Entries() []DescriptionEntry {
	return append([]DescriptionEntry(nil), d.entries...)
}

// EntriesFor returns the entries of one region in file order.
func (d *Description) EntriesFor(region string) []DescriptionEntry {
	var o []DescriptionEntry
	for _, e := range d.entries {
		if e.Region == region {
			o = append(o, e)
		}
	}
	return o
}

// Regions returns the regions in the order they first appear.
func (d *Description) Regions() []string {
	var o []string
	seen := make(map[string]bool)
	for _, e := range d.entries {
		if !seen[e.Region] {
			seen[e.Region] = true
			o = append(o, e.Region)
		}
	}
	return o
}

// Catalog returns the surrogate catalog for region.
func (d *Description) Catalog(region string) (*Catalog, error) {
	c, ok := d.catalogs[region]
	if !ok {
		return nil, fmt.Errorf("srg: there are no surrogates for region '%s'", region)
	}
	return c, nil
}

// WriteTo writes d in SRGDESC format: the comment lines followed by
// one row per entry.
func (d *Description) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, c := range d.Comments {
		nn, err := fmt.Fprintln(w, c)
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	for _, e := range d.entries {
		nn, err := fmt.Fprintln(w, e.Line())
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// WriteFile writes d to path, replacing any existing file.
func (d *Description) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "creating SRGDESC file", Path: path, Err: err}
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return &IOError{Op: "writing SRGDESC file", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "closing SRGDESC file", Path: path, Err: err}
	}
	return nil
}

// Concatenate appends the contents of every data file listed in d to w.
// Entries whose file is missing are returned in missing rather than
// causing a failure.
func (d *Description) Concatenate(w io.Writer) (missing []string, err error) {
	for _, e := range d.entries {
		f, err := os.Open(e.File)
		if os.IsNotExist(err) {
			missing = append(missing, e.File)
			continue
		} else if err != nil {
			return missing, &IOError{Op: "opening surrogate file", Path: e.File, Err: err}
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return missing, &IOError{Op: "copying surrogate file", Path: e.File, Err: err}
		}
	}
	return missing, nil
}

// Table returns the entries of d as a text table.
func (d *Description) Table() Table {
	t := Table{{"Region", "Code", "Name", "File"}}
	for _, e := range d.entries {
		t = append(t, []string{e.Region, strconv.Itoa(e.Code), e.Name, e.File})
	}
	return t
}
