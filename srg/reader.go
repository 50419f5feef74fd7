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
	"strings"
)

type readState int

const (
	readingHeader readState = iota
	readingComments
	readingRows
)

// FileReader reads a surrogate ratio file one county at a time.
// Rows of a county must be adjacent in the file.
type FileReader struct {
	// File is used in error messages.
	File string

	// Layout is the row layout. It is replaced by the layout of the
	// #GRID or #POLYGON line if the file has one.
	Layout Layout

	// Code, if not negative, restricts the rows read to those of
	// one surrogate.
	Code int

	// Catalog, if not nil, receives the #SRGDESC lines of the file.
	Catalog *Catalog

	// Header is the #GRID or #POLYGON line of the file.
	Header string

	// Comments holds the comment lines other than Header.
	Comments []string

	// Preamble holds every comment line before the first data row,
	// including Header.
	Preamble []string

	state readState
}

// NewFileReader returns a reader for the named file that keeps every row.
func NewFileReader(file string, layout Layout) *FileReader {
	return &FileReader{File: file, Layout: layout, Code: -1}
}

// Read reads r and calls flush with each county as soon as all of its rows
// have been read. A county boundary is a change of county or surrogate code
// from the previous data row; a county that appears again after its rows
// were flushed is a *FormatError.
func (fr *FileReader) Read(r io.Reader, flush func(*County) error) error {
	fr.state = readingHeader
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLine)
	var county *County
	type codeCounty struct{ code, county int }
	done := make(map[codeCounty]bool)
	for s.Scan() {
		line := s.Text()
		if IsComment(line) {
			if err := fr.comment(line); err != nil {
				return withFile(err, fr.File)
			}
			continue
		}
		fr.state = readingRows
		row, err := ParseRow(line, fr.Layout)
		if err != nil {
			return withFile(err, fr.File)
		}
		if fr.Code >= 0 && row.Code != fr.Code {
			continue
		}
		if county == nil || row.County != county.Code || row.Code != county.SurrogateCode {
			if county != nil {
				done[codeCounty{county.SurrogateCode, county.Code}] = true
				if err := flush(county); err != nil {
					return err
				}
			}
			if done[codeCounty{row.Code, row.County}] {
				return &FormatError{File: fr.File, Line: line,
					Msg: fmt.Sprintf("the rows of county %d are not contiguous", row.County)}
			}
			county = NewCounty(row.County, row.Code)
		}
		county.Add(row)
	}
	if err := s.Err(); err != nil {
		return &IOError{Op: "reading", Path: fr.File, Err: err}
	}
	if county != nil {
		return flush(county)
	}
	return nil
}

func (fr *FileReader) comment(line string) error {
	trimmed := strings.TrimSpace(line)
	if fr.state != readingRows {
		fr.Preamble = append(fr.Preamble, line)
	}
	if IsGridHeader(trimmed) {
		if fr.Header == "" {
			fr.Header = trimmed
			fr.Layout = LayoutOf(trimmed)
		}
		if fr.state == readingHeader {
			fr.state = readingComments
		}
		return nil
	}
	if trimmed != "" {
		fr.Comments = append(fr.Comments, trimmed)
	}
	if fr.state == readingHeader {
		fr.state = readingComments
	}
	if fr.Catalog != nil {
		return ParseSrgDesc(trimmed, fr.Catalog)
	}
	return nil
}

// ReadFile opens and reads the file named by fr.File.
func (fr *FileReader) ReadFile(flush func(*County) error) error {
	f, err := os.Open(fr.File)
	if err != nil {
		return &IOError{Op: "opening surrogate file", Path: fr.File, Err: err}
	}
	defer f.Close()
	return fr.Read(f, flush)
}

// ReadCounties reads the file named by fr.File into a Counties object.
func (fr *FileReader) ReadCounties() (*Counties, error) {
	cs := NewCounties()
	err := fr.ReadFile(func(c *County) error {
		cs.AddCounty(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// ReadSurrogate reads the rows of the surrogate named by si from its file.
// The #SRGDESC lines of the file are added to c before the surrogate code
// is looked up, so a file can describe its own surrogates.
func ReadSurrogate(si SourceInfo, c *Catalog) (*Counties, error) {
	fr := NewFileReader(si.File, Grid)
	fr.Catalog = c
	cs := NewCounties()
	code := -1
	err := fr.ReadFile(func(county *County) error {
		if code < 0 {
			var err error
			if code, err = c.Code(si.Name); err != nil {
				return err
			}
		}
		if county.SurrogateCode == code {
			cs.AddCounty(county)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if code < 0 {
		if _, err := c.Code(si.Name); err != nil {
			return nil, err
		}
	}
	return cs, nil
}
