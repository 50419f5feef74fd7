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
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// UnspecifiedRegion is the region of catalogs read from cross-reference files.
const UnspecifiedRegion = "unspecified region"

// Catalog maps surrogate codes to names and back for one region.
type Catalog struct {
	Region string
	byName map[string]int
	byCode map[int]string
}

// NewCatalog initializes a new Catalog object.
func NewCatalog(region string) *Catalog {
	return &Catalog{
		Region: region,
		byName: make(map[string]int),
		byCode: make(map[int]string),
	}
}

// Add adds a surrogate to c. If code is already present the
// existing entry is kept.
func (c *Catalog) Add(code int, name string) {
	if _, ok := c.byCode[code]; ok {
		return
	}
	c.byCode[code] = name
	c.byName[name] = code
}

// Code gets the code of the surrogate with the given name.
func (c *Catalog) Code(name string) (int, error) {
	code, ok := c.byName[name]
	if !ok {
		return -1, &NotFoundError{Region: c.Region, Name: name}
	}
	return code, nil
}

// Name gets the name of the surrogate with the given code.
func (c *Catalog) Name(code int) (string, error) {
	name, ok := c.byCode[code]
	if !ok {
		return "", &NotFoundError{Region: c.Region, Code: code}
	}
	return name, nil
}

// Codes returns the surrogate codes in c in increasing order.
func (c *Catalog) Codes() []int {
	codes := make([]int, 0, len(c.byCode))
	for code := range c.byCode {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Len returns the number of surrogates in c.
func (c *Catalog) Len() int { return len(c.byCode) }

const srgDescTag = "SRGDESC"

// ParseSrgDesc adds the surrogate described by a
// #SRGDESC=<code>,<name> line to c. Other lines are ignored.
func ParseSrgDesc(line string, c *Catalog) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#"+srgDescTag) {
		return nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"+srgDescTag))
	if !strings.HasPrefix(rest, "=") {
		return formatErr(line, "expecting '=' after %s tag", srgDescTag)
	}
	rest = strings.TrimSpace(rest[1:])
	i := strings.Index(rest, ",")
	if i == -1 {
		return formatErr(line, "expected format #SRGDESC=<srg id>,<srg name>")
	}
	codeStr := strings.TrimSpace(rest[:i])
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return formatErr(line, "expected int for surrogate code but found '%s'", codeStr)
	}
	c.Add(code, stripQuotes(strings.TrimSpace(rest[i+1:])))
	return nil
}

// SrgDescLine returns the #SRGDESC header line for a surrogate.
func SrgDescLine(code int, name string) string {
	return "#" + srgDescTag + "=" + strconv.Itoa(code) + "," + name
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ReadCrossReference reads every #SRGDESC line in r into a new Catalog.
func ReadCrossReference(r io.Reader) (*Catalog, error) {
	c := NewCatalog(UnspecifiedRegion)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLine)
	for s.Scan() {
		if err := ParseSrgDesc(s.Text(), c); err != nil {
			return nil, err
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadCrossReferenceFile reads the cross-reference file at path.
func ReadCrossReferenceFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "opening cross reference file", Path: path, Err: err}
	}
	defer f.Close()
	c, err := ReadCrossReference(f)
	if err != nil {
		return nil, withFile(err, path)
	}
	return c, nil
}

// maxLine is the longest line the scanners accept.
const maxLine = 16 * 1024 * 1024

// withFile records path in a *FormatError.
func withFile(err error, path string) error {
	if fe, ok := err.(*FormatError); ok && fe.File == "" {
		fe.File = path
	}
	return err
}
