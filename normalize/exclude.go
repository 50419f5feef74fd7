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

package normalize

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spatialmodel/srgtools/srg"
)

// Exclude is a set of county codes that are not normalized.
type Exclude map[int]bool

// ReadExclude reads one county code per line from r, skipping blank and
// comment lines.
func ReadExclude(r io.Reader) (Exclude, error) {
	e := make(Exclude)
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if srg.IsComment(line) {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, &srg.FormatError{Line: line,
				Msg: fmt.Sprintf("%s is not a county id", strings.TrimSpace(line))}
		}
		e[code] = true
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// ReadExcludeFile reads the exclude file at path.
func ReadExcludeFile(path string) (Exclude, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &srg.IOError{Op: "opening exclude file", Path: path, Err: err}
	}
	defer f.Close()
	e, err := ReadExclude(f)
	if fe, ok := err.(*srg.FormatError); ok {
		fe.File = path
	}
	return e, err
}
