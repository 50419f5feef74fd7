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
	"strings"
)

// ReadGridHeader returns the first #GRID or #POLYGON line in r.
func ReadGridHeader(r io.Reader) (string, bool, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLine)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if IsGridHeader(line) {
			return line, true, nil
		}
	}
	return "", false, s.Err()
}

// CheckGrids makes sure that all of the given surrogate files share the
// same grid or polygon header line, ignoring case, and returns that line.
// Files listed more than once are only read once.
func CheckGrids(files []string) (string, error) {
	var last, lastFile string
	read := make(map[string]string)
	for _, file := range files {
		grid, ok := read[file]
		if !ok {
			f, err := os.Open(file)
			if err != nil {
				return "", &IOError{Op: "opening surrogate file", Path: file, Err: err}
			}
			var found bool
			grid, found, err = ReadGridHeader(f)
			f.Close()
			if err != nil {
				return "", &IOError{Op: "reading", Path: file, Err: err}
			}
			if !found {
				return "", Structuralf("could not find #GRID or #POLYGON tag in the file '%s'", file)
			}
			read[file] = grid
		}
		if lastFile != "" && !strings.EqualFold(last, grid) {
			return "", Structuralf("the grids in the following files do not match: '%s', '%s'", lastFile, file)
		}
		last, lastFile = grid, file
	}
	return last, nil
}
