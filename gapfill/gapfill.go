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

package gapfill

import (
	"strconv"
	"strings"

	"github.com/spatialmodel/srgtools/srg"
)

// Gapfill returns the counties of primary plus, for every county primary
// does not have, the counties of the first fallback that has it. All rows
// are given surrogate code outCode; rows taken from a fallback are marked
// with the code of the fallback surrogate.
func Gapfill(primary *srg.Counties, fallbacks []*srg.Counties, outCode int) *srg.Counties {
	out := srg.NewCounties()
	for _, code := range primary.Order() {
		out.AddCounty(recode(primary.Get(code), outCode, false))
	}
	for _, fb := range fallbacks {
		for _, code := range fb.Order() {
			if out.Has(code) {
				continue
			}
			out.AddCounty(recode(fb.Get(code), outCode, true))
		}
	}
	return out
}

// recode copies c with the surrogate code of each row replaced by outCode.
// The source lines are kept as they are apart from the code, which is
// replaced at its first occurrence in the line. Gap filled lines end with
// " GF: <original code>".
func recode(c *srg.County, outCode int, gapfilled bool) *srg.County {
	out := srg.NewCounty(c.Code, outCode)
	for _, r := range c.Rows {
		line := strings.TrimSpace(r.Raw)
		if line == "" {
			line = r.Format()
		}
		line = strings.Replace(line, strconv.Itoa(r.Code), strconv.Itoa(outCode), 1)
		nr := r
		nr.Code = outCode
		if gapfilled {
			line += " GF: " + strconv.Itoa(r.Code)
			nr.GapfillCode = r.Code
		}
		nr.Raw = line
		out.Add(nr)
	}
	return out
}

// Line returns the output line of a gap filled row.
func Line(r srg.Row) string {
	if r.Raw != "" {
		return r.Raw
	}
	return r.Format()
}
