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
	"math"
	"strings"
)

// IsComment returns whether line is blank or a comment.
func IsComment(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "#")
}

// IsGridHeader returns whether line is a #GRID or #POLYGON descriptor.
func IsGridHeader(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "#GRID") || strings.HasPrefix(line, "#POLYGON")
}

// Layout specifies which of the two surrogate file dialects is in use.
type Layout int

const (
	// Polygon rows have a single combined index.
	Polygon Layout = iota
	// Grid rows have a row and a column index.
	Grid
)

// LayoutOf returns the layout described by a header line.
func LayoutOf(header string) Layout {
	if strings.Contains(header, "GRID") {
		return Grid
	}
	return Polygon
}

// MinTokens is the minimum number of fields in a data row.
func (l Layout) MinTokens() int {
	if l == Grid {
		return 5
	}
	return 4
}

func (l Layout) String() string {
	if l == Grid {
		return "GRID"
	}
	return "POLYGON"
}

// DefaultPrecision is the tolerance used when checking that ratios sum to one.
const DefaultPrecision Precision = 1e-5

// Precision is the tolerance for a county total to count as one.
type Precision float64

// IsOne returns whether sum is within p of one.
func (p Precision) IsOne(sum float64) bool {
	return math.Abs(sum-1) <= float64(p)
}

// DefaultThreshold is the ratio above which QA holds individual cells.
const DefaultThreshold Threshold = 0.5

// thresholdMargin is how far above the threshold a ratio has to be.
const thresholdMargin = 1e-5

// Threshold is the ratio cutoff for the QA threshold report.
type Threshold float64

// IsBig returns whether v is at least thresholdMargin above t.
func (t Threshold) IsBig(v float64) bool {
	return v-float64(t) >= thresholdMargin
}
