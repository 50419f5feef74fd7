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
	"fmt"
	"strconv"
	"strings"
)

// NoColumn is the Secondary index of rows without a column (polygon layout).
const NoColumn int64 = -1

// Key identifies a spatial location within a county. Rows from different
// files are matched by Key.
type Key struct {
	County int
	// Primary is the grid row, or the combined tract and county id for
	// the polygon layout.
	Primary int64
	// Secondary is the grid column, or NoColumn.
	Secondary int64
}

// Less returns whether k sorts before o.
func (k Key) Less(o Key) bool {
	if k.County != o.County {
		return k.County < o.County
	}
	if k.Primary != o.Primary {
		return k.Primary < o.Primary
	}
	return k.Secondary < o.Secondary
}

// Annotation holds the operation-specific information attached to a Row.
type Annotation struct {
	// GapfillCode is the code of the fallback surrogate that supplied the
	// row, or -1.
	GapfillCode int
	// Held marks rows kept for the QA threshold report.
	Held bool
	// Raw is the line the row was parsed from.
	Raw string
}

// Row is one surrogate data record.
type Row struct {
	Code int
	Key
	Ratio   float64
	Comment string
	Annotation
}

// ParseRow parses a tab-delimited data row in the given layout.
func ParseRow(line string, layout Layout) (Row, error) {
	min := layout.MinTokens()
	tokens := SplitTab(strings.TrimSpace(line))
	if len(tokens) < min {
		return Row{}, formatErr(line, "expected at least %d fields but found %d", min, len(tokens))
	}
	r := Row{Annotation: Annotation{GapfillCode: -1, Raw: line}}
	var err error
	if r.Code, err = strconv.Atoi(strings.TrimSpace(tokens[0])); err != nil {
		return Row{}, formatErr(line, "invalid surrogate code '%s'", tokens[0])
	}
	if r.County, err = strconv.Atoi(strings.TrimSpace(tokens[1])); err != nil {
		return Row{}, formatErr(line, "invalid county code '%s'", tokens[1])
	}
	if r.Primary, err = strconv.ParseInt(strings.TrimSpace(tokens[2]), 10, 64); err != nil {
		return Row{}, formatErr(line, "invalid row index '%s'", tokens[2])
	}
	r.Secondary = NoColumn
	if layout == Grid {
		if r.Secondary, err = strconv.ParseInt(strings.TrimSpace(tokens[3]), 10, 64); err != nil {
			return Row{}, formatErr(line, "invalid column index '%s'", tokens[3])
		}
	}

	// Text appended directly after the ratio (for example by gap filling)
	// belongs to the comment.
	ratioFields := strings.Fields(tokens[min-1])
	if len(ratioFields) == 0 {
		return Row{}, formatErr(line, "missing ratio")
	}
	if r.Ratio, err = strconv.ParseFloat(ratioFields[0], 64); err != nil {
		return Row{}, formatErr(line, "invalid ratio '%s'", ratioFields[0])
	}
	rest := strings.Join(ratioFields[1:], " ")
	if len(tokens) > min {
		rest += "\t" + strings.Join(tokens[min:], "\t")
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "!") {
		rest = strings.TrimSpace(rest[1:])
	}
	r.Comment = rest

	last := tokens[len(tokens)-1]
	if i := strings.LastIndex(last, "GF:"); i != -1 {
		s := strings.TrimSpace(last[i+len("GF:"):])
		if f := strings.Fields(s); len(f) > 0 {
			s = f[0]
		}
		if r.GapfillCode, err = strconv.Atoi(s); err != nil {
			return Row{}, formatErr(line, "invalid gapfill code '%s'", s)
		}
	}
	return r, nil
}

// Cell returns the grid cell of r.
func (r Row) Cell() GridCell {
	return GridCell{Row: r.Primary, Col: r.Secondary}
}

// Format returns r as a surrogate file data line. A non-empty comment is
// separated from the ratio by a '!' field.
func (r Row) Format() string {
	var b strings.Builder
	r.writeIndex(&b)
	if strings.TrimSpace(r.Comment) != "" {
		b.WriteString("\t!\t")
		b.WriteString(r.Comment)
	}
	return b.String()
}

// FormatNormalized returns r in the form written by normalization, where
// the '!' field always follows the ratio.
func (r Row) FormatNormalized() string {
	var b strings.Builder
	r.writeIndex(&b)
	b.WriteString("!\t")
	b.WriteString(r.Comment)
	return b.String()
}

func (r Row) writeIndex(b *strings.Builder) {
	fmt.Fprintf(b, "%d\t%05d\t", r.Code, r.County)
	if r.Secondary == NoColumn {
		fmt.Fprintf(b, "%011d\t", r.Primary)
	} else {
		fmt.Fprintf(b, "%d\t%d\t", r.Primary, r.Secondary)
	}
	fmt.Fprintf(b, "%.8f\t", r.Ratio)
}

// GridCell identifies a spatial cell independently of county.
type GridCell struct {
	Row, Col int64
}

// Less returns whether c sorts before o.
func (c GridCell) Less(o GridCell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}
