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

package qa

import (
	"fmt"
	"strconv"

	"github.com/spatialmodel/srgtools/srg"
)

// Kind is a type of QA report.
type Kind int

// These are the reports created for each region.
const (
	Summary Kind = iota
	Gapfill
	NoData
	Not1
	ThresholdKind
)

// Kinds lists the reports in the order they are written.
var Kinds = []Kind{Summary, Gapfill, NoData, Not1, ThresholdKind}

func (k Kind) String() string {
	switch k {
	case Summary:
		return "summary"
	case Gapfill:
		return "gapfill"
	case NoData:
		return "nodata"
	case Not1:
		return "not1"
	case ThresholdKind:
		return "threshold"
	default:
		panic(fmt.Errorf("qa: invalid report kind %d", int(k)))
	}
}

// Reports creates the QA report tables for one region.
type Reports struct {
	Agg *Aggregate

	// Catalog supplies the surrogate names.
	Catalog *srg.Catalog

	// Header holds the lines written at the top of every report.
	Header []string

	Layout    srg.Layout
	Precision srg.Precision

	codes []int
	names []string
}

// NewReports prepares the reports of agg. It returns an error if agg is
// empty or a surrogate code is not in c.
func NewReports(agg *Aggregate, c *srg.Catalog, header []string, layout srg.Layout, p srg.Precision) (*Reports, error) {
	if agg.Empty() {
		return nil, fmt.Errorf("qa: there is no data for region '%s'", c.Region)
	}
	r := &Reports{
		Agg:       agg,
		Catalog:   c,
		Header:    header,
		Layout:    layout,
		Precision: p,
		codes:     agg.SurrogateCodes(),
	}
	for _, code := range r.codes {
		name, err := c.Name(code)
		if err != nil {
			return nil, err
		}
		r.names = append(r.names, `"`+name+`"`)
	}
	return r, nil
}

// Table returns the report of kind k.
func (r *Reports) Table(k Kind) srg.Table {
	switch k {
	case Summary:
		return r.table(nil, r.summary)
	case Gapfill:
		return r.table(nil, r.gapfill)
	case NoData:
		return r.table(r.hasNoData, r.nodata)
	case Not1:
		return r.table(r.hasNot1, r.not1)
	case ThresholdKind:
		return r.threshold()
	default:
		panic(fmt.Errorf("qa: invalid report kind %d", int(k)))
	}
}

func (r *Reports) start() srg.Table {
	var t srg.Table
	for _, h := range r.Header {
		t = append(t, []string{h})
	}
	return t
}

// table creates a county by surrogate report. Only counties for which
// include returns true are written if include is not nil.
func (r *Reports) table(include func(*County) bool, value func(*Cell) string) srg.Table {
	t := r.start()
	t = append(t, append([]string{"COUNTY"}, itoa(r.codes)...))
	t = append(t, append([]string{""}, r.names...))
	for _, code := range r.Agg.CountyCodes() {
		c := r.Agg.County(code)
		if include != nil && !include(c) {
			continue
		}
		row := []string{strconv.Itoa(c.Code)}
		for _, s := range r.codes {
			row = append(row, value(c.Cell(s)))
		}
		t = append(t, row)
	}
	return t
}

func (r *Reports) isOne(c *Cell) bool { return r.Precision.IsOne(c.Sum()) }

func (r *Reports) summary(c *Cell) string {
	if c == nil {
		return "NODATA"
	}
	var v string
	if !r.isOne(c) {
		v = "NOT1:" + formatSum(c.Sum())
	}
	if c.IsGapfilled() {
		if v != "" {
			v += ";"
		}
		v += "GF:" + strconv.Itoa(c.GapfillCode)
	}
	return v
}

func (r *Reports) gapfill(c *Cell) string {
	if c == nil || !c.IsGapfilled() {
		return ""
	}
	return strconv.Itoa(c.GapfillCode)
}

func (r *Reports) hasNoData(c *County) bool {
	for _, s := range r.codes {
		if c.Cell(s) == nil {
			return true
		}
	}
	return false
}

func (r *Reports) nodata(c *Cell) string {
	if c == nil {
		return "NODATA"
	}
	return ""
}

func (r *Reports) hasNot1(c *County) bool {
	for _, s := range r.codes {
		if cell := c.Cell(s); cell != nil && !r.isOne(cell) {
			return true
		}
	}
	return false
}

func (r *Reports) not1(c *Cell) string {
	if c == nil || r.isOne(c) {
		return ""
	}
	return formatSum(c.Sum())
}

// threshold creates the report of held grid cells, with one row
// per county and held cell.
func (r *Reports) threshold() srg.Table {
	t := r.start()
	t = append(t, []string{"Threshold: " + srg.FormatDouble(float64(r.Agg.Threshold))})
	index := []string{"COUNTY", "POLYID"}
	if r.Layout == srg.Grid {
		index = []string{"COUNTY", "COL", "ROW"}
	}
	t = append(t, append(index, itoa(r.codes)...))
	t = append(t, append(make([]string, len(index)), r.names...))
	for _, code := range r.Agg.CountyCodes() {
		c := r.Agg.County(code)
		for _, g := range c.HoldGrids() {
			row := []string{strconv.Itoa(c.Code)}
			if r.Layout == srg.Grid {
				row = append(row, strconv.FormatInt(g.Col, 10))
			}
			row = append(row, strconv.FormatInt(g.Row, 10))
			for _, s := range r.codes {
				var v string
				if cell := c.Cell(s); cell != nil {
					if h, ok := cell.HeldAt(g); ok {
						v = formatSum(h.Ratio)
					}
				}
				row = append(row, v)
			}
			t = append(t, row)
		}
	}
	return t
}

func formatSum(v float64) string { return fmt.Sprintf("%.8f", v) }

func itoa(v []int) []string {
	o := make([]string, len(v))
	for i, x := range v {
		o[i] = strconv.Itoa(x)
	}
	return o
}
