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

// Package qa creates quality assurance reports for the surrogate files
// listed in a SRGDESC catalog.
package qa

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spatialmodel/srgtools/srg"
	"gonum.org/v1/gonum/floats"
)

// NoFillTag marks surrogate files that have not been gap filled.
const NoFillTag = "NOFILL"

// Cell holds the rows of one surrogate in one county.
type Cell struct {
	Code int

	// GapfillCode is the fallback surrogate code of the first row of the
	// cell, or -1.
	GapfillCode int

	// Held holds the rows whose ratio is above the threshold.
	Held []srg.Row

	ratios []float64
}

func (c *Cell) add(r srg.Row) {
	c.ratios = append(c.ratios, r.Ratio)
	if r.Held {
		c.Held = append(c.Held, r)
	}
}

// Sum returns the total ratio of the cell.
func (c *Cell) Sum() float64 {
	return floats.Sum(c.ratios)
}

// IsGapfilled returns whether the cell was supplied by a fallback surrogate.
func (c *Cell) IsGapfilled() bool { return c.GapfillCode != -1 }

// HeldAt returns the first held row at grid cell g.
func (c *Cell) HeldAt(g srg.GridCell) (srg.Row, bool) {
	for _, r := range c.Held {
		if r.Cell() == g {
			return r, true
		}
	}
	return srg.Row{}, false
}

// County holds the cells of every surrogate in one county.
type County struct {
	Code  int
	cells map[int]*Cell
	hold  map[srg.GridCell]bool
}

// Cell returns the cell of the given surrogate, or nil if the county
// has no data for it.
func (c *County) Cell(code int) *Cell {
	return c.cells[code]
}

// HoldGrids returns the grid cells that hold at least one ratio above the
// threshold, in order.
func (c *County) HoldGrids() []srg.GridCell {
	o := make([]srg.GridCell, 0, len(c.hold))
	for g := range c.hold {
		o = append(o, g)
	}
	sort.Slice(o, func(i, j int) bool { return o[i].Less(o[j]) })
	return o
}

// Aggregate collects the rows of all surrogate files of one region.
type Aggregate struct {
	Threshold srg.Threshold

	counties map[int]*County
	codes    map[int]bool
}

// NewAggregate returns an empty Aggregate.
func NewAggregate(t srg.Threshold) *Aggregate {
	return &Aggregate{
		Threshold: t,
		counties:  make(map[int]*County),
		codes:     make(map[int]bool),
	}
}

// Add adds r to the aggregate. The gapfill code of r is ignored unless
// gapfilled is true.
func (a *Aggregate) Add(r srg.Row, gapfilled bool) {
	if !gapfilled {
		r.GapfillCode = -1
	}
	r.Held = a.Threshold.IsBig(r.Ratio)
	c, ok := a.counties[r.County]
	if !ok {
		c = &County{Code: r.County, cells: make(map[int]*Cell), hold: make(map[srg.GridCell]bool)}
		a.counties[r.County] = c
	}
	cell, ok := c.cells[r.Code]
	if !ok {
		cell = &Cell{Code: r.Code, GapfillCode: r.GapfillCode}
		c.cells[r.Code] = cell
	}
	if r.Held {
		c.hold[r.Cell()] = true
	}
	cell.add(r)
	a.codes[r.Code] = true
}

// IsGapfilled returns whether the surrogate file at path has been gap
// filled, which is the case unless its name contains NoFillTag.
func IsGapfilled(path string) bool {
	return !strings.Contains(filepath.Base(path), NoFillTag)
}

// AddFile adds the rows of the surrogate file of e whose surrogate code
// matches the code of e.
func (a *Aggregate) AddFile(e srg.DescriptionEntry, layout srg.Layout) error {
	fr := srg.NewFileReader(e.File, layout)
	fr.Code = e.Code
	gapfilled := IsGapfilled(e.File)
	return fr.ReadFile(func(c *srg.County) error {
		for _, r := range c.Rows {
			a.Add(r, gapfilled)
		}
		return nil
	})
}

// Empty returns whether no rows have been added.
func (a *Aggregate) Empty() bool { return len(a.counties) == 0 }

// County returns the county with the given code, or nil.
func (a *Aggregate) County(code int) *County { return a.counties[code] }

// CountyCodes returns the county codes in increasing order.
func (a *Aggregate) CountyCodes() []int {
	o := make([]int, 0, len(a.counties))
	for c := range a.counties {
		o = append(o, c)
	}
	sort.Ints(o)
	return o
}

// SurrogateCodes returns the surrogate codes seen in increasing order.
func (a *Aggregate) SurrogateCodes() []int {
	o := make([]int, 0, len(a.codes))
	for c := range a.codes {
		o = append(o, c)
	}
	sort.Ints(o)
	return o
}
