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
	"sort"

	"gonum.org/v1/gonum/floats"
)

// County holds the rows of one surrogate for one county.
type County struct {
	Code          int
	SurrogateCode int
	Rows          []Row
}

// NewCounty initializes a new County.
func NewCounty(code, surrogateCode int) *County {
	return &County{Code: code, SurrogateCode: surrogateCode}
}

// Add appends rows to c.
func (c *County) Add(rows ...Row) {
	c.Rows = append(c.Rows, rows...)
}

// Ratios returns the ratios of the rows of c.
func (c *County) Ratios() []float64 {
	r := make([]float64, len(c.Rows))
	for i, row := range c.Rows {
		r[i] = row.Ratio
	}
	return r
}

// Sum returns the sum of the ratios in c.
func (c *County) Sum() float64 {
	return floats.Sum(c.Ratios())
}

// Normalize divides every ratio by the county total unless the total is
// already one within p. It returns whether any ratio was changed.
func (c *County) Normalize(p Precision) bool {
	sum := c.Sum()
	if p.IsOne(sum) {
		return false
	}
	for i := range c.Rows {
		c.Rows[i].Ratio /= sum
	}
	return true
}

// Sort sorts the rows of c by Key.
func (c *County) Sort() {
	sort.SliceStable(c.Rows, func(i, j int) bool { return c.Rows[i].Key.Less(c.Rows[j].Key) })
}

// Counties holds the counties of one surrogate file, keyed by county code.
type Counties struct {
	counties map[int]*County
	order    []int
}

// NewCounties initializes a new Counties object.
func NewCounties() *Counties {
	return &Counties{counties: make(map[int]*County)}
}

// Add adds row to the county it belongs to, creating the county if
// necessary.
func (cs *Counties) Add(row Row) {
	c, ok := cs.counties[row.County]
	if !ok {
		c = NewCounty(row.County, row.Code)
		cs.counties[row.County] = c
		cs.order = append(cs.order, row.County)
	}
	c.Add(row)
}

// AddCounty adds c unless a county with the same code is already present.
// It returns whether c was added.
func (cs *Counties) AddCounty(c *County) bool {
	if c == nil {
		return false
	}
	if _, ok := cs.counties[c.Code]; ok {
		return false
	}
	cs.counties[c.Code] = c
	cs.order = append(cs.order, c.Code)
	return true
}

// Get returns the county with the given code, or nil.
func (cs *Counties) Get(code int) *County {
	return cs.counties[code]
}

// Has returns whether the county with the given code is present.
func (cs *Counties) Has(code int) bool {
	_, ok := cs.counties[code]
	return ok
}

// Codes returns the county codes in increasing order.
func (cs *Counties) Codes() []int {
	codes := append([]int(nil), cs.order...)
	sort.Ints(codes)
	return codes
}

// Order returns the county codes in the order they were added.
func (cs *Counties) Order() []int {
	return append([]int(nil), cs.order...)
}

// Len returns the number of counties.
func (cs *Counties) Len() int { return len(cs.order) }

// Rows returns the rows of all counties, in county code order.
func (cs *Counties) Rows() []Row {
	var rows []Row
	for _, code := range cs.Codes() {
		rows = append(rows, cs.counties[code].Rows...)
	}
	return rows
}
