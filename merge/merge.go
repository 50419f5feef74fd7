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

package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmodel/srgtools/srg"
	"gonum.org/v1/gonum/floats"
)

const delimiter = "\t"

// MergeCounties combines one or two sets of counties into one set with
// surrogate code outCode. With a single set every ratio is kept unchanged.
// With two sets the rows of each county are matched by Key and combined
// with eq, using zero for the value of a row or county missing from
// one of the sets.
func MergeCounties(sets []*srg.Counties, eq *Equation, outCode int) (*srg.Counties, error) {
	if len(sets) > maxSources {
		return nil, fmt.Errorf("merge: merging is supported for a maximum of two surrogate files, got %d", len(sets))
	}
	out := srg.NewCounties()
	for _, code := range countyCodes(sets) {
		if len(sets) == 1 {
			out.AddCounty(mergeOne(sets[0].Get(code), outCode))
			continue
		}
		c1, c2 := sets[0].Get(code), sets[1].Get(code)
		if c1 == nil {
			c1 = srg.NewCounty(code, -1)
		}
		if c2 == nil {
			c2 = srg.NewCounty(code, -1)
		}
		c, err := mergeTwo(c1, c2, eq, outCode)
		if err != nil {
			return nil, err
		}
		out.AddCounty(c)
	}
	return out, nil
}

func countyCodes(sets []*srg.Counties) []int {
	seen := make(map[int]bool)
	var codes []int
	for _, cs := range sets {
		for _, code := range cs.Codes() {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	sort.Ints(codes)
	return codes
}

// mergeOne copies the rows of the only county available.
func mergeOne(c *srg.County, outCode int) *srg.County {
	out := srg.NewCounty(c.Code, outCode)
	cumsum := floats.CumSum(make([]float64, len(c.Rows)), c.Ratios())
	for i, r := range c.Rows {
		out.Add(newRow(r, outCode, r.Ratio,
			fmt.Sprintf("Note: Only surrogate %d is available for this county%s%s",
				r.Code, delimiter, srg.FormatDouble(cumsum[i]))))
	}
	return out
}

func mergeTwo(c1, c2 *srg.County, eq *Equation, outCode int) (*srg.County, error) {
	index2 := make(map[srg.Key][]int)
	for j, r := range c2.Rows {
		index2[r.Key] = append(index2[r.Key], j)
	}
	matched1 := make([]bool, len(c1.Rows))
	matched2 := make([]bool, len(c2.Rows))
	var matched, only1, only2 []srg.Row

	for i, r1 := range c1.Rows {
		for _, j := range index2[r1.Key] {
			r2 := c2.Rows[j]
			v, err := eq.Evaluate(r1.Ratio, r2.Ratio)
			if err != nil {
				return nil, err
			}
			matched = append(matched, newRow(r1, outCode, v, audit(eq, r1.Ratio, r2.Ratio)))
			matched1[i] = true
			matched2[j] = true
		}
	}
	for i, r1 := range c1.Rows {
		if matched1[i] {
			continue
		}
		v, err := eq.Evaluate(r1.Ratio, 0)
		if err != nil {
			return nil, err
		}
		only1 = append(only1, newRow(r1, outCode, v, audit(eq, r1.Ratio, 0)))
	}
	for j, r2 := range c2.Rows {
		if matched2[j] {
			continue
		}
		v, err := eq.Evaluate(0, r2.Ratio)
		if err != nil {
			return nil, err
		}
		only2 = append(only2, newRow(r2, outCode, v, audit(eq, 0, r2.Ratio)))
	}

	rows := append(append(matched, only1...), only2...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key.Less(rows[j].Key) })

	// Rows with the same key are kept once, the first one in the order
	// matched, first set only, second set only.
	out := srg.NewCounty(c1.Code, outCode)
	var sum float64
	for i, r := range rows {
		if i > 0 && r.Key == rows[i-1].Key {
			continue
		}
		sum += r.Ratio
		r.Comment += delimiter + srg.FormatDouble(sum)
		out.Add(r)
	}
	return out, nil
}

// audit returns the factor and value record of a merged row.
func audit(eq *Equation, v1, v2 float64) string {
	return strings.Join([]string{
		srg.FormatDouble(eq.F1), srg.FormatDouble(v1),
		srg.FormatDouble(eq.F2), srg.FormatDouble(v2),
	}, delimiter) + delimiter
}

func newRow(r srg.Row, outCode int, ratio float64, comment string) srg.Row {
	return srg.Row{
		Code:       outCode,
		Key:        r.Key,
		Ratio:      ratio,
		Comment:    comment,
		Annotation: srg.Annotation{GapfillCode: -1},
	}
}
