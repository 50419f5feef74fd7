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
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/srgtools/srg"
)

// NoFillSuffix ends the names of surrogate files that have not been gap filled.
const NoFillSuffix = "_NOFILL.txt"

// maxSources is the largest number of surrogates one command can combine.
const maxSources = 2

// Equation is a linear combination of at most two surrogates.
type Equation struct {
	F1, F2 float64
	expr   *govaluate.EvaluableExpression
}

// NewEquation returns the equation f1*v1 + f2*v2. A missing f2 is zero.
func NewEquation(factors ...float64) (*Equation, error) {
	if len(factors) == 0 || len(factors) > maxSources {
		return nil, fmt.Errorf("merge: an equation needs one or two factors but got %d", len(factors))
	}
	expr, err := govaluate.NewEvaluableExpression("f1 * v1 + f2 * v2")
	if err != nil {
		return nil, fmt.Errorf("merge: compiling equation: %v", err)
	}
	e := &Equation{F1: factors[0], expr: expr}
	if len(factors) == 2 {
		e.F2 = factors[1]
	}
	return e, nil
}

// Evaluate returns f1*v1 + f2*v2.
func (e *Equation) Evaluate(v1, v2 float64) (float64, error) {
	result, err := e.expr.Evaluate(map[string]interface{}{
		"f1": e.F1, "v1": v1,
		"f2": e.F2, "v2": v2,
	})
	if err != nil {
		return 0, fmt.Errorf("merge: evaluating equation: %v", err)
	}
	v, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("merge: equation result %v is not a number", result)
	}
	return v, nil
}

func (e *Equation) String() string {
	return fmt.Sprintf("%s*v1 + %s*v2", srg.FormatDouble(e.F1), srg.FormatDouble(e.F2))
}

// Resolver locates the surrogate files of a merge run that are referenced
// by surrogate name rather than by file path.
type Resolver struct {
	// Dir is the directory holding the files produced for every region.
	Dir string

	// Region is the region the merge run produces surrogates for.
	Region string

	// Catalog maps surrogate names to codes.
	Catalog *srg.Catalog

	// Instructions, if not nil, is used to make sure every source file
	// exists before anything runs.
	Instructions *srg.Instructions

	// Strict requires every factor to be between zero and one and the
	// factors of a command to add up to at most one.
	Strict bool
}

// NoFillFile returns the path of the ungapfilled file of the named surrogate
// in the given region.
func (r *Resolver) NoFillFile(name, region string) (string, error) {
	code, err := r.Catalog.Code(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.Dir, region+"_"+strconv.Itoa(code)+NoFillSuffix), nil
}

// Command is one parsed merge instruction.
type Command struct {
	Line     string
	Output   string
	Sources  []srg.SourceInfo
	Equation *Equation
}

// ParseCommand parses a line of the form
//	OUTSRG=<name>; f1*({file|name})[+f2*({file|name})]
// or
//	OUTSRG=<name>; <name>[<region>]
// A clause without a file, f*({name}), refers to the ungapfilled file of the
// named surrogate in the region of r.
func ParseCommand(line string, r *Resolver) (*Command, error) {
	if !strings.HasPrefix(line, srg.TagOutSrg) {
		return nil, lineErr(line, "'%s' tag not found", srg.TagOutSrg)
	}
	tokens := strings.Split(line, ";")
	if len(tokens) != 2 {
		return nil, lineErr(line, "expected format %s=<name>; <equation>", srg.TagOutSrg)
	}
	output, err := srg.OutSrg(line)
	if err != nil {
		return nil, err
	}
	c := &Command{Line: line, Output: output}
	body := strings.TrimSpace(tokens[1])

	var factors []float64
	switch {
	case strings.Contains(body, "[") && !strings.Contains(body, "({"):
		si, err := parseRegionReference(body, line, r)
		if err != nil {
			return nil, err
		}
		c.Sources = append(c.Sources, si)
		factors = append(factors, 1)
	default:
		clauses := strings.Split(body, "+")
		if len(clauses) > maxSources {
			return nil, lineErr(line, "merging is supported for a maximum of two surrogate files")
		}
		for _, clause := range clauses {
			f, si, err := parseClause(strings.TrimSpace(clause), line, r)
			if err != nil {
				return nil, err
			}
			factors = append(factors, f)
			c.Sources = append(c.Sources, si)
		}
	}
	if r.Strict {
		if err := checkFactors(factors, line); err != nil {
			return nil, err
		}
	}
	if c.Equation, err = NewEquation(factors...); err != nil {
		return nil, err
	}
	for _, si := range c.Sources {
		if r.Instructions == nil {
			continue
		}
		if err := r.Instructions.CheckSource(si.File); err != nil {
			return nil, srg.WithLine(err, line)
		}
	}
	return c, nil
}

// parseClause parses f*({file|name}) or f*({name}).
func parseClause(clause, line string, r *Resolver) (float64, srg.SourceInfo, error) {
	parts := strings.SplitN(clause, "*", 2)
	if len(parts) != 2 {
		return 0, srg.SourceInfo{}, lineErr(line, "expected <factor>*({<file>|<surrogate>}) but found '%s'", clause)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, srg.SourceInfo{}, lineErr(line, "the factor '%s' is not a number", strings.TrimSpace(parts[0]))
	}
	info := strings.TrimSpace(parts[1])
	if !strings.HasPrefix(info, "({") || !strings.HasSuffix(info, "})") {
		return 0, srg.SourceInfo{}, lineErr(line, "each part of the equation should be enclosed by '({' and '})'")
	}
	info = strings.TrimSpace(info[2 : len(info)-2])
	if strings.Contains(info, "|") {
		si, err := srg.ParseSourceInfo(info, line)
		return f, si, err
	}
	if r.Catalog == nil {
		return 0, srg.SourceInfo{}, lineErr(line, "no file given for surrogate '%s'", info)
	}
	file, err := r.NoFillFile(info, r.Region)
	if err != nil {
		return 0, srg.SourceInfo{}, err
	}
	return f, srg.SourceInfo{File: file, Name: info}, nil
}

// parseRegionReference parses name[region].
func parseRegionReference(body, line string, r *Resolver) (srg.SourceInfo, error) {
	parts := strings.Split(body, "[")
	if len(parts) != 2 || !strings.HasSuffix(strings.TrimSpace(parts[1]), "]") {
		return srg.SourceInfo{}, lineErr(line, "expected <surrogate>[<region>]")
	}
	name := strings.TrimSpace(parts[0])
	region := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), "]"))
	if name == "" || region == "" || strings.Contains(region, "]") {
		return srg.SourceInfo{}, lineErr(line, "expected <surrogate>[<region>]")
	}
	if r.Catalog == nil {
		return srg.SourceInfo{}, lineErr(line, "no cross reference available for surrogate '%s'", name)
	}
	file, err := r.NoFillFile(name, region)
	if err != nil {
		return srg.SourceInfo{}, err
	}
	return srg.SourceInfo{File: file, Name: name}, nil
}

func checkFactors(factors []float64, line string) error {
	var total float64
	for _, f := range factors {
		if f < 0 || f > 1 {
			return lineErr(line, "the merge factor %s is not between 0 and 1", srg.FormatDouble(f))
		}
		total += f
	}
	if total > 1 {
		return lineErr(line, "the merge factors add up to %s, which is more than 1", srg.FormatDouble(total))
	}
	return nil
}

func lineErr(line, format string, args ...interface{}) error {
	return &srg.FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
