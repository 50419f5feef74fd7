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
	"fmt"
	"strings"

	"github.com/spatialmodel/srgtools/srg"
)

// TagGapfill introduces the source list of a gapfill command.
const TagGapfill = "GAPFILL"

// Command is one parsed gapfill instruction. The first source is the
// primary surrogate and the rest are fallbacks in priority order.
type Command struct {
	Line    string
	Output  string
	Sources []srg.SourceInfo
}

// Primary returns the primary source.
func (c *Command) Primary() srg.SourceInfo { return c.Sources[0] }

// Fallbacks returns the fallback sources in priority order.
func (c *Command) Fallbacks() []srg.SourceInfo { return c.Sources[1:] }

// ParseCommand parses a line of the form
//	OUTSRG=<name>; GAPFILL=<file>|<name>;<file>|<name>;...
// If in is not nil, every source file other than the run's output file
// must exist.
func ParseCommand(line string, in *srg.Instructions) (*Command, error) {
	if !strings.HasPrefix(line, srg.TagOutSrg) {
		return nil, lineErr(line, "'%s' tag not found", srg.TagOutSrg)
	}
	i := strings.Index(line, TagGapfill)
	if i == -1 {
		return nil, lineErr(line, "'%s' tag not found", TagGapfill)
	}
	output, err := srg.OutSrg(line)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(line[i+len(TagGapfill):])
	if !strings.HasPrefix(body, "=") {
		return nil, lineErr(line, "missing '=' after the %s tag", TagGapfill)
	}
	infos := strings.Split(strings.TrimSpace(body[1:]), ";")
	if err := ValidateChain(infos, line); err != nil {
		return nil, err
	}
	c := &Command{Line: line, Output: output}
	for _, info := range infos {
		if strings.TrimSpace(info) == "" {
			continue
		}
		si, err := srg.ParseSourceInfo(info, line)
		if err != nil {
			return nil, err
		}
		if in != nil {
			if err := in.CheckSource(si.File); err != nil {
				return nil, srg.WithLine(err, line)
			}
		}
		c.Sources = append(c.Sources, si)
	}
	return c, nil
}

// ValidateChain makes sure the source list has a primary surrogate and no
// gaps: a fallback may only be given if every fallback of higher priority
// is. Empty entries at the end of the list are ignored.
func ValidateChain(infos []string, line string) error {
	n := len(infos)
	for n > 0 && strings.TrimSpace(infos[n-1]) == "" {
		n--
	}
	if n == 0 {
		return lineErr(line, "no surrogates given after the %s tag", TagGapfill)
	}
	for i := 0; i < n; i++ {
		if strings.TrimSpace(infos[i]) == "" {
			return srg.Structuralf("%s: surrogate %d of the fallback chain is missing although surrogate %d is given: line '%s'",
				TagGapfill, i+1, n, line)
		}
	}
	return nil
}

func lineErr(line, format string, args ...interface{}) error {
	return &srg.FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
