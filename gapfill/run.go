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
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/srgtools/srg"
)

// Gapfiller runs gapfill instruction files.
type Gapfiller struct {
	Log logrus.FieldLogger
}

// NewGapfiller returns a Gapfiller that logs to the standard logger.
func NewGapfiller() *Gapfiller {
	return &Gapfiller{Log: logrus.StandardLogger()}
}

// Run carries out the gapfill instruction file at path. OUTSRG lines
// without a GAPFILL tag are skipped with a warning. Otherwise it behaves
// like merge.Merger.Run: structural problems, including a gap in a
// fallback chain, stop the run before anything is written, and any other
// failing command is logged and skipped.
func (g *Gapfiller) Run(path string) error {
	log := g.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("file", path).Info("gapfill: reading instruction file")
	in, err := srg.ReadInstructionsFile(path)
	if err != nil {
		return err
	}
	var lines []string
	for _, line := range in.Commands {
		if !strings.Contains(line, TagGapfill) {
			log.WithField("line", line).Warnf("gapfill: the line does not contain the '%s' tag", TagGapfill)
			continue
		}
		lines = append(lines, line)
	}
	if err := in.Verify("gapfill", len(lines)); err != nil {
		return err
	}
	var commands []*Command
	var files, failed []string
	for _, line := range lines {
		c, err := ParseCommand(line, in)
		if err != nil {
			if srg.IsStructural(err) {
				return err
			}
			log.WithError(err).WithField("command", line).Error("gapfill: skipping command")
			failed = append(failed, commandName(line))
			continue
		}
		commands = append(commands, c)
		for _, si := range c.Sources {
			if !in.IsOutput(si.File) {
				files = append(files, si.File)
			}
		}
	}
	header, err := srg.CheckGrids(files)
	if err != nil {
		return err
	}
	xref, err := srg.ReadCrossReferenceFile(in.XrefFile)
	if err != nil {
		return err
	}
	if err := os.Remove(in.OutFile); err != nil && !os.IsNotExist(err) {
		return &srg.IOError{Op: "removing output file", Path: in.OutFile, Err: err}
	}

	out := &srg.Output{Header: header, Input: in.Lines, Line: Line}
	for _, c := range commands {
		cs, err := g.gapfill(c, xref, out)
		if err != nil {
			log.WithError(err).WithField("command", c.Line).Error("gapfill: skipping command")
			failed = append(failed, c.Output)
			continue
		}
		out.AddCounties(cs)
		if err := out.WriteFile(in.OutFile); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"surrogate": c.Output,
			"sources":   len(c.Sources),
			"counties":  cs.Len(),
		}).Info("gapfill: finished command")
	}
	if len(failed) > 0 {
		return fmt.Errorf("gapfill: %d of %d commands failed: %s", len(failed), len(lines), strings.Join(failed, ", "))
	}
	log.WithField("file", in.OutFile).Info("gapfill: finished")
	return nil
}

func commandName(line string) string {
	if name, err := srg.OutSrg(line); err == nil {
		return name
	}
	return line
}

func (g *Gapfiller) gapfill(c *Command, xref *srg.Catalog, out *srg.Output) (*srg.Counties, error) {
	outCode, err := xref.Code(c.Output)
	if err != nil {
		return nil, err
	}
	primary, err := srg.ReadSurrogate(c.Primary(), xref)
	if err != nil {
		return nil, err
	}
	var fallbacks []*srg.Counties
	for _, si := range c.Fallbacks() {
		cs, err := srg.ReadSurrogate(si, xref)
		if err != nil {
			return nil, err
		}
		fallbacks = append(fallbacks, cs)
	}
	filled := Gapfill(primary, fallbacks, outCode)

	out.AddSrgDesc(outCode, c.Output)
	for _, si := range c.Sources {
		code, err := xref.Code(si.Name)
		if err != nil {
			return nil, err
		}
		out.AddSrgDesc(code, si.Name)
	}
	return filled, nil
}
