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
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/srgtools/srg"
)

// Merger runs merge instruction files.
type Merger struct {
	// Region is the region the merged surrogates are produced for. If it is
	// empty, the part of the OUTFILE name before the first '_' is used.
	Region string

	// Strict enables the factor range check of ParseCommand.
	Strict bool

	Log logrus.FieldLogger
}

// NewMerger returns a Merger that logs to the standard logger.
func NewMerger() *Merger {
	return &Merger{Log: logrus.StandardLogger()}
}

// Run carries out the merge instruction file at path. Missing tags and
// mismatched grids stop the run before anything is written. A command
// that cannot be parsed or carried out is logged and skipped, and
// OUTFILE is rewritten after every command that succeeds.
func (m *Merger) Run(path string) error {
	log := m.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("file", path).Info("merge: reading instruction file")
	in, err := srg.ReadInstructionsFile(path)
	if err != nil {
		return err
	}
	if err := in.Verify("merge", len(in.Commands)); err != nil {
		return err
	}
	xref, err := srg.ReadCrossReferenceFile(in.XrefFile)
	if err != nil {
		return err
	}
	r := &Resolver{
		Dir:          filepath.Dir(in.OutFile),
		Region:       m.region(in.OutFile),
		Catalog:      xref,
		Instructions: in,
		Strict:       m.Strict,
	}
	commands := make([]*Command, 0, len(in.Commands))
	var files, failed []string
	for _, line := range in.Commands {
		c, err := ParseCommand(line, r)
		if err != nil {
			if srg.IsStructural(err) {
				return err
			}
			log.WithError(err).WithField("command", line).Error("merge: skipping command")
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
	if err := os.Remove(in.OutFile); err != nil && !os.IsNotExist(err) {
		return &srg.IOError{Op: "removing output file", Path: in.OutFile, Err: err}
	}

	out := &srg.Output{Header: header, Input: in.Lines}
	for _, c := range commands {
		cs, err := m.merge(c, xref, out)
		if err != nil {
			log.WithError(err).WithField("command", c.Line).Error("merge: skipping command")
			failed = append(failed, c.Output)
			continue
		}
		out.AddCounties(cs)
		if err := out.WriteFile(in.OutFile); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"surrogate": c.Output,
			"equation":  c.Equation.String(),
			"counties":  cs.Len(),
		}).Info("merge: finished command")
	}
	if len(failed) > 0 {
		return fmt.Errorf("merge: %d of %d commands failed: %s", len(failed), len(in.Commands), strings.Join(failed, ", "))
	}
	log.WithField("file", in.OutFile).Info("merge: finished")
	return nil
}

func (m *Merger) merge(c *Command, xref *srg.Catalog, out *srg.Output) (*srg.Counties, error) {
	outCode, err := xref.Code(c.Output)
	if err != nil {
		return nil, err
	}
	sets := make([]*srg.Counties, len(c.Sources))
	for i, si := range c.Sources {
		if sets[i], err = srg.ReadSurrogate(si, xref); err != nil {
			return nil, err
		}
	}
	merged, err := MergeCounties(sets, c.Equation, outCode)
	if err != nil {
		return nil, err
	}
	out.AddSrgDesc(outCode, c.Output)
	for _, si := range c.Sources {
		code, err := xref.Code(si.Name)
		if err != nil {
			return nil, err
		}
		out.AddSrgDesc(code, si.Name)
	}
	return merged, nil
}

// commandName returns the output surrogate name of an OUTSRG line, or
// the line itself if it has none.
func commandName(line string) string {
	if name, err := srg.OutSrg(line); err == nil {
		return name
	}
	return line
}

// region returns m.Region, or the region prefix of the output file name.
func (m *Merger) region(outFile string) string {
	if m.Region != "" {
		return m.Region
	}
	base := strings.TrimSuffix(filepath.Base(outFile), filepath.Ext(outFile))
	if i := strings.Index(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}
