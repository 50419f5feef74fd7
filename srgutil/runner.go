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

package srgutil

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/srgtools/gapfill"
	"github.com/spatialmodel/srgtools/merge"
	"github.com/spatialmodel/srgtools/normalize"
	"github.com/spatialmodel/srgtools/qa"
	"github.com/spatialmodel/srgtools/srg"
)

// SurrogateGenerator carries out the surrogate processing operations.
type SurrogateGenerator interface {
	// Merge runs the merge instruction file at input.
	Merge(ctx context.Context, input string) error

	// Gapfill runs the gapfill instruction file at input.
	Gapfill(ctx context.Context, input string) error

	// Normalize normalizes the surrogate files listed in the SRGDESC
	// catalog at srgdesc, leaving the counties listed in the file at
	// exclude alone. exclude may be empty.
	Normalize(ctx context.Context, srgdesc, exclude string, precision float64) error

	// QA creates the QA reports for the SRGDESC catalog at srgdesc.
	QA(ctx context.Context, srgdesc string, threshold float64) error
}

// InProcess is a SurrogateGenerator that runs the operations within the
// current process.
type InProcess struct {
	// Strict enables the merge factor range check.
	Strict bool

	// XLSX specifies whether QA reports are also written as workbooks.
	XLSX bool

	Log logrus.FieldLogger
}

// Merge implements SurrogateGenerator.
func (p *InProcess) Merge(ctx context.Context, input string) error {
	m := merge.NewMerger()
	m.Strict = p.Strict
	if p.Log != nil {
		m.Log = p.Log
	}
	return m.Run(input)
}

// Gapfill implements SurrogateGenerator.
func (p *InProcess) Gapfill(ctx context.Context, input string) error {
	g := gapfill.NewGapfiller()
	if p.Log != nil {
		g.Log = p.Log
	}
	return g.Run(input)
}

// Normalize implements SurrogateGenerator.
func (p *InProcess) Normalize(ctx context.Context, srgdesc, exclude string, precision float64) error {
	n := normalize.NewNormalizer()
	if p.Log != nil {
		n.Log = p.Log
	}
	if precision > 0 {
		n.Precision = srg.Precision(precision)
	}
	if exclude != "" {
		e, err := normalize.ReadExcludeFile(exclude)
		if err != nil {
			return err
		}
		n.Exclude = e
	}
	return n.Run(srgdesc)
}

// QA implements SurrogateGenerator.
func (p *InProcess) QA(ctx context.Context, srgdesc string, threshold float64) error {
	r := qa.NewReporter()
	if p.Log != nil {
		r.Log = p.Log
	}
	r.Threshold = srg.Threshold(threshold)
	r.XLSX = p.XLSX
	return r.Run(srgdesc)
}

// External is a SurrogateGenerator that runs each operation as a separate
// program. Each program receives the same arguments as the corresponding
// srgtools command.
type External struct {
	MergeExe, GapfillExe, NormalizeExe, QAExe string

	Log logrus.FieldLogger
}

// Merge implements SurrogateGenerator.
func (e *External) Merge(ctx context.Context, input string) error {
	return e.run(ctx, "merge", e.MergeExe, input)
}

// Gapfill implements SurrogateGenerator.
func (e *External) Gapfill(ctx context.Context, input string) error {
	return e.run(ctx, "gapfill", e.GapfillExe, input)
}

// Normalize implements SurrogateGenerator.
func (e *External) Normalize(ctx context.Context, srgdesc, exclude string, precision float64) error {
	args := []string{srgdesc}
	if exclude != "" {
		args = append(args, exclude)
	}
	if precision > 0 {
		args = append(args, strconv.FormatFloat(precision, 'g', -1, 64))
	}
	return e.run(ctx, "normalize", e.NormalizeExe, args...)
}

// QA implements SurrogateGenerator.
func (e *External) QA(ctx context.Context, srgdesc string, threshold float64) error {
	return e.run(ctx, "qa", e.QAExe, srgdesc, strconv.FormatFloat(threshold, 'g', -1, 64))
}

func (e *External) run(ctx context.Context, op, exe string, args ...string) error {
	if exe == "" {
		return fmt.Errorf("srgutil: no external program is configured for %s", op)
	}
	log := e.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"operation": op, "program": exe})

	cmd := exec.CommandContext(ctx, exe, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("srgutil: %s: %v", op, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("srgutil: %s: %v", op, err)
	}
	log.WithField("args", args).Info("srgutil: starting external program")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("srgutil: starting %s: %v", exe, err)
	}

	// Both pipes have to be read to the end before Wait is called.
	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, stdout, log.Info)
	go drain(&wg, stderr, log.Warn)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("srgutil: %s: running %s: %v", op, exe, err)
	}
	return nil
}

// drain logs each line read from r.
func drain(wg *sync.WaitGroup, r io.Reader, logf func(...interface{})) {
	defer wg.Done()
	s := bufio.NewScanner(r)
	for s.Scan() {
		logf(s.Text())
	}
}
