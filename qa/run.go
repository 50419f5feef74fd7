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
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/srgtools/srg"
	"github.com/tealeg/xlsx"
)

// Reporter creates the QA reports for every region of a SRGDESC catalog.
type Reporter struct {
	// Threshold is the ratio above which a row is held for the
	// threshold report.
	Threshold srg.Threshold

	// Precision is the tolerance for a county total to count as one.
	Precision srg.Precision

	// XLSX specifies whether the reports of each region are also written to
	// a Microsoft Excel workbook.
	XLSX bool

	Log logrus.FieldLogger
}

// NewReporter returns a Reporter with the default threshold and precision.
func NewReporter() *Reporter {
	return &Reporter{
		Threshold: srg.DefaultThreshold,
		Precision: srg.DefaultPrecision,
		Log:       logrus.StandardLogger(),
	}
}

// OutputName returns the name of the report of kind ext for region:
// <dir>/<srgdesc base without extension>_<region>_<ext>.
func OutputName(srgdesc, region, ext string) string {
	base := filepath.Base(srgdesc)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(srgdesc), base+"_"+region+"_"+ext)
}

func (r *Reporter) outputNames(srgdesc, region string) ([]string, error) {
	var names []string
	for _, k := range Kinds {
		names = append(names, OutputName(srgdesc, region, k.String()+".csv"))
	}
	if r.XLSX {
		names = append(names, OutputName(srgdesc, region, "qa.xlsx"))
	}
	for _, n := range names {
		if _, err := os.Stat(n); err == nil {
			return nil, fmt.Errorf("qa: the output file '%s' already exists", n)
		}
	}
	return names, nil
}

// Run reads the SRGDESC catalog at srgdesc and writes the reports of each
// region next to it. Existing reports are never overwritten.
func (r *Reporter) Run(srgdesc string) error {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if r.Precision <= 0 {
		r.Precision = srg.DefaultPrecision
	}
	d, err := srg.ReadDescriptionFile(srgdesc)
	if err != nil {
		return err
	}
	regions := d.Regions()
	if len(regions) == 0 {
		log.WithField("file", srgdesc).Warn("qa: no surrogate files were found in the SRGDESC file")
	}
	for _, region := range regions {
		if err := r.region(d, srgdesc, region, log); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) region(d *srg.Description, srgdesc, region string, log logrus.FieldLogger) error {
	names, err := r.outputNames(srgdesc, region)
	if err != nil {
		return err
	}
	agg := NewAggregate(r.Threshold)
	for _, e := range d.EntriesFor(region) {
		log.WithFields(logrus.Fields{"region": region, "code": e.Code, "file": e.File}).Info("qa: reading surrogate file")
		if err := agg.AddFile(e, d.Layout); err != nil {
			return err
		}
	}
	c, err := d.Catalog(region)
	if err != nil {
		return err
	}
	reports, err := NewReports(agg, c, []string{d.Header, srgdesc}, d.Layout, r.Precision)
	if err != nil {
		return err
	}
	for i, k := range Kinds {
		if err := writeCSV(names[i], reports.Table(k)); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"region": region, "report": k.String(), "file": names[i]}).Info("qa: wrote report")
	}
	if r.XLSX {
		path := names[len(Kinds)]
		if err := WriteWorkbook(path, reports); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"region": region, "file": path}).Info("qa: wrote workbook")
	}
	return nil
}

func writeCSV(path string, t srg.Table) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return &srg.IOError{Op: "creating report", Path: path, Err: err}
	}
	if _, err := t.Delimited(f, ","); err != nil {
		f.Close()
		return &srg.IOError{Op: "writing report", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &srg.IOError{Op: "closing report", Path: path, Err: err}
	}
	return nil
}

// WriteWorkbook writes every report of r to its own sheet of a Microsoft
// Excel workbook at path.
func WriteWorkbook(path string, r *Reports) error {
	f := xlsx.NewFile()
	for _, k := range Kinds {
		sheet, err := f.AddSheet(k.String())
		if err != nil {
			return fmt.Errorf("qa: adding sheet %s: %v", k, err)
		}
		for _, line := range r.Table(k) {
			row := sheet.AddRow()
			for _, v := range line {
				row.AddCell().SetString(v)
			}
		}
	}
	if err := f.Save(path); err != nil {
		return &srg.IOError{Op: "writing workbook", Path: path, Err: err}
	}
	return nil
}
