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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/srgtools/srg"
)

// AddToCatalog registers e in the SRGDESC catalog at path, replacing any
// entry with the same region and code. A new catalog starting with header
// is created if path does not exist.
func AddToCatalog(path, header string, e srg.DescriptionEntry) (*srg.Description, error) {
	var d *srg.Description
	if _, err := os.Stat(path); os.IsNotExist(err) {
		d = srg.NewDescription(header)
	} else {
		d, err = srg.ReadDescriptionFile(path)
		if err != nil {
			return nil, err
		}
	}
	d.Put(e)
	if err := d.WriteFile(path); err != nil {
		return nil, err
	}
	return d, nil
}

// WriteTotal writes the contents of every surrogate file listed in d to
// a single file at path, replacing any existing file. Files that do not
// exist are logged and skipped.
func WriteTotal(d *srg.Description, path string, log logrus.FieldLogger) error {
	f, err := os.Create(path)
	if err != nil {
		return &srg.IOError{Op: "creating total surrogate file", Path: path, Err: err}
	}
	missing, err := d.Concatenate(f)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &srg.IOError{Op: "closing total surrogate file", Path: path, Err: err}
	}
	for _, m := range missing {
		log.WithField("file", m).Error("srgutil: surrogate file in the SRGDESC file does not exist")
	}
	return nil
}
