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

package normalize

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/srgtools/srg"
)

// Normalizer normalizes every surrogate file listed in a SRGDESC catalog.
type Normalizer struct {
	// Precision is the tolerance for a county total to count as one.
	Precision srg.Precision

	// Exclude holds the counties that are never rescaled.
	Exclude Exclude

	Log logrus.FieldLogger
}

// NewNormalizer returns a Normalizer with the default precision.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Precision: srg.DefaultPrecision,
		Log:       logrus.StandardLogger(),
	}
}

// Run normalizes the files listed in the SRGDESC catalog at srgdesc and
// writes a catalog of the normalized files to
// <srgdesc without extension>_NORM.txt. A file that does not need to be
// normalized is copied. A file that cannot be normalized is logged and
// left out of the new catalog.
func (n *Normalizer) Run(srgdesc string) error {
	log := n.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := n.Precision
	if p <= 0 {
		p = srg.DefaultPrecision
	}
	d, err := srg.ReadDescriptionFile(srgdesc)
	if err != nil {
		return err
	}
	outDesc := OutputName(srgdesc)
	if err := removeExisting(outDesc); err != nil {
		return err
	}
	nd := srg.NewDescription("")
	nd.Header, nd.Layout = d.Header, d.Layout
	nd.Comments = append([]string(nil), d.Comments...)

	var failed []string
	for _, e := range d.Entries() {
		fields := logrus.Fields{"region": e.Region, "code": e.Code, "surrogate": e.Name}
		log.WithFields(fields).Info("normalize: processing surrogate")
		out, err := NormalizeFile(e.File, d.Layout, p, n.Exclude)
		if srg.IsSkip(err) {
			log.WithFields(fields).Info(err.Error())
			out, err = Copy(e.File)
		}
		if err != nil {
			log.WithFields(fields).WithError(err).Error("normalize: skipping surrogate")
			failed = append(failed, e.File)
			continue
		}
		e.File = out
		nd.Put(e)
	}
	if err := nd.WriteFile(outDesc); err != nil {
		return err
	}
	log.WithField("file", outDesc).Info("normalize: finished")
	if len(failed) > 0 {
		return fmt.Errorf("normalize: %d of %d surrogate files failed: %s",
			len(failed), len(d.Entries()), strings.Join(failed, ", "))
	}
	return nil
}
