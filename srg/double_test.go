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
	"math"
	"testing"
)

func TestFormatDouble(t *testing.T) {
	for v, want := range map[float64]string{
		0:           "0.0",
		1:           "1.0",
		0.5:         "0.5",
		-2:          "-2.0",
		0.25:        "0.25",
		1.5e-5:      "1.5E-5",
		0.0001:      "1.0E-4",
		12345678:    "1.2345678E7",
		0.001:       "0.001",
		math.Inf(1): "Infinity",
	} {
		if have := FormatDouble(v); have != want {
			t.Errorf("%g: have %s, want %s", v, have, want)
		}
	}
	if have := FormatDouble(math.Copysign(0, -1)); have != "-0.0" {
		t.Errorf("negative zero: have %s, want -0.0", have)
	}
}
