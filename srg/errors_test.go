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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithLine(t *testing.T) {
	line := "OUTSRG=A; 1.0*({missing.txt|Population})"
	in := &Instructions{OutFile: "out.txt"}
	err := WithLine(in.CheckSource(filepath.Join(os.TempDir(), "srg-missing.txt")), line)
	var ioe *IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("have %T, want *IOError", err)
	}
	if ioe.Line != line || !strings.HasSuffix(err.Error(), "line '"+line+"'") {
		t.Errorf("the line should be recorded: %v", err)
	}
	if !os.IsNotExist(errors.Unwrap(err)) {
		t.Errorf("have cause %v", errors.Unwrap(err))
	}
	if strings.Count(err.Error(), "srg: ") != 1 {
		t.Errorf("doubled prefix: %v", err)
	}

	fe := &FormatError{Line: "first", Msg: "bad"}
	if WithLine(fe, "second"); fe.Line != "first" {
		t.Errorf("an existing line should be kept, have %s", fe.Line)
	}
	other := errors.New("other")
	if WithLine(other, line) != other {
		t.Error("other errors should be returned unchanged")
	}
}
