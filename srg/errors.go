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
	"fmt"
)

// FormatError is returned when a line, tag or number is malformed.
// Line holds the complete offending line.
type FormatError struct {
	File string
	Line string
	Msg  string
}

func (e *FormatError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("srg: %s: %s: line '%s'", e.File, e.Msg, e.Line)
	}
	return fmt.Sprintf("srg: %s: line '%s'", e.Msg, e.Line)
}

func formatErr(line, format string, args ...interface{}) *FormatError {
	return &FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when a surrogate code or name is not in a Catalog.
type NotFoundError struct {
	Region string
	Code   int
	Name   string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("srg: could not find an id for the surrogate named '%s' (region=%s)", e.Name, e.Region)
	}
	return fmt.Sprintf("srg: could not find a name for surrogate id '%d' (region=%s)", e.Code, e.Region)
}

// StructuralError is returned when a run cannot start: a required tag is
// missing, the grids of the combined files differ or a fallback chain has a gap.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string { return "srg: " + e.Msg }

// Structuralf returns a new *StructuralError.
func Structuralf(format string, args ...interface{}) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// IOError wraps a failure to open, read or write a file. Line, if set,
// is the instruction line that referred to the file.
type IOError struct {
	Op   string
	Path string
	Line string
	Err  error
}

func (e *IOError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("srg: %s '%s': %v: line '%s'", e.Op, e.Path, e.Err, e.Line)
	}
	return fmt.Sprintf("srg: %s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WithLine records line in a *FormatError or *IOError that does not
// already carry one. Other errors are returned unchanged.
func WithLine(err error, line string) error {
	switch e := err.(type) {
	case *FormatError:
		if e.Line == "" {
			e.Line = line
		}
	case *IOError:
		if e.Line == "" {
			e.Line = line
		}
	}
	return err
}

// ErrNormalizationNotRequired signals that every county of a file already sums
// to one. It is not a failure.
var ErrNormalizationNotRequired = errors.New("normalization is not required")

// SkipError carries ErrNormalizationNotRequired for a specific file.
type SkipError struct {
	File string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("srg: %v for the surrogate file '%s'", ErrNormalizationNotRequired, e.File)
}

// Is reports whether target is ErrNormalizationNotRequired.
func (e *SkipError) Is(target error) bool { return target == ErrNormalizationNotRequired }

// IsSkip reports whether err is a skip signal rather than a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNormalizationNotRequired)
}

// IsStructural reports whether err should abort an entire run.
func IsStructural(err error) bool {
	var s *StructuralError
	return errors.As(err, &s)
}
