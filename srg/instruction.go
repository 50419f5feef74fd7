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
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tags recognized in merge and gapfill instruction files.
const (
	TagOutFile  = "OUTFILE"
	TagXrefFile = "XREFFILE"
	TagOutSrg   = "OUTSRG"
)

// Instructions holds the contents of a merge or gapfill instruction file.
type Instructions struct {
	File     string
	OutFile  string
	XrefFile string

	// Lines holds every line of the file as read.
	Lines []string

	// Commands holds the OUTSRG lines in file order.
	Commands []string
}

// Tag returns the text before the first '=' in line, or "" if there is none.
func Tag(line string) string {
	i := strings.Index(line, "=")
	if i == -1 {
		return ""
	}
	return strings.TrimSpace(line[:i])
}

// ReadInstructions reads an instruction file from r. Blank and comment lines
// are kept in Lines but otherwise ignored.
func ReadInstructions(r io.Reader) (*Instructions, error) {
	in := new(Instructions)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLine)
	for s.Scan() {
		raw := s.Text()
		in.Lines = append(in.Lines, raw)
		if IsComment(raw) {
			continue
		}
		line := strings.TrimSpace(raw)
		var err error
		switch Tag(line) {
		case TagOutFile:
			in.OutFile, err = tagValue(TagOutFile, line)
		case TagXrefFile:
			in.XrefFile, err = tagValue(TagXrefFile, line)
		case TagOutSrg:
			in.Commands = append(in.Commands, line)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

// ReadInstructionsFile reads the instruction file at path. Environment
// variables in the OUTFILE and XREFFILE values are expanded.
func ReadInstructionsFile(path string) (*Instructions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "opening instruction file", Path: path, Err: err}
	}
	defer f.Close()
	in, err := ReadInstructions(f)
	if err != nil {
		return nil, withFile(err, path)
	}
	in.File = path
	in.OutFile = os.ExpandEnv(in.OutFile)
	in.XrefFile = os.ExpandEnv(in.XrefFile)
	return in, nil
}

func tagValue(tag, line string) (string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, tag))
	if !strings.HasPrefix(rest, "=") {
		return "", formatErr(line, "expecting '=' after tag '%s'", tag)
	}
	v := strings.TrimSpace(rest[1:])
	if v == "" {
		return "", formatErr(line, "missing value for tag '%s'", tag)
	}
	return v, nil
}

// Verify checks that the output and cross reference files and at least one
// command have been specified, and that the cross reference file exists.
// function names the kind of command in the error message.
func (in *Instructions) Verify(function string, commands int) error {
	if in.OutFile == "" {
		return Structuralf("the output surrogate file name is not specified")
	}
	if in.XrefFile == "" {
		return Structuralf("the cross reference file name is not specified")
	}
	if commands == 0 {
		return Structuralf("at least one %s command should be specified", function)
	}
	if _, err := os.Stat(in.XrefFile); err != nil {
		return &IOError{Op: "checking cross reference file", Path: in.XrefFile, Err: err}
	}
	return nil
}

// IsOutput returns whether path names the output file of the run.
func (in *Instructions) IsOutput(path string) bool {
	return in.OutFile != "" && filepath.Clean(path) == filepath.Clean(in.OutFile)
}

// CheckSource makes sure that a source file exists. The output file of the
// run is exempt because an earlier command may create it.
func (in *Instructions) CheckSource(path string) error {
	if in.IsOutput(path) {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return &IOError{Op: "checking surrogate file", Path: path, Err: err}
	}
	return nil
}

// OutSrg returns the output surrogate name of an OUTSRG line: the text
// between the first '=' and the first ';'.
func OutSrg(line string) (string, error) {
	if !strings.HasPrefix(line, TagOutSrg) {
		return "", formatErr(line, "'%s' tag not found", TagOutSrg)
	}
	start := strings.Index(line, "=")
	end := strings.Index(line, ";")
	if start == -1 || end == -1 || end < start {
		return "", formatErr(line, "expected format %s=<name>; <body>", TagOutSrg)
	}
	name := strings.TrimSpace(line[start+1 : end])
	if name == "" {
		return "", formatErr(line, "missing output surrogate name")
	}
	return name, nil
}

// SourceInfo names one surrogate in one surrogate file.
type SourceInfo struct {
	File string
	Name string
}

// ParseSourceInfo parses a 'file|name' token found in line.
func ParseSourceInfo(token, line string) (SourceInfo, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 2 {
		return SourceInfo{}, formatErr(line, "expected 'file|surrogate name' but found '%s'", token)
	}
	si := SourceInfo{
		File: os.ExpandEnv(strings.TrimSpace(parts[0])),
		Name: strings.TrimSpace(parts[1]),
	}
	if si.File == "" || si.Name == "" {
		return SourceInfo{}, formatErr(line, "expected 'file|surrogate name' but found '%s'", token)
	}
	return si, nil
}
