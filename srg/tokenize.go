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

import "strings"

// Tokenize splits line on sep and trims each field. A field that starts with
// a single or double quote continues until the matching closing quote, so it
// may contain sep and the other quote character; a doubled quote inside it is
// an escaped quote. Quoted fields are returned without their quotes.
// An empty line gives one empty field, and a trailing separator gives a
// trailing empty field.
func Tokenize(line string, sep rune) []string {
	var fields []string
	var b strings.Builder
	runes := []rune(line)
	for i := 0; i <= len(runes); {
		// Skip leading white space of the field.
		for i < len(runes) && runes[i] != sep && isSpace(runes[i]) {
			i++
		}
		if i < len(runes) && (runes[i] == '"' || runes[i] == '\'') {
			q := runes[i]
			b.Reset()
			j := i + 1
			closed := false
			for j < len(runes) {
				if runes[j] == q {
					if j+1 < len(runes) && runes[j+1] == q {
						b.WriteRune(q)
						j += 2
						continue
					}
					closed = true
					j++
					break
				}
				b.WriteRune(runes[j])
				j++
			}
			if closed {
				// Anything between the closing quote and the next separator
				// is kept with the field.
				k := j
				for k < len(runes) && runes[k] != sep {
					k++
				}
				if rest := strings.TrimSpace(string(runes[j:k])); rest != "" {
					b.WriteString(rest)
				}
				fields = append(fields, b.String())
				i = k + 1
				if k == len(runes) {
					return fields
				}
				continue
			}
			// Unterminated quote: keep the remainder as-is.
			fields = append(fields, strings.TrimSpace(string(runes[i:])))
			return fields
		}
		k := i
		for k < len(runes) && runes[k] != sep {
			k++
		}
		fields = append(fields, strings.TrimSpace(string(runes[i:k])))
		if k == len(runes) {
			return fields
		}
		i = k + 1
	}
	return fields
}

// TokenizeComma splits a comma-delimited catalog line.
func TokenizeComma(line string) []string {
	return Tokenize(line, ',')
}

// SplitTab splits a tab-delimited surrogate data row. No quoting is honored.
func SplitTab(line string) []string {
	return strings.Split(line, "\t")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
