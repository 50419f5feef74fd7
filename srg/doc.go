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

// Package srg reads and writes SMOKE-formatted spatial surrogate files and
// holds the data model shared by the surrogate merge, gapfill, normalize
// and QA tools.
//
// A surrogate ratio file starts with a #GRID or #POLYGON line, followed by
// comments (including #SRGDESC=<code>,<name> lines) and tab-delimited data
// rows of the form
//	code  county  row  [column]  ratio  [!  comment]
// where the column is only present for the grid layout.
// A SRGDESC catalog lists, for each region, the code, name and data file
// of every available surrogate.
package srg
