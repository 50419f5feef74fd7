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

// Package srgtools holds tools for processing the spatial surrogate files
// used to allocate emissions inventories to counties and grid cells.
// The file formats and shared data model are in package srg; the merge,
// gapfill, normalize and qa packages implement the operations, and
// srgutil holds the command-line interface.
package srgtools

// Version gives the version number.
const Version = "1.0.0"
