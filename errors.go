/*
Copyright © 2019 the GeoField authors.
This file is part of GeoField.

GeoField is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GeoField is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GeoField.  If not, see <http://www.gnu.org/licenses/>.
*/

package geofield

import (
	"fmt"
	"sort"
	"strings"
)

// UnsupportedOperatorError is returned when a statistic name does not
// match any accepted operator.
type UnsupportedOperatorError struct {
	Name string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("geofield: operator %q not recognized; accepted values are: %s",
		e.Name, strings.Join(operatorNames, ", "))
}

// UnsupportedBroadcastError is returned when an external cell-area array
// cannot be broadcast to the shape of the field it is meant to weight.
type UnsupportedBroadcastError struct {
	AreaShape  []int
	FieldShape []int
}

func (e *UnsupportedBroadcastError) Error() string {
	return fmt.Sprintf("geofield: cannot broadcast cell-area array with shape %v "+
		"to field shape %v", e.AreaShape, e.FieldShape)
}

// MissingAreaError is returned when area weighting is requested on a
// curvilinear grid without an externally supplied cell-area array.
// Cell areas cannot be derived from 2-D coordinates without explicit
// cell geometry.
type MissingAreaError struct {
	Coord string
}

func (e *MissingAreaError) Error() string {
	return fmt.Sprintf("geofield: coordinate %s is 2-D; an external cell-area "+
		"array is required to calculate grid cell areas for curvilinear grids", e.Coord)
}

// ShapeMismatchError is returned when a weight array does not exactly
// match the shape of the data it is meant to weight.
type ShapeMismatchError struct {
	WeightShape []int
	DataShape   []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("geofield: data shape %v doesn't match cell-area weight "+
		"shape %v", e.DataShape, e.WeightShape)
}

// InvalidInputError is returned when a region selection argument is
// neither a string nor a collection of strings.
type InvalidInputError struct {
	Value interface{}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("geofield: regions %#v (type %T) is not an acceptable format; "+
		"provide a string or a collection of strings", e.Value, e.Value)
}

// UnknownRegionError is returned when one or more requested region labels
// are not present on the region coordinate.
type UnknownRegionError struct {
	Invalid   []string
	Available []string
}

func (e *UnknownRegionError) Error() string {
	invalid := append([]string{}, e.Invalid...)
	available := append([]string{}, e.Available...)
	sort.Strings(invalid)
	sort.Strings(available)
	return fmt.Sprintf("geofield: region(s) %v not in field region(s) %v",
		invalid, available)
}

// UnknownAxisError is returned when a named axis is not among a field's
// dimensions.
type UnknownAxisError struct {
	Axis string
	Dims []string
}

func (e *UnknownAxisError) Error() string {
	return fmt.Sprintf("geofield: axis %s is not among field dimensions %v",
		e.Axis, e.Dims)
}
