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

// Package geofield performs spatial subsetting and area-weighted
// statistical reduction of gridded geophysical fields.
// Fields are labeled multidimensional arrays; missing values are
// represented by NaN. All operations return new fields and leave their
// inputs unchanged.
package geofield

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Version gives the version number.
const Version = "0.1.0"

// Names of the coordinates with special meaning to this package.
const (
	LatCoord    = "latitude"
	LonCoord    = "longitude"
	RegionCoord = "region"
)

// GridTopology describes how the horizontal coordinates of a field are
// laid out. It is determined once, when the field is created.
type GridTopology int

const (
	// Rectilinear means latitude and longitude are independent
	// 1-D coordinates.
	Rectilinear GridTopology = iota
	// Curvilinear means latitude and longitude are 2-D coordinates
	// jointly indexed by the two trailing data dimensions.
	Curvilinear
)

func (g GridTopology) String() string {
	if g == Curvilinear {
		return "curvilinear"
	}
	return "rectilinear"
}

// Coord describes one axis of a Field: the point locations, optional
// cell-edge bounds, physical units, and, for categorical axes such as
// named regions, per-point string labels.
type Coord struct {
	// Points holds the coordinate values: 1-D for rectilinear axes or
	// 2-D for curvilinear horizontal coordinates.
	Points *sparse.DenseArray

	// Bounds holds the cell edges with shape [n, 2], where n is the
	// number of points. It may be nil, in which case GuessBounds can
	// derive it for 1-D coordinates.
	Bounds *sparse.DenseArray

	// Units is the physical unit of the points, e.g. "degrees_north".
	Units string

	// Labels holds the categorical label for each point along the axis,
	// for coordinates such as named regions. It is nil for numeric
	// coordinates.
	Labels []string
}

// Copy returns a deep copy of c.
func (c *Coord) Copy() *Coord {
	o := &Coord{Units: c.Units}
	if c.Points != nil {
		o.Points = c.Points.Copy()
	}
	if c.Bounds != nil {
		o.Bounds = c.Bounds.Copy()
	}
	if c.Labels != nil {
		o.Labels = append([]string{}, c.Labels...)
	}
	return o
}

// GuessBounds fills in c.Bounds for a 1-D coordinate if it is not
// already set. Interior bounds are the midpoints between adjacent
// points; the two outermost bounds are extrapolated from the edge
// point spacing.
func (c *Coord) GuessBounds() error {
	if c.Bounds != nil {
		return nil
	}
	if len(c.Points.Shape) != 1 {
		return fmt.Errorf("geofield: cannot guess bounds of a %d-D coordinate",
			len(c.Points.Shape))
	}
	n := c.Points.Shape[0]
	if n < 2 {
		return fmt.Errorf("geofield: cannot guess bounds of a coordinate with %d point(s)", n)
	}
	p := c.Points.Elements
	b := sparse.ZerosDense(n, 2)
	for i := 0; i < n; i++ {
		var lo, hi float64
		if i == 0 {
			lo = p[0] - (p[1]-p[0])/2
		} else {
			lo = (p[i-1] + p[i]) / 2
		}
		if i == n-1 {
			hi = p[n-1] + (p[n-1]-p[n-2])/2
		} else {
			hi = (p[i] + p[i+1]) / 2
		}
		b.Elements[i*2] = lo
		b.Elements[i*2+1] = hi
	}
	c.Bounds = b
	return nil
}

// Field is a labeled multidimensional array: gridded data plus the
// named coordinates describing each of its axes.
type Field struct {
	// Data holds the gridded values. Missing values are NaN.
	Data *sparse.DenseArray

	// Dims gives the axis name for each dimension of Data, in order.
	Dims []string

	// Coords maps coordinate names to coordinate descriptions. Every
	// axis touched by an operation must have an entry matching its
	// name in Dims.
	Coords map[string]*Coord

	topology GridTopology
}

// NewField creates a Field from data, the axis names dims, and the
// coordinates coords, checking that dims matches the data shape and
// that every coordinate is consistent with the axis it describes.
// The grid topology is determined here: the field is curvilinear if any
// of its coordinates holds 2-D points.
func NewField(data *sparse.DenseArray, dims []string, coords map[string]*Coord) (*Field, error) {
	if len(dims) != len(data.Shape) {
		return nil, fmt.Errorf("geofield: %d dimension names given for %d-D data",
			len(dims), len(data.Shape))
	}
	topology := Rectilinear
	for name, c := range coords {
		if c.Points == nil && c.Labels == nil {
			return nil, fmt.Errorf("geofield: coordinate %s has neither points nor labels", name)
		}
		if c.Points != nil && len(c.Points.Shape) == 2 {
			topology = Curvilinear
		}
	}
	for i, d := range dims {
		c, ok := coords[d]
		if !ok {
			continue // Coordinates are only required for axes that operations touch.
		}
		n := data.Shape[i]
		if c.Labels != nil && len(c.Labels) != n {
			return nil, fmt.Errorf("geofield: coordinate %s has %d labels for an axis of length %d",
				d, len(c.Labels), n)
		}
		if c.Points != nil && len(c.Points.Shape) == 1 && c.Points.Shape[0] != n {
			return nil, fmt.Errorf("geofield: coordinate %s has %d points for an axis of length %d",
				d, c.Points.Shape[0], n)
		}
	}
	return &Field{
		Data:     data,
		Dims:     append([]string{}, dims...),
		Coords:   coords,
		topology: topology,
	}, nil
}

// Topology reports whether the field's horizontal grid is rectilinear
// or curvilinear.
func (f *Field) Topology() GridTopology { return f.topology }

// Copy returns a deep copy of f.
func (f *Field) Copy() *Field {
	o := &Field{
		Data:     f.Data.Copy(),
		Dims:     append([]string{}, f.Dims...),
		Coords:   make(map[string]*Coord),
		topology: f.topology,
	}
	for name, c := range f.Coords {
		o.Coords[name] = c.Copy()
	}
	return o
}

// AxisIndex returns the position of the named axis in f.Dims.
func (f *Field) AxisIndex(name string) (int, error) {
	for i, d := range f.Dims {
		if d == name {
			return i, nil
		}
	}
	return -1, &UnknownAxisError{Axis: name, Dims: f.Dims}
}

// coord returns the named coordinate, or an error if the field
// doesn't have it.
func (f *Field) coord(name string) (*Coord, error) {
	c, ok := f.Coords[name]
	if !ok {
		return nil, fmt.Errorf("geofield: field has no coordinate %s", name)
	}
	return c, nil
}

// takeAxis returns the subset of a along the given axis at the given
// indices, preserving their order.
func takeAxis(a *sparse.DenseArray, axis int, idx []int) *sparse.DenseArray {
	shape := append([]int{}, a.Shape...)
	shape[axis] = len(idx)
	out := sparse.ZerosDense(shape...)
	src := make([]int, len(shape))
	for i := range out.Elements {
		ind := out.IndexNd(i)
		copy(src, ind)
		src[axis] = idx[ind[axis]]
		out.Elements[i] = a.Get(src...)
	}
	return out
}

// normalizeLon maps a longitude in degrees onto [0, 360).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}
