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

// Package ncf reads and writes geofield Fields as NetCDF files.
//
// A field variable's dimensions name its axes; coordinate variables
// share the names of the dimensions they describe, except that a 2-D
// latitude or longitude variable describes the two trailing dimensions
// of a curvilinear field. Cell bounds are stored in "<name>_bnds"
// variables and categorical labels in a comma-separated "labels"
// attribute on the coordinate variable.
package ncf

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/geofield"
)

// boundsDim is the length-2 dimension of cell-bound variables.
const boundsDim = "bnds"

// ReadField reads the named variable and its coordinates from a
// NetCDF file into a Field.
func ReadField(rw cdf.ReaderWriterAt, varName string) (*geofield.Field, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("geofield: opening netcdf file: %v", err)
	}
	data, err := readVar(f, varName)
	if err != nil {
		return nil, err
	}
	dims := f.Header.Dimensions(varName)

	isDim := make(map[string]bool)
	for _, d := range dims {
		isDim[d] = true
	}
	coords := make(map[string]*geofield.Coord)
	for _, v := range f.Header.Variables() {
		if !isDim[v] && v != geofield.LatCoord && v != geofield.LonCoord {
			continue
		}
		if v == varName || strings.HasSuffix(v, "_"+boundsDim) {
			continue
		}
		c := new(geofield.Coord)
		c.Points, err = readVar(f, v)
		if err != nil {
			return nil, err
		}
		if u, ok := f.Header.GetAttribute(v, "units").(string); ok {
			c.Units = u
		}
		if l, ok := f.Header.GetAttribute(v, "labels").(string); ok {
			c.Labels = strings.Split(l, ",")
		}
		if len(f.Header.Lengths(v+"_"+boundsDim)) != 0 {
			c.Bounds, err = readVar(f, v+"_"+boundsDim)
			if err != nil {
				return nil, err
			}
		}
		coords[v] = c
	}
	return geofield.NewField(data, dims, coords)
}

// ReadCellArea reads an external per-cell area array, e.g. from a
// model's cell-area (fx) file, for use with geofield.AreaWeights.
func ReadCellArea(rw cdf.ReaderWriterAt, varName string) (*sparse.DenseArray, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("geofield: opening netcdf file: %v", err)
	}
	return readVar(f, varName)
}

// readVar reads variable v out of netcdf file f.
func readVar(f *cdf.File, v string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("geofield: variable %v not in file", v)
	}
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("geofield: reading netcdf variable %s: %v", v, err)
	}
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []float64:
		copy(data.Elements, b)
	default:
		return nil, fmt.Errorf("geofield: netcdf variable %s has unsupported type %T", v, buf)
	}
	return data, nil
}

// WriteField writes f to netcdf file w as the named variable.
func WriteField(w *os.File, f *geofield.Field, varName string) error {
	dimNames := append([]string{}, f.Dims...)
	lengths := append([]int{}, f.Data.Shape...)
	needBnds := false
	for _, c := range f.Coords {
		if c.Bounds != nil {
			needBnds = true
		}
	}
	if needBnds {
		dimNames = append(dimNames, boundsDim)
		lengths = append(lengths, 2)
	}
	h := cdf.NewHeader(dimNames, lengths)

	h.AddVariable(varName, f.Dims, []float32{0})

	// Sort the coordinate names so they write in the same order
	// every time.
	names := make([]string, 0, len(f.Coords))
	for n := range f.Coords {
		names = append(names, n)
	}
	sort.Strings(names)

	ndim := len(f.Dims)
	for _, name := range names {
		c := f.Coords[name]
		points := c.Points
		if points == nil {
			// A label-only coordinate is stored as its point indices.
			points = sparse.ZerosDense(len(c.Labels))
			for i := range points.Elements {
				points.Elements[i] = float64(i)
			}
		}
		var cdims []string
		if len(points.Shape) == 2 {
			cdims = []string{f.Dims[ndim-2], f.Dims[ndim-1]}
		} else {
			cdims = []string{name}
		}
		h.AddVariable(name, cdims, []float32{0})
		if c.Units != "" {
			h.AddAttribute(name, "units", c.Units)
		}
		if c.Labels != nil {
			h.AddAttribute(name, "labels", strings.Join(c.Labels, ","))
		}
		if c.Bounds != nil {
			h.AddVariable(name+"_"+boundsDim, []string{name, boundsDim}, []float32{0})
		}
	}
	h.Define()

	ff, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("geofield: creating netcdf file: %v", err)
	}
	if err := writeVar(ff, varName, f.Data); err != nil {
		return err
	}
	for _, name := range names {
		c := f.Coords[name]
		points := c.Points
		if points == nil {
			points = sparse.ZerosDense(len(c.Labels))
			for i := range points.Elements {
				points.Elements[i] = float64(i)
			}
		}
		if err := writeVar(ff, name, points); err != nil {
			return err
		}
		if c.Bounds != nil {
			if err := writeVar(ff, name+"_"+boundsDim, c.Bounds); err != nil {
				return err
			}
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeVar writes data to variable v in netcdf file f.
func writeVar(f *cdf.File, v string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	if _, err := w.Write(data32); err != nil {
		return fmt.Errorf("geofield: writing netcdf variable %s: %v", v, err)
	}
	return nil
}
