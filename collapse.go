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
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
)

// AverageRegion collapses the two named spatial axes of f with the
// named statistic. Only the mean is calculated as a true area-weighted
// statistic; every other operator is applied unweighted over the same
// two axes because the underlying statistics do not admit a weighted
// formulation here. Masked cells are excluded from the calculation, so
// a cell group that is entirely masked collapses to NaN.
//
// Weights come from AreaWeights: externalArea may supply per-cell areas
// (required for curvilinear grids) and may be nil on rectilinear grids.
func AverageRegion(f *Field, latName, lonName string, operator string, externalArea *sparse.DenseArray) (*Field, error) {
	op, err := ParseOperator(operator)
	if err != nil {
		return nil, err
	}
	latAx, err := f.AxisIndex(latName)
	if err != nil {
		return nil, err
	}
	lonAx, err := f.AxisIndex(lonName)
	if err != nil {
		return nil, err
	}
	weights, err := AreaWeights(f, latName, lonName, externalArea)
	if err != nil {
		return nil, err
	}
	if op != Mean {
		weights = nil
	}
	return collapseAxes(f, []int{latAx, lonAx}, op, weights)
}

// AxisStatistic collapses exactly the named axis of f with the named
// statistic, unweighted regardless of operator. Collapsing the
// longitude axis of a rectilinear field gives a zonal statistic.
func AxisStatistic(f *Field, axisName, operator string) (*Field, error) {
	op, err := ParseOperator(operator)
	if err != nil {
		return nil, err
	}
	ax, err := f.AxisIndex(axisName)
	if err != nil {
		return nil, err
	}
	return collapseAxes(f, []int{ax}, op, nil)
}

// collapseAxes reduces the given axes of f, applying op to the sample
// of unmasked values in each remaining-index group. If weights is
// non-nil the reduction is the weighted mean instead.
func collapseAxes(f *Field, axes []int, op Operator, weights *sparse.DenseArray) (*Field, error) {
	collapsed := make(map[int]bool)
	for _, ax := range axes {
		collapsed[ax] = true
	}
	var outDims []string
	var outShape []int
	for i, d := range f.Dims {
		if !collapsed[i] {
			outDims = append(outDims, d)
			outShape = append(outShape, f.Data.Shape[i])
		}
	}
	out := sparse.ZerosDense(outShape...)

	groups := make([][]float64, len(out.Elements))
	var groupWeights [][]float64
	if weights != nil {
		groupWeights = make([][]float64, len(out.Elements))
	}
	oind := make([]int, len(outShape))
	for i, v := range f.Data.Elements {
		if math.IsNaN(v) {
			continue
		}
		ind := f.Data.IndexNd(i)
		oind = oind[:0]
		for ax, x := range ind {
			if !collapsed[ax] {
				oind = append(oind, x)
			}
		}
		oi := out.Index1d(oind...)
		groups[oi] = append(groups[oi], v)
		if weights != nil {
			groupWeights[oi] = append(groupWeights[oi], weights.Elements[i])
		}
	}

	for i, vals := range groups {
		switch {
		case len(vals) == 0:
			out.Elements[i] = math.NaN()
		case weights != nil:
			out.Elements[i] = stat.Mean(vals, groupWeights[i])
		default:
			out.Elements[i] = op.Reduce(vals)
		}
	}

	// Drop the coordinates of the collapsed axes. A 2-D coordinate is
	// tied to both trailing axes, so it goes whenever either of those
	// is collapsed.
	ndim := len(f.Data.Shape)
	trailingCollapsed := collapsed[ndim-2] || collapsed[ndim-1]
	coords := make(map[string]*Coord)
	for name, c := range f.Coords {
		if collapsed[indexOf(f.Dims, name)] {
			continue
		}
		if c.Points != nil && len(c.Points.Shape) == 2 && trailingCollapsed {
			continue
		}
		coords[name] = c.Copy()
	}
	return NewField(out, outDims, coords)
}

// indexOf returns the position of s in list, or -1.
func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
