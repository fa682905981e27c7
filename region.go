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
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/spf13/cast"
)

// ExtractRegion subsets f to the given longitude/latitude box. The
// bounds may be given as any numeric type or as numeric strings.
// Longitude is cyclic: a window such as (-10, 10) selects cells on both
// sides of the prime meridian, and output longitudes are always
// normalized onto [0°, 360°).
//
// On a rectilinear grid the latitude and longitude coordinates shrink
// to the matched extent. On a curvilinear grid the shape is unchanged
// and cells outside the box are masked instead.
func ExtractRegion(f *Field, lonMin, lonMax, latMin, latMax interface{}) (*Field, error) {
	lon0, err := cast.ToFloat64E(lonMin)
	if err != nil {
		return nil, fmt.Errorf("geofield: parsing minimum longitude: %v", err)
	}
	lon1, err := cast.ToFloat64E(lonMax)
	if err != nil {
		return nil, fmt.Errorf("geofield: parsing maximum longitude: %v", err)
	}
	lat0, err := cast.ToFloat64E(latMin)
	if err != nil {
		return nil, fmt.Errorf("geofield: parsing minimum latitude: %v", err)
	}
	lat1, err := cast.ToFloat64E(latMax)
	if err != nil {
		return nil, fmt.Errorf("geofield: parsing maximum latitude: %v", err)
	}
	if f.Topology() == Curvilinear {
		return extractRegionCurvilinear(f, lon0, lon1, lat0, lat1)
	}
	return extractRegionRectilinear(f, lon0, lon1, lat0, lat1)
}

func extractRegionRectilinear(f *Field, lonMin, lonMax, latMin, latMax float64) (*Field, error) {
	latAx, err := f.AxisIndex(LatCoord)
	if err != nil {
		return nil, err
	}
	lonAx, err := f.AxisIndex(LonCoord)
	if err != nil {
		return nil, err
	}
	latC, err := f.coord(LatCoord)
	if err != nil {
		return nil, err
	}
	lonC, err := f.coord(LonCoord)
	if err != nil {
		return nil, err
	}

	var latIdx []int
	for i, p := range latC.Points.Elements {
		if p >= latMin && p <= latMax {
			latIdx = append(latIdx, i)
		}
	}

	// A longitude point matches if it falls in the requested window
	// after shifting by any whole number of revolutions.
	var lonIdx []int
	var lonShift []float64 // 0, 360, or -360 per matched point
	for i, p := range lonC.Points.Elements {
		for _, shift := range []float64{0, -360, 360} {
			if p+shift >= lonMin && p+shift <= lonMax {
				lonIdx = append(lonIdx, i)
				lonShift = append(lonShift, shift)
				break
			}
		}
	}
	if len(latIdx) == 0 || len(lonIdx) == 0 {
		return nil, fmt.Errorf("geofield: no grid cells within longitude [%g, %g], "+
			"latitude [%g, %g]", lonMin, lonMax, latMin, latMax)
	}

	out := &Field{
		Data:     takeAxis(f.Data, latAx, latIdx),
		Dims:     append([]string{}, f.Dims...),
		Coords:   make(map[string]*Coord),
		topology: f.topology,
	}
	out.Data = takeAxis(out.Data, lonAx, lonIdx)

	for name, c := range f.Coords {
		switch name {
		case LatCoord:
			nc := &Coord{Units: c.Units, Points: takeAxis(c.Points, 0, latIdx)}
			if c.Bounds != nil {
				nc.Bounds = takeAxis(c.Bounds, 0, latIdx)
			}
			out.Coords[name] = nc
		case LonCoord:
			nc := &Coord{Units: c.Units, Points: takeAxis(c.Points, 0, lonIdx)}
			if c.Bounds != nil {
				nc.Bounds = takeAxis(c.Bounds, 0, lonIdx)
			}
			// Re-normalize the matched longitudes onto [0, 360).
			for i := range nc.Points.Elements {
				p := nc.Points.Elements[i] + lonShift[i]
				offset := normalizeLon(p) - nc.Points.Elements[i]
				nc.Points.Elements[i] += offset
				if nc.Bounds != nil {
					nc.Bounds.Elements[i*2] += offset
					nc.Bounds.Elements[i*2+1] += offset
				}
			}
			out.Coords[name] = nc
		default:
			out.Coords[name] = c.Copy()
		}
	}
	return out, nil
}

// extractRegionCurvilinear masks cells outside the box rather than
// removing them, because a box is generally not index-aligned on a
// curvilinear grid. The reference behavior this was built against
// tested longitude against both window edges with a greater-than
// comparison, which left the western edge open; here the test is the
// two-sided one, with support for windows that cross the prime
// meridian.
func extractRegionCurvilinear(f *Field, lonMin, lonMax, latMin, latMax float64) (*Field, error) {
	latC, err := f.coord(LatCoord)
	if err != nil {
		return nil, err
	}
	lonC, err := f.coord(LonCoord)
	if err != nil {
		return nil, err
	}
	if len(latC.Points.Shape) != 2 || len(lonC.Points.Shape) != 2 {
		return nil, fmt.Errorf("geofield: curvilinear grid requires 2-D latitude and "+
			"longitude coordinates; got %d-D and %d-D",
			len(latC.Points.Shape), len(lonC.Points.Shape))
	}

	w0 := normalizeLon(lonMin)
	w1 := normalizeLon(lonMax)
	wrapped := w0 > w1
	if lonMax-lonMin >= 360 {
		w0, w1, wrapped = 0, 360, false
	}

	out := f.Copy()
	ndim := len(f.Data.Shape)
	nj := latC.Points.Shape[1]
	for i := range out.Data.Elements {
		ind := out.Data.IndexNd(i)
		si, sj := ind[ndim-2], ind[ndim-1]
		lat := latC.Points.Elements[si*nj+sj]
		lon := normalizeLon(lonC.Points.Elements[si*nj+sj])
		outside := lat < latMin || lat > latMax
		if wrapped {
			outside = outside || (lon > w1 && lon < w0)
		} else {
			outside = outside || lon < w0 || lon > w1
		}
		if outside {
			out.Data.Elements[i] = math.NaN()
		}
	}
	return out, nil
}

// ExtractNamedRegions subsets f along its region coordinate to the
// requested labels, preserving their original order along the axis.
// regions may be a single label, a slice of labels, or a set of labels.
func ExtractNamedRegions(f *Field, regions interface{}) (*Field, error) {
	var want []string
	switch r := regions.(type) {
	case string:
		want = []string{r}
	case []string:
		want = r
	case map[string]bool:
		for label, ok := range r {
			if ok {
				want = append(want, label)
			}
		}
		sort.Strings(want)
	default:
		return nil, &InvalidInputError{Value: regions}
	}

	c, err := f.coord(RegionCoord)
	if err != nil {
		return nil, err
	}
	if c.Labels == nil {
		return nil, fmt.Errorf("geofield: coordinate %s has no labels", RegionCoord)
	}
	axis, err := f.AxisIndex(RegionCoord)
	if err != nil {
		return nil, err
	}

	available := make(map[string]bool)
	for _, label := range c.Labels {
		available[label] = true
	}
	var invalid []string
	wantSet := make(map[string]bool)
	for _, label := range want {
		if !available[label] {
			invalid = append(invalid, label)
		}
		wantSet[label] = true
	}
	if len(invalid) > 0 {
		return nil, &UnknownRegionError{Invalid: invalid, Available: c.Labels}
	}

	var idx []int
	for i, label := range c.Labels {
		if wantSet[label] {
			idx = append(idx, i)
		}
	}

	out := &Field{
		Data:     takeAxis(f.Data, axis, idx),
		Dims:     append([]string{}, f.Dims...),
		Coords:   make(map[string]*Coord),
		topology: f.topology,
	}
	for name, cc := range f.Coords {
		if name != RegionCoord {
			out.Coords[name] = cc.Copy()
			continue
		}
		nc := &Coord{Units: cc.Units}
		for _, i := range idx {
			nc.Labels = append(nc.Labels, cc.Labels[i])
		}
		if cc.Points != nil {
			nc.Points = takeAxis(cc.Points, 0, idx)
		}
		out.Coords[name] = nc
	}
	return out, nil
}

// MaskOutsidePolygon masks (sets to NaN) every cell whose center lies
// outside poly, on either grid topology. Polygon vertices are expected
// in (longitude, latitude) order using the same longitude convention as
// the field's coordinates.
func MaskOutsidePolygon(f *Field, latName, lonName string, poly geom.Polygonal) (*Field, error) {
	latC, err := f.coord(latName)
	if err != nil {
		return nil, err
	}
	lonC, err := f.coord(lonName)
	if err != nil {
		return nil, err
	}
	out := f.Copy()
	ndim := len(f.Data.Shape)

	if f.Topology() == Curvilinear {
		nj := latC.Points.Shape[1]
		for i := range out.Data.Elements {
			ind := out.Data.IndexNd(i)
			si, sj := ind[ndim-2], ind[ndim-1]
			p := geom.Point{
				X: lonC.Points.Elements[si*nj+sj],
				Y: latC.Points.Elements[si*nj+sj],
			}
			if p.Within(poly) == geom.Outside {
				out.Data.Elements[i] = math.NaN()
			}
		}
		return out, nil
	}

	latAx, err := f.AxisIndex(latName)
	if err != nil {
		return nil, err
	}
	lonAx, err := f.AxisIndex(lonName)
	if err != nil {
		return nil, err
	}
	for i := range out.Data.Elements {
		ind := out.Data.IndexNd(i)
		p := geom.Point{
			X: lonC.Points.Elements[ind[lonAx]],
			Y: latC.Points.Elements[ind[latAx]],
		}
		if p.Within(poly) == geom.Outside {
			out.Data.Elements[i] = math.NaN()
		}
	}
	return out, nil
}
