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
	"strings"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// earthRadius is the default spherical Earth radius [m].
const earthRadius = 6367470.

// broadcastTable maps (area rank, field rank) to the number of leading
// field axes an external cell-area array is repeated along. Rank pairs
// outside this table (other than equal ranks, which pass through) are
// rejected rather than broadcast incorrectly.
var broadcastTable = map[[2]int]int{
	{2, 3}: 1,
	{2, 4}: 2,
	{3, 4}: 1,
}

// AreaWeights returns a per-cell surface-area weight array with exactly
// the same shape as f.Data.
//
// If externalArea is non-nil it is used directly, repeated along the
// leading field axes it lacks. Otherwise the weights are calculated
// from the latitude/longitude cell bounds (guessed if absent), which is
// only possible on a rectilinear grid; a curvilinear grid without an
// external area returns a MissingAreaError.
func AreaWeights(f *Field, latName, lonName string, externalArea *sparse.DenseArray) (*sparse.DenseArray, error) {
	if externalArea != nil {
		w, err := broadcastArea(externalArea, f.Data.Shape)
		if err != nil {
			return nil, err
		}
		if err := checkWeightShape(w, f.Data); err != nil {
			return nil, err
		}
		return w, nil
	}

	if f.Topology() == Curvilinear {
		return nil, &MissingAreaError{Coord: latName}
	}

	latC, err := f.coord(latName)
	if err != nil {
		return nil, err
	}
	lonC, err := f.coord(lonName)
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
	// Work on copies so guessing bounds never alters the caller's field.
	latC, lonC = latC.Copy(), lonC.Copy()
	if err := latC.GuessBounds(); err != nil {
		return nil, err
	}
	if err := lonC.GuessBounds(); err != nil {
		return nil, err
	}

	// Cell area on a sphere is R² · Δ(sin φ) · Δλ, separable into
	// per-latitude and per-longitude factors.
	latW, err := latFactors(latC)
	if err != nil {
		return nil, fmt.Errorf("geofield: calculating cell areas for %s: %v", latName, err)
	}
	lonW, err := lonFactors(lonC)
	if err != nil {
		return nil, fmt.Errorf("geofield: calculating cell areas for %s: %v", lonName, err)
	}

	w := sparse.ZerosDense(f.Data.Shape...)
	for i := range w.Elements {
		ind := w.IndexNd(i)
		w.Elements[i] = latW[ind[latAx]] * lonW[ind[lonAx]]
	}
	if err := checkWeightShape(w, f.Data); err != nil {
		return nil, err
	}
	return w, nil
}

// latFactors returns R²·|Δ(sin φ)| for each latitude cell.
func latFactors(c *Coord) ([]float64, error) {
	n := c.Bounds.Shape[0]
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo, err := toRadians(c.Bounds.Elements[i*2], c.Units)
		if err != nil {
			return nil, err
		}
		hi, err := toRadians(c.Bounds.Elements[i*2+1], c.Units)
		if err != nil {
			return nil, err
		}
		out[i] = earthRadius * earthRadius * math.Abs(math.Sin(hi)-math.Sin(lo))
	}
	return out, nil
}

// lonFactors returns |Δλ| in radians for each longitude cell.
func lonFactors(c *Coord) ([]float64, error) {
	n := c.Bounds.Shape[0]
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo, err := toRadians(c.Bounds.Elements[i*2], c.Units)
		if err != nil {
			return nil, err
		}
		hi, err := toRadians(c.Bounds.Elements[i*2+1], c.Units)
		if err != nil {
			return nil, err
		}
		out[i] = math.Abs(hi - lo)
	}
	return out, nil
}

// toRadians converts an angular coordinate value to radians based on
// its unit string.
func toRadians(v float64, units string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(units))
	switch {
	case strings.HasPrefix(u, "degree"):
		return v * math.Pi / 180, nil
	case strings.HasPrefix(u, "rad"):
		return v, nil
	}
	return 0, fmt.Errorf("unsupported angular units %q", units)
}

// broadcastArea repeats area along the leading axes of shape according
// to broadcastTable. Equal-rank arrays are passed through unchanged;
// the caller's shape check catches any remaining mismatch.
func broadcastArea(area *sparse.DenseArray, shape []int) (*sparse.DenseArray, error) {
	ar, fr := len(area.Shape), len(shape)
	if ar == fr {
		return area.Copy(), nil
	}
	nrep, ok := broadcastTable[[2]int{ar, fr}]
	if !ok {
		return nil, &UnsupportedBroadcastError{AreaShape: area.Shape, FieldShape: shape}
	}
	tiledShape := append(append([]int{}, shape[:nrep]...), area.Shape...)
	out := sparse.ZerosDense(tiledShape...)
	n := len(area.Elements)
	for r := 0; r < len(out.Elements)/n; r++ {
		copy(out.Elements[r*n:(r+1)*n], area.Elements)
	}
	return out, nil
}

// checkWeightShape verifies that w exactly matches the shape of data.
func checkWeightShape(w, data *sparse.DenseArray) error {
	if len(w.Shape) != len(data.Shape) {
		return &ShapeMismatchError{WeightShape: w.Shape, DataShape: data.Shape}
	}
	for i, d := range data.Shape {
		if w.Shape[i] != d {
			return &ShapeMismatchError{WeightShape: w.Shape, DataShape: data.Shape}
		}
	}
	return nil
}

// TotalArea returns the total surface area covered by the field's
// horizontal grid as a quantity in m².
func TotalArea(f *Field, latName, lonName string) (*unit.Unit, error) {
	w, err := AreaWeights(f, latName, lonName, nil)
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
	// The weights repeat over every non-spatial axis; divide that
	// multiplicity out of the sum.
	mult := 1
	for i, n := range f.Data.Shape {
		if i != latAx && i != lonAx {
			mult *= n
		}
	}
	return unit.New(w.Sum()/float64(mult), unit.Meter2), nil
}
