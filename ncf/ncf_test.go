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

package ncf

import (
	"io/ioutil"
	"math"
	"os"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/geofield"
)

const tolerance = 1.0e-6 // float32 storage precision

// tempFile returns an open temporary file and schedules its removal.
func tempFile(t *testing.T) (*os.File, func()) {
	t.Helper()
	w, err := ioutil.TempFile("", "geofield_ncf_test")
	if err != nil {
		t.Fatal(err)
	}
	return w, func() {
		w.Close()
		os.Remove(w.Name())
	}
}

func denseVector(vals ...float64) *sparse.DenseArray {
	a := sparse.ZerosDense(len(vals))
	copy(a.Elements, vals)
	return a
}

func TestRoundTrip(t *testing.T) {
	data := sparse.ZerosDense(3, 4, 2)
	for i := range data.Elements {
		data.Elements[i] = float64(i) / 4
	}
	lat := &geofield.Coord{
		Points: denseVector(-60, -20, 20, 60),
		Units:  "degrees_north",
	}
	if err := lat.GuessBounds(); err != nil {
		t.Fatal(err)
	}
	f, err := geofield.NewField(data, []string{"time", geofield.LatCoord, geofield.LonCoord},
		map[string]*geofield.Coord{
			geofield.LatCoord: lat,
			geofield.LonCoord: {Points: denseVector(90, 270), Units: "degrees_east"},
		})
	if err != nil {
		t.Fatal(err)
	}

	w, cleanup := tempFile(t)
	defer cleanup()
	if err := WriteField(w, f, "tas"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := os.Open(w.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := ReadField(r, "tas")
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got.Dims, f.Dims) {
		t.Errorf("have dims %v, want %v", got.Dims, f.Dims)
	}
	if !reflect.DeepEqual(got.Data.Shape, f.Data.Shape) {
		t.Fatalf("have shape %v, want %v", got.Data.Shape, f.Data.Shape)
	}
	for i, v := range got.Data.Elements {
		if math.Abs(v-f.Data.Elements[i]) > tolerance {
			t.Fatalf("element %d: have %g, want %g", i, v, f.Data.Elements[i])
		}
	}
	gotLat := got.Coords[geofield.LatCoord]
	if gotLat == nil {
		t.Fatal("latitude coordinate not read")
	}
	if gotLat.Units != "degrees_north" {
		t.Errorf("have units %q, want degrees_north", gotLat.Units)
	}
	for i, v := range gotLat.Points.Elements {
		if math.Abs(v-lat.Points.Elements[i]) > tolerance {
			t.Errorf("latitude %d: have %g, want %g", i, v, lat.Points.Elements[i])
		}
	}
	if gotLat.Bounds == nil {
		t.Fatal("latitude bounds not read")
	}
	for i, v := range gotLat.Bounds.Elements {
		if math.Abs(v-lat.Bounds.Elements[i]) > tolerance {
			t.Errorf("latitude bound %d: have %g, want %g", i, v, lat.Bounds.Elements[i])
		}
	}
	if got.Topology() != geofield.Rectilinear {
		t.Errorf("have topology %v, want rectilinear", got.Topology())
	}
}

// TestRoundTripCurvilinear writes and reads back a field whose latitude
// and longitude are 2-D coordinates over the two trailing dimensions.
func TestRoundTripCurvilinear(t *testing.T) {
	data := sparse.ZerosDense(2, 3)
	lat := sparse.ZerosDense(2, 3)
	lon := sparse.ZerosDense(2, 3)
	for i := range data.Elements {
		data.Elements[i] = float64(i) * 1.5
		lat.Elements[i] = -30 + 12*float64(i)
		lon.Elements[i] = 10 + 50*float64(i)
	}
	f, err := geofield.NewField(data, []string{"y", "x"},
		map[string]*geofield.Coord{
			geofield.LatCoord: {Points: lat, Units: "degrees_north"},
			geofield.LonCoord: {Points: lon, Units: "degrees_east"},
		})
	if err != nil {
		t.Fatal(err)
	}
	if f.Topology() != geofield.Curvilinear {
		t.Fatalf("have topology %v, want curvilinear", f.Topology())
	}

	w, cleanup := tempFile(t)
	defer cleanup()
	if err := WriteField(w, f, "tos"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := os.Open(w.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := ReadField(r, "tos")
	if err != nil {
		t.Fatal(err)
	}

	if got.Topology() != geofield.Curvilinear {
		t.Errorf("have topology %v, want curvilinear", got.Topology())
	}
	if !reflect.DeepEqual(got.Dims, []string{"y", "x"}) {
		t.Errorf("have dims %v, want [y x]", got.Dims)
	}
	for i, v := range got.Data.Elements {
		if math.Abs(v-data.Elements[i]) > tolerance {
			t.Fatalf("element %d: have %g, want %g", i, v, data.Elements[i])
		}
	}
	gotLat := got.Coords[geofield.LatCoord]
	if gotLat == nil {
		t.Fatal("latitude coordinate not read")
	}
	if !reflect.DeepEqual(gotLat.Points.Shape, []int{2, 3}) {
		t.Fatalf("have latitude shape %v, want [2 3]", gotLat.Points.Shape)
	}
	for i, v := range gotLat.Points.Elements {
		if math.Abs(v-lat.Elements[i]) > tolerance {
			t.Errorf("latitude %d: have %g, want %g", i, v, lat.Elements[i])
		}
	}
	gotLon := got.Coords[geofield.LonCoord]
	if gotLon == nil {
		t.Fatal("longitude coordinate not read")
	}
	for i, v := range gotLon.Points.Elements {
		if math.Abs(v-lon.Elements[i]) > tolerance {
			t.Errorf("longitude %d: have %g, want %g", i, v, lon.Elements[i])
		}
	}
}

func TestRoundTripRegionLabels(t *testing.T) {
	data := sparse.ZerosDense(2, 3)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	f, err := geofield.NewField(data, []string{"time", geofield.RegionCoord},
		map[string]*geofield.Coord{
			geofield.RegionCoord: {Labels: []string{"Amazon", "Congo", "Borneo"}},
		})
	if err != nil {
		t.Fatal(err)
	}

	w, cleanup := tempFile(t)
	defer cleanup()
	if err := WriteField(w, f, "gpp"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := os.Open(w.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := ReadField(r, "gpp")
	if err != nil {
		t.Fatal(err)
	}
	c := got.Coords[geofield.RegionCoord]
	if c == nil {
		t.Fatal("region coordinate not read")
	}
	want := []string{"Amazon", "Congo", "Borneo"}
	if !reflect.DeepEqual(c.Labels, want) {
		t.Errorf("have labels %v, want %v", c.Labels, want)
	}

	// The labels survive a named-region extraction.
	sub, err := geofield.ExtractNamedRegions(got, "Congo")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sub.Coords[geofield.RegionCoord].Labels, []string{"Congo"}) {
		t.Errorf("have labels %v, want [Congo]", sub.Coords[geofield.RegionCoord].Labels)
	}
}

func TestReadCellArea(t *testing.T) {
	area := sparse.ZerosDense(4, 2)
	for i := range area.Elements {
		area.Elements[i] = 2
	}
	f, err := geofield.NewField(area, []string{geofield.LatCoord, geofield.LonCoord},
		map[string]*geofield.Coord{
			geofield.LatCoord: {Points: denseVector(-60, -20, 20, 60), Units: "degrees_north"},
			geofield.LonCoord: {Points: denseVector(90, 270), Units: "degrees_east"},
		})
	if err != nil {
		t.Fatal(err)
	}
	w, cleanup := tempFile(t)
	defer cleanup()
	if err := WriteField(w, f, "areacella"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := os.Open(w.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := ReadCellArea(r, "areacella")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Shape, []int{4, 2}) {
		t.Fatalf("have shape %v, want [4 2]", got.Shape)
	}
	for i, v := range got.Elements {
		if v != 2 {
			t.Errorf("element %d: have %g, want 2", i, v)
		}
	}

	if _, err := ReadCellArea(r, "nosuchvar"); err == nil {
		t.Error("expected error for missing variable")
	}
}
