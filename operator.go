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
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Operator is a statistical reduction that can be applied along one or
// more field axes.
type Operator int

// The accepted reduction operators. StdDev and Variance are sample
// (n-1 denominator) statistics.
const (
	Mean Operator = iota
	Median
	StdDev
	Variance
	Min
	Max
)

// operatorNames lists the accepted statistic names, including aliases.
var operatorNames = []string{
	"mean", "median", "stdev", "variance", "min", "minimum", "max", "maximum",
}

func (op Operator) String() string {
	switch op {
	case Mean:
		return "mean"
	case Median:
		return "median"
	case StdDev:
		return "stdev"
	case Variance:
		return "variance"
	case Min:
		return "min"
	case Max:
		return "max"
	}
	return "unknown"
}

// ParseOperator resolves a statistic name to an Operator. Matching is
// case-insensitive and ignores surrounding whitespace. An unrecognized
// name returns an UnsupportedOperatorError listing the accepted names.
func ParseOperator(name string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	case "stdev":
		return StdDev, nil
	case "variance":
		return Variance, nil
	case "min", "minimum":
		return Min, nil
	case "max", "maximum":
		return Max, nil
	}
	return 0, &UnsupportedOperatorError{Name: name}
}

// reduceFuncs maps each operator to its unweighted reduction function,
// making the accepted-operator set a single source of truth for both
// area averaging and single-axis statistics.
var reduceFuncs = map[Operator]func([]float64) float64{
	Mean:     func(x []float64) float64 { return stat.Mean(x, nil) },
	Median:   median,
	StdDev:   func(x []float64) float64 { return stat.StdDev(x, nil) },
	Variance: func(x []float64) float64 { return stat.Variance(x, nil) },
	Min:      floats.Min,
	Max:      floats.Max,
}

// Reduce applies the operator to the sample x, unweighted. The sample
// must not contain missing values; an empty sample reduces to NaN.
func (op Operator) Reduce(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return reduceFuncs[op](x)
}

// median returns the middle value of x, averaging the two central
// values when the sample size is even.
func median(x []float64) float64 {
	s := append([]float64{}, x...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
