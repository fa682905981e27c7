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

package geofieldutil

import (
	"fmt"
	"os"

	"github.com/ctessum/sparse"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/geofield"
	"github.com/spatialmodel/geofield/ncf"
	"github.com/spf13/cast"
)

// expandString expands environment variables in a configuration value.
func expandString(cfg *viper.Viper, name string) (string, error) {
	v, err := cast.ToStringE(cfg.Get(name))
	if err != nil {
		return "", fmt.Errorf("geofield: configuration value %s: %v", name, err)
	}
	return os.ExpandEnv(v), nil
}

// loadField reads the variable given by the VarName configuration value
// from the file given by InputFile.
func loadField(cfg *viper.Viper) (*geofield.Field, error) {
	path, err := expandString(cfg, "InputFile")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("geofield: you need to specify an input file " +
			"(with the --InputFile flag or in a configuration file)")
	}
	varName := cfg.GetString("VarName")
	if varName == "" {
		return nil, fmt.Errorf("geofield: you need to specify a variable name " +
			"(with the --VarName flag or in a configuration file)")
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geofield: problem opening input file: %v", err)
	}
	defer r.Close()
	logger.Infof("Reading %s from %s", varName, path)
	return ncf.ReadField(r, varName)
}

// loadArea reads per-cell surface areas from the file given by the
// AreaFile configuration value, if there is one.
func loadArea(cfg *viper.Viper) (*sparse.DenseArray, error) {
	path, err := expandString(cfg, "AreaFile")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geofield: problem opening cell-area file: %v", err)
	}
	defer r.Close()
	areaVar := cfg.GetString("AreaVar")
	logger.Infof("Reading cell areas %s from %s", areaVar, path)
	return ncf.ReadCellArea(r, areaVar)
}

// maybeExtractRegion subsets f to the bounding box given by the
// Region.* configuration values if Region.Extract is set.
func maybeExtractRegion(cfg *viper.Viper, f *geofield.Field) (*geofield.Field, error) {
	if !cfg.GetBool("Region.Extract") {
		return f, nil
	}
	lonMin := cfg.GetFloat64("Region.LonMin")
	lonMax := cfg.GetFloat64("Region.LonMax")
	latMin := cfg.GetFloat64("Region.LatMin")
	latMax := cfg.GetFloat64("Region.LatMax")
	logger.Infof("Extracting region lon=[%g, %g] lat=[%g, %g]",
		lonMin, lonMax, latMin, latMax)
	return geofield.ExtractRegion(f, lonMin, lonMax, latMin, latMax)
}

// regionList reads the Regions configuration value, which may come from
// a flag, an environment variable, or a configuration file.
func regionList(cfg *viper.Viper) ([]string, error) {
	regions, err := cast.ToStringSliceE(cfg.Get("Regions"))
	if err != nil {
		return nil, fmt.Errorf("geofield: configuration value Regions: %v", err)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("geofield: you need to specify at least one region " +
			"(with the --Regions flag or in a configuration file)")
	}
	return regions, nil
}

// writeResult writes f to the file given by the OutputFile configuration
// value, keeping the variable name given by VarName.
func writeResult(cfg *viper.Viper, f *geofield.Field) error {
	path, err := expandString(cfg, "OutputFile")
	if err != nil {
		return err
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("geofield: problem creating output file: %v", err)
	}
	if err := ncf.WriteField(w, f, cfg.GetString("VarName")); err != nil {
		w.Close()
		return err
	}
	logger.Infof("Wrote result with shape %v to %s", f.Data.Shape, path)
	return w.Close()
}
