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

// Package geofieldutil wires the geofield engine to configuration
// files, command-line flags, and NetCDF input and output.
package geofieldutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/geofield"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:  true,
		DisableSorting: true,
	})

	// Options are the configuration options available to geofield.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the logging verbosity: debug, info, warn, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the NetCDF file holding the variable
              to process.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "VarName",
			usage: `
              VarName is the name of the variable to process.`,
			shorthand:  "v",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the result is written. The result
              variable keeps the name given by VarName.`,
			shorthand:  "o",
			defaultVal: "geofield_output.nc",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LatName",
			usage: `
              LatName is the name of the latitude coordinate in the input file.`,
			defaultVal: geofield.LatCoord,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LonName",
			usage: `
              LonName is the name of the longitude coordinate in the input file.`,
			defaultVal: geofield.LonCoord,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Operator",
			usage: `
              Operator is the statistic used to collapse the field: mean,
              median, stdev, variance, min, or max. Only the mean is
              area-weighted.`,
			defaultVal: "mean",
			flagsets:   []*pflag.FlagSet{averageCmd.Flags(), zonalCmd.Flags()},
		},
		{
			name: "AreaFile",
			usage: `
              AreaFile is the path to a NetCDF file holding per-cell surface
              areas. It is required for curvilinear grids and optional for
              rectilinear grids, where areas can be calculated from the
              coordinate cell bounds.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{averageCmd.Flags()},
		},
		{
			name: "AreaVar",
			usage: `
              AreaVar is the name of the cell-area variable in AreaFile.`,
			defaultVal: "areacella",
			flagsets:   []*pflag.FlagSet{averageCmd.Flags()},
		},
		{
			name: "Region.Extract",
			usage: `
              Region.Extract specifies whether to subset the field to the
              bounding box given by the Region.* options before any other
              processing.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags(), zonalCmd.Flags()},
		},
		{
			name: "Region.LonMin",
			usage: `
              Region.LonMin is the western boundary longitude of the bounding
              box [degrees].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags(), zonalCmd.Flags()},
		},
		{
			name: "Region.LonMax",
			usage: `
              Region.LonMax is the eastern boundary longitude of the bounding
              box [degrees].`,
			defaultVal: 360.0,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags(), zonalCmd.Flags()},
		},
		{
			name: "Region.LatMin",
			usage: `
              Region.LatMin is the southern boundary latitude of the bounding
              box [degrees].`,
			defaultVal: -90.0,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags(), zonalCmd.Flags()},
		},
		{
			name: "Region.LatMax",
			usage: `
              Region.LatMax is the northern boundary latitude of the bounding
              box [degrees].`,
			defaultVal: 90.0,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags(), zonalCmd.Flags()},
		},
		{
			name: "Axis",
			usage: `
              Axis is the name of the single axis to collapse.`,
			defaultVal: geofield.LonCoord,
			flagsets:   []*pflag.FlagSet{zonalCmd.Flags()},
		},
		{
			name: "Regions",
			usage: `
              Regions lists the named regions to extract from the field's
              region coordinate.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{regionsCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GEOFIELD")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(averageCmd)
	Root.AddCommand(zonalCmd)
	Root.AddCommand(regionsCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("geofield: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("geofield: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "geofield",
	Short: "Spatial statistics for gridded geophysical fields.",
	Long: `geofield subsets gridded geophysical fields to latitude/longitude
boxes or named regions and collapses them with area-weighted statistics.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GEOFIELD_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of geofield.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("geofield v%s\n", geofield.Version)
	},
	DisableAutoGenTag: true,
}

// averageCmd collapses the two horizontal axes with an area-weighted
// statistic.
var averageCmd = &cobra.Command{
	Use:   "average",
	Short: "Collapse the horizontal axes with an area-weighted statistic.",
	Long: `average loads the variable given by VarName from InputFile,
optionally subsets it to the Region.* bounding box, collapses its
latitude and longitude axes with the statistic given by Operator, and
writes the result to OutputFile. Per-cell areas come from AreaFile if
given, or otherwise from the coordinate cell bounds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadField(Cfg)
		if err != nil {
			return err
		}
		f, err = maybeExtractRegion(Cfg, f)
		if err != nil {
			return err
		}
		area, err := loadArea(Cfg)
		if err != nil {
			return err
		}
		operator := Cfg.GetString("Operator")
		logger.Infof("Collapsing %s over %s and %s with operator %s",
			Cfg.GetString("VarName"), Cfg.GetString("LatName"), Cfg.GetString("LonName"), operator)
		result, err := geofield.AverageRegion(f, Cfg.GetString("LatName"),
			Cfg.GetString("LonName"), operator, area)
		if err != nil {
			return err
		}
		return writeResult(Cfg, result)
	},
	DisableAutoGenTag: true,
}

// zonalCmd collapses a single axis.
var zonalCmd = &cobra.Command{
	Use:   "zonal",
	Short: "Collapse a single axis with a statistic.",
	Long: `zonal loads the variable given by VarName from InputFile,
optionally subsets it to the Region.* bounding box, collapses the axis
given by Axis with the statistic given by Operator (unweighted), and
writes the result to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadField(Cfg)
		if err != nil {
			return err
		}
		f, err = maybeExtractRegion(Cfg, f)
		if err != nil {
			return err
		}
		logger.Infof("Collapsing %s over %s with operator %s",
			Cfg.GetString("VarName"), Cfg.GetString("Axis"), Cfg.GetString("Operator"))
		result, err := geofield.AxisStatistic(f, Cfg.GetString("Axis"), Cfg.GetString("Operator"))
		if err != nil {
			return err
		}
		return writeResult(Cfg, result)
	},
	DisableAutoGenTag: true,
}

// regionsCmd subsets a field to named regions.
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Extract named regions from a field.",
	Long: `regions loads the variable given by VarName from InputFile,
subsets it along its region coordinate to the labels given by Regions,
and writes the result to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadField(Cfg)
		if err != nil {
			return err
		}
		regions, err := regionList(Cfg)
		if err != nil {
			return err
		}
		logger.Infof("Extracting regions %v from %s", regions, Cfg.GetString("VarName"))
		result, err := geofield.ExtractNamedRegions(f, regions)
		if err != nil {
			return err
		}
		return writeResult(Cfg, result)
	},
	DisableAutoGenTag: true,
}
