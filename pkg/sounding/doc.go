// Package sounding reads radiosonde profiles and turns them into traces
// that can be drawn on a chart.
//
// Two file formats are supported. [ReadEDT] parses the tab separated text
// export written by Vaisala sounding systems (the "EDT" format), which has
// a "Release data" section with the station name and launch time followed
// by a data table whose header line starts with TimeUTC. [ReadNetCDF]
// reads the ARM style netCDF soundings with pres, tdry, dp, wspd and deg
// variables.
//
// Raw soundings have thousands of levels. [Profile.Prune] reduces a
// profile to the levels closest to a list of target pressures, and
// [Profile.Trace] extracts the temperature or dewpoint curve as
// [thermo.State] values:
//
//	p, err := sounding.ReadFile("launch.edt")
//	if err != nil {
//	    return err
//	}
//	temps := p.Prune(sounding.StandardLevels()).Trace(sounding.Temperature)
package sounding
