package sounding

import (
	"fmt"
	"math"
	"os"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/matzehuels/tephi/pkg/errors"
)

// netCDF variable names, ARM sonde convention.
const (
	ncPressure    = "pres"
	ncTemperature = "tdry"
	ncDewpoint    = "dp"
	ncHumidity    = "rh"
	ncSpeed       = "wspd"
	ncDirection   = "deg"
)

// ARM fill values below this are treated as missing.
const ncMissing = -9000

// ReadNetCDF reads a netCDF sounding. pres and tdry are required; the other
// variables are optional and read as NaN when absent.
func ReadNetCDF(path string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sounding file %s", path)
	}
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSounding, err, "open netCDF %s", path)
	}
	defer nc.Close()

	pres, err := ncValues(nc, ncPressure)
	if err != nil {
		return nil, err
	}
	tdry, err := ncValues(nc, ncTemperature)
	if err != nil {
		return nil, err
	}
	optional := func(name string) []float64 {
		v, err := ncValues(nc, name)
		if err != nil {
			return nil
		}
		return v
	}
	dp, rh, wspd, deg := optional(ncDewpoint), optional(ncHumidity), optional(ncSpeed), optional(ncDirection)

	p := &Profile{Station: ncStation(nc), Levels: make([]Level, 0, len(pres))}
	for i, pr := range pres {
		if math.IsNaN(pr) {
			continue
		}
		p.Levels = append(p.Levels, Level{
			Pressure:      pr,
			Temperature:   at(tdry, i),
			Dewpoint:      at(dp, i),
			Humidity:      at(rh, i),
			WindSpeed:     at(wspd, i),
			WindDirection: at(deg, i),
		})
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func ncValues(nc api.Group, name string) ([]float64, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSounding, err, "variable %q", name)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSounding, err, "read variable %q", name)
	}
	out, err := toFloats(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSounding, err, "variable %q", name)
	}
	return out, nil
}

func toFloats(v any) ([]float64, error) {
	var out []float64
	switch vs := v.(type) {
	case []float64:
		out = make([]float64, len(vs))
		copy(out, vs)
	case []float32:
		out = make([]float64, len(vs))
		for i, x := range vs {
			out[i] = float64(x)
		}
	case []int32:
		out = make([]float64, len(vs))
		for i, x := range vs {
			out[i] = float64(x)
		}
	case []int16:
		out = make([]float64, len(vs))
		for i, x := range vs {
			out[i] = float64(x)
		}
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
	for i, x := range out {
		if x < ncMissing || math.IsInf(x, 0) {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

func at(vs []float64, i int) float64 {
	if i >= len(vs) {
		return math.NaN()
	}
	return vs[i]
}

func ncStation(nc api.Group) string {
	for _, key := range []string{"site_id", "facility_id", "station"} {
		if v, ok := nc.Attributes().Get(key); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
