package sounding

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// Level is one row of a sounding. Missing values are NaN.
type Level struct {
	Pressure      float64 `json:"pressure"`       // hPa
	Temperature   float64 `json:"temperature"`    // °C
	Dewpoint      float64 `json:"dewpoint"`       // °C
	Humidity      float64 `json:"humidity"`       // %
	WindSpeed     float64 `json:"wind_speed"`     // m/s
	WindDirection float64 `json:"wind_direction"` // degrees
}

// Profile is a single radiosonde ascent.
type Profile struct {
	Station  string            `json:"station,omitempty"`
	Released time.Time         `json:"released,omitzero"`
	Meta     map[string]string `json:"meta,omitempty"` // Header key/value pairs
	Levels   []Level           `json:"levels"`
}

// Kind selects which curve [Profile.Trace] extracts.
type Kind int

const (
	Temperature Kind = iota + 1
	Dewpoint
)

func (k Kind) String() string {
	switch k {
	case Temperature:
		return "temperature"
	case Dewpoint:
		return "dewpoint"
	}
	return "unknown"
}

// Kinds returns the traceable curves in drawing order.
func Kinds() []Kind { return []Kind{Temperature, Dewpoint} }

// StandardLevels returns the default pruning targets: every 10 hPa from
// 1050 down to 100 hPa.
func StandardLevels() []float64 {
	out := make([]float64, 0, 96)
	for p := 1050.0; p >= 100; p -= 10 {
		out = append(out, p)
	}
	return out
}

// Validate reports INVALID_SOUNDING for a profile without usable levels.
func (p *Profile) Validate() error {
	if p == nil || len(p.Levels) == 0 {
		return errors.New(errors.ErrCodeInvalidSounding, "sounding has no levels")
	}
	for _, l := range p.Levels {
		if l.Pressure > 0 && !math.IsInf(l.Pressure, 0) {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidSounding, "sounding has no level with a valid pressure")
}

// Prune returns a copy of the profile holding, for each target pressure,
// the level whose pressure is closest to it. Levels picked by more than one
// target appear once. The result is ordered by decreasing pressure.
func (p *Profile) Prune(targets []float64) *Profile {
	out := &Profile{Station: p.Station, Released: p.Released, Meta: p.Meta}
	if len(p.Levels) == 0 || len(targets) == 0 {
		return out
	}

	picked := make(map[int]struct{}, len(targets))
	for _, target := range targets {
		best, bestDist := -1, math.Inf(1)
		for i, l := range p.Levels {
			if math.IsNaN(l.Pressure) {
				continue
			}
			if d := math.Abs(l.Pressure - target); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			picked[best] = struct{}{}
		}
	}

	seen := make(map[float64]struct{}, len(picked))
	idx := make([]int, 0, len(picked))
	for i := range picked {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		l := p.Levels[i]
		if _, dup := seen[l.Pressure]; dup {
			continue
		}
		seen[l.Pressure] = struct{}{}
		out.Levels = append(out.Levels, l)
	}
	slices.SortStableFunc(out.Levels, func(a, b Level) int {
		switch {
		case a.Pressure > b.Pressure:
			return -1
		case a.Pressure < b.Pressure:
			return 1
		}
		return 0
	})
	return out
}

// Trace extracts one curve as states. Levels where the pressure or the
// selected temperature is missing are skipped.
func (p *Profile) Trace(kind Kind) []thermo.State {
	out := make([]thermo.State, 0, len(p.Levels))
	for _, l := range p.Levels {
		t := l.Temperature
		if kind == Dewpoint {
			t = l.Dewpoint
		}
		if !(l.Pressure > 0) || math.IsNaN(t) || math.IsInf(t, 0) {
			continue
		}
		out = append(out, thermo.State{Pressure: l.Pressure, Temperature: t})
	}
	return out
}

