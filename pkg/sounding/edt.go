package sounding

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/matzehuels/tephi/pkg/errors"
)

const (
	edtHeaderMarker   = "TimeUTC"
	edtStationKey     = "Station name"
	edtReleaseTimeKey = "Balloon release date and time"
)

// EDT column names mapped onto Level fields.
const (
	colPressure    = "P"
	colTemperature = "Temp"
	colDewpoint    = "Dewp"
	colHumidity    = "RH"
	colSpeed       = "Speed"
	colDirection   = "Dir"
)

// ReadFile reads a sounding, choosing the decoder from the file extension:
// .nc and .cdf are netCDF, anything else is treated as EDT text.
func ReadFile(path string) (*Profile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".cdf":
		return ReadNetCDF(path)
	}
	return ReadEDTFile(path)
}

// ReadEDTFile opens path and parses it with [ReadEDT].
func ReadEDTFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sounding file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	p, err := ReadEDT(f)
	if err != nil {
		return nil, err
	}
	if p.Station == "" {
		p.Station = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ReadEDT parses an EDT text export. The input is decoded as ISO-8859-1.
//
// Key/value sections ("Radiosonde data", "Release data", ...) are collected
// into Meta until the data table, whose header line contains TimeUTC. The
// line after the header holds units and is skipped. Cells that are not
// numbers become NaN; rows without a pressure are dropped.
func ReadEDT(r io.Reader) (*Profile, error) {
	sc := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	p := &Profile{Meta: map[string]string{}}
	var (
		cols      map[string]int
		skipUnits bool
		inSection bool
	)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		blank := strings.TrimSpace(line) == ""

		switch {
		case cols != nil:
			if blank {
				continue
			}
			if skipUnits {
				skipUnits = false
				continue
			}
			if l, ok := parseRow(strings.Split(line, "\t"), cols); ok {
				p.Levels = append(p.Levels, l)
			}
		case strings.Contains(line, edtHeaderMarker):
			cols = headerColumns(line)
			skipUnits = true
		case blank:
			inSection = false
		case !inSection:
			inSection = true
		default:
			fields := strings.Split(line, "\t")
			key := strings.TrimSpace(fields[0])
			if key == "" || len(fields) < 2 {
				continue
			}
			if _, dup := p.Meta[key]; !dup {
				p.Meta[key] = strings.TrimSpace(fields[1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSounding, err, "read EDT")
	}
	if cols == nil {
		return nil, errors.New(errors.ErrCodeInvalidSounding, "no %s header line found", edtHeaderMarker)
	}
	if _, ok := cols[colPressure]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidSounding, "data table has no %q column", colPressure)
	}

	p.Station = p.Meta[edtStationKey]
	if v, ok := p.Meta[edtReleaseTimeKey]; ok {
		t, err := parseReleaseTime(v)
		if err != nil {
			return nil, err
		}
		p.Released = t
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func headerColumns(line string) map[string]int {
	cols := make(map[string]int)
	for i, name := range strings.Split(line, "\t") {
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; name != "" && !dup {
			cols[name] = i
		}
	}
	return cols
}

func parseRow(fields []string, cols map[string]int) (Level, bool) {
	cell := func(name string) float64 {
		i, ok := cols[name]
		if !ok || i >= len(fields) {
			return math.NaN()
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	l := Level{
		Pressure:      cell(colPressure),
		Temperature:   cell(colTemperature),
		Dewpoint:      cell(colDewpoint),
		Humidity:      cell(colHumidity),
		WindSpeed:     cell(colSpeed),
		WindDirection: cell(colDirection),
	}
	return l, !math.IsNaN(l.Pressure)
}

// parseReleaseTime reads "YYYY-MM-DD HH:MM" by position so that any
// separator characters are accepted. The time is taken as UTC.
func parseReleaseTime(s string) (time.Time, error) {
	if len(s) < 16 {
		return time.Time{}, errors.New(errors.ErrCodeInvalidSounding, "release time %q is too short", s)
	}
	var parts [5]int
	for i, span := range [5][2]int{{0, 4}, {5, 7}, {8, 10}, {11, 13}, {14, 16}} {
		n, err := strconv.Atoi(s[span[0]:span[1]])
		if err != nil {
			return time.Time{}, errors.Wrap(errors.ErrCodeInvalidSounding, err, "release time %q", s)
		}
		parts[i] = n
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC), nil
}
