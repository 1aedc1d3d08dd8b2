package pipeline

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/errors"
)

// csvHeader is the first row of the csv output.
var csvHeader = []string{"family", "level", "index", "pressure", "temperature", "x", "y"}

// Render encodes c in every format of opts without caching.
func Render(c *chart.Chart, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(c, format)
		if err != nil {
			return nil, err
		}
		out[format] = data
	}
	return out, nil
}

func renderFormat(c *chart.Chart, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return chart.Marshal(c)
	case FormatCSV:
		return RenderCSV(c)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

// RenderCSV writes one row per line point. Sounding profiles are written
// after the lines with the family column set to "sounding-<name>" and the
// level column left empty.
func RenderCSV(c *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	row := make([]string, len(csvHeader))
	write := func(family, level string, i int, p chart.XY) error {
		row[0] = family
		row[1] = level
		row[2] = strconv.Itoa(i)
		row[3] = formatFloat(p.P)
		row[4] = formatFloat(p.T)
		row[5] = formatFloat(p.X)
		row[6] = formatFloat(p.Y)
		return w.Write(row)
	}
	for _, l := range c.Lines {
		level := formatFloat(l.Level)
		for i, p := range l.Points {
			if err := write(l.Family, level, i, p); err != nil {
				return nil, err
			}
		}
	}
	for _, prof := range c.Profiles {
		for i, p := range prof.Points {
			if err := write("sounding-"+prof.Name, "", i, p); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
