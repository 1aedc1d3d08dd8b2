package chart

import (
	"time"

	"github.com/matzehuels/tephi/pkg/isopleth"
	"github.com/matzehuels/tephi/pkg/projection"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// =============================================================================
// Chart - Serialized Chart Geometry
// =============================================================================

// Chart is the canonical serialization format for generated chart geometry.
// Used for JSON files, API responses, caching and document storage.
type Chart struct {
	ID         string            `json:"id,omitempty" bson:"_id,omitempty"`
	Projection string            `json:"projection" bson:"projection"`
	Params     projection.Params `json:"params" bson:"params"`
	Domain     isopleth.Domain   `json:"domain" bson:"domain"`
	Lines      []Line            `json:"lines" bson:"lines"`
	Profiles   []Profile         `json:"profiles,omitempty" bson:"profiles,omitempty"`
	CreatedAt  time.Time         `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// Line is one isopleth with both physical and display coordinates.
type Line struct {
	Family    string  `json:"family" bson:"family"`
	Level     float64 `json:"level" bson:"level"`
	Unit      string  `json:"unit" bson:"unit"`
	Points    []XY    `json:"points" bson:"points"`
	Conflicts int     `json:"conflicts,omitempty" bson:"conflicts,omitempty"` // Moist adiabat clamp conflicts
}

// Profile is a sounding trace drawn on top of the chart.
type Profile struct {
	Name    string `json:"name" bson:"name"`                           // "temperature" or "dewpoint"
	Station string `json:"station,omitempty" bson:"station,omitempty"` // Source station or file
	Points  []XY   `json:"points" bson:"points"`
}

// XY is a chart point in physical (P, T) and display (X, Y) coordinates.
type XY struct {
	P float64 `json:"p" bson:"p"`
	T float64 `json:"t" bson:"t"`
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// =============================================================================
// Construction
// =============================================================================

// New builds a chart from generated isopleths, projecting every point with
// proj. The isopleth order is preserved.
func New(proj projection.Projection, params projection.Params, domain isopleth.Domain, isos []isopleth.Isopleth) *Chart {
	c := &Chart{
		Projection: proj.Name(),
		Params:     params,
		Domain:     domain,
		Lines:      make([]Line, len(isos)),
	}
	for i, iso := range isos {
		c.Lines[i] = Line{
			Family:    iso.Family.String(),
			Level:     iso.Level,
			Unit:      iso.Family.Unit(),
			Points:    Points(proj, iso.Points),
			Conflicts: iso.Conflicts,
		}
	}
	return c
}

// Points projects states into chart points.
func Points(proj projection.Projection, states []thermo.State) []XY {
	out := make([]XY, len(states))
	for i, s := range states {
		pt := proj.Forward(s)
		out[i] = XY{P: s.Pressure, T: s.Temperature, X: pt.X, Y: pt.Y}
	}
	return out
}

// AddProfile appends a projected sounding trace.
func (c *Chart) AddProfile(proj projection.Projection, name, station string, states []thermo.State) {
	c.Profiles = append(c.Profiles, Profile{Name: name, Station: station, Points: Points(proj, states)})
}

// LinesOf returns the lines of the given family in chart order.
func (c *Chart) LinesOf(family isopleth.Family) []Line {
	var out []Line
	name := family.String()
	for _, l := range c.Lines {
		if l.Family == name {
			out = append(out, l)
		}
	}
	return out
}

// PointCount returns the total number of line points in the chart.
func (c *Chart) PointCount() int {
	n := 0
	for _, l := range c.Lines {
		n += len(l.Points)
	}
	return n
}

// =============================================================================
// Summary
// =============================================================================

// FamilySummary aggregates the lines of one family.
type FamilySummary struct {
	Family    string `json:"family"`
	Lines     int    `json:"lines"`
	Empty     int    `json:"empty"`
	Points    int    `json:"points"`
	Conflicts int    `json:"conflicts,omitempty"`
}

// Summary returns per-family line and point counts in drawing order.
// Families with no lines are omitted.
func (c *Chart) Summary() []FamilySummary {
	var out []FamilySummary
	for _, f := range isopleth.Families() {
		s := FamilySummary{Family: f.String()}
		for _, l := range c.LinesOf(f) {
			s.Lines++
			s.Points += len(l.Points)
			s.Conflicts += l.Conflicts
			if len(l.Points) == 0 {
				s.Empty++
			}
		}
		if s.Lines > 0 {
			out = append(out, s)
		}
	}
	return out
}
