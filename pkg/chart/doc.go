// Package chart provides the serialization format for generated chart
// geometry.
//
// A [Chart] bundles the lines produced by pkg/isopleth with the projection
// used to place them, so consumers can draw without recomputing anything.
// Each [XY] carries both physical and display coordinates.
//
// The same struct is used for JSON files, API responses, cache entries and
// MongoDB documents (it carries json and bson tags).
//
//	c := chart.New(proj, params, domain, isos)
//	chart.WriteFile(c, "tephigram.json")
//	back, _ := chart.ReadFile("tephigram.json")
//	for _, s := range back.Summary() {
//	    fmt.Println(s.Family, s.Lines, s.Points)
//	}
package chart
