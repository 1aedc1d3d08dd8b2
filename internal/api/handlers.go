package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tephi/pkg/buildinfo"
	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/config"
	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/pipeline"
	"github.com/matzehuels/tephi/pkg/projection"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// MaxTransformPoints bounds the points of one transform request.
const MaxTransformPoints = 100_000

// Transform directions.
const (
	DirectionForward = "forward"
	DirectionInverse = "inverse"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatCSV:  "text/csv; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"build":  buildinfo.Get(),
	})
}

// chartOptions decodes a chart definition body into pipeline options. An
// empty body selects the standard chart.
func (s *Server) chartOptions(w http.ResponseWriter, r *http.Request, format string) (pipeline.Options, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "read body: %v", err)
	}
	def := config.Default()
	if len(bytes.TrimSpace(body)) > 0 {
		if def, err = config.DecodeJSON(bytes.NewReader(body)); err != nil {
			return pipeline.Options{}, err
		}
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return pipeline.Options{
		Chart:   def,
		Workers: s.workers,
		Refresh: refresh,
		Formats: []string{format},
	}, nil
}

// handleIsopleths generates a chart and returns it in the format given by
// the "format" query parameter (json by default).
func (s *Server) handleIsopleths(w http.ResponseWriter, r *http.Request) error {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	opts, err := s.chartOptions(w, r, format)
	if err != nil {
		return err
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", strconv.Quote(res.ChartHash))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
	return nil
}

type transformRequest struct {
	Projection string            `json:"projection"`
	Params     projection.Params `json:"params"`
	Direction  string            `json:"direction"`
	Points     []chart.XY        `json:"points"`
}

type transformResponse struct {
	Projection string     `json:"projection"`
	Direction  string     `json:"direction"`
	Points     []chart.XY `json:"points"`
}

// handleTransform maps (p, t) to (x, y) for direction "forward", or (x, y)
// to (p, t) for "inverse". The other pair of each input point is ignored.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) error {
	var req transformRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		return errors.New(errors.ErrCodeInvalidFormat, "decode transform request: %v", err)
	}
	if req.Projection == "" {
		req.Projection = projection.NameTephigram
	}
	if req.Direction == "" {
		req.Direction = DirectionForward
	}
	if len(req.Points) > MaxTransformPoints {
		return errors.New(errors.ErrCodeInvalidInput, "too many points: %d (max %d)", len(req.Points), MaxTransformPoints)
	}
	proj, err := projection.ByName(req.Projection, req.Params)
	if err != nil {
		return err
	}

	out := make([]chart.XY, len(req.Points))
	switch req.Direction {
	case DirectionForward:
		for i, p := range req.Points {
			st := thermo.State{Pressure: p.P, Temperature: p.T}
			if err := st.Validate(); err != nil {
				return errors.New(errors.ErrCodeInvalidState, "point %d: %s", i, errors.UserMessage(err))
			}
			pt := proj.Forward(st)
			out[i] = chart.XY{P: p.P, T: p.T, X: pt.X, Y: pt.Y}
		}
	case DirectionInverse:
		for i, p := range req.Points {
			st, err := projection.InverseState(proj, projection.Point{X: p.X, Y: p.Y})
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "point %d: %s", i, errors.UserMessage(err))
			}
			out[i] = chart.XY{P: st.Pressure, T: st.Temperature, X: p.X, Y: p.Y}
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "direction must be %q or %q, got %q", DirectionForward, DirectionInverse, req.Direction)
	}

	writeJSON(w, http.StatusOK, transformResponse{Projection: proj.Name(), Direction: req.Direction, Points: out})
	return nil
}

type createChartResponse struct {
	ID         string                `json:"id"`
	Projection string                `json:"projection"`
	Summary    []chart.FamilySummary `json:"summary"`
}

// handleCreateChart generates a chart and stores it.
func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) error {
	opts, err := s.chartOptions(w, r, pipeline.FormatJSON)
	if err != nil {
		return err
	}
	c, err := s.runner.Generate(r.Context(), opts)
	if err != nil {
		return err
	}
	id, err := s.store.Save(r.Context(), c)
	if err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	s.logger.Info("stored chart", "id", id, "projection", c.Projection, "lines", len(c.Lines))

	w.Header().Set("Location", "/v1/charts/"+id)
	writeJSON(w, http.StatusCreated, createChartResponse{ID: id, Projection: c.Projection, Summary: c.Summary()})
	return nil
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) error {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v)
		}
		limit = n
	}
	entries, err := s.store.List(r.Context(), limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"charts": entries})
	return nil
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) error {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, c)
	return nil
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) error {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
