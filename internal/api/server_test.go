package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tephi/internal/api"
	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/observability"
	"github.com/matzehuels/tephi/pkg/pipeline"
	"github.com/matzehuels/tephi/pkg/store"
)

const smallChart = `{
	"projection": "skewt",
	"sampling": {"samples": 5, "moist_steps": 3},
	"levels": {
		"isotherms": {"values": [0, 10]},
		"isobars": {"values": [500]},
		"moist_adiabats": {"values": [10]}
	}
}`

func newTestServer(t *testing.T) *api.Server {
	t.Helper()
	logger := log.New(io.Discard)
	return api.NewServer(":0", api.Options{
		Runner: pipeline.NewRunner(nil, nil, logger),
		Store:  store.NewMemoryStore(),
		Logger: logger,
	})
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "build")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIsoplethsJSON(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/isopleths", smallChart)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	c, err := chart.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "skew-logp", c.Projection)
	require.Len(t, c.Lines, 4)
	assert.Equal(t, "isotherm", c.Lines[0].Family)
	assert.Len(t, c.Lines[0].Points, 5)
	assert.Len(t, c.Lines[3].Points, 7)
}

func TestIsoplethsEmptyBodyUsesStandardChart(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/isopleths", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c, err := chart.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "tephigram", c.Projection)
	assert.Len(t, c.Lines, 17+35+11+21+37)
}

func TestIsoplethsCSV(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/isopleths?format=csv", smallChart)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "family,level,index,pressure,temperature,x,y", lines[0])
	assert.Len(t, lines, 1+5+5+5+7)
}

func TestIsoplethsErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"bad domain", "/v1/isopleths", `{"domain":{"min_pressure":900,"max_pressure":100,"min_temperature":-10,"max_temperature":10}}`, 400, "INVALID_DOMAIN"},
		{"unknown field", "/v1/isopleths", `{"colour":"red"}`, 400, "INVALID_FORMAT"},
		{"bad json", "/v1/isopleths", `{`, 400, "INVALID_FORMAT"},
		{"bad format", "/v1/isopleths?format=svg", smallChart, 400, "INVALID_FORMAT"},
		{"bad projection", "/v1/isopleths", `{"projection":"mercator"}`, 400, "INVALID_PROJECTION"},
		{"anchor outside domain", "/v1/isopleths", `{"levels":{"moist_adiabats":{"values":[150]}}}`, 400, "INVALID_LEVEL"},
		{"too many samples", "/v1/isopleths", `{"sampling":{"samples":2000000000,"moist_steps":2000000000}}`, 400, "INVALID_INPUT"},
		{"too many samples on create", "/v1/charts", `{"sampling":{"samples":2000000000}}`, 400, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

type transformResult struct {
	Projection string     `json:"projection"`
	Direction  string     `json:"direction"`
	Points     []chart.XY `json:"points"`
}

func TestTransformRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/v1/transform",
		`{"projection":"tephi","points":[{"p":1000,"t":20},{"p":500,"t":-20}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fwd transformResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fwd))
	assert.Equal(t, "tephigram", fwd.Projection)
	assert.Equal(t, "forward", fwd.Direction)
	require.Len(t, fwd.Points, 2)

	req, err := json.Marshal(map[string]any{
		"projection": "tephigram",
		"direction":  "inverse",
		"points":     []map[string]float64{{"x": fwd.Points[1].X, "y": fwd.Points[1].Y}},
	})
	require.NoError(t, err)
	rec = do(t, srv, http.MethodPost, "/v1/transform", string(req))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var inv transformResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	require.Len(t, inv.Points, 1)
	assert.InDelta(t, 500, inv.Points[0].P, 1e-6)
	assert.InDelta(t, -20, inv.Points[0].T, 1e-6)
}

func TestTransformErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"bad state", `{"points":[{"p":0,"t":10}]}`, "INVALID_STATE"},
		{"below absolute zero", `{"points":[{"p":500,"t":-300}]}`, "INVALID_STATE"},
		{"bad direction", `{"direction":"sideways","points":[]}`, "INVALID_INPUT"},
		{"bad projection", `{"projection":"mercator"}`, "INVALID_PROJECTION"},
		{"unknown field", `{"pts":[]}`, "INVALID_FORMAT"},
		{"inverse off the chart", `{"projection":"tephigram","direction":"inverse","points":[{"x":-5000,"y":0}]}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, "/v1/transform", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestTransformInverseNeverSendsEmptyBody(t *testing.T) {
	srv := newTestServer(t)
	for _, name := range []string{"tephigram", "skew-logp", "emagram"} {
		t.Run(name, func(t *testing.T) {
			body := `{"projection":"` + name + `","direction":"inverse","points":[{"x":-5000,"y":0},{"x":0,"y":1e6}]}`
			rec := do(t, srv, http.MethodPost, "/v1/transform", body)
			require.NotEmpty(t, rec.Body.String())
			if rec.Code == http.StatusOK {
				var res transformResult
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error.Code)
		})
	}
}

func TestChartsCRUD(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/v1/charts", smallChart)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID      string                `json:"id"`
		Summary []chart.FamilySummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "/v1/charts/"+created.ID, rec.Header().Get("Location"))
	assert.NotEmpty(t, created.Summary)

	rec = do(t, srv, http.MethodGet, "/v1/charts/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	c, err := chart.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, created.ID, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	rec = do(t, srv, http.MethodGet, "/v1/charts?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Charts []store.Entry `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Charts, 1)
	assert.Equal(t, created.ID, list.Charts[0].ID)

	rec = do(t, srv, http.MethodDelete, "/v1/charts/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/charts/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)
}

func TestChartsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/v1/charts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error.Code)

	rec = do(t, srv, http.MethodGet, "/v1/charts?limit=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingStore struct{ store.Store }

func (failingStore) List(context.Context, int) ([]store.Entry, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestInternalErrorsAreHidden(t *testing.T) {
	srv := api.NewServer(":0", api.Options{Store: failingStore{}, Logger: log.New(io.Discard)})
	rec := do(t, srv, http.MethodGet, "/v1/charts", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "internal error", body.Error.Message)
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []string
	errors    []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+route+" "+http.StatusText(status))
}

func (h *recordingHTTPHooks) OnError(_ context.Context, _, _, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, code)
}

func TestHTTPHooksUseRoutePattern(t *testing.T) {
	h := &recordingHTTPHooks{}
	observability.SetHTTPHooks(h)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t)
	do(t, srv, http.MethodGet, "/v1/charts/0b7e2f60-2d0b-4a8f-9a39-1b5a1f2c3d4e", "")

	assert.Equal(t, []string{"GET /v1/charts/{id} Not Found"}, h.responses)
	assert.Equal(t, []string{"NOT_FOUND"}, h.errors)
}

