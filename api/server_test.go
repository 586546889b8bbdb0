package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecsim/tecsim/tec"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	model, err := tec.LoadTechnologyModel("../tec/testdata/chp.yaml")
	require.NoError(t, err)
	s := NewServer()
	s.Add(model)
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAPI_Health(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_ListTechnologies(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodGet, "/technologies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Technologies []string `json:"technologies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"gas_h2_chp"}, res.Technologies)
}

func TestAPI_Cost(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/technologies/gas_h2_chp/cost",
		map[string]any{"size": 10, "output_mwh": 100})
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		AnnualizedCost float64 `json:"annualized_cost_eur"`
		Decommission   float64 `json:"decommission_cost_eur"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	capex := 70086.96129956 * 10 / 50
	assert.InDelta(t, capex+350+0.04*capex, res.AnnualizedCost, 1e-6)
	assert.Equal(t, 15000.0, res.Decommission)
}

// Size 0 is within the example record's bounds (size_min 0) and must reach
// the evaluator instead of being rejected at binding.
func TestAPI_CostZeroSize(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/technologies/gas_h2_chp/cost",
		map[string]any{"size": 0})
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		AnnualizedCost float64 `json:"annualized_cost_eur"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 0.0, res.AnnualizedCost)
}

func TestAPI_CostSizeOutOfBounds(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/technologies/gas_h2_chp/cost",
		map[string]any{"size": 1000})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAPI_Convert(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/technologies/gas_h2_chp/convert",
		map[string]any{"load": 0.6, "size": 10})
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Output map[string]float64 `json:"output_mw"`
		Input  map[string]float64 `json:"input_mw"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.InDelta(t, 5.5, res.Output["heat"], 1e-9)
	assert.InDelta(t, 2.75, res.Output["electricity"], 1e-9)
	assert.InDelta(t, 6.0, res.Input["gas"], 1e-9)
}

func TestAPI_ConvertBelowMinPartLoad(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/technologies/gas_h2_chp/convert",
		map[string]any{"load": 0.2, "size": 10})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAPI_Step(t *testing.T) {
	h := testServer(t).Handler()

	// A fresh unit cannot start before serving its minimum downtime.
	w := doJSON(t, h, http.MethodPost, "/technologies/gas_h2_chp/step",
		map[string]any{"load": 0.6, "status": "on"})
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		State     tec.OperatingState `json:"state"`
		Feasible  bool               `json:"feasible"`
		Violation string             `json:"violation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Feasible)
	assert.Contains(t, res.Violation, "downtime")

	// After the downtime has been served the startup is feasible.
	w = doJSON(t, h, http.MethodPost, "/technologies/gas_h2_chp/step", map[string]any{
		"state":  tec.OperatingState{Status: tec.StatusOff, StepsInStatus: 4},
		"load":   0.6,
		"status": "on",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Feasible)
	assert.Equal(t, tec.StatusOn, res.State.Status)
	assert.Equal(t, 1, res.State.Startups)
}

func TestAPI_UnknownTechnology(t *testing.T) {
	h := testServer(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/technologies/nope/cost", map[string]any{"size": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_LoadDir(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile("../tec/testdata/chp.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chp.yaml"), data, 0o644))

	s := NewServer()
	require.NoError(t, s.LoadDir(dir))
	assert.Equal(t, []string{"gas_h2_chp"}, s.Names())
}
