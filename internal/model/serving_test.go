package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServingTestServer(t *testing.T, state string, predictStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/nutrition_stat", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model_version_status": []map[string]string{{"version": "1", "state": state}},
		})
	})
	mux.HandleFunc("/v1/models/nutrition_stat:predict", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, [][][]float64{{{1.2, 22, 7}}}, req.Instances)

		w.WriteHeader(predictStatus)
		if predictStatus != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad input"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"predictions": [][]float64{{0.1, 0.7, 0.2}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestServingClient_Predict(t *testing.T) {
	srv := newServingTestServer(t, "AVAILABLE", http.StatusOK)
	c := NewServingClient(srv.URL+"/", "nutrition_stat", 5*time.Second, zap.NewNop().Sugar())

	require.NoError(t, c.Probe(context.Background()))

	probs, err := c.Predict(context.Background(), [][][]float64{{{1.2, 22, 7}}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.7, 0.2}, probs)
}

func TestServingClient_ProbeUnavailable(t *testing.T) {
	srv := newServingTestServer(t, "LOADING", http.StatusOK)
	c := NewServingClient(srv.URL, "nutrition_stat", 5*time.Second, zap.NewNop().Sugar())
	assert.Error(t, c.Probe(context.Background()))

	missing := NewServingClient(srv.URL, "other_model", 5*time.Second, zap.NewNop().Sugar())
	assert.Error(t, missing.Probe(context.Background()))
}

func TestServingClient_PredictError(t *testing.T) {
	srv := newServingTestServer(t, "AVAILABLE", http.StatusBadRequest)
	c := NewServingClient(srv.URL, "nutrition_stat", 5*time.Second, zap.NewNop().Sugar())

	_, err := c.Predict(context.Background(), [][][]float64{{{1.2, 22, 7}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad input")
}
