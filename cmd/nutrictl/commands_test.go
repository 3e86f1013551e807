package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prediction":"Gizi Baik","confidence":0.9,"description":"ok","recommendations":[]}`))
	})
	mux.HandleFunc("/recommendations", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") != "Gizi Lebih" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Kategori tidak valid."}`))
			return
		}
		_, _ = w.Write([]byte(`{"category":"Gizi Lebih","recommendations":[{"food":"tomat","Caloric Value":18,"Protein":0.9}]}`))
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"tb":110,"bb":18,"usia":5,"jenis_kelamin":"Laki-laki","prediction":"Gizi Baik","description":"ok","recommendations":[],"confidence":0.9}]`))
	})
	mux.HandleFunc("/data/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"tb":110,"bb":18,"usia":5,"jenis_kelamin":"Laki-laki","prediction":"Gizi Baik","description":"ok","recommendations":[],"confidence":0.9}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"nutrictl"}, args...))
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	srv := newFakeServer(t)
	out, err := runApp(t, "--server", srv.URL, "predict", "--tb", "110", "--bb", "18", "--usia", "5", "--sex", "Laki-laki")
	require.NoError(t, err)
	assert.Contains(t, out, `"prediction": "Gizi Baik"`)
}

func TestRecommendCommand_YAML(t *testing.T) {
	srv := newFakeServer(t)
	out, err := runApp(t, "--server", srv.URL, "--format", "yaml", "recommend", "--category", "Gizi Lebih")
	require.NoError(t, err)
	assert.Contains(t, out, "category: Gizi Lebih")
	assert.Contains(t, out, "food: tomat")
}

func TestRecommendCommand_APIError(t *testing.T) {
	srv := newFakeServer(t)
	_, err := runApp(t, "--server", srv.URL, "recommend", "--category", "Gizi Buruk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestHistoryCommands(t *testing.T) {
	srv := newFakeServer(t)

	out, err := runApp(t, "--server", srv.URL, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"jenis_kelamin": "Laki-laki"`)

	out, err = runApp(t, "--server", srv.URL, "--format", "yaml", "history", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "id: 1")

	_, err = runApp(t, "--server", srv.URL, "history", "get")
	require.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	srv := newFakeServer(t)
	_, err := runApp(t, "--server", srv.URL, "--format", "xml", "history", "list")
	require.Error(t, err)
}
