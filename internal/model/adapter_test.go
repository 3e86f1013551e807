package model

import (
	"context"
	"errors"
	"math"
	"testing"

	"nutristat-api/internal/nutrition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	probs []float64
	err   error
	input [][][]float64
}

func (s *stubClassifier) Predict(_ context.Context, input [][][]float64) ([]float64, error) {
	s.input = input
	return s.probs, s.err
}

func TestAdapterInfer(t *testing.T) {
	tests := []struct {
		name       string
		probs      []float64
		want       nutrition.Category
		confidence float64
	}{
		{"well nourished", []float64{0.7, 0.2, 0.1}, nutrition.WellNourished, 0.7},
		{"undernourished", []float64{0.1, 0.85, 0.05}, nutrition.Undernourished, 0.85},
		{"overnourished", []float64{0.1, 0.1, 0.8}, nutrition.Overnourished, 0.8},
		{"tie picks first", []float64{0.4, 0.4, 0.2}, nutrition.WellNourished, 0.4},
		{"rounding above one", []float64{1.0000001, 0, 0}, nutrition.WellNourished, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(&stubClassifier{probs: tt.probs})
			got, conf, err := a.Infer(context.Background(), nutrition.NewFeatures(120, 22, 7))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, tt.confidence, conf, 1e-9)
		})
	}
}

func TestAdapterInfer_FeatureVector(t *testing.T) {
	stub := &stubClassifier{probs: []float64{1, 0, 0}}
	_, _, err := NewAdapter(stub).Infer(context.Background(), nutrition.NewFeatures(120, 22, 7))
	require.NoError(t, err)

	require.Len(t, stub.input, 1)
	require.Len(t, stub.input[0], 1)
	require.Len(t, stub.input[0][0], 3)
	assert.InDelta(t, 1.2, stub.input[0][0][0], 1e-12)
	assert.Equal(t, 22.0, stub.input[0][0][1])
	assert.Equal(t, 7.0, stub.input[0][0][2])
}

func TestAdapterInfer_Errors(t *testing.T) {
	tests := []struct {
		name string
		stub *stubClassifier
	}{
		{"classifier error", &stubClassifier{err: errors.New("boom")}},
		{"too few classes", &stubClassifier{probs: []float64{0.5, 0.5}}},
		{"nan", &stubClassifier{probs: []float64{math.NaN(), 0.2, 0.1}}},
		{"not a probability", &stubClassifier{probs: []float64{4, 1, 1}}},
		{"negative", &stubClassifier{probs: []float64{-3, -2, -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewAdapter(tt.stub).Infer(context.Background(), nutrition.NewFeatures(120, 22, 7))
			assert.Error(t, err)
		})
	}
}
