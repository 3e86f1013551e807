// Package nutrition holds the request logic behind the prediction,
// recommendation and history endpoints. Functions here take plain inputs and
// return *shared.RequestError values; the routers own HTTP concerns.
package nutrition

import (
	"context"

	"nutristat-api/internal/catalog"
	"nutristat-api/internal/history"
	nutri "nutristat-api/internal/nutrition"

	"go.uber.org/zap"
)

// Inferrer classifies a feature vector.
type Inferrer interface {
	Infer(ctx context.Context, f nutri.Features) (nutri.Category, float64, error)
}

// Recommender samples catalog foods for a category.
type Recommender interface {
	Recommend(category nutri.Category, n int) ([]catalog.FoodItem, error)
}

type NutritionHandler struct {
	Model          Inferrer
	Foods          Recommender
	History        history.Store
	HistoryBackend string
	Log            *zap.SugaredLogger
}

func NewNutritionHandler(model Inferrer, foods Recommender, store history.Store, backend string, log *zap.SugaredLogger) *NutritionHandler {
	if backend == "" {
		backend = history.BackendFile
	}
	return &NutritionHandler{
		Model:          model,
		Foods:          foods,
		History:        store,
		HistoryBackend: backend,
		Log:            log,
	}
}
