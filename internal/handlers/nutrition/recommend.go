package nutrition

import (
	"fmt"
	"strconv"

	"nutristat-api/internal/catalog"
	"nutristat-api/internal/metrics"
	nutri "nutristat-api/internal/nutrition"
	"nutristat-api/internal/shared"
)

type RecommendInput struct {
	Category string
	// N is the raw count; empty means the default
	N string
}

type RecommendOutput struct {
	Category        nutri.Category     `json:"category"`
	Recommendations []catalog.FoodItem `json:"recommendations"`
}

func (h *NutritionHandler) RecommendLogic(in *RecommendInput) (*RecommendOutput, error) {
	category, ok := nutri.ParseCategory(in.Category)
	if !ok {
		return nil, shared.ErrInvalidCategory
	}

	n := shared.DefaultRecommendations
	if in.N != "" {
		parsed, err := strconv.Atoi(in.N)
		if err != nil || parsed < 0 {
			return nil, shared.ErrInvalidCount
		}
		n = parsed
	}

	recs, err := h.Foods.Recommend(category, n)
	if err != nil {
		h.Log.Errorw("Failed to sample recommendations", "category", category, "error", err)
		return nil, shared.NewInternalError("", err)
	}
	if len(recs) == 0 {
		metrics.RecommendationLookups.WithLabelValues(string(category), "false").Inc()
		return nil, &shared.RequestError{
			Kind:    shared.KindNotFound,
			Message: fmt.Sprintf("Tidak ditemukan makanan untuk kategori '%s'.", category),
		}
	}
	metrics.RecommendationLookups.WithLabelValues(string(category), "true").Inc()

	return &RecommendOutput{Category: category, Recommendations: recs}, nil
}
