package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"nutristat-api/internal/catalog"
	"nutristat-api/internal/history"
	"nutristat-api/internal/metrics"
	nutri "nutristat-api/internal/nutrition"
	"nutristat-api/internal/shared"

	"go.uber.org/zap"
)

// requiredKeys is also the order missing keys are reported in.
var requiredKeys = []string{"tb", "bb", "usia", "jenis_kelamin"}

// PredictInput contains everything needed to classify one child
type PredictInput struct {
	Body []byte
	Ctx  context.Context
	Log  *zap.SugaredLogger
}

// PredictOutput is the response body of a successful prediction
type PredictOutput struct {
	Prediction      nutri.Category     `json:"prediction"`
	Confidence      float64            `json:"confidence"`
	Description     string             `json:"description"`
	Recommendations []catalog.FoodItem `json:"recommendations"`

	// Record is the persisted history entry, not rendered
	Record history.Record `json:"-"`
}

// PredictRequest is a validated prediction body
type PredictRequest struct {
	Height float64
	Weight float64
	Age    float64
	Sex    nutri.Sex
}

// ParsePredictRequest validates a raw body. Checks run in a fixed order and
// stop at the first failure.
func ParsePredictRequest(body []byte) (*PredictRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil, shared.ErrMalformedInput
	}

	var missing []string
	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &shared.RequestError{
			Kind:        shared.KindValidation,
			Err:         errors.New(shared.MsgIncompleteInput),
			Message:     shared.MsgCompleteFields,
			MissingKeys: missing,
		}
	}

	height, okHeight := jsonNumber(fields["tb"])
	weight, okWeight := jsonNumber(fields["bb"])
	if !okHeight || !okWeight {
		return nil, shared.ErrHeightWeightNaN
	}
	age, ok := jsonNumber(fields["usia"])
	if !ok || age <= 0 {
		return nil, shared.ErrInvalidAge
	}
	var rawSex string
	if err := json.Unmarshal(fields["jenis_kelamin"], &rawSex); err != nil {
		return nil, shared.ErrInvalidSex
	}
	sex, ok := nutri.ParseSex(rawSex)
	if !ok {
		return nil, shared.ErrInvalidSex
	}

	return &PredictRequest{Height: height, Weight: weight, Age: age, Sex: sex}, nil
}

// jsonNumber accepts only JSON number literals. Strings, booleans and null
// are rejected.
func jsonNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// PredictLogic validates the body, classifies it, samples recommendations and
// appends the outcome to history.
func (h *NutritionHandler) PredictLogic(in *PredictInput) (*PredictOutput, error) {
	log := in.Log
	if log == nil {
		log = h.Log
	}

	req, err := ParsePredictRequest(in.Body)
	if err != nil {
		return nil, err
	}

	category, confidence, err := h.Model.Infer(in.Ctx, nutri.NewFeatures(req.Height, req.Weight, req.Age))
	if err != nil {
		log.Errorw("Inference failed", "error", err)
		return nil, shared.NewInternalError(shared.MsgPredictFailed, err)
	}
	metrics.Predictions.WithLabelValues(string(category)).Inc()

	recs, err := h.Foods.Recommend(category, shared.DefaultRecommendations)
	if err != nil {
		log.Errorw("Failed to sample recommendations", "category", category, "error", err)
		return nil, shared.NewInternalError(shared.MsgPredictFailed, err)
	}

	rec, err := h.History.Append(in.Ctx, history.Record{
		Height:          req.Height,
		Weight:          req.Weight,
		Age:             req.Age,
		Sex:             req.Sex,
		Prediction:      category,
		Description:     category.Description(),
		Recommendations: recs,
		Confidence:      confidence,
	})
	if err != nil {
		metrics.HistoryAppends.WithLabelValues(h.HistoryBackend, "error").Inc()
		log.Errorw("Failed to persist prediction", "backend", h.HistoryBackend, "error", err)
		return nil, shared.NewInternalError(shared.MsgPredictFailed, err)
	}
	metrics.HistoryAppends.WithLabelValues(h.HistoryBackend, "ok").Inc()
	log.Debugw("Prediction stored", "id", rec.ID, "category", category, "confidence", confidence)

	return &PredictOutput{
		Prediction:      category,
		Confidence:      confidence,
		Description:     category.Description(),
		Recommendations: rec.Recommendations,
		Record:          rec,
	}, nil
}
