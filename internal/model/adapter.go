// Package model wraps the pre-trained nutrition status classifier. The
// classifier itself is opaque: either a network artifact evaluated in process
// or a remote model server. Both take a [batch=1][steps=1][features=3] tensor
// and return one probability per nutrition category.
package model

import (
	"context"
	"fmt"
	"math"

	"nutristat-api/internal/nutrition"
)

// Classifier returns class probabilities for a single-batch input tensor.
type Classifier interface {
	Predict(ctx context.Context, input [][][]float64) ([]float64, error)
}

// Adapter turns features into a category and its confidence.
type Adapter struct {
	clf Classifier
}

func NewAdapter(clf Classifier) *Adapter {
	return &Adapter{clf: clf}
}

// probabilityTolerance absorbs float32 rounding in softmax outputs.
const probabilityTolerance = 1e-6

// Infer runs the classifier and picks the arg-max class. Ties resolve to the
// lowest index.
func (a *Adapter) Infer(ctx context.Context, f nutrition.Features) (nutrition.Category, float64, error) {
	probs, err := a.clf.Predict(ctx, f.Tensor())
	if err != nil {
		return "", 0, fmt.Errorf("model prediction failed: %w", err)
	}
	if len(probs) != len(nutrition.Categories) {
		return "", 0, fmt.Errorf("model returned %d classes, expected %d", len(probs), len(nutrition.Categories))
	}

	best := 0
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return "", 0, fmt.Errorf("model returned non-finite probability at index %d", i)
		}
		if p > probs[best] {
			best = i
		}
	}

	confidence := probs[best]
	if confidence < 0 || confidence > 1+probabilityTolerance {
		return "", 0, fmt.Errorf("model output %v is not a probability", confidence)
	}
	confidence = min(confidence, 1)

	category, err := nutrition.CategoryAt(best)
	if err != nil {
		return "", 0, err
	}
	return category, confidence, nil
}
