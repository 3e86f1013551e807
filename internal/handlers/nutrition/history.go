package nutrition

import (
	"context"
	"errors"
	"strconv"

	"nutristat-api/internal/history"
	"nutristat-api/internal/shared"
)

func (h *NutritionHandler) ListHistoryLogic(ctx context.Context) ([]history.Record, error) {
	records, err := h.History.All(ctx)
	if err != nil {
		h.Log.Errorw("Failed to read history", "backend", h.HistoryBackend, "error", err)
		return nil, shared.NewInternalError("", err)
	}
	if records == nil {
		records = []history.Record{}
	}
	return records, nil
}

// GetHistoryLogic looks up a record by its raw path id. Ids that are not
// non-negative integers can never match and report not found.
func (h *NutritionHandler) GetHistoryLogic(ctx context.Context, rawID string) (history.Record, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 0 {
		return history.Record{}, shared.ErrRecordNotFound
	}
	rec, err := h.History.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return history.Record{}, shared.ErrRecordNotFound
	}
	if err != nil {
		h.Log.Errorw("Failed to read history record", "id", id, "error", err)
		return history.Record{}, shared.NewInternalError("", err)
	}
	return rec, nil
}
