package main

import (
	"context"
	"path/filepath"
	"testing"

	"nutristat-api/internal/database"
	"nutristat-api/internal/history"
	"nutristat-api/internal/nutrition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun_FileToSQLite(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop().Sugar()
	dir := t.TempDir()

	source, err := history.NewFileStore(filepath.Join(dir, "data.json"), log)
	require.NoError(t, err)
	for _, c := range []nutrition.Category{nutrition.WellNourished, nutrition.Overnourished} {
		_, err := source.Append(ctx, history.Record{Height: 100, Weight: 15, Age: 4, Sex: nutrition.Female, Prediction: c, Confidence: 0.7})
		require.NoError(t, err)
	}

	cfg := history.Config{Backend: history.BackendSQL, Driver: database.DriverSQLite, DSN: filepath.Join(dir, "history.db")}
	require.NoError(t, run(ctx, filepath.Join(dir, "data.json"), cfg, log))

	target, err := history.Open(ctx, cfg, log)
	require.NoError(t, err)
	defer target.Close()

	records, err := target.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, nutrition.Overnourished, records[1].Prediction)

	// a second run must not duplicate the history
	assert.Error(t, run(ctx, filepath.Join(dir, "data.json"), cfg, log))
}
