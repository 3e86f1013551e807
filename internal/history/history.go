// Package history persists past predictions. Every backend keeps the same
// contract: records come back in append order and a new record's id is the
// current record count plus one.
package history

import (
	"context"
	"errors"
	"fmt"

	"nutristat-api/internal/catalog"
	"nutristat-api/internal/nutrition"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New("history record not found")

// Record is one persisted prediction. JSON keys match the request and
// response wire names.
type Record struct {
	ID              int                `json:"id" yaml:"id"`
	Height          float64            `json:"tb" yaml:"tb"`
	Weight          float64            `json:"bb" yaml:"bb"`
	Age             float64            `json:"usia" yaml:"usia"`
	Sex             nutrition.Sex      `json:"jenis_kelamin" yaml:"jenis_kelamin"`
	Prediction      nutrition.Category `json:"prediction" yaml:"prediction"`
	Description     string             `json:"description" yaml:"description"`
	Recommendations []catalog.FoodItem `json:"recommendations" yaml:"recommendations"`
	Confidence      float64            `json:"confidence" yaml:"confidence"`
}

type Store interface {
	// Append assigns the next id to rec, persists it and returns it.
	Append(ctx context.Context, rec Record) (Record, error)
	All(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id int) (Record, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendSQL   = "sql"
	BackendRedis = "redis"
)

type Config struct {
	Backend   string
	Path      string
	Driver    string
	DSN       string
	RedisAddr string
	RedisKey  string
}

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg Config, log *zap.SugaredLogger) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Path, log)
	case BackendSQL:
		return OpenSQLStore(ctx, cfg.Driver, cfg.DSN, log)
	case BackendRedis:
		return OpenRedisStore(ctx, cfg.RedisAddr, cfg.RedisKey, log)
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
}

// normalize keeps an empty recommendation list encoded as [] rather than null.
func normalize(rec Record) Record {
	if rec.Recommendations == nil {
		rec.Recommendations = []catalog.FoodItem{}
	}
	return rec
}
