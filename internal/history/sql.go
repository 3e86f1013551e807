package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"nutristat-api/internal/catalog"
	"nutristat-api/internal/database"
	"nutristat-api/internal/nutrition"

	"github.com/manifold-inc/manifold-sdk/lib/utils"
	"go.uber.org/zap"
)

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS prediction_history (
	id BIGINT NOT NULL PRIMARY KEY,
	tb DOUBLE PRECISION NOT NULL,
	bb DOUBLE PRECISION NOT NULL,
	usia DOUBLE PRECISION NOT NULL,
	jenis_kelamin VARCHAR(16) NOT NULL,
	prediction VARCHAR(32) NOT NULL,
	description TEXT NOT NULL,
	recommendations TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL
)`

const selectHistory = `
SELECT id, tb, bb, usia, jenis_kelamin, prediction, description, recommendations, confidence
FROM prediction_history`

// SQLStore keeps one row per record. Recommendations are stored as a JSON
// column. The id is still the row count plus one, computed inside the insert
// transaction; a concurrent writer in another process fails on the primary
// key instead of overwriting.
type SQLStore struct {
	db     *sql.DB
	driver string
	mu     sync.Mutex
	log    *zap.SugaredLogger
}

// OpenSQLStore connects with the given driver and creates the table if needed.
func OpenSQLStore(ctx context.Context, driver, dsn string, log *zap.SugaredLogger) (*SQLStore, error) {
	db, err := database.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLStore(ctx, db, driver, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewSQLStore(ctx context.Context, db *sql.DB, driver string, log *zap.SugaredLogger) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createHistoryTable); err != nil {
		return nil, fmt.Errorf("failed to create prediction_history table: %w", err)
	}
	log.Infow("History table ready", "driver", driver)
	return &SQLStore{db: db, driver: driver, log: log}, nil
}

func (s *SQLStore) Append(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = normalize(rec)
	recs, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode recommendations: %w", err)
	}

	err = database.ExecuteTransaction(ctx, s.db, []func(*sql.Tx) error{
		func(tx *sql.Tx) error {
			var count int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM prediction_history").Scan(&count); err != nil {
				return fmt.Errorf("failed to count history: %w", err)
			}
			rec.ID = count + 1
			return nil
		},
		func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, database.Rebind(s.driver, `
				INSERT INTO prediction_history (
					id, tb, bb, usia, jenis_kelamin, prediction, description, recommendations, confidence
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				rec.ID, rec.Height, rec.Weight, rec.Age, string(rec.Sex),
				string(rec.Prediction), rec.Description, string(recs), rec.Confidence,
			)
			if err != nil {
				return fmt.Errorf("failed to insert history record: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *SQLStore) All(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, selectHistory+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.Wrap("Error iterating over history rows", err)
	}
	return records, nil
}

func (s *SQLStore) Get(ctx context.Context, id int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, database.Rebind(s.driver, selectHistory+" WHERE id = ?"), id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var sex, prediction, recs string
	err := row.Scan(&rec.ID, &rec.Height, &rec.Weight, &rec.Age, &sex, &prediction, &rec.Description, &recs, &rec.Confidence)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("failed to scan history row: %w", err)
	}
	rec.Sex = nutrition.Sex(sex)
	rec.Prediction = nutrition.Category(prediction)
	rec.Recommendations = []catalog.FoodItem{}
	if err := json.Unmarshal([]byte(recs), &rec.Recommendations); err != nil {
		return Record{}, fmt.Errorf("failed to decode recommendations for record %d: %w", rec.ID, err)
	}
	return rec, nil
}
