package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"loan-predictor/domain"
)

const predictionSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id              TEXT PRIMARY KEY,
	input_json      TEXT NOT NULL,
	features_json   TEXT NOT NULL,
	label           INTEGER NOT NULL,
	approved        INTEGER NOT NULL,
	message         TEXT NOT NULL,
	explanation     TEXT,
	monthly_payment REAL NOT NULL,
	created_at      INTEGER NOT NULL -- unix nanoseconds
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
`

// PredictionStore persists prediction history in SQLite.
type PredictionStore struct {
	db *sql.DB
}

// NewPredictionStore opens a SQLite database and runs migrations.
func NewPredictionStore(dbPath string) (*PredictionStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(predictionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PredictionStore{db: db}, nil
}

func (s *PredictionStore) Close() error {
	return s.db.Close()
}

func (s *PredictionStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PredictionStore) Save(ctx context.Context, p domain.Prediction) error {
	inputJSON, err := json.Marshal(p.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	featuresJSON, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, input_json, features_json, label, approved, message, explanation, monthly_payment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		string(inputJSON),
		string(featuresJSON),
		p.Label,
		boolToInt(p.Approved),
		p.Message,
		nullIfEmpty(p.Explanation),
		p.MonthlyPayment,
		p.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

// Recent returns up to limit predictions, newest first.
func (s *PredictionStore) Recent(ctx context.Context, limit int) ([]domain.Prediction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_json, features_json, label, approved, message, explanation, monthly_payment, created_at
		 FROM predictions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []domain.Prediction
	for rows.Next() {
		var (
			p            domain.Prediction
			inputJSON    string
			featuresJSON string
			approved     int
			explanation  sql.NullString
			createdAt    int64
		)
		if err := rows.Scan(&p.ID, &inputJSON, &featuresJSON, &p.Label, &approved,
			&p.Message, &explanation, &p.MonthlyPayment, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(inputJSON), &p.Input); err != nil {
			return nil, fmt.Errorf("unmarshal input: %w", err)
		}
		if err := json.Unmarshal([]byte(featuresJSON), &p.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
		p.Approved = approved == 1
		p.Explanation = explanation.String
		p.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
