package database

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/Forecaster/models"
)

// DB is the forecast journal: one row per question outcome per run. Optional
// plumbing — the pipeline runs identically without it.
type DB struct {
	*sql.DB
}

// New opens a PostgreSQL connection and ensures the journal table exists.
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS forecast_journal (
			id SERIAL PRIMARY KEY,
			question_id TEXT NOT NULL,
			question_type TEXT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT,
			payload JSONB,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Record inserts one journal row.
func (db *DB) Record(rec *models.ForecastRecord) error {
	var payload []byte
	if rec.Payload != nil {
		var err error
		payload, err = json.Marshal(rec.Payload)
		if err != nil {
			return err
		}
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO forecast_journal (
			question_id, question_type, outcome, reason, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.QuestionID, string(rec.Type), rec.Outcome, rec.Reason, nullableJSON(payload), createdAt)

	return err
}

// RecentOutcomes returns the latest journal rows, newest first.
func (db *DB) RecentOutcomes(limit int) ([]models.ForecastRecord, error) {
	rows, err := db.Query(`
		SELECT question_id, question_type, outcome, reason, created_at
		FROM forecast_journal
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ForecastRecord
	for rows.Next() {
		var rec models.ForecastRecord
		var qtype string
		var reason sql.NullString
		if err := rows.Scan(&rec.QuestionID, &qtype, &rec.Outcome, &reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Type = models.QuestionType(qtype)
		rec.Reason = reason.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
