package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/gaze-server/internal/repository/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS precision_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		test_id TEXT NOT NULL,
		target TEXT NOT NULL,
		score INTEGER NOT NULL,
		mean REAL NOT NULL,
		std_dev REAL NOT NULL,
		samples INTEGER NOT NULL,
		max_distance REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_precision_results_session ON precision_results (session_id);
`

type PrecisionResultRepository struct {
	db *sql.DB
}

func NewPrecisionResultRepository(db *sql.DB) *PrecisionResultRepository {
	return &PrecisionResultRepository{db: db}
}

// Migrate creates the results table when it does not exist yet.
func (r *PrecisionResultRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate precision_results: %w", err)
	}
	return nil
}

func (r *PrecisionResultRepository) SaveResult(ctx context.Context, res models.PrecisionResult) (int64, error) {
	const query = `
		INSERT INTO precision_results
			(session_id, test_id, target, score, mean, std_dev, samples, max_distance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	out, err := r.db.ExecContext(ctx, query,
		res.SessionID, res.TestID, res.Target, res.Score, res.Mean, res.StdDev,
		res.Samples, res.MaxDistance, res.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("exec SaveResult: %w", err)
	}

	id, err := out.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id SaveResult: %w", err)
	}
	return id, nil
}

// GetResultsBySession lists a session's results, newest first.
func (r *PrecisionResultRepository) GetResultsBySession(ctx context.Context, sessionID string) ([]models.PrecisionResult, error) {
	const query = `
		SELECT id, session_id, test_id, target, score, mean, std_dev, samples, max_distance, created_at
		FROM precision_results
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query GetResultsBySession: %w", err)
	}
	defer rows.Close()

	var results []models.PrecisionResult
	for rows.Next() {
		var res models.PrecisionResult
		if err := rows.Scan(&res.ID, &res.SessionID, &res.TestID, &res.Target, &res.Score,
			&res.Mean, &res.StdDev, &res.Samples, &res.MaxDistance, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan GetResultsBySession row: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetResultsBySession: %w", err)
	}
	return results, nil
}

// GetTargetSummaries aggregates a session's results per calibration target in SQL.
func (r *PrecisionResultRepository) GetTargetSummaries(ctx context.Context, sessionID string) ([]models.TargetSummary, error) {
	const query = `
		SELECT
			target,
			COUNT(id) AS test_count,
			AVG(CAST(score AS REAL)) AS average_score,
			MAX(score) AS best_score,
			AVG(mean) AS average_mean
		FROM precision_results
		WHERE session_id = ?
		GROUP BY target
		ORDER BY target
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query GetTargetSummaries: %w", err)
	}
	defer rows.Close()

	var results []models.TargetSummary
	for rows.Next() {
		var ts models.TargetSummary
		if err := rows.Scan(&ts.Target, &ts.TestCount, &ts.AverageScore, &ts.BestScore, &ts.AverageMean); err != nil {
			return nil, fmt.Errorf("scan GetTargetSummaries row: %w", err)
		}
		results = append(results, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetTargetSummaries: %w", err)
	}
	return results, nil
}
