package mysql

import (
	"context"
	"database/sql"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

const Schema = `
	CREATE TABLE IF NOT EXISTS review_records (
		uid VARCHAR(64) NOT NULL PRIMARY KEY,
		server VARCHAR(512) NOT NULL,
		user_name VARCHAR(255) NOT NULL,
		asset_id VARCHAR(64) NOT NULL,
		action VARCHAR(16) NOT NULL,
		reviewed_at DATETIME(6) NOT NULL,
		INDEX idx_review_scope (server(191), user_name, reviewed_at)
	)
`

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *ReviewRepository) Record(ctx context.Context, record *domain.ReviewRecord) error {
	query := `
		INSERT INTO review_records (uid, server, user_name, asset_id, action, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE action = VALUES(action), reviewed_at = VALUES(reviewed_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.UID,
		record.Server,
		record.User,
		record.AssetID,
		string(record.Action),
		record.ReviewedAt,
	)

	return err
}

func (r *ReviewRepository) Exists(ctx context.Context, server, user, assetID string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM review_records
		WHERE server = ? AND user_name = ? AND asset_id = ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, server, user, assetID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReviewRepository) ListRecent(ctx context.Context, server, user string, limit int) ([]*domain.ReviewRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT uid, server, user_name, asset_id, action, reviewed_at
		FROM review_records
		WHERE server = ? AND user_name = ?
		ORDER BY reviewed_at DESC, uid DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, server, user, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ReviewRecord
	for rows.Next() {
		var rec domain.ReviewRecord
		var action string
		err := rows.Scan(
			&rec.UID,
			&rec.Server,
			&rec.User,
			&rec.AssetID,
			&action,
			&rec.ReviewedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.Action = domain.ReviewAction(action)
		records = append(records, &rec)
	}

	return records, rows.Err()
}
