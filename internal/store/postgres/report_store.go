package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

// ReportStore implements store.ReportStore using PostgreSQL.
type ReportStore struct {
	pool *pgxpool.Pool
}

// NewReportStore creates a new PostgreSQL-backed report store.
// It shares the connection pool with other stores.
func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Create creates a new report in the database.
func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (report_id, user_id, user_name, title, content, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.UserName,
		report.Title,
		report.Content,
		report.Date,
		report.CreatedAt,
		report.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create report: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("report_id", report.ID.String()).
		Str("user_name", report.UserName).
		Msg("Created report")

	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	query := `
		SELECT report_id, user_id, user_name, title, content, date, created_at, updated_at
		FROM reports
		WHERE report_id = $1
	`

	var r models.Report
	err := s.pool.QueryRow(ctx, query, reportID).Scan(
		&r.ID,
		&r.UserID,
		&r.UserName,
		&r.Title,
		&r.Content,
		&r.Date,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", mapPostgresError(err))
	}

	return &r, nil
}

// List returns reports matching the options, newest report date first.
func (s *ReportStore) List(ctx context.Context, opts store.ListReportsOptions) ([]*models.Report, error) {
	query := `
		SELECT report_id, user_id, user_name, title, content, date, created_at, updated_at
		FROM reports
	`

	args := []any{}
	if opts.Author != "" {
		query += ` WHERE user_name = $1`
		args = append(args, opts.Author)
	}
	query += ` ORDER BY date DESC`
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.UserName,
			&r.Title,
			&r.Content,
			&r.Date,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", mapPostgresError(err))
	}

	return reports, nil
}

// Update replaces the mutable fields of an existing report.
func (s *ReportStore) Update(ctx context.Context, report *models.Report) error {
	query := `
		UPDATE reports
		SET title = $2, content = $3, date = $4, updated_at = $5
		WHERE report_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		report.ID,
		report.Title,
		report.Content,
		report.Date,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrReportNotFound
	}

	return nil
}

// Delete removes a report.
func (s *ReportStore) Delete(ctx context.Context, reportID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE report_id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrReportNotFound
	}

	log.Debug().Str("report_id", reportID.String()).Msg("Deleted report")

	return nil
}
