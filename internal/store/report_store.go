package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tmaekawa/nippo/internal/models"
)

// Errors
var (
	ErrReportNotFound = errors.New("report not found")
)

// ListReportsOptions specifies filters for listing reports.
type ListReportsOptions struct {
	Author string // Filter by author username (empty = all)
	Limit  int    // Max results (0 = no limit)
}

// ReportStore manages daily report documents.
type ReportStore interface {
	// Create creates a new report.
	Create(ctx context.Context, report *models.Report) error

	// Get retrieves a report by ID.
	Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error)

	// List returns reports matching the options, newest report date first.
	List(ctx context.Context, opts ListReportsOptions) ([]*models.Report, error)

	// Update replaces the mutable fields of an existing report.
	Update(ctx context.Context, report *models.Report) error

	// Delete removes a report.
	Delete(ctx context.Context, reportID uuid.UUID) error
}
