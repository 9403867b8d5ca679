package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

// ReportStore implements store.ReportStore using in-memory storage.
// Data is lost on restart; intended for development and tests.
type ReportStore struct {
	mu sync.RWMutex

	reports map[uuid.UUID]*models.Report // report_id -> Report
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[uuid.UUID]*models.Report),
	}
}

// Create creates a new report in memory.
func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *report
	s.reports[report.ID] = &clone

	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[reportID]
	if !exists {
		return nil, store.ErrReportNotFound
	}

	clone := *report
	return &clone, nil
}

// List returns reports matching the options, newest report date first.
func (s *ReportStore) List(ctx context.Context, opts store.ListReportsOptions) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*models.Report, 0, len(s.reports))
	for _, report := range s.reports {
		if opts.Author != "" && report.UserName != opts.Author {
			continue
		}
		clone := *report
		reports = append(reports, &clone)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Date.After(reports[j].Date)
	})

	if opts.Limit > 0 && len(reports) > opts.Limit {
		reports = reports[:opts.Limit]
	}

	return reports, nil
}

// Update replaces the mutable fields of an existing report.
func (s *ReportStore) Update(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.reports[report.ID]
	if !exists {
		return store.ErrReportNotFound
	}

	existing.Title = report.Title
	existing.Content = report.Content
	existing.Date = report.Date
	existing.UpdatedAt = time.Now()

	return nil
}

// Delete removes a report.
func (s *ReportStore) Delete(ctx context.Context, reportID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[reportID]; !exists {
		return store.ErrReportNotFound
	}

	delete(s.reports, reportID)
	return nil
}
