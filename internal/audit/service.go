package audit

import (
	"context"
	"errors"
	"fmt"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	// MaxExportRows bounds a CSV export.
	MaxExportRows = 5000
)

// Service serves the activity timeline of a user.
type Service struct {
	repo Repository
}

// NewService builds the timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page. HasNext is derived by reading one extra row.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if err := s.check(filters); err != nil {
		return Result{}, err
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	rows, err := s.repo.Window(ctx, filters, (page-1)*pageSize, pageSize+1)
	if err != nil {
		return Result{}, fmt.Errorf("audit: timeline: %w", err)
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every matching row up to MaxExportRows.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if err := s.check(filters); err != nil {
		return nil, err
	}
	rows, err := s.repo.Window(ctx, filters, 0, MaxExportRows)
	if err != nil {
		return nil, fmt.Errorf("audit: export: %w", err)
	}
	return rows, nil
}

func (s *Service) check(filters TimelineFilters) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if filters.ActorID == "" {
		return errors.New("audit: actor required")
	}
	return nil
}
