package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	rows    []TimelineRow
	err     error
	filters TimelineFilters
	offset  int
	limit   int
}

func (m *mockRepo) Window(_ context.Context, f TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	m.filters, m.offset, m.limit = f, offset, limit
	if m.err != nil {
		return nil, m.err
	}
	if offset >= len(m.rows) {
		return []TimelineRow{}, nil
	}
	end := offset + limit
	if end > len(m.rows) {
		end = len(m.rows)
	}
	return m.rows[offset:end], nil
}

func sampleRows(n int) []TimelineRow {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	rows := make([]TimelineRow, n)
	for i := range rows {
		rows[i] = TimelineRow{At: base.Add(-time.Duration(i) * time.Hour), Actor: "user-1", Action: "quote.updated", Entity: "quote", EntityID: "q-1"}
	}
	return rows
}

func TestTimelinePaging(t *testing.T) {
	repo := &mockRepo{rows: sampleRows(45)}
	svc := NewService(repo)

	res, err := svc.Timeline(context.Background(), TimelineFilters{ActorID: "user-1", Page: 2})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 20)
	assert.Equal(t, 20, repo.offset)
	assert.Equal(t, 21, repo.limit)
	assert.True(t, res.Paging.HasNext)
	assert.Equal(t, 1, res.Paging.PrevPage)
	assert.Equal(t, 3, res.Paging.NextPage)

	res, err = svc.Timeline(context.Background(), TimelineFilters{ActorID: "user-1", Page: 3})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 5)
	assert.False(t, res.Paging.HasNext)
}

func TestTimelineCapsPageSize(t *testing.T) {
	repo := &mockRepo{rows: sampleRows(3)}
	res, err := NewService(repo).Timeline(context.Background(), TimelineFilters{ActorID: "user-1", PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Paging.PageSize)
	assert.Equal(t, 51, repo.limit)
}

func TestTimelineRequiresActor(t *testing.T) {
	_, err := NewService(&mockRepo{}).Timeline(context.Background(), TimelineFilters{})
	require.Error(t, err)
}

func TestExportWrapsRepositoryError(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewService(&mockRepo{err: boom}).Export(context.Background(), TimelineFilters{ActorID: "user-1"})
	require.ErrorIs(t, err, boom)
}

func TestExportIsBounded(t *testing.T) {
	repo := &mockRepo{rows: sampleRows(2)}
	rows, err := NewService(repo).Export(context.Background(), TimelineFilters{ActorID: "user-1", Entity: "quote"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, MaxExportRows, repo.limit)
	assert.Equal(t, "quote", repo.filters.Entity)
}
