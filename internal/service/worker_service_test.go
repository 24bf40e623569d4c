package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type mockWorkerListRepo struct {
	workers    []models.Worker
	lastFilter models.WorkerFilter
}

func (m *mockWorkerListRepo) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	for _, w := range m.workers {
		if w.ID == id {
			out := w
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockWorkerListRepo) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, int, error) {
	m.lastFilter = filter
	out := make([]models.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		if filter.GroupID != "" && (w.GroupID == nil || *w.GroupID != filter.GroupID) {
			continue
		}
		out = append(out, w)
	}
	return out, len(out), nil
}

func TestWorkerListAppliesFilterAndPagination(t *testing.T) {
	g1 := "g1"
	repo := &mockWorkerListRepo{workers: []models.Worker{
		{ID: "w1", PassportNumber: "P1", GroupID: &g1},
		{ID: "w2", PassportNumber: "P2"},
	}}
	svc := NewWorkerService(repo, zap.NewNop())

	workers, pagination, err := svc.List(context.Background(), models.WorkerFilter{GroupID: "g1"})
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, "w1", workers[0].ID)

	// Unset paging comes back normalised.
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 50, repo.lastFilter.PageSize)
}

func TestWorkerListClampsOversizedPage(t *testing.T) {
	repo := &mockWorkerListRepo{}
	svc := NewWorkerService(repo, zap.NewNop())

	_, pagination, err := svc.List(context.Background(), models.WorkerFilter{Page: -3, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
}

func TestWorkerGetMissing(t *testing.T) {
	svc := NewWorkerService(&mockWorkerListRepo{}, zap.NewNop())

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
