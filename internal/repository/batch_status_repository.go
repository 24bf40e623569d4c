package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

// BatchStatusRepository stores payroll batch progress snapshots in Redis so
// status polls survive across API instances.
type BatchStatusRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewBatchStatusRepository constructs a batch status repository.
func NewBatchStatusRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *BatchStatusRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchStatusRepository{client: client, ttl: ttl, logger: logger}
}

func batchStatusKey(batchID string) string {
	return "payroll:batch:" + batchID
}

// Save overwrites the snapshot for a batch.
func (r *BatchStatusRepository) Save(ctx context.Context, status *models.PayrollBatchStatus) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal batch status %s: %w", status.BatchID, err)
	}

	if err := r.client.Set(ctx, batchStatusKey(status.BatchID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set batch status %s: %w", status.BatchID, err)
	}
	return nil
}

// Get retrieves the snapshot for a batch. Returns sql.ErrNoRows when the
// batch is unknown or has expired.
func (r *BatchStatusRepository) Get(ctx context.Context, batchID string) (*models.PayrollBatchStatus, error) {
	if r.client == nil {
		return nil, sql.ErrNoRows
	}

	raw, err := r.client.Get(ctx, batchStatusKey(batchID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("redis get batch status %s: %w", batchID, err)
	}

	var status models.PayrollBatchStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("unmarshal batch status %s: %w", batchID, err)
	}
	return &status, nil
}

// Close releases the underlying Redis connection if present.
func (r *BatchStatusRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
