package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

const pricingColumns = `id, client_id, harvest_type, species, container_norm, price_per_norm, created_at`

// PricingRepository reads client-owned pricing combinations.
type PricingRepository struct {
	db *sqlx.DB
}

// NewPricingRepository constructs the repository.
func NewPricingRepository(db *sqlx.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// FindByID returns one pricing combination, or sql.ErrNoRows.
func (r *PricingRepository) FindByID(ctx context.Context, id string) (*models.PricingCombination, error) {
	query := fmt.Sprintf(`SELECT %s FROM pricing_combinations WHERE id = $1`, pricingColumns)
	var pricing models.PricingCombination
	if err := r.db.GetContext(ctx, &pricing, query, id); err != nil {
		return nil, err
	}
	return &pricing, nil
}

// ListByClient returns all combinations owned by a client.
func (r *PricingRepository) ListByClient(ctx context.Context, clientID string) ([]models.PricingCombination, error) {
	query := fmt.Sprintf(`SELECT %s FROM pricing_combinations WHERE client_id = $1 ORDER BY harvest_type, species`, pricingColumns)
	var rows []models.PricingCombination
	if err := r.db.SelectContext(ctx, &rows, query, clientID); err != nil {
		return nil, fmt.Errorf("list pricing combinations: %w", err)
	}
	return rows, nil
}

// Create stores a new pricing combination.
func (r *PricingRepository) Create(ctx context.Context, pricing *models.PricingCombination) error {
	if pricing.ID == "" {
		pricing.ID = uuid.NewString()
	}
	if pricing.CreatedAt.IsZero() {
		pricing.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO pricing_combinations (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)`, pricingColumns)
	if _, err := r.db.ExecContext(ctx, query,
		pricing.ID, pricing.ClientID, pricing.HarvestType, pricing.Species,
		pricing.ContainerNorm, pricing.PricePerNorm, pricing.CreatedAt); err != nil {
		return fmt.Errorf("create pricing combination: %w", err)
	}
	return nil
}
