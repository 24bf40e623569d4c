package models

import "time"

// PricingCombination defines the container norm and price for one harvest
// type and species. Owned by a client, referenced by attendance records.
type PricingCombination struct {
	ID            string    `db:"id" json:"id"`
	ClientID      string    `db:"client_id" json:"client_id"`
	HarvestType   string    `db:"harvest_type" json:"harvest_type"`
	Species       string    `db:"species" json:"species"`
	ContainerNorm float64   `db:"container_norm" json:"container_norm"`
	PricePerNorm  float64   `db:"price_per_norm" json:"price_per_norm"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
