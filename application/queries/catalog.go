package queries

import (
	"context"

	"scandex-backend/application/ports"
	"scandex-backend/pkg/utils"
)

// ListCollectablesQuery fetches the full catalog
type ListCollectablesQuery struct{}

// Validate validates the ListCollectablesQuery
func (q ListCollectablesQuery) Validate() error { return nil }

// ListRaritiesQuery fetches the configured rarity table
type ListRaritiesQuery struct{}

// Validate validates the ListRaritiesQuery
func (q ListRaritiesQuery) Validate() error { return nil }

// CollectableResult is the read model for a catalog entry
type CollectableResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RarityID    int    `json:"rarityId"`
	RarityName  string `json:"rarityName"`
	RarityColor string `json:"rarityColor"`
	CreatedAt   string `json:"createdAt"`
}

// RarityResult is the read model for a rarity tier
type RarityResult struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	MinChance float64 `json:"minChance"`
	MaxChance float64 `json:"maxChance"`
}

// CatalogQueryHandler handles catalog and rarity reads
type CatalogQueryHandler struct {
	collectableRepo ports.CollectableRepository
	rarityRepo      ports.RarityRepository
}

// NewCatalogQueryHandler creates a new handler instance
func NewCatalogQueryHandler(collectableRepo ports.CollectableRepository, rarityRepo ports.RarityRepository) *CatalogQueryHandler {
	return &CatalogQueryHandler{collectableRepo: collectableRepo, rarityRepo: rarityRepo}
}

// HandleListCollectables executes the list collectables query
func (h *CatalogQueryHandler) HandleListCollectables(ctx context.Context, q ListCollectablesQuery) ([]*CollectableResult, error) {
	collectables, err := h.collectableRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	table, err := h.rarityRepo.Table(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*CollectableResult, 0, len(collectables))
	for _, c := range collectables {
		result := &CollectableResult{
			ID:          c.ID().String(),
			Name:        c.Name(),
			Description: c.Description(),
			RarityID:    c.RarityID(),
			CreatedAt:   utils.FormatTime(c.CreatedAt()),
		}
		if tier, ok := table.ByID(c.RarityID()); ok {
			result.RarityName = tier.Name
			result.RarityColor = tier.Color
		}
		results = append(results, result)
	}
	return results, nil
}

// HandleListRarities executes the list rarities query
func (h *CatalogQueryHandler) HandleListRarities(ctx context.Context, q ListRaritiesQuery) ([]*RarityResult, error) {
	table, err := h.rarityRepo.Table(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*RarityResult, 0, len(table))
	for _, tier := range table {
		results = append(results, &RarityResult{
			ID:        tier.ID,
			Name:      tier.Name,
			Color:     tier.Color,
			MinChance: tier.MinChance,
			MaxChance: tier.MaxChance,
		})
	}
	return results, nil
}
