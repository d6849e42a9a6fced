package queries

import (
	"context"
	"errors"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/utils"
)

// GetItemQuery fetches one item enriched with its collectable and rarity
type GetItemQuery struct {
	ItemID string
}

// Validate validates the GetItemQuery
func (q GetItemQuery) Validate() error {
	if q.ItemID == "" {
		return errors.New("item ID is required")
	}
	return nil
}

// ListItemsQuery fetches every item a player owns
type ListItemsQuery struct {
	PlayerID string
}

// Validate validates the ListItemsQuery
func (q ListItemsQuery) Validate() error {
	if q.PlayerID == "" {
		return errors.New("player ID is required")
	}
	return nil
}

// ItemResult is the read model for an owned item
type ItemResult struct {
	ID            string  `json:"id"`
	PlayerID      string  `json:"playerId"`
	CollectableID string  `json:"collectableId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	RarityID      int     `json:"rarityId"`
	RarityName    string  `json:"rarityName"`
	RarityColor   string  `json:"rarityColor"`
	Quality       int     `json:"quality"`
	Chance        float64 `json:"chance"`
	FoundAt       string  `json:"foundAt"`
}

// ItemQueryHandler handles GetItemQuery and ListItemsQuery
type ItemQueryHandler struct {
	itemRepo        ports.ItemRepository
	collectableRepo ports.CollectableRepository
	rarityRepo      ports.RarityRepository
}

// NewItemQueryHandler creates a new handler instance
func NewItemQueryHandler(
	itemRepo ports.ItemRepository,
	collectableRepo ports.CollectableRepository,
	rarityRepo ports.RarityRepository,
) *ItemQueryHandler {
	return &ItemQueryHandler{
		itemRepo:        itemRepo,
		collectableRepo: collectableRepo,
		rarityRepo:      rarityRepo,
	}
}

// HandleGet executes the get item query
func (h *ItemQueryHandler) HandleGet(ctx context.Context, q GetItemQuery) (*ItemResult, error) {
	itemID, err := valueobjects.ItemIDFromString(q.ItemID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	item, err := h.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	table, err := h.rarityRepo.Table(ctx)
	if err != nil {
		return nil, err
	}

	return h.enrich(ctx, item, table)
}

// HandleList executes the list items query
func (h *ItemQueryHandler) HandleList(ctx context.Context, q ListItemsQuery) ([]*ItemResult, error) {
	playerID, err := valueobjects.PlayerIDFromString(q.PlayerID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	items, err := h.itemRepo.GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	table, err := h.rarityRepo.Table(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*ItemResult, 0, len(items))
	for _, item := range items {
		result, err := h.enrich(ctx, item, table)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (h *ItemQueryHandler) enrich(ctx context.Context, item *entities.Item, table entities.RarityTable) (*ItemResult, error) {
	collectable, err := h.collectableRepo.GetByID(ctx, item.CollectableID())
	if err != nil {
		return nil, err
	}

	result := &ItemResult{
		ID:            item.ID().String(),
		PlayerID:      item.PlayerID().String(),
		CollectableID: collectable.ID().String(),
		Name:          collectable.Name(),
		Description:   collectable.Description(),
		RarityID:      collectable.RarityID(),
		Quality:       item.Quality(),
		Chance:        item.Chance(),
		FoundAt:       utils.FormatTime(item.FoundAt()),
	}
	if tier, ok := table.ByID(collectable.RarityID()); ok {
		result.RarityName = tier.Name
		result.RarityColor = tier.Color
	}
	return result, nil
}
