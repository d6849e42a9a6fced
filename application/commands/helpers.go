package commands

import (
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

func valuePlayerID(raw string) (valueobjects.PlayerID, error) {
	id, err := valueobjects.PlayerIDFromString(raw)
	if err != nil {
		return valueobjects.PlayerID{}, pkgerrors.NewValidationError(err.Error())
	}
	return id, nil
}

func valueTradeID(raw string) (valueobjects.TradeID, error) {
	id, err := valueobjects.TradeIDFromString(raw)
	if err != nil {
		return valueobjects.TradeID{}, pkgerrors.NewValidationError(err.Error())
	}
	return id, nil
}

func valueItemIDs(raw []string) ([]valueobjects.ItemID, error) {
	ids := make([]valueobjects.ItemID, 0, len(raw))
	for _, r := range raw {
		id, err := valueobjects.ItemIDFromString(r)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// reidentifyItem rebuilds a freshly rolled item under the caller-supplied id
func reidentifyItem(rawID string, rolled *entities.Item) (*entities.Item, error) {
	id, err := valueobjects.ItemIDFromString(rawID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return entities.ReconstructItem(id, rolled.PlayerID(), rolled.CollectableID(), rolled.Quality(), rolled.Chance(), rolled.FoundAt())
}
