package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
)

// rarityFile is the on-disk shape of the rarity table
type rarityFile struct {
	Rarities []entities.RarityTier `yaml:"rarities"`
}

// LoadRarityTable reads and validates the rarity table from a YAML file.
// Falls back to the built-in default table when the path does not exist.
func LoadRarityTable(path string) (entities.RarityTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			table := DefaultRarityTable()
			return table, table.Validate()
		}
		return nil, fmt.Errorf("failed to read rarity table: %w", err)
	}

	var file rarityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rarity table: %w", err)
	}

	table := entities.RarityTable(file.Rarities)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// DefaultRarityTable is the table shipped with the backend, used when no
// config file is present
func DefaultRarityTable() entities.RarityTable {
	return entities.RarityTable{
		{ID: 1, Name: "Common", Color: "#9e9e9e", MinChance: 0.50, MaxChance: 0.70},
		{ID: 2, Name: "Uncommon", Color: "#4caf50", MinChance: 0.20, MaxChance: 0.35},
		{ID: 3, Name: "Rare", Color: "#2196f3", MinChance: 0.05, MaxChance: 0.15},
		{ID: 4, Name: "Epic", Color: "#9c27b0", MinChance: 0.01, MaxChance: 0.05},
		{ID: 5, Name: "Legendary", Color: "#ff9800", MinChance: 0.001, MaxChance: 0.01},
	}
}

// StaticRarityRepository serves the process-lifetime rarity table
type StaticRarityRepository struct {
	table entities.RarityTable
}

// NewStaticRarityRepository creates a rarity repository over a loaded table
func NewStaticRarityRepository(table entities.RarityTable) ports.RarityRepository {
	return &StaticRarityRepository{table: table}
}

// Table returns the configured rarity table
func (r *StaticRarityRepository) Table(ctx context.Context) (entities.RarityTable, error) {
	return r.table, nil
}
