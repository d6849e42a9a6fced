package services

import (
	"fmt"

	"scandex-backend/pkg/random"
)

// flavor word pools for generated collectable names and descriptions
var (
	flavorAdjectives = []string{
		"Ancient", "Gleaming", "Rusted", "Whispering", "Molten", "Frozen",
		"Gilded", "Shattered", "Luminous", "Dusty", "Celestial", "Crooked",
		"Polished", "Forgotten", "Humming", "Iridescent", "Weathered", "Sly",
	}
	flavorNouns = []string{
		"Compass", "Locket", "Figurine", "Prism", "Goblet", "Talisman",
		"Marble", "Coin", "Lantern", "Quill", "Spyglass", "Tome",
		"Amulet", "Chalice", "Whistle", "Orb", "Sigil", "Keystone",
	}
	flavorOrigins = []string{
		"a sunken archive", "the night market", "an abandoned observatory",
		"a traveling curiosity shop", "the old mint", "a collector's estate",
		"a forgotten vault", "the tide pools", "a caravan manifest",
	}
)

// FlavorSource generates names and descriptions for collectables. Flavor is
// presentation only; uniqueness is not guaranteed or required, identity lives
// in the collectable id.
type FlavorSource struct {
	rng random.RNG
}

// NewFlavorSource creates a flavor text generator
func NewFlavorSource(rng random.RNG) *FlavorSource {
	return &FlavorSource{rng: rng}
}

// Name produces a display name like "Gleaming Spyglass"
func (f *FlavorSource) Name() string {
	adj := flavorAdjectives[f.index(len(flavorAdjectives))]
	noun := flavorNouns[f.index(len(flavorNouns))]
	return fmt.Sprintf("%s %s", adj, noun)
}

// Description produces a one-line provenance blurb for the given name
func (f *FlavorSource) Description(name string) string {
	origin := flavorOrigins[f.index(len(flavorOrigins))]
	return fmt.Sprintf("%s, recovered from %s.", name, origin)
}

func (f *FlavorSource) index(n int) int {
	return int(f.rng.Float64() * float64(n)) % n
}
