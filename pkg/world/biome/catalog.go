// Package biome classifies every cell of a generated world into a biome.
package biome

// Biome is one entry of the closed biome catalog.
type Biome uint8

// Overrides come first; the table biomes follow row by row, coldest first
// and driest first within a row.
const (
	Ocean Biome = iota
	Lake
	Ice

	PolarDesert
	PolarBarren
	DryTundra
	Tundra
	MoistTundra
	WetTundra
	RainTundra
	PolarBog

	BorealDesert
	BorealDryScrub
	BorealSteppe
	BorealParkland
	BorealMoistForest
	BorealWetForest
	BorealRainForest
	BorealMire

	CoolDesert
	CoolDesertScrub
	CoolSteppe
	CoolGrassland
	CoolMoistForest
	CoolWetForest
	CoolRainForest
	CoolMarsh

	WarmDesert
	WarmDesertScrub
	WarmThornScrub
	WarmSavanna
	WarmDryForest
	WarmMoistForest
	WarmRainForest
	WarmSwamp

	SubtropicalDesert
	SubtropicalDesertScrub
	SubtropicalThornWoodland
	SubtropicalSavanna
	SubtropicalDryForest
	SubtropicalMoistForest
	SubtropicalWetForest
	SubtropicalRainForest

	TropicalDesert
	TropicalDesertScrub
	TropicalThornWoodland
	TropicalSavanna
	TropicalDryForest
	TropicalMoistForest
	TropicalWetForest
	TropicalRainForest

	biomeCount
)

// Count is the size of the catalog.
const Count = int(biomeCount)

var names = [biomeCount]string{
	"ocean", "lake", "ice",
	"polar_desert", "polar_barren", "dry_tundra", "tundra", "moist_tundra", "wet_tundra", "rain_tundra", "polar_bog",
	"boreal_desert", "boreal_dry_scrub", "boreal_steppe", "boreal_parkland", "boreal_moist_forest", "boreal_wet_forest", "boreal_rain_forest", "boreal_mire",
	"cool_desert", "cool_desert_scrub", "cool_steppe", "cool_grassland", "cool_moist_forest", "cool_wet_forest", "cool_rain_forest", "cool_marsh",
	"warm_desert", "warm_desert_scrub", "warm_thorn_scrub", "warm_savanna", "warm_dry_forest", "warm_moist_forest", "warm_rain_forest", "warm_swamp",
	"subtropical_desert", "subtropical_desert_scrub", "subtropical_thorn_woodland", "subtropical_savanna", "subtropical_dry_forest", "subtropical_moist_forest", "subtropical_wet_forest", "subtropical_rain_forest",
	"tropical_desert", "tropical_desert_scrub", "tropical_thorn_woodland", "tropical_savanna", "tropical_dry_forest", "tropical_moist_forest", "tropical_wet_forest", "tropical_rain_forest",
}

func (b Biome) String() string {
	if b < biomeCount {
		return names[b]
	}
	return "unknown"
}

// MarshalText encodes the biome by name.
func (b Biome) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// Valid reports whether b belongs to the catalog.
func (b Biome) Valid() bool { return b < biomeCount }

// Override reports whether b is assigned before the lookup table.
func (b Biome) Override() bool { return b <= Ice }

// TemperatureBands and HumidityBands are the dimensions of the lookup table.
const (
	TemperatureBands = 6
	HumidityBands    = 8
)

// Table maps a temperature band and a humidity band to a biome.
func Table(temp, humidity int) Biome {
	return PolarDesert + Biome(temp*HumidityBands+humidity)
}
