// Package climate derives temperature and the three precipitation snapshots
// from a terrain foundation.
package climate

import (
	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/noise"
)

// Wind directions accepted by Params.FixedWind. Each names the direction the
// wind blows toward.
const (
	WindEast  = "east"
	WindWest  = "west"
	WindNorth = "north"
	WindSouth = "south"
)

// Params holds the tunable constants of every climate stage.
type Params struct {
	Noise        noise.Kind `json:"noise"`
	NoiseOctaves int        `json:"noise_octaves"`
	// NoiseScale is the feature size of climate noise, in cells.
	NoiseScale float64 `json:"noise_scale"`

	// AxialTilt in degrees; the thermal equator sits at AxialTilt*EquatorTiltShare.
	AxialTilt        float64 `json:"axial_tilt"`
	EquatorTiltShare float64 `json:"equator_tilt_share"`
	DistanceToSun    float64 `json:"distance_to_sun"`
	// TemperatureNoiseWeight blends coherent noise into the latitude band.
	TemperatureNoiseWeight float64 `json:"temperature_noise_weight"`
	// MinCoolingFactor is the temperature multiplier at the highest peak.
	MinCoolingFactor float64 `json:"min_cooling_factor"`

	PrecipitationGamma float64 `json:"precipitation_gamma"`
	PrecipitationBonus float64 `json:"precipitation_bonus"`

	TraceSteps    int     `json:"trace_steps"`
	TraceDistance float64 `json:"trace_distance"`
	// CellSize is the map distance covered by one cell.
	CellSize float64 `json:"cell_size"`
	// RidgeDelta is the height difference, as a share of Peak-Sea, that
	// makes a traced cell block moisture.
	RidgeDelta      float64 `json:"ridge_delta"`
	BlockingPerStep float64 `json:"blocking_per_step"`
	MaxBlocking     float64 `json:"max_blocking"`
	// FixedWind overrides the latitude wind bands when set.
	FixedWind string `json:"fixed_wind,omitempty"`

	MaxCoastalBonus     float64 `json:"max_coastal_bonus"`
	CoastalDecayRange   float64 `json:"coastal_decay_range"`
	ElevationResistance float64 `json:"elevation_resistance"`
}

// DefaultParams returns an Earth-like climate.
func DefaultParams() Params {
	return Params{
		Noise:                  noise.KindOpenSimplex,
		NoiseOctaves:           4,
		NoiseScale:             96,
		AxialTilt:              23.44,
		EquatorTiltShare:       0.25,
		DistanceToSun:          1,
		TemperatureNoiseWeight: 0.15,
		MinCoolingFactor:       0.2,
		PrecipitationGamma:     2,
		PrecipitationBonus:     0.2,
		TraceSteps:             20,
		TraceDistance:          1000,
		CellSize:               50,
		RidgeDelta:             0.1,
		BlockingPerStep:        0.05,
		MaxBlocking:            0.8,
		MaxCoastalBonus:        0.8,
		CoastalDecayRange:      30,
		ElevationResistance:    0.7,
	}
}

// Validate rejects non-finite or out-of-range parameters.
func (p Params) Validate() error {
	err := failure.Finite(
		[]string{"noise_scale", "axial_tilt", "equator_tilt_share", "distance_to_sun",
			"temperature_noise_weight", "min_cooling_factor", "precipitation_gamma",
			"precipitation_bonus", "trace_distance", "cell_size", "ridge_delta",
			"blocking_per_step", "max_blocking", "max_coastal_bonus",
			"coastal_decay_range", "elevation_resistance"},
		p.NoiseScale, p.AxialTilt, p.EquatorTiltShare, p.DistanceToSun,
		p.TemperatureNoiseWeight, p.MinCoolingFactor, p.PrecipitationGamma,
		p.PrecipitationBonus, p.TraceDistance, p.CellSize, p.RidgeDelta,
		p.BlockingPerStep, p.MaxBlocking, p.MaxCoastalBonus,
		p.CoastalDecayRange, p.ElevationResistance,
	)
	if err != nil {
		return err
	}

	switch {
	case p.NoiseOctaves < 1 || p.NoiseScale <= 0:
		return failure.Configf("climate noise: octaves=%d scale=%g", p.NoiseOctaves, p.NoiseScale)
	case p.DistanceToSun <= 0:
		return failure.Configf("distance_to_sun must be positive, got %g", p.DistanceToSun)
	case p.AxialTilt < -90 || p.AxialTilt > 90:
		return failure.Configf("axial_tilt %g outside [-90,90]", p.AxialTilt)
	case !unit(p.EquatorTiltShare) || !unit(p.TemperatureNoiseWeight):
		return failure.Configf("equator_tilt_share and temperature_noise_weight must be in [0,1]")
	case p.MinCoolingFactor <= 0 || p.MinCoolingFactor > 1:
		return failure.Configf("min_cooling_factor %g outside (0,1]", p.MinCoolingFactor)
	case p.PrecipitationGamma <= 0 || !unit(p.PrecipitationBonus):
		return failure.Configf("precipitation curve: gamma=%g bonus=%g", p.PrecipitationGamma, p.PrecipitationBonus)
	case p.TraceSteps < 0 || p.TraceDistance <= 0 || p.CellSize <= 0:
		return failure.Configf("rain shadow trace: steps=%d distance=%g cell_size=%g", p.TraceSteps, p.TraceDistance, p.CellSize)
	case p.RidgeDelta < 0 || !unit(p.BlockingPerStep) || !unit(p.MaxBlocking):
		return failure.Configf("rain shadow blocking: ridge_delta=%g per_step=%g max=%g", p.RidgeDelta, p.BlockingPerStep, p.MaxBlocking)
	case p.MaxCoastalBonus < 0 || p.CoastalDecayRange <= 0:
		return failure.Configf("coastal moisture: max_bonus=%g decay_range=%g", p.MaxCoastalBonus, p.CoastalDecayRange)
	case p.ElevationResistance < 0 || p.ElevationResistance >= 1:
		return failure.Configf("elevation_resistance %g outside [0,1)", p.ElevationResistance)
	}

	switch p.FixedWind {
	case "", WindEast, WindWest, WindNorth, WindSouth:
	default:
		return failure.Configf("unknown fixed_wind %q", p.FixedWind)
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }
