package terrain

import (
	gomath "math"
)

// TessellationLevel returns the subdivision level for a patch at the
// given camera distance. The decision is pure and deterministic: the
// same distance and configuration always yield the same level.
//
// In distance_based mode the level interpolates from MaxLevel at
// NearDistance down to MinLevel at FarDistance, shaped by the falloff
// exponent:
//
//	t     = clamp((d - near) / (far - near), 0, 1)
//	level = round(max*(1 - t^e) + min*t^e)
//
// Distances before the near plane clamp to MaxLevel, distances past the
// far plane to MinLevel.
func TessellationLevel(distance float32, cfg TessellationConfig) int {
	switch cfg.Mode {
	case TessellationDisabled:
		return cfg.MinLevel
	case TessellationUniform:
		return cfg.BaseLevel
	}

	if distance <= cfg.NearDistance {
		return cfg.MaxLevel
	}
	if distance >= cfg.FarDistance {
		return cfg.MinLevel
	}

	t := float64((distance - cfg.NearDistance) / (cfg.FarDistance - cfg.NearDistance))
	w := gomath.Pow(t, float64(cfg.FalloffExponent))
	level := int(gomath.Round(float64(cfg.MaxLevel)*(1-w) + float64(cfg.MinLevel)*w))

	if level < cfg.MinLevel {
		level = cfg.MinLevel
	}
	if level > cfg.MaxLevel {
		level = cfg.MaxLevel
	}
	return level
}

// LODForDistance returns the level-of-detail tier for a camera distance:
// the index of the first threshold the distance falls under, or
// len(Distances) when it is beyond the last one.
func LODForDistance(distance float32, cfg LODConfig) int {
	for i, d := range cfg.Distances {
		if distance < d {
			return i
		}
	}
	return len(cfg.Distances)
}
