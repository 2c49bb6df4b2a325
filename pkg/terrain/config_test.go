package terrain

import (
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/heightforge/pkg/errs"
)

func TestPresetsValidateClean(t *testing.T) {
	for _, name := range []string{
		PresetHighPerformance, PresetBalanced, PresetHighQuality, PresetMobile,
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := FromPreset(name)
			if err != nil {
				t.Fatalf("FromPreset(%q): %v", name, err)
			}
			if issues := cfg.Validate(); len(issues) > 0 {
				t.Errorf("preset %q has validation issues: %v", name, issues)
			}
		})
	}
}

func TestPresetValues(t *testing.T) {
	hp, _ := FromPreset(PresetHighPerformance)
	if hp.Performance.TargetFPS != 144 || hp.Tessellation.MaxLevel != 16 {
		t.Errorf("high_performance: fps=%d max_level=%d, want 144/16",
			hp.Performance.TargetFPS, hp.Tessellation.MaxLevel)
	}

	mob, _ := FromPreset(PresetMobile)
	if mob.Tessellation.Mode != TessellationUniform {
		t.Errorf("mobile mode = %q, want uniform", mob.Tessellation.Mode)
	}
	if mob.Performance.TargetFPS != 30 {
		t.Errorf("mobile target_fps = %d, want 30", mob.Performance.TargetFPS)
	}

	hq, _ := FromPreset(PresetHighQuality)
	if hq.Tessellation.FalloffExponent != 2.0 || hq.Tessellation.MaxLevel != 64 {
		t.Errorf("high_quality: falloff=%g max_level=%d, want 2/64",
			hq.Tessellation.FalloffExponent, hq.Tessellation.MaxLevel)
	}
}

func TestFromPresetUnknown(t *testing.T) {
	if _, err := FromPreset("ultra"); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestValidateAggregatesAllIssues(t *testing.T) {
	cfg := Default()
	cfg.TileSize = 100 // not a power of two
	cfg.Tessellation.MinLevel = 10
	cfg.Tessellation.MaxLevel = 5
	cfg.Tessellation.NearDistance = 5000
	cfg.Tessellation.FarDistance = 100
	cfg.Performance.TargetFPS = 0

	issues := cfg.Validate()
	if len(issues) < 4 {
		t.Fatalf("expected every violation reported, got %d: %v", len(issues), issues)
	}

	joined := strings.Join(issues, "; ")
	for _, want := range []string{"power of two", "near_distance", "target_fps"} {
		if !strings.Contains(joined, want) {
			t.Errorf("issues missing %q: %v", want, issues)
		}
	}
}

func TestValidateLODOrdering(t *testing.T) {
	cfg := Default()
	cfg.LOD.Distances = []float32{1000, 500}
	issues := cfg.Validate()
	if len(issues) != 1 || !strings.Contains(issues[0], "ascending") {
		t.Errorf("unsorted lod distances: got %v", issues)
	}
}
