package plan

import (
	"testing"
)

func TestCacheKeyOf(t *testing.T) {
	base := Profile{
		Name:            "Alice",
		Level:           LevelIntermediate,
		WeightKg:        62.5,
		HeightCm:        168,
		Goals:           []string{"Endurance", "strength"},
		TargetAreas:     []string{"legs", "Core"},
		SessionsPerWeek: 3,
	}

	tests := []struct {
		name    string
		mutate  func(p Profile) Profile
		sameKey bool
	}{
		{
			name:    "identical profile",
			mutate:  func(p Profile) Profile { return p },
			sameKey: true,
		},
		{
			name: "goal order does not matter",
			mutate: func(p Profile) Profile {
				p.Goals = []string{"strength", "Endurance"}
				return p
			},
			sameKey: true,
		},
		{
			name: "target area order does not matter",
			mutate: func(p Profile) Profile {
				p.TargetAreas = []string{"Core", "legs"}
				return p
			},
			sameKey: true,
		},
		{
			name: "tag casing and whitespace are normalized",
			mutate: func(p Profile) Profile {
				p.Goals = []string{"  STRENGTH ", "endurance"}
				return p
			},
			sameKey: true,
		},
		{
			name: "name casing is normalized",
			mutate: func(p Profile) Profile {
				p.Name = "ALICE"
				return p
			},
			sameKey: true,
		},
		{
			name: "equipment is not part of the key",
			mutate: func(p Profile) Profile {
				p.Equipment = []string{"dumbbells"}
				return p
			},
			sameKey: true,
		},
		{
			name: "weight change produces a new key",
			mutate: func(p Profile) Profile {
				p.WeightKg = 70
				return p
			},
			sameKey: false,
		},
		{
			name: "level change produces a new key",
			mutate: func(p Profile) Profile {
				p.Level = LevelAdvanced
				return p
			},
			sameKey: false,
		},
		{
			name: "extra goal produces a new key",
			mutate: func(p Profile) Profile {
				p.Goals = append(p.Goals, "weight_loss")
				return p
			},
			sameKey: false,
		},
		{
			name: "session count change produces a new key",
			mutate: func(p Profile) Profile {
				p.SessionsPerWeek = 4
				return p
			},
			sameKey: false,
		},
	}

	baseKey := cacheKeyOf(base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := cacheKeyOf(tt.mutate(base))
			if (key == baseKey) != tt.sameKey {
				t.Errorf("cacheKeyOf() = %q, base key %q, want sameKey=%v", key, baseKey, tt.sameKey)
			}
		})
	}
}

func TestCacheKeyOfDoesNotMutateProfile(t *testing.T) {
	profile := Profile{
		Name:        "bob",
		Level:       LevelBeginner,
		Goals:       []string{"Strength", "endurance"},
		TargetAreas: []string{"upper", "Core"},
	}

	_ = cacheKeyOf(profile)

	if profile.Goals[0] != "Strength" || profile.TargetAreas[1] != "Core" {
		t.Errorf("cacheKeyOf mutated the profile tags: %v %v", profile.Goals, profile.TargetAreas)
	}
}
