package plan

import (
	"fmt"
	"slices"
	"strings"
)

// cacheKeyOf derives the deterministic cache fingerprint for a profile.
//
// The key is built from a normalized projection of the profile: names are
// lower-cased and trimmed, and the goal and target-area sets are sorted so
// that insertion order never changes the key.
func cacheKeyOf(profile Profile) string {
	goals := normalizeTags(profile.Goals)
	areas := normalizeTags(profile.TargetAreas)

	return fmt.Sprintf("%s|%.1f|%.1f|%s|%s|%s|%d",
		strings.ToLower(strings.TrimSpace(profile.Name)),
		profile.WeightKg,
		profile.HeightCm,
		profile.Level,
		strings.Join(goals, ","),
		strings.Join(areas, ","),
		profile.SessionsPerWeek,
	)
}

// normalizeTags lower-cases, trims, and sorts a tag set without mutating the
// caller's slice.
func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			normalized = append(normalized, tag)
		}
	}
	slices.Sort(normalized)
	return normalized
}
