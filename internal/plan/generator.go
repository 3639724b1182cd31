package plan

import (
	"context"

	"github.com/ellarun/ellarun/internal/errors"
)

// Generation failure modes. The service converts every one of these into a
// fall-through to the next generator tier; they are never surfaced to the
// HTTP layer.
var (
	// ErrConfigMissing signals that the remote API credentials are absent.
	ErrConfigMissing = errors.NewSentinel("remote generator configuration missing")
	// ErrGenerationTimeout signals that the remote API stayed pending past the poll budget.
	ErrGenerationTimeout = errors.NewSentinel("workout generation timed out")
	// ErrInvalidResponse signals a terminal remote response without a usable result payload.
	ErrInvalidResponse = errors.NewSentinel("invalid workout generation response")
)

// generator is one tier of the plan generation chain. Tiers are tried in
// order; a tier either returns a complete valid plan or an error, never a
// partial result.
type generator interface {
	// source identifies the tier in logs and cache entries.
	source() Source
	// generate produces a plan for the profile.
	generate(ctx context.Context, profile Profile) (Plan, error)
}
