package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellarun/ellarun/internal/errors"
	"github.com/ellarun/ellarun/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// Config carries every tunable the generation pipeline needs. It is passed
// explicitly so that each component is testable with an injected fake config
// instead of ambient environment lookups.
type Config struct {
	// APIURL is the external workout-generation endpoint. Empty disables the remote tier.
	APIURL string
	// APIKey and APIHost authenticate against the external API.
	APIKey  string
	APIHost string
	// OpenAIAPIKey enables exercise detail enrichment. Empty disables it.
	OpenAIAPIKey string
	// CacheTTL is how long a generated plan stays fresh in the cache.
	CacheTTL time.Duration
	// PollInterval is the wait between remote generation polls.
	PollInterval time.Duration
	// MaxPollAttempts bounds how many times a pending generation is re-polled.
	MaxPollAttempts int
	// ProgramStart anchors the offline progression for profiles without their own start date.
	ProgramStart time.Time
}

const (
	defaultCacheTTL        = 24 * time.Hour
	defaultPollInterval    = 10 * time.Second
	defaultMaxPollAttempts = 5
)

// Service handles the business logic for plan generation and persistence.
//
// Generation runs through an ordered chain of tiers: remote API, offline
// progression table, hardcoded mock. The first tier to succeed wins; the mock
// tier cannot fail, so callers always receive a plan.
type Service struct {
	repo      *repository
	logger    *slog.Logger
	cfg       Config
	tiers     []generator
	detailGen *exerciseDetailGenerator
}

// NewService creates a new plan service with a statically wired tier chain.
func NewService(db *sqlite.Database, logger *slog.Logger, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = defaultMaxPollAttempts
	}

	tiers := []generator{
		newRemoteGenerator(cfg.APIURL, cfg.APIKey, cfg.APIHost, cfg.PollInterval, cfg.MaxPollAttempts, logger),
	}
	local, err := newLocalGenerator(cfg.ProgramStart, logger)
	if err != nil {
		// The embedded table failing to parse leaves only the mock tier
		// between the user and an error. Loud log, quiet degradation.
		logger.Error("offline progression table unavailable", errors.SlogError(err))
	} else {
		tiers = append(tiers, local)
	}
	tiers = append(tiers, newMockGenerator())

	var detailGen *exerciseDetailGenerator
	if cfg.OpenAIAPIKey != "" {
		detailGen = newExerciseDetailGenerator(cfg.OpenAIAPIKey)
	}

	return &Service{
		repo:      newRepository(db, logger, cfg.CacheTTL),
		logger:    logger,
		cfg:       cfg,
		tiers:     tiers,
		detailGen: detailGen,
	}
}

// GeneratePlan produces a plan for the profile, trying each generator tier
// in order. Tier failures are logged and converted into a fall-through; they
// never reach the caller. Remote results are cached; offline results are
// not, so that a degraded plan never shadows the personalized one for a full
// TTL window.
//
// GeneratePlan does not consult the cache itself; callers that want cached
// results check CachedPlan first.
func (s *Service) GeneratePlan(ctx context.Context, profile Profile) (Plan, error) {
	var lastErr error
	for _, tier := range s.tiers {
		generated, err := tier.generate(ctx, profile)
		if err != nil {
			lastErr = err
			level := slog.LevelWarn
			if errors.Is(err, ErrConfigMissing) {
				level = slog.LevelDebug
			}
			s.logger.LogAttrs(ctx, level, "generator tier failed",
				slog.String("tier", string(tier.source())), errors.SlogError(err))
			continue
		}

		s.persistGenerated(ctx, profile, generated)

		return generated, nil
	}

	// Unreachable while the mock tier is wired, but the contract stays honest.
	return Plan{}, errors.Wrap(lastErr, "all generator tiers failed")
}

// persistGenerated records the plan in the history store and, for remote
// results only, the cache. Persistence problems never fail the generation.
func (s *Service) persistGenerated(ctx context.Context, profile Profile, generated Plan) {
	if generated.Source == SourceRemote {
		if err := s.repo.cache.Put(ctx, profile, generated, generated.Source); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to cache generated plan", errors.SlogError(err))
		}
	}

	if _, err := s.repo.plans.Create(ctx, generated, profile.Name); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to persist generated plan", errors.SlogError(err))
	}
}

// CachedPlan returns a fresh cached plan for the profile if one exists.
func (s *Service) CachedPlan(ctx context.Context, profile Profile) (Plan, bool) {
	return s.repo.cache.Get(ctx, profile)
}

// CacheStats reports cache usage for diagnostics.
func (s *Service) CacheStats(ctx context.Context) (CacheStats, error) {
	stats, err := s.repo.cache.Stats(ctx)
	if err != nil {
		return CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// GetProfile retrieves a stored profile by name.
func (s *Service) GetProfile(ctx context.Context, name string) (Profile, error) {
	profile, err := s.repo.profiles.Get(ctx, name)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// SaveProfile validates and stores the profile.
func (s *Service) SaveProfile(ctx context.Context, profile Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validate profile: %w", err)
	}
	if err := s.repo.profiles.Put(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// RecentPlans lists the most recently generated plans for a profile.
func (s *Service) RecentPlans(ctx context.Context, profileName string, limit int) ([]StoredPlan, error) {
	stored, err := s.repo.plans.ListRecent(ctx, profileName, limit)
	if err != nil {
		return nil, fmt.Errorf("recent plans: %w", err)
	}
	return stored, nil
}

// maxWarmConcurrency bounds parallel plan generation during cache warming.
const maxWarmConcurrency = 4

// WarmCache pre-populates the plan cache for every stored profile that lacks
// a fresh entry, using the offline generator so that warming never hits the
// external API. Best-effort: individual profile failures are logged and
// skipped.
func (s *Service) WarmCache(ctx context.Context) error {
	profiles, err := s.repo.profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles for cache warming: %w", err)
	}

	local, err := newLocalGenerator(s.cfg.ProgramStart, s.logger)
	if err != nil {
		return fmt.Errorf("cache warming generator: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWarmConcurrency)
	for _, profile := range profiles {
		g.Go(func() error {
			if _, ok := s.repo.cache.Get(ctx, profile); ok {
				return nil
			}
			warmed, genErr := local.generate(ctx, profile)
			if genErr != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "cache warming generation failed",
					slog.String("profile", profile.Name), errors.SlogError(genErr))
				return nil
			}
			if putErr := s.repo.cache.Put(ctx, profile, warmed, SourceCacheWarming); putErr != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "cache warming put failed",
					slog.String("profile", profile.Name), errors.SlogError(putErr))
			}
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return fmt.Errorf("cache warming: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "cache warming finished", slog.Int("profiles", len(profiles)))
	return nil
}

// ExerciseInfo returns reference content for the named exercise, using AI
// generation when configured and falling back to minimal content otherwise.
func (s *Service) ExerciseInfo(ctx context.Context, name string) ExerciseDetail {
	if s.detailGen == nil {
		return minimalExerciseDetail(name)
	}

	detail, err := s.detailGen.Generate(ctx, name)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to generate exercise detail",
			errors.SlogError(err), slog.String("name", name))
		return minimalExerciseDetail(name)
	}

	return detail
}

// minimalExerciseDetail returns basic content with just the essential fields populated.
func minimalExerciseDetail(name string) ExerciseDetail {
	return ExerciseDetail{
		Name:                name,
		DescriptionMarkdown: fmt.Sprintf("# %s\n\nNo description available yet.", name),
		Instructions:        []string{},
		Tips:                []string{},
	}
}
