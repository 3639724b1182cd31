package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Level represents the user's self-reported fitness level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Source identifies the generator tier that produced a plan.
type Source string

const (
	SourceRemote       Source = "remote"
	SourceLocal        Source = "local"
	SourceMock         Source = "mock"
	SourceCache        Source = "cache"
	SourceCacheWarming Source = "cache_warming"
)

// Profile holds the fitness attributes that drive plan personalization.
// It is owned by the profile store; the generation pipeline only reads it.
type Profile struct {
	Name                   string    `json:"name"`
	Level                  Level     `json:"level"`
	WeightKg               float64   `json:"weight_kg"`
	HeightCm               float64   `json:"height_cm"`
	Goals                  []string  `json:"goals"`
	TargetAreas            []string  `json:"target_areas"`
	Equipment              []string  `json:"equipment"`
	SessionsPerWeek        int       `json:"sessions_per_week"`
	SessionDurationMinutes int       `json:"session_duration_minutes"`
	ProgramStart           time.Time `json:"program_start"`
}

// Validate checks the profile fields the generation pipeline depends on.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name is required")
	}
	switch p.Level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return fmt.Errorf("unknown fitness level %q", p.Level)
	}
	if p.SessionsPerWeek < 1 || p.SessionsPerWeek > 7 {
		return fmt.Errorf("sessions per week must be between 1 and 7, got %d", p.SessionsPerWeek)
	}
	return nil
}

// Plan is the normalized workout schedule produced by any generator tier.
type Plan struct {
	ID                       string    `json:"id"`
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	Level                    Level     `json:"level"`
	Source                   Source    `json:"source"`
	TotalSessions            int       `json:"total_sessions"`
	EstimatedDurationMinutes int       `json:"estimated_duration_minutes"`
	Sessions                 []Session `json:"sessions"`
}

// Session is one workout within a plan. SessionNumber is 1-based and always
// matches the session's position in the plan.
type Session struct {
	ID            string     `json:"id"`
	SessionNumber int        `json:"session_number"`
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	Description   string     `json:"description,omitempty"`
	Warmup        []Exercise `json:"warmup"`
	MainWorkout   []Exercise `json:"main_workout"`
	Cooldown      []Exercise `json:"cooldown"`
}

// Exercise is a single movement within a session. Optional fields are
// generator-specific; absence means "not applicable", never an error.
type Exercise struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Instructions    []string `json:"instructions,omitempty"`
	Sets            int      `json:"sets,omitempty"`
	Reps            string   `json:"reps,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	RestTimeSeconds int      `json:"rest_time_seconds,omitempty"`
	Equipment       []string `json:"equipment,omitempty"`
	Tips            []string `json:"tips,omitempty"`
	Modifications   []string `json:"modifications,omitempty"`
	Variations      []string `json:"variations,omitempty"`
	Pattern         string   `json:"pattern,omitempty"`
}

// CacheStats aggregates plan cache usage. Best-effort diagnostics, not part
// of the generation path.
type CacheStats struct {
	TotalCached           int     `json:"total_cached"`
	ValidCache            int     `json:"valid_cache"`
	ExpiredCache          int     `json:"expired_cache"`
	TotalHits             int     `json:"total_hits"`
	AverageHitsPerWorkout float64 `json:"average_hits_per_workout"`
}

// StoredPlan is a persisted plan with its storage metadata.
type StoredPlan struct {
	ID          string    `json:"id"`
	ProfileName string    `json:"profile_name"`
	Source      Source    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	Plan        Plan      `json:"plan"`
}

// ExerciseDetail is the reference content served by the exercise info
// endpoint, independent of any generated plan.
type ExerciseDetail struct {
	Name                string   `json:"name"`
	DescriptionMarkdown string   `json:"description_markdown"`
	Instructions        []string `json:"instructions"`
	Tips                []string `json:"tips"`
}
