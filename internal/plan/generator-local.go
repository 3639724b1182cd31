package plan

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/ellarun/ellarun/internal/errors"
	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed phases.yaml
var phaseTablesYAML []byte

const (
	programPhaseCount = 5
	weeksPerPhase     = 2

	workoutTypeRunning  = "running"
	workoutTypeStrength = "strength"

	runningSessionMinutes  = 45
	strengthSessionMinutes = 60
)

// Tag families used to pick between a running and a strength session.
//
//nolint:gochecknoglobals // fixed vocabulary tables.
var (
	cardioTags   = []string{"running", "cardio", "endurance", "stamina", "weight_loss"}
	strengthTags = []string{"strength", "muscle", "muscle_gain", "toning", "power"}
)

// localGenerator synthesizes plans from a static ten-week progression table
// with no external calls. It is the tier that cannot fail: the embedded
// table covers every phase for both workout types.
type localGenerator struct {
	phases       []programPhase
	programStart time.Time
	logger       *slog.Logger
	now          func() time.Time
	intN         func(n int) int
}

type programPhase struct {
	Number   int            `yaml:"number"`
	Name     string         `yaml:"name"`
	Focus    string         `yaml:"focus"`
	Running  phaseExercises `yaml:"running"`
	Strength phaseExercises `yaml:"strength"`
}

type phaseExercises struct {
	Warmup   []phaseExercise `yaml:"warmup"`
	Main     []phaseExercise `yaml:"main"`
	Cooldown []phaseExercise `yaml:"cooldown"`
}

type phaseExercise struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Sets            int      `yaml:"sets"`
	Reps            string   `yaml:"reps"`
	DurationMinutes int      `yaml:"duration_minutes"`
	RestSeconds     int      `yaml:"rest_seconds"`
	Equipment       []string `yaml:"equipment"`
}

// newLocalGenerator parses the embedded progression table. An unusable table
// is the one condition under which this tier is skipped in favor of the mock
// safety net.
func newLocalGenerator(programStart time.Time, logger *slog.Logger) (*localGenerator, error) {
	var tables struct {
		Phases []programPhase `yaml:"phases"`
	}
	if err := yaml.Unmarshal(phaseTablesYAML, &tables); err != nil {
		return nil, errors.Wrap(err, "parse phase tables")
	}
	if len(tables.Phases) != programPhaseCount {
		return nil, errors.New("phase table must define exactly five phases")
	}
	for _, phase := range tables.Phases {
		if len(phase.Running.Main) == 0 || len(phase.Strength.Main) == 0 {
			return nil, errors.Wrap(errors.New("phase table missing main workout"),
				"validate phase tables", slog.Int("phase", phase.Number))
		}
	}

	return &localGenerator{
		phases:       tables.Phases,
		programStart: programStart,
		logger:       logger,
		now:          time.Now,
		intN:         rand.IntN,
	}, nil
}

func (g *localGenerator) source() Source {
	return SourceLocal
}

// generate builds a single-session plan for the profile's current program
// phase. It never returns an error.
func (g *localGenerator) generate(ctx context.Context, profile Profile) (Plan, error) {
	phase := g.currentPhase(profile)
	workoutType := g.selectWorkoutType(profile)

	exercises := phase.Running
	durationMinutes := runningSessionMinutes
	if workoutType == workoutTypeStrength {
		exercises = phase.Strength
		durationMinutes = strengthSessionMinutes
	}

	g.logger.LogAttrs(ctx, slog.LevelDebug, "generated offline plan",
		slog.Int("phase", phase.Number), slog.String("type", workoutType))

	session := Session{
		ID:            "local_" + workoutType + "_" + strconv.Itoa(phase.Number),
		SessionNumber: 1,
		Title:         phase.Name + " " + workoutType + " session",
		Type:          workoutType,
		Description:   phase.Focus,
		Warmup:        convertPhaseExercises(workoutType, phase.Number, "warmup", exercises.Warmup),
		MainWorkout:   convertPhaseExercises(workoutType, phase.Number, "main", exercises.Main),
		Cooldown:      convertPhaseExercises(workoutType, phase.Number, "cooldown", exercises.Cooldown),
	}

	return Plan{
		ID:                       "local_" + strconv.FormatInt(g.now().UnixMilli(), 10),
		Title:                    "Phase " + strconv.Itoa(phase.Number) + ": " + phase.Name,
		Description:              phase.Focus,
		Level:                    profile.Level,
		Source:                   SourceLocal,
		TotalSessions:            1,
		EstimatedDurationMinutes: durationMinutes,
		Sessions:                 []Session{session},
	}, nil
}

// currentPhase resolves the program phase from elapsed time only, so that the
// result is reproducible for a fixed clock. The profile's program start wins
// over the generator-wide default.
func (g *localGenerator) currentPhase(profile Profile) programPhase {
	start := profile.ProgramStart
	if start.IsZero() {
		start = g.programStart
	}

	week := 1
	if now := g.now(); !start.IsZero() && now.After(start) {
		week = int(now.Sub(start)/(7*24*time.Hour)) + 1
	}

	index := (week - 1) / weeksPerPhase
	if index < 0 {
		index = 0
	}
	if index >= len(g.phases) {
		index = len(g.phases) - 1
	}
	return g.phases[index]
}

// selectWorkoutType picks running or strength from the profile's tags. When
// the profile signals both families, or neither, the choice is a coin flip:
// deliberate variety across repeated calls, not a bug.
func (g *localGenerator) selectWorkoutType(profile Profile) string {
	tags := append(append([]string{}, profile.Goals...), profile.TargetAreas...)
	hasCardio := containsAnyTag(tags, cardioTags)
	hasStrength := containsAnyTag(tags, strengthTags)

	switch {
	case hasCardio && !hasStrength:
		return workoutTypeRunning
	case hasStrength && !hasCardio:
		return workoutTypeStrength
	default:
		if g.intN(2) == 0 { //nolint:mnd // coin flip.
			return workoutTypeRunning
		}
		return workoutTypeStrength
	}
}

func containsAnyTag(tags, family []string) bool {
	normalized := normalizeTags(tags)
	for _, tag := range normalized {
		for _, candidate := range family {
			if tag == candidate {
				return true
			}
		}
	}
	return false
}

func convertPhaseExercises(workoutType string, phase int, segment string, entries []phaseExercise) []Exercise {
	exercises := make([]Exercise, len(entries))
	for i, entry := range entries {
		exercises[i] = Exercise{ //nolint:exhaustruct // the table omits the other fields.
			ID:              "local_" + workoutType + "_" + strconv.Itoa(phase) + "_" + segment + "_" + strconv.Itoa(i),
			Name:            entry.Name,
			Description:     entry.Description,
			Sets:            entry.Sets,
			Reps:            entry.Reps,
			DurationMinutes: entry.DurationMinutes,
			RestTimeSeconds: entry.RestSeconds,
			Equipment:       entry.Equipment,
		}
	}
	return exercises
}
