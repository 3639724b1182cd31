package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ellarun/ellarun/internal/errors"
	"github.com/google/uuid"
)

const (
	statusPending   = "pending"
	statusCompleted = "completed"

	// planDurationWeeks is the fixed window requested from the external API.
	planDurationWeeks = 4

	defaultGoal            = "general_fitness"
	defaultSessionDuration = 45
)

// remoteGenerator retrieves plans from the external workout-generation API.
//
// The API completes asynchronously: a request either returns the finished
// plan or a pending status. The API is idempotent per identical request body,
// so polling means re-submitting the same body until the status turns
// terminal or the attempt budget runs out.
type remoteGenerator struct {
	apiURL          string
	apiKey          string
	apiHost         string
	httpClient      *http.Client
	pollInterval    time.Duration
	maxPollAttempts int
	logger          *slog.Logger
	now             func() time.Time
}

func newRemoteGenerator(
	apiURL, apiKey, apiHost string,
	pollInterval time.Duration,
	maxPollAttempts int,
	logger *slog.Logger,
) *remoteGenerator {
	return &remoteGenerator{
		apiURL:          apiURL,
		apiKey:          apiKey,
		apiHost:         apiHost,
		httpClient:      &http.Client{Timeout: 30 * time.Second}, //nolint:mnd,exhaustruct // generous API timeout.
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		logger:          logger,
		now:             time.Now,
	}
}

func (g *remoteGenerator) source() Source {
	return SourceRemote
}

// generationRequest is the external API's request body.
type generationRequest struct {
	Goal             string             `json:"goal"`
	FitnessLevel     string             `json:"fitness_level"`
	Preferences      []string           `json:"preferences"`
	HealthConditions []string           `json:"health_conditions"`
	Schedule         generationSchedule `json:"schedule"`
	PlanWeeks        int                `json:"plan_duration_weeks"`
	Lang             string             `json:"lang"`
}

type generationSchedule struct {
	DaysPerWeek     int `json:"days_per_week"`
	SessionDuration int `json:"session_duration"`
}

// generationResponse is the tagged union the API returns: the status field
// decides whether the result payload is expected.
type generationResponse struct {
	Status string            `json:"status"`
	Result *generationResult `json:"result"`
}

type generationResult struct {
	SeoTitle   string          `json:"seo_title"`
	SeoContent string          `json:"seo_content"`
	Goal       string          `json:"goal"`
	TotalWeeks int             `json:"total_weeks"`
	Exercises  []generationDay `json:"exercises"`
}

type generationDay struct {
	Day       flexInt            `json:"day"`
	Exercises []generationMember `json:"exercises"`
}

type generationMember struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Instructions []string   `json:"instructions"`
	Sets         flexInt    `json:"sets"`
	Repetitions  flexString `json:"repetitions"`
	Duration     flexInt    `json:"duration"`
	Equipment    []string   `json:"equipment"`
}

// generate submits the generation request and polls until the response turns
// terminal, then maps the external payload into the normalized plan schema.
func (g *remoteGenerator) generate(ctx context.Context, profile Profile) (Plan, error) {
	if g.apiURL == "" || g.apiKey == "" {
		return Plan{}, errors.Wrap(ErrConfigMissing, "remote generate")
	}

	payload, err := json.Marshal(g.buildRequest(profile))
	if err != nil {
		return Plan{}, errors.Wrap(err, "marshal generation request")
	}

	resp, err := g.submit(ctx, payload)
	if err != nil {
		return Plan{}, err
	}

	attempts := 0
	for resp.Status == statusPending {
		if attempts >= g.maxPollAttempts {
			return Plan{}, errors.Wrap(ErrGenerationTimeout, "remote generate",
				slog.Int("attempts", attempts+1))
		}
		attempts++

		select {
		case <-ctx.Done():
			return Plan{}, errors.Wrap(ctx.Err(), "wait for poll interval")
		case <-time.After(g.pollInterval):
		}

		g.logger.LogAttrs(ctx, slog.LevelDebug, "polling workout generation",
			slog.Int("attempt", attempts))
		if resp, err = g.submit(ctx, payload); err != nil {
			return Plan{}, err
		}
	}

	// Unknown statuses count as terminal; only the result payload decides
	// whether the response is usable.
	if resp.Result == nil || len(resp.Result.Exercises) == 0 {
		return Plan{}, errors.Wrap(ErrInvalidResponse, "remote generate",
			slog.String("status", resp.Status))
	}

	return g.mapPlan(profile, resp.Result), nil
}

// submit POSTs the request body and decodes the response envelope.
func (g *remoteGenerator) submit(ctx context.Context, payload []byte) (generationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return generationResponse{}, errors.Wrap(err, "build generation request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", g.apiKey)
	req.Header.Set("x-rapidapi-host", g.apiHost)

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		return generationResponse{}, errors.Wrap(err, "submit generation request")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512)) //nolint:mnd // enough for diagnostics.
		return generationResponse{}, errors.Wrap(ErrInvalidResponse, "generation request rejected",
			slog.Int("status_code", httpResp.StatusCode),
			slog.String("body", string(body)))
	}

	var resp generationResponse
	if err = json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return generationResponse{}, errors.Wrap(ErrInvalidResponse, "decode generation response",
			slog.String("cause", err.Error()))
	}

	return resp, nil
}

func (g *remoteGenerator) buildRequest(profile Profile) generationRequest {
	goal := defaultGoal
	if len(profile.Goals) > 0 {
		goal = profile.Goals[0]
	}

	sessionDuration := profile.SessionDurationMinutes
	if sessionDuration <= 0 {
		sessionDuration = defaultSessionDuration
	}

	daysPerWeek := profile.SessionsPerWeek
	if daysPerWeek <= 0 {
		daysPerWeek = 3
	}

	return generationRequest{
		Goal:             goal,
		FitnessLevel:     externalLevel(profile.Level),
		Preferences:      append(append([]string{}, profile.TargetAreas...), profile.Equipment...),
		HealthConditions: []string{},
		Schedule: generationSchedule{
			DaysPerWeek:     daysPerWeek,
			SessionDuration: sessionDuration,
		},
		PlanWeeks: planDurationWeeks,
		Lang:      "en",
	}
}

// externalLevel maps the profile level into the external API's vocabulary.
func externalLevel(level Level) string {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return string(level)
	default:
		return string(LevelBeginner)
	}
}

// mapPlan converts the external result into the normalized plan schema. Each
// external day becomes one session; the external source does not separate
// warmup from cooldown, so those lists stay empty.
func (g *remoteGenerator) mapPlan(profile Profile, result *generationResult) Plan {
	days := slices.Clone(result.Exercises)
	slices.SortStableFunc(days, func(a, b generationDay) int {
		return int(a.Day) - int(b.Day)
	})

	timestamp := g.now().UnixMilli()
	sessions := make([]Session, len(days))
	for i, day := range days {
		exercises := make([]Exercise, len(day.Exercises))
		for j, member := range day.Exercises {
			exercises[j] = Exercise{ //nolint:exhaustruct // the external source omits the other fields.
				ID:              strconv.Itoa(i+1) + "_" + strconv.Itoa(j) + "_" + strconv.FormatInt(timestamp, 10),
				Name:            member.Name,
				Description:     member.Description,
				Instructions:    member.Instructions,
				Sets:            int(member.Sets),
				Reps:            string(member.Repetitions),
				DurationMinutes: int(member.Duration),
				Equipment:       member.Equipment,
			}
		}

		sessions[i] = Session{
			ID:            "session_" + strconv.Itoa(i+1),
			SessionNumber: i + 1,
			Title:         "Day " + strconv.Itoa(i+1),
			Type:          result.Goal,
			Description:   "",
			Warmup:        []Exercise{},
			MainWorkout:   exercises,
			Cooldown:      []Exercise{},
		}
	}

	title := result.SeoTitle
	if title == "" {
		title = "Personalized workout plan"
	}

	sessionDuration := profile.SessionDurationMinutes
	if sessionDuration <= 0 {
		sessionDuration = defaultSessionDuration
	}

	return Plan{
		ID:                       uuid.NewString(),
		Title:                    title,
		Description:              result.SeoContent,
		Level:                    profile.Level,
		Source:                   SourceRemote,
		TotalSessions:            len(sessions),
		EstimatedDurationMinutes: sessionDuration,
		Sessions:                 sessions,
	}
}

// flexInt decodes JSON numbers and numeric strings; anything else becomes 0.
// The external API is not consistent about field types.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil //nolint:nilerr // tolerate junk values from the external API.
	}
	*f = flexInt(n)
	return nil
}

// flexString decodes JSON strings and bare numbers into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}
