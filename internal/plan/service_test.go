package plan_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ellarun/ellarun/internal/plan"
	"github.com/ellarun/ellarun/internal/sqlite"
	"github.com/ellarun/ellarun/internal/testhelpers"
)

func newTestDatabase(t *testing.T) *sqlite.Database {
	t.Helper()

	db, err := sqlite.NewDatabase(t.Context(), ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("failed to close test database: %v", closeErr)
		}
	})
	return db
}

func testProfile() plan.Profile {
	return plan.Profile{
		Name:                   "alice",
		Level:                  plan.LevelIntermediate,
		WeightKg:               62.5,
		HeightCm:               168,
		Goals:                  []string{"endurance"},
		SessionsPerWeek:        3,
		SessionDurationMinutes: 45,
	}
}

const completedAPIResponse = `{
	"status": "completed",
	"result": {
		"seo_title": "4-week endurance plan",
		"goal": "endurance",
		"total_weeks": 4,
		"exercises": [
			{"day": 1, "exercises": [{"name": "Easy run", "duration": 30}]},
			{"day": 2, "exercises": [{"name": "Tempo run", "duration": 20}]}
		]
	}
}`

// The happy path: the external API answers on the first call, the plan is
// normalized, and the next request for the same profile is served from the
// cache without touching the API again.
func Test_GeneratePlan_RemoteSuccessIsCached(t *testing.T) {
	apiCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apiCalls++
		_, _ = w.Write([]byte(completedAPIResponse))
	}))
	defer server.Close()

	svc := plan.NewService(newTestDatabase(t), testhelpers.NewLogger(testhelpers.NewWriter(t)), plan.Config{
		APIURL:       server.URL,
		APIKey:       "test-key",
		APIHost:      "test-host",
		PollInterval: time.Millisecond,
	})
	ctx := t.Context()
	profile := testProfile()

	generated, err := svc.GeneratePlan(ctx, profile)
	if err != nil {
		t.Fatalf("GeneratePlan() error = %v", err)
	}
	if generated.Source != plan.SourceRemote {
		t.Fatalf("source = %q, want %q", generated.Source, plan.SourceRemote)
	}
	if len(generated.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(generated.Sessions))
	}
	for i, session := range generated.Sessions {
		if session.SessionNumber != i+1 {
			t.Errorf("sessions[%d].SessionNumber = %d, want %d", i, session.SessionNumber, i+1)
		}
	}

	cached, ok := svc.CachedPlan(ctx, profile)
	if !ok {
		t.Fatal("CachedPlan() missed after a remote generation")
	}
	if cached.Source != plan.SourceCache {
		t.Errorf("cached source = %q, want %q", cached.Source, plan.SourceCache)
	}
	if apiCalls != 1 {
		t.Errorf("API received %d calls, want 1", apiCalls)
	}
}

// An API stuck on pending exhausts the poll budget and the offline tier
// takes over. The caller sees a complete plan, never the timeout.
func Test_GeneratePlan_PendingAPIFallsBackToOfflineTier(t *testing.T) {
	apiCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apiCalls++
		_, _ = w.Write([]byte(`{"status": "pending"}`))
	}))
	defer server.Close()

	svc := plan.NewService(newTestDatabase(t), testhelpers.NewLogger(testhelpers.NewWriter(t)), plan.Config{
		APIURL:          server.URL,
		APIKey:          "test-key",
		APIHost:         "test-host",
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 5,
		ProgramStart:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	ctx := t.Context()
	profile := testProfile()

	generated, err := svc.GeneratePlan(ctx, profile)
	if err != nil {
		t.Fatalf("GeneratePlan() error = %v", err)
	}

	if apiCalls != 6 {
		t.Errorf("API received %d calls, want 6 (initial submit plus five polls)", apiCalls)
	}
	if generated.Source != plan.SourceLocal {
		t.Errorf("source = %q, want %q", generated.Source, plan.SourceLocal)
	}
	if len(generated.Sessions) == 0 {
		t.Fatal("offline plan has no sessions")
	}
	session := generated.Sessions[0]
	if len(session.Warmup) == 0 || len(session.MainWorkout) == 0 || len(session.Cooldown) == 0 {
		t.Errorf("offline session segments incomplete: %d warmup, %d main, %d cooldown",
			len(session.Warmup), len(session.MainWorkout), len(session.Cooldown))
	}

	if _, ok := svc.CachedPlan(ctx, profile); ok {
		t.Error("offline result must not be cached")
	}
}

// Without API credentials the remote tier is skipped outright.
func Test_GeneratePlan_NoAPIConfigUsesOfflineTier(t *testing.T) {
	svc := plan.NewService(newTestDatabase(t), testhelpers.NewLogger(testhelpers.NewWriter(t)), plan.Config{
		ProgramStart: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	})

	generated, err := svc.GeneratePlan(t.Context(), testProfile())
	if err != nil {
		t.Fatalf("GeneratePlan() error = %v", err)
	}
	if generated.Source != plan.SourceLocal {
		t.Errorf("source = %q, want %q", generated.Source, plan.SourceLocal)
	}
}

func Test_Profiles_SaveAndGet(t *testing.T) {
	svc := plan.NewService(newTestDatabase(t), testhelpers.NewLogger(testhelpers.NewWriter(t)), plan.Config{})
	ctx := t.Context()

	if _, err := svc.GetProfile(ctx, "alice"); !errors.Is(err, plan.ErrNotFound) {
		t.Fatalf("GetProfile() on empty store error = %v, want ErrNotFound", err)
	}

	profile := testProfile()
	if err := svc.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	// Lookups are case-insensitive.
	got, err := svc.GetProfile(ctx, "Alice")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.Level != profile.Level || got.SessionsPerWeek != profile.SessionsPerWeek {
		t.Errorf("GetProfile() = %+v, want %+v", got, profile)
	}
}

func Test_Profiles_SaveRejectsInvalidProfile(t *testing.T) {
	svc := plan.NewService(newTestDatabase(t), testhelpers.NewLogger(testhelpers.NewWriter(t)), plan.Config{})

	tests := []struct {
		name    string
		profile plan.Profile
	}{
		{
			name:    "missing name",
			profile: plan.Profile{Level: plan.LevelBeginner, SessionsPerWeek: 3},
		},
		{
			name:    "unknown level",
			profile: plan.Profile{Name: "alice", Level: "expert", SessionsPerWeek: 3},
		},
		{
			name:    "too many sessions",
			profile: plan.Profile{Name: "alice", Level: plan.LevelBeginner, SessionsPerWeek: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.SaveProfile(t.Context(), tt.profile); err == nil {
				t.Error("SaveProfile() accepted an invalid profile")
			}
		})
	}
}
