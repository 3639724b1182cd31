package plan

import (
	"context"
)

// mockGenerator is the last-resort safety net: one hardcoded minimal plan,
// no computation. It only runs when the offline progression table itself is
// unusable.
type mockGenerator struct{}

func newMockGenerator() *mockGenerator {
	return &mockGenerator{}
}

func (g *mockGenerator) source() Source {
	return SourceMock
}

func (g *mockGenerator) generate(_ context.Context, profile Profile) (Plan, error) {
	return Plan{
		ID:                       "mock_plan",
		Title:                    "Basic session",
		Description:              "A simple full-body session to keep you moving.",
		Level:                    profile.Level,
		Source:                   SourceMock,
		TotalSessions:            1,
		EstimatedDurationMinutes: 30, //nolint:mnd // fixed fallback session length.
		Sessions: []Session{
			{
				ID:            "mock_session_1",
				SessionNumber: 1,
				Title:         "Full-body basics",
				Type:          "general",
				Description:   "",
				Warmup:        []Exercise{},
				MainWorkout: []Exercise{
					{ //nolint:exhaustruct // minimal fixed content.
						ID:          "mock_1",
						Name:        "Bodyweight squat",
						Description: "Sit back and down, stand tall.",
						Sets:        3,
						Reps:        "10",
					},
					{ //nolint:exhaustruct // minimal fixed content.
						ID:          "mock_2",
						Name:        "Incline push-up",
						Description: "Hands elevated, body in one line.",
						Sets:        3,
						Reps:        "8",
					},
				},
				Cooldown: []Exercise{},
			},
		},
	}, nil
}
