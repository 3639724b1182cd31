package main

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ellarun/ellarun/internal/plan"
	"github.com/ellarun/ellarun/internal/sqlite"
	"github.com/ellarun/ellarun/internal/testhelpers"
)

// newTestApplication wires an application against an in-memory database with
// no external API configured, so plan generation runs on the offline tier.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("failed to close test database: %v", closeErr)
		}
	})

	return &application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		planService: plan.NewService(db, logger, plan.Config{ //nolint:exhaustruct // offline test config.
			ProgramStart: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		}),
	}
}

// newTestServer starts a test server with the full middleware chain.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(newTestApplication(t).routes())
	t.Cleanup(server.Close)
	return server
}
