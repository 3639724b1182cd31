package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ellarun/ellarun/internal/plan"
)

func putProfile(t *testing.T, serverURL, name, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPut,
		serverURL+"/api/profiles/"+name, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func Test_application_profiles(t *testing.T) {
	server := newTestServer(t)

	t.Run("unknown profile returns 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/profiles/nobody")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("save and retrieve round trip", func(t *testing.T) {
		resp := putProfile(t, server.URL, "alice",
			`{"level": "intermediate", "sessions_per_week": 3, "goals": ["endurance"]}`)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		getResp, err := http.Get(server.URL + "/api/profiles/alice")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer getResp.Body.Close()
		if getResp.StatusCode != http.StatusOK {
			t.Fatalf("GET status = %d, want %d", getResp.StatusCode, http.StatusOK)
		}

		var profile plan.Profile
		if err = json.NewDecoder(getResp.Body).Decode(&profile); err != nil {
			t.Fatalf("failed to decode profile: %v", err)
		}
		if profile.Name != "alice" {
			t.Errorf("name = %q, want alice", profile.Name)
		}
		if profile.Level != plan.LevelIntermediate {
			t.Errorf("level = %q, want %q", profile.Level, plan.LevelIntermediate)
		}
		if profile.SessionsPerWeek != 3 {
			t.Errorf("sessions per week = %d, want 3", profile.SessionsPerWeek)
		}
	})

	t.Run("URL name wins over body name", func(t *testing.T) {
		resp := putProfile(t, server.URL, "bob",
			`{"name": "mallory", "level": "beginner", "sessions_per_week": 2}`)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		getResp, err := http.Get(server.URL + "/api/profiles/bob")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer getResp.Body.Close()
		if getResp.StatusCode != http.StatusOK {
			t.Errorf("GET status = %d, want %d", getResp.StatusCode, http.StatusOK)
		}
	})

	t.Run("invalid profile is rejected", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "unknown level", body: `{"level": "expert", "sessions_per_week": 3}`},
			{name: "too many sessions", body: `{"level": "beginner", "sessions_per_week": 9}`},
			{name: "malformed JSON", body: `{"level":`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp := putProfile(t, server.URL, "carol", tt.body)
				defer resp.Body.Close()
				if resp.StatusCode != http.StatusBadRequest {
					t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
				}
			})
		}
	})
}
