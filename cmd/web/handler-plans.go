package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ellarun/ellarun/internal/plan"
)

const defaultRecentPlanLimit = 10

// planGenerateResponse wraps a generated plan with its delivery metadata.
type planGenerateResponse struct {
	Plan   plan.Plan `json:"plan"`
	Cached bool      `json:"cached"`
}

// planGeneratePOST generates a workout plan for the profile in the request
// body. A fresh cached plan short-circuits generation unless the client asks
// for a refresh with ?refresh=true.
func (app *application) planGeneratePOST(w http.ResponseWriter, r *http.Request) {
	var profile plan.Profile
	if !app.decodeJSON(w, r, &profile) {
		return
	}
	if err := profile.Validate(); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	if !refresh {
		if cached, ok := app.planService.CachedPlan(r.Context(), profile); ok {
			app.writeJSON(w, r, http.StatusOK, planGenerateResponse{Plan: cached, Cached: true})
			return
		}
	}

	generated, err := app.planService.GeneratePlan(r.Context(), profile)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "generated plan",
		slog.String("profile", profile.Name), slog.String("source", string(generated.Source)))
	app.writeJSON(w, r, http.StatusOK, planGenerateResponse{Plan: generated, Cached: false})
}

// plansRecentGET lists the most recently generated plans for a profile.
func (app *application) plansRecentGET(w http.ResponseWriter, r *http.Request) {
	profileName := r.URL.Query().Get("profile")
	if profileName == "" {
		app.clientError(w, r, http.StatusBadRequest, "profile query parameter is required")
		return
	}

	limit := defaultRecentPlanLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			app.clientError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	stored, err := app.planService.RecentPlans(r.Context(), profileName, limit)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if stored == nil {
		stored = []plan.StoredPlan{}
	}

	app.writeJSON(w, r, http.StatusOK, stored)
}
