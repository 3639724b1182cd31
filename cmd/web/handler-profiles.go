package main

import (
	"net/http"

	"github.com/ellarun/ellarun/internal/errors"
	"github.com/ellarun/ellarun/internal/plan"
)

// profileGET retrieves a stored profile by name.
func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	profile, err := app.planService.GetProfile(r.Context(), r.PathValue("name"))
	if errors.Is(err, plan.ErrNotFound) {
		app.clientError(w, r, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, profile)
}

// profilePUT creates or replaces the named profile. The name in the URL wins
// over the one in the body.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	var profile plan.Profile
	if !app.decodeJSON(w, r, &profile) {
		return
	}
	profile.Name = r.PathValue("name")
	if err := profile.Validate(); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := app.planService.SaveProfile(r.Context(), profile); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, profile)
}
