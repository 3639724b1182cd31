package main

import (
	"net/http"
)

// cacheStatsGET reports plan cache usage for diagnostics.
func (app *application) cacheStatsGET(w http.ResponseWriter, r *http.Request) {
	stats, err := app.planService.CacheStats(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, stats)
}
