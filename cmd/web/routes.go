package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		api = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.logAndTraceRequest(secureHeaders(app.timeout(defaultTimeout, next))))))
		}
		// Plan generation may poll the external API for over a minute.
		slowAPI = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.logAndTraceRequest(secureHeaders(app.timeout(generateTimeout, next))))))
		}
	)

	mux.Handle("POST /api/plans/generate", slowAPI(http.HandlerFunc(app.planGeneratePOST)))
	mux.Handle("GET /api/plans/recent", api(http.HandlerFunc(app.plansRecentGET)))

	mux.Handle("GET /api/profiles/{name}", api(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profiles/{name}", api(http.HandlerFunc(app.profilePUT)))

	mux.Handle("GET /api/cache/stats", api(http.HandlerFunc(app.cacheStatsGET)))
	mux.Handle("GET /api/exercises/{name}/info", slowAPI(http.HandlerFunc(app.exerciseInfoGET)))

	mux.Handle("GET /api/healthy", api(http.HandlerFunc(app.healthy)))

	return mux
}
