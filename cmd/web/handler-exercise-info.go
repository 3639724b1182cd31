package main

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/ellarun/ellarun/internal/plan"
	"github.com/yuin/goldmark"
)

// exerciseInfoResponse carries the exercise reference content in both the
// raw markdown and rendered HTML forms.
type exerciseInfoResponse struct {
	plan.ExerciseDetail
	DescriptionHTML string `json:"description_html"`
}

// exerciseInfoGET returns reference content for the named exercise.
func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		app.clientError(w, r, http.StatusBadRequest, "exercise name is required")
		return
	}

	detail := app.planService.ExerciseInfo(r.Context(), name)

	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(detail.DescriptionMarkdown), &rendered); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, exerciseInfoResponse{
		ExerciseDetail:  detail,
		DescriptionHTML: rendered.String(),
	})
}
