package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// CreateRunRequest is the JSON body for the create run endpoint.
type CreateRunRequest struct {
	Repository string `json:"repository"`
	Number     int    `json:"number"`
	Base       string `json:"base"`
	Head       string `json:"head"`
}

// RunResultResponse is the JSON representation of a completed run.
type RunResultResponse struct {
	RunID        string `json:"run_id"`
	OffenseCount int    `json:"offense_count"`
	Posted       bool   `json:"posted"`
}

// RunErrorResponse is returned when a run fails. RunID identifies the
// recorded failure, if any.
type RunErrorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}

// LinterRunResponse is one linter's contribution to a recorded run.
type LinterRunResponse struct {
	Name            string `json:"name"`
	FileCount       int    `json:"file_count"`
	RawOffenseCount int    `json:"raw_offense_count"`
	Skipped         bool   `json:"skipped"`
}

// RunRecordResponse is the JSON representation of a recorded run.
type RunRecordResponse struct {
	ID              string              `json:"id"`
	Repository      string              `json:"repository"`
	Number          int                 `json:"number"`
	Base            string              `json:"base"`
	Head            string              `json:"head"`
	Status          string              `json:"status"`
	OffenseCount    int                 `json:"offense_count"`
	Posted          bool                `json:"posted"`
	CommentsCreated int                 `json:"comments_created"`
	CommentsRetired int                 `json:"comments_retired"`
	Error           string              `json:"error,omitempty"`
	Linters         []LinterRunResponse `json:"linters"`
	StartedAt       string              `json:"started_at"`
	FinishedAt      string              `json:"finished_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toRunResultResponse(r model.RunResult) RunResultResponse {
	return RunResultResponse{
		RunID:        r.RunID,
		OffenseCount: r.OffenseCount,
		Posted:       r.Posted,
	}
}

// toRunRecordResponse converts a domain RunRecord to its JSON representation.
func toRunRecordResponse(run model.RunRecord) RunRecordResponse {
	linters := make([]LinterRunResponse, 0, len(run.Linters))
	for _, l := range run.Linters {
		linters = append(linters, LinterRunResponse{
			Name:            l.Name,
			FileCount:       l.FileCount,
			RawOffenseCount: l.RawOffenseCount,
			Skipped:         l.Skipped,
		})
	}

	return RunRecordResponse{
		ID:              run.ID,
		Repository:      run.RepoFullName,
		Number:          run.PRNumber,
		Base:            run.BaseSHA,
		Head:            run.HeadSHA,
		Status:          string(run.Status),
		OffenseCount:    run.OffenseCount,
		Posted:          run.Posted,
		CommentsCreated: run.CommentsCreated,
		CommentsRetired: run.CommentsRetired,
		Error:           run.Error,
		Linters:         linters,
		StartedAt:       run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:      run.FinishedAt.UTC().Format(time.RFC3339),
	}
}
