package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// maxRequestBody bounds the size of a run request body.
const maxRequestBody = 1 << 16

// defaultHistoryLimit is the number of runs returned when no limit is given.
const defaultHistoryLimit = 20

// LintRunner executes a lint run against a discussion and commit range.
type LintRunner interface {
	Run(ctx context.Context, d model.Discussion, r model.CommitRange) (model.RunResult, error)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	runner     LintRunner
	runStore   driven.RunStore
	runTimeout time.Duration
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. A positive
// runTimeout bounds each run started through the API.
func NewHandler(runner LintRunner, runStore driven.RunStore, runTimeout time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		runner:     runner,
		runStore:   runStore,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/runs", h.CreateRun)
	mux.HandleFunc("GET /api/v1/runs/{id}", h.GetRun)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/prs/{number}/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// CreateRun executes a lint run synchronously and returns its result.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := model.NewDiscussion(strings.TrimSpace(req.Repository), req.Number)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cr := model.CommitRange{Base: strings.TrimSpace(req.Base), Head: strings.TrimSpace(req.Head)}
	if err := cr.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A run is not cancelled when the caller disconnects; cleanup has to be
	// followed by posting.
	ctx := context.WithoutCancel(r.Context())
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	result, err := h.runner.Run(ctx, d, cr)
	if err != nil {
		status := runErrorStatus(err)
		h.logger.Error("lint run failed", "discussion", d.String(), "range", cr.String(), "status", status, "error", err)
		writeJSON(w, status, RunErrorResponse{Error: err.Error(), RunID: result.RunID})
		return
	}

	writeJSON(w, http.StatusOK, toRunResultResponse(result))
}

// GetRun returns a single recorded run by ID.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	run, err := h.runStore.Get(r.Context(), id)
	if errors.Is(err, driven.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toRunRecordResponse(*run))
}

// ListRuns returns recent runs recorded for a pull request, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid PR number")
		return
	}

	d, err := model.NewDiscussion(r.PathValue("owner")+"/"+r.PathValue("repo"), number)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	runs, err := h.runStore.ListByDiscussion(r.Context(), d, limit)
	if err != nil {
		h.logger.Error("failed to list runs", "discussion", d.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RunRecordResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunRecordResponse(run))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// runErrorStatus maps run failures to response codes.
func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrDiffUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrCommentPostFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
