package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	apperrors "github.com/jmgilman/go/errors"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

type statsUseCase interface {
	Report(ctx context.Context, limit int) (entity.Report, error)
	CreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Mapping, error)
	AccessedSince(ctx context.Context, since time.Time) ([]entity.Mapping, error)
	CacheStatistics(ctx context.Context) (entity.CacheStatistics, error)
	ClearCache(ctx context.Context) error
}

type statsHandler struct {
	useCase statsUseCase
	policy  entity.TTLPolicy
	baseURL string
}

func newStatsHandler(useCase statsUseCase, policy entity.TTLPolicy, baseURL string) *statsHandler {
	return &statsHandler{
		useCase: useCase,
		policy:  policy,
		baseURL: baseURL,
	}
}

func (h *statsHandler) list(mappings []entity.Mapping) []mappingResponse {
	resp := make([]mappingResponse, 0, len(mappings))
	for _, m := range mappings {
		resp = append(resp, toMappingResponse(h.baseURL, m, h.policy.Determine(m)))
	}
	return resp
}

func queryTime(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, apperrors.Newf(apperrors.CodeInvalidInput, "query parameter %q is required", key)
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, apperrors.Wrapf(err, apperrors.CodeInvalidInput, "query parameter %q must be an RFC 3339 time", key)
	}

	return t, nil
}

func (h *statsHandler) report(w http.ResponseWriter, r *http.Request) {
	var limit int

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			renderError(w, r, apperrors.New(apperrors.CodeInvalidInput, "limit must be a positive integer"), apperrors.CodeInvalidInput)
			return
		}
		limit = n
	}

	report, err := h.useCase.Report(r.Context(), limit)
	if err != nil {
		renderError(w, r, err, apperrors.CodeDatabase)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, reportResponse{
		TotalURLs:        report.TotalMappings,
		TotalAccessCount: report.TotalAccessCount,
		UnusedURLs:       report.UnusedMappings,
		CreatedLast24h:   report.CreatedSince,
		Top:              h.list(report.TopAccessed),
	})
}

func (h *statsHandler) createdBetween(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		renderError(w, r, err, apperrors.CodeInvalidInput)
		return
	}

	to, err := queryTime(r, "to")
	if err != nil {
		renderError(w, r, err, apperrors.CodeInvalidInput)
		return
	}

	mappings, err := h.useCase.CreatedBetween(r.Context(), from, to)
	if err != nil {
		renderError(w, r, err, apperrors.CodeDatabase)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappingListResponse{Count: len(mappings), Mappings: h.list(mappings)})
}

func (h *statsHandler) accessedSince(w http.ResponseWriter, r *http.Request) {
	since, err := queryTime(r, "since")
	if err != nil {
		renderError(w, r, err, apperrors.CodeInvalidInput)
		return
	}

	mappings, err := h.useCase.AccessedSince(r.Context(), since)
	if err != nil {
		renderError(w, r, err, apperrors.CodeDatabase)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappingListResponse{Count: len(mappings), Mappings: h.list(mappings)})
}

func (h *statsHandler) cacheStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.useCase.CacheStatistics(r.Context())
	if err != nil {
		renderError(w, r, err, apperrors.CodeUnavailable)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toCacheStatsResponse(stats))
}

func (h *statsHandler) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.useCase.ClearCache(r.Context()); err != nil {
		renderError(w, r, err, apperrors.CodeUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
