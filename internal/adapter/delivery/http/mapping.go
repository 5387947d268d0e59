package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/jmgilman/go/errors"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

type mappingUseCase interface {
	Shorten(ctx context.Context, content entity.Content, ttl time.Duration) (entity.Mapping, time.Duration, error)
	Resolve(ctx context.Context, code entity.Code) (entity.Mapping, bool, error)
	Redirect(ctx context.Context, code entity.Code) (entity.Mapping, bool, error)
	Delete(ctx context.Context, code entity.Code) (bool, error)
	TTLPolicy() entity.TTLPolicy
}

type mappingHandler struct {
	useCase  mappingUseCase
	validate *validator.Validate
	baseURL  string
}

func newMappingHandler(useCase mappingUseCase, validate *validator.Validate, baseURL string) *mappingHandler {
	return &mappingHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  baseURL,
	}
}

func (h *mappingHandler) response(m entity.Mapping) mappingResponse {
	return toMappingResponse(h.baseURL, m, h.useCase.TTLPolicy().Determine(m))
}

func (h *mappingHandler) shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			renderError(w, r, errEmptyRequestBody, apperrors.CodeInvalidInput)
			return
		}

		renderError(w, r, errInvalidRequestBody, apperrors.CodeInvalidInput)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, errValidation, apperrors.CodeInvalidInput, getValidationErrors(err)...)
		return
	}

	content, err := entity.NewContent(req.URL)
	if err != nil {
		renderError(w, r, err, apperrors.CodeInvalidInput)
		return
	}

	m, ttl, err := h.useCase.Shorten(r.Context(), content, time.Duration(req.TTL)*time.Second)
	if err != nil {
		renderError(w, r, err, apperrors.CodeDatabase)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toMappingResponse(h.baseURL, m, ttl))
}

func (h *mappingHandler) resolve(w http.ResponseWriter, r *http.Request) {
	code, err := entity.NewCode(chi.URLParam(r, "code"))
	if err != nil {
		renderError(w, r, err, apperrors.CodeInvalidInput)
		return
	}

	m, found, err := h.useCase.Resolve(r.Context(), code)
	if err != nil {
		renderError(w, r, err, apperrors.CodeDatabase)
		return
	}
	if !found {
		renderError(w, r, errMappingNotFound, apperrors.CodeNotFound)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.response(m))
}

func (h *mappingHandler) delete(w http.ResponseWriter, r *http.Request) {
	code, err := entity.NewCode(chi.URLParam(r, "code"))
	if err != nil {
		renderError(w, r, err, apperrors.CodeInvalidInput)
		return
	}

	deleted, err := h.useCase.Delete(r.Context(), code)
	if err != nil {
		renderError(w, r, err, apperrors.CodeDatabase)
		return
	}
	if !deleted {
		renderError(w, r, errMappingNotFound, apperrors.CodeNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// redirect sends the client to the original url. The access is recorded after the response.
func (h *mappingHandler) redirect(w http.ResponseWriter, r *http.Request) {
	code, err := entity.NewCode(chi.URLParam(r, "code"))
	if err != nil {
		renderError(w, r, err, apperrors.CodeInvalidInput)
		return
	}

	m, found, err := h.useCase.Redirect(r.Context(), code)
	if err != nil {
		renderError(w, r, err, apperrors.CodeDatabase)
		return
	}
	if !found {
		renderError(w, r, errMappingNotFound, apperrors.CodeNotFound)
		return
	}

	http.Redirect(w, r, m.Content().String(), http.StatusFound)
}
