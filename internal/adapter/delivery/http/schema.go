package http

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

const statusError = "error"

// shortenRequest carries the url to shorten and an optional cache TTL in seconds.
type shortenRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
	TTL int64  `json:"ttl,omitempty" validate:"omitempty,min=1,max=2592000"`
}

type mappingResponse struct {
	Code           string     `json:"code"`
	ShortURL       string     `json:"short_url"`
	URL            string     `json:"url"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	AccessCount    int64      `json:"access_count"`
	TTL            int64      `json:"ttl"`
}

func shortURL(baseURL string, code entity.Code) string {
	return strings.TrimRight(baseURL, "/") + "/" + code.String()
}

func toMappingResponse(baseURL string, m entity.Mapping, ttl time.Duration) mappingResponse {
	resp := mappingResponse{
		Code:        m.Code().String(),
		ShortURL:    shortURL(baseURL, m.Code()),
		URL:         m.Content().String(),
		CreatedAt:   m.CreatedAt(),
		AccessCount: m.AccessCount(),
		TTL:         int64(ttl / time.Second),
	}

	if t, ok := m.LastAccessedAt(); ok {
		resp.LastAccessedAt = &t
	}

	return resp
}

type reportResponse struct {
	TotalURLs        int64             `json:"total_urls"`
	TotalAccessCount int64             `json:"total_access_count"`
	UnusedURLs       int64             `json:"unused_urls"`
	CreatedLast24h   int64             `json:"created_last_24h"`
	Top              []mappingResponse `json:"top"`
}

type mappingListResponse struct {
	Count    int               `json:"count"`
	Mappings []mappingResponse `json:"mappings"`
}

type cacheStatsResponse struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Errors    int64   `json:"errors"`
	Size      int64   `json:"size"`
	HitRate   float64 `json:"hit_rate"`
	ErrorRate float64 `json:"error_rate"`
}

func toCacheStatsResponse(s entity.CacheStatistics) cacheStatsResponse {
	return cacheStatsResponse{
		Hits:      s.Hits,
		Misses:    s.Misses,
		Errors:    s.Errors,
		Size:      s.Size,
		HitRate:   s.HitRate(),
		ErrorRate: s.ErrorRate(),
	}
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Status    string            `json:"status"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	TraceID   string            `json:"trace_id,omitempty"`
	Errors    []validationError `json:"errors,omitempty"`
}

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "max":
		return "value is too large"
	case "min":
		return "value is too small"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}
