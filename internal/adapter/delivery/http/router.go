// Package http exposes the shortener over a JSON API and redirects short links.
package http

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/tinyurl/pkg/middleware/recoverer"

	httpSwagger "github.com/swaggo/http-swagger"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// NewRouter initializes the router of the API, the docs and the short link redirects.
func NewRouter(
	logger *httplog.Logger,
	baseURL string,
	mappingUseCase mappingUseCase,
	statsUseCase statsUseCase,
	probes ...Probe,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger, renderPanic))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	mappings := newMappingHandler(mappingUseCase, newValidator(), baseURL)
	stats := newStatsHandler(statsUseCase, mappingUseCase.TTLPolicy(), baseURL)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", handlePing)
		r.Get("/health", handleHealth(probes))

		r.Route("/urls", func(r chi.Router) {
			r.Post("/", mappings.shorten)

			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", mappings.resolve)
				r.Delete("/", mappings.delete)
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", stats.report)
			r.Get("/created", stats.createdBetween)
			r.Get("/accessed", stats.accessedSince)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", stats.cacheStatistics)
			r.Delete("/", stats.clearCache)
		})
	})

	r.Get("/{code}", mappings.redirect)

	return r
}
