//go:build integration

package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/tinyurl/internal/adapter/generator"
	"github.com/vadimbarashkov/tinyurl/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
	"github.com/vadimbarashkov/tinyurl/internal/usecase"

	cache "github.com/vadimbarashkov/tinyurl/internal/adapter/cache/redis"
	delivery "github.com/vadimbarashkov/tinyurl/internal/adapter/delivery/http"
)

const baseURL = "https://tiny.example.com/"

type APITestSuite struct {
	suite.Suite
	env            *environment
	mappingUseCase *usecase.MappingUseCase
	server         *httptest.Server
	e              *httpexpect.Expect
}

func (suite *APITestSuite) SetupSuite() {
	suite.env = setupEnvironment(suite.T())

	logger := httplog.NewLogger("tinyurl", httplog.Options{Writer: io.Discard})

	gen, err := generator.NewBase62Generator(generator.DefaultLength)
	suite.Require().NoError(err)

	repo := postgres.NewMappingRepository(suite.env.db)
	mappingCache := cache.NewMappingCache(suite.env.rdb)

	suite.mappingUseCase = usecase.New(repo, mappingCache, gen, usecase.WithLogger(logger.Logger))
	statsUseCase := usecase.NewStatsUseCase(repo, mappingCache)

	router := delivery.NewRouter(logger, baseURL, suite.mappingUseCase, statsUseCase,
		delivery.Probe{Name: "postgres", Critical: true, Check: repo.Ping},
		delivery.Probe{Name: "redis", Check: mappingCache.Ping},
	)

	suite.server = httptest.NewServer(router)
	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.server.URL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *APITestSuite) TearDownSuite() {
	suite.server.Close()
	suite.mappingUseCase.Wait()
}

func (suite *APITestSuite) SetupSubTest() {
	suite.env.reset(suite.T())
}

func (suite *APITestSuite) shorten(url string) string {
	return suite.e.POST("/api/v1/urls").
		WithJSON(map[string]any{"url": url}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("code").String().Raw()
}

func (suite *APITestSuite) TestHealth() {
	suite.Run("all dependencies up", func() {
		obj := suite.e.GET("/api/v1/health").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		obj.Value("postgres").String().IsEqual("up")
		obj.Value("redis").String().IsEqual("up")
	})
}

func (suite *APITestSuite) TestShorten() {
	suite.Run("new url", func() {
		obj := suite.e.POST("/api/v1/urls").
			WithJSON(map[string]any{"url": "https://example.com/a"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		code := obj.Value("code").String()
		code.Length().IsEqual(generator.DefaultLength)
		obj.Value("short_url").String().IsEqual(baseURL + code.Raw())
		obj.Value("url").String().IsEqual("https://example.com/a")
		obj.Value("access_count").Number().IsEqual(0)
		obj.Value("ttl").Number().IsEqual(entity.DefaultCacheTTL.Seconds())
	})

	suite.Run("same url returns same code", func() {
		first := suite.shorten("https://example.com/dedup")
		second := suite.shorten("https://example.com/dedup")

		suite.Equal(first, second)

		var count int
		err := suite.env.db.Get(&count, `SELECT COUNT(*) FROM mappings`)
		suite.Require().NoError(err)
		suite.Equal(1, count)
	})

	suite.Run("invalid url", func() {
		obj := suite.e.POST("/api/v1/urls").
			WithJSON(map[string]any{"url": "not a url"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		obj.Value("status").String().IsEqual("error")
		obj.Value("errors").Array().NotEmpty()
	})
}

func (suite *APITestSuite) TestResolve() {
	suite.Run("existing code", func() {
		code := suite.shorten("https://example.com/resolve")

		suite.e.GET("/api/v1/urls/{code}", code).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("url").String().IsEqual("https://example.com/resolve")
	})

	suite.Run("served from storage after cache flush", func() {
		code := suite.shorten("https://example.com/flushed")

		suite.Require().NoError(suite.env.rdb.FlushDB(context.Background()).Err())

		suite.e.GET("/api/v1/urls/{code}", code).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("code").String().IsEqual(code)

		keys, err := suite.env.rdb.Keys(context.Background(), cache.DefaultKeyPrefix+"*").Result()
		suite.Require().NoError(err)
		suite.Len(keys, 1)
	})

	suite.Run("unknown code", func() {
		suite.e.GET("/api/v1/urls/{code}", "zzzzzz").
			Expect().
			Status(http.StatusNotFound)
	})
}

func (suite *APITestSuite) TestRedirect() {
	suite.Run("redirects and records access", func() {
		code := suite.shorten("https://example.com/redirect")

		suite.e.GET("/{code}", code).
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com/redirect")

		suite.mappingUseCase.Wait()

		obj := suite.e.GET("/api/v1/urls/{code}", code).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		obj.Value("access_count").Number().IsEqual(1)
		obj.Value("last_accessed_at").String().NotEmpty()
	})

	suite.Run("unknown code", func() {
		suite.e.GET("/{code}", "zzzzzz").
			Expect().
			Status(http.StatusNotFound)
	})
}

func (suite *APITestSuite) TestDelete() {
	suite.Run("existing code", func() {
		code := suite.shorten("https://example.com/delete")

		suite.e.DELETE("/api/v1/urls/{code}", code).
			Expect().
			Status(http.StatusNoContent)

		suite.e.GET("/api/v1/urls/{code}", code).
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("unknown code", func() {
		suite.e.DELETE("/api/v1/urls/{code}", "zzzzzz").
			Expect().
			Status(http.StatusNotFound)
	})
}

func (suite *APITestSuite) TestStats() {
	suite.Run("report", func() {
		used := suite.shorten("https://example.com/used")
		suite.shorten("https://example.com/unused")

		suite.e.GET("/{code}", used).Expect().Status(http.StatusFound)
		suite.mappingUseCase.Wait()

		obj := suite.e.GET("/api/v1/stats").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		obj.Value("total_urls").Number().IsEqual(2)
		obj.Value("total_access_count").Number().IsEqual(1)
		obj.Value("unused_urls").Number().IsEqual(1)
		obj.Value("created_last_24h").Number().IsEqual(2)
		obj.Value("top").Array().Value(0).Object().Value("code").String().IsEqual(used)
	})

	suite.Run("created between", func() {
		suite.shorten("https://example.com/window")

		now := time.Now().UTC()

		suite.e.GET("/api/v1/stats/created").
			WithQuery("from", now.Add(-time.Hour).Format(time.RFC3339)).
			WithQuery("to", now.Add(time.Hour).Format(time.RFC3339)).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("count").Number().IsEqual(1)
	})

	suite.Run("cache statistics and clear", func() {
		code := suite.shorten("https://example.com/cached")

		suite.e.GET("/api/v1/urls/{code}", code).Expect().Status(http.StatusOK)

		obj := suite.e.GET("/api/v1/cache/stats").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		obj.Value("size").Number().IsEqual(1)
		obj.Value("hits").Number().Ge(1)

		suite.e.DELETE("/api/v1/cache").
			Expect().
			Status(http.StatusNoContent)

		suite.e.GET("/api/v1/cache/stats").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("size").Number().IsEqual(0)
	})
}

func TestAPITestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	suite.Run(t, new(APITestSuite))
}
