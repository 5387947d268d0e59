package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env            string         `yaml:"env"`
	BaseURL        string         `yaml:"base_url"`
	Logger         Logger         `yaml:"logger"`
	HTTPServer     HTTPServer     `yaml:"http_server"`
	Postgres       Postgres       `yaml:"postgres"`
	Redis          Redis          `yaml:"redis"`
	Cache          Cache          `yaml:"cache"`
	ShortCode      ShortCode      `yaml:"short_code"`
	AccessRecorder AccessRecorder `yaml:"access_recorder"`
}

type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MigrationsPath  string        `yaml:"migrations_path"`
	Timeout         time.Duration `yaml:"timeout"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
	MigrationsPath:  "file://migrations",
	Timeout:         3 * time.Second,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Redis struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
}

var defaultRedis = Redis{
	Addr:         "localhost:6379",
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PoolSize:     10,
	MinIdleConns: 2,
}

// Cache configures the lookup cache and the TTLs it applies.
type Cache struct {
	DefaultTTL       time.Duration `yaml:"default_ttl"`
	PopularTTL       time.Duration `yaml:"popular_ttl"`
	PopularThreshold int64         `yaml:"popular_threshold"`
	KeyPrefix        string        `yaml:"key_prefix"`
	StatsPrefix      string        `yaml:"stats_prefix"`
	StatsFlush       time.Duration `yaml:"stats_flush_interval"`
	Timeout          time.Duration `yaml:"timeout"`
}

var defaultCache = Cache{
	DefaultTTL:       entity.DefaultCacheTTL,
	PopularTTL:       entity.DefaultPopularCacheTTL,
	PopularThreshold: entity.DefaultPopularityThreshold,
	KeyPrefix:        "tinyurl:short:",
	StatsPrefix:      "tinyurl:stats:",
	StatsFlush:       time.Second,
	Timeout:          500 * time.Millisecond,
}

func (c *Cache) TTLPolicy() entity.TTLPolicy {
	return entity.TTLPolicy{
		DefaultTTL:          c.DefaultTTL,
		PopularTTL:          c.PopularTTL,
		PopularityThreshold: c.PopularThreshold,
	}
}

type ShortCode struct {
	Length int `yaml:"length"`
}

type AccessRecorder struct {
	MaxInFlight int           `yaml:"max_in_flight"`
	Timeout     time.Duration `yaml:"timeout"`
}

var defaultAccessRecorder = AccessRecorder{
	MaxInFlight: 64,
	Timeout:     5 * time.Second,
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvStage, EnvProd:
	default:
		return fmt.Errorf("%w: unknown env %q", ErrInvalidConfig, c.Env)
	}

	switch c.Logger.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: unknown logger format %q", ErrInvalidConfig, c.Logger.Format)
	}

	if c.ShortCode.Length < entity.MinCodeLength || c.ShortCode.Length > entity.MaxCodeLength {
		return fmt.Errorf("%w: short code length must be between %d and %d",
			ErrInvalidConfig, entity.MinCodeLength, entity.MaxCodeLength)
	}

	if c.Cache.DefaultTTL <= 0 || c.Cache.PopularTTL <= 0 {
		return fmt.Errorf("%w: cache ttls must be positive", ErrInvalidConfig)
	}

	if c.Cache.PopularThreshold <= 0 {
		return fmt.Errorf("%w: popular threshold must be positive", ErrInvalidConfig)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.Logger = Logger{Level: "info", Format: LogFormatText}
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Redis = defaultRedis
	cfg.Cache = defaultCache
	cfg.ShortCode = ShortCode{Length: entity.MinCodeLength}
	cfg.AccessRecorder = defaultAccessRecorder
}
