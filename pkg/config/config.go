package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// Letterboxd lists
	LetterboxdUser string `mapstructure:"LETTERBOXD_USER"`
	BadList        string `mapstructure:"LISTA_RUINS"`
	GoodList       string `mapstructure:"LISTA_BONS"`
	BlankList      string `mapstructure:"LISTA_FESTIM"`
	ListBaseURL    string `mapstructure:"LIST_BASE_URL"`
	PosterBaseURL  string `mapstructure:"POSTER_BASE_URL"`

	// Fetching
	FetchMode      string        `mapstructure:"FETCH_MODE"` // "http" or "browser"
	FetchTimeout   time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchRate      float64       `mapstructure:"FETCH_RATE"`
	FetchBurst     int           `mapstructure:"FETCH_BURST"`
	UserAgents     []string      `mapstructure:"-"` // USER_AGENTS, "|" separated
	AcceptLanguage string        `mapstructure:"ACCEPT_LANGUAGE"`
	ProxyURLs      []string      `mapstructure:"PROXY_URLS"`

	// Cache
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	SnapshotBackend string        `mapstructure:"SNAPSHOT_BACKEND"` // "memory", "redis" or "postgres"

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var defaults = map[string]any{
	"SERVER_PORT":      "8080",
	"LOG_LEVEL":        "info",
	"LETTERBOXD_USER":  "",
	"LISTA_RUINS":      "",
	"LISTA_BONS":       "",
	"LISTA_FESTIM":     "bala-de-festim",
	"LIST_BASE_URL":    "https://letterboxd.com",
	"POSTER_BASE_URL":  "https://a.ltrbxd.com/resized/film-poster",
	"FETCH_MODE":       "http",
	"FETCH_TIMEOUT":    "50s",
	"FETCH_RATE":       1.0,
	"FETCH_BURST":      2,
	"USER_AGENTS":      defaultUserAgent,
	"ACCEPT_LANGUAGE":  "pt-BR,pt;q=0.9,en;q=0.8",
	"PROXY_URLS":       "",
	"CACHE_TTL":        "1h",
	"SNAPSHOT_BACKEND": "memory",
	"REDIS_ADDR":       "localhost:6379",
	"REDIS_PASSWORD":   "",
	"REDIS_DB":         0,
	"POSTGRES_URL":     "",
}

const defaultEnvFile = ".env"

// Load reads configuration from an env file and environment variables.
// An empty path means the optional ".env"; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Production is configured purely through the environment, so only the default file may be absent.
		if explicit || !isNotFound(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	// User agents contain commas, so they get their own separator.
	cfg.UserAgents = compact(strings.Split(v.GetString("USER_AGENTS"), "|"))
	cfg.ProxyURLs = compact(cfg.ProxyURLs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required keys and enumerations.
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"LETTERBOXD_USER": c.LetterboxdUser,
		"LISTA_RUINS":     c.BadList,
		"LISTA_BONS":      c.GoodList,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	switch c.FetchMode {
	case "http", "browser":
	default:
		errs = append(errs, fmt.Errorf("FETCH_MODE must be http or browser, got %q", c.FetchMode))
	}
	switch c.SnapshotBackend {
	case "memory", "redis":
	case "postgres":
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required for the postgres snapshot backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("SNAPSHOT_BACKEND must be memory, redis or postgres, got %q", c.SnapshotBackend))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be positive"))
	}
	if len(c.UserAgents) == 0 {
		errs = append(errs, errors.New("USER_AGENTS must not be empty"))
	}
	if c.FetchRate <= 0 || c.FetchBurst <= 0 {
		errs = append(errs, errors.New("FETCH_RATE and FETCH_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// BlankListURL is the public URL of the "blank rounds" list.
func (c *Config) BlankListURL() string {
	return fmt.Sprintf("%s/%s/list/%s/", strings.TrimRight(c.ListBaseURL, "/"), c.LetterboxdUser, c.BlankList)
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
