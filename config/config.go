package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Env  string `yaml:"env"`
	HTTP struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		RateLimit    int           `yaml:"rate_limit"`
		RateWindow   time.Duration `yaml:"rate_window"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Model struct {
		Type  string `yaml:"type"`
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
		// Remote scoring service, used when Type is "remote".
		URL          string        `yaml:"url"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxRetries   int           `yaml:"max_retries"`
		BreakerFails int           `yaml:"breaker_fails"`
		BreakerOpen  time.Duration `yaml:"breaker_open"`
	} `yaml:"model"`
	Cache struct {
		Backend   string        `yaml:"backend"` // none, lru, redis
		Size      int           `yaml:"size"`
		RedisAddr string        `yaml:"redis_addr"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Assets struct {
		Dir         string `yaml:"dir"`
		Dataset     string `yaml:"dataset"`
		Image       string `yaml:"image"`
		SuccessGif  string `yaml:"success_gif"`
		FailureGif  string `yaml:"failure_gif"`
		PreviewRows int    `yaml:"preview_rows"`
		ChartRows   int    `yaml:"chart_rows"`
	} `yaml:"assets"`
	Validation struct {
		Strict bool `yaml:"strict"`
	} `yaml:"validation"`
	Loan struct {
		InterestRate float64 `yaml:"interest_rate"`
	} `yaml:"loan"`
	Advisor struct {
		APIKey  string        `yaml:"api_key"`
		APIURL  string        `yaml:"api_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"advisor"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.Env = "local"
	c.HTTP.Port = 8080
	c.HTTP.ReadTimeout = 15 * time.Second
	c.HTTP.WriteTimeout = 15 * time.Second
	c.HTTP.RateLimit = 30
	c.HTTP.RateWindow = time.Minute
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 50
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	c.Model.Type = "random_forest"
	c.Model.Path = "models/rf.json"
	c.Model.Timeout = 5 * time.Second
	c.Model.MaxRetries = 2
	c.Model.BreakerFails = 5
	c.Model.BreakerOpen = 30 * time.Second
	c.Cache.Backend = "lru"
	c.Cache.Size = 1024
	c.Cache.RedisAddr = "localhost:6379"
	c.Cache.TTL = time.Hour
	c.Database.Path = "predictions.db"
	c.Assets.Dir = "assets"
	c.Assets.Dataset = "test.csv"
	c.Assets.Image = "loan_image.jpg"
	c.Assets.SuccessGif = "6m-rain.gif"
	c.Assets.FailureGif = "green-cola-no.gif"
	c.Assets.PreviewRows = 5
	c.Assets.ChartRows = 20
	c.Loan.InterestRate = 8.5
	c.Advisor.APIURL = "https://api.openai.com/v1/chat/completions"
	c.Advisor.Model = "gpt-4o-mini"
	c.Advisor.Timeout = 30 * time.Second
	return c
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("open config: %w", err)
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
				return cfg, fmt.Errorf("decode config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.validate()
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}

func (c Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTP.Port)
	}
	switch c.Cache.Backend {
	case "none", "lru", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Model.Type == "remote" && c.Model.URL == "" {
		return errors.New("model.url is required for a remote model")
	}
	return nil
}

func applyEnv(c *Config) {
	c.Env = getEnv("APP_ENV", c.Env)
	c.HTTP.Port = getEnvInt("PORT", c.HTTP.Port)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Model.Type = getEnv("MODEL_TYPE", c.Model.Type)
	c.Model.Path = getEnv("MODEL_PATH", c.Model.Path)
	c.Model.URL = getEnv("MODEL_URL", c.Model.URL)
	c.Model.Watch = getEnvBool("MODEL_WATCH", c.Model.Watch)
	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.TTL = getEnvDuration("CACHE_TTL", c.Cache.TTL)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Assets.Dir = getEnv("ASSETS_DIR", c.Assets.Dir)
	c.Validation.Strict = getEnvBool("STRICT_VALIDATION", c.Validation.Strict)
	c.Advisor.APIKey = getEnv("OPENAI_API_KEY", c.Advisor.APIKey)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		n := strings.ToLower(strings.TrimSpace(v))
		return n == "1" || n == "true" || n == "yes"
	}
	return fallback
}
