package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Cache     CacheConfig     `yaml:"cache"`
	Bilingual BilingualConfig `yaml:"bilingual"`
	FreeDict  FreeDictConfig  `yaml:"freedict"`
	LLM       LLMConfig       `yaml:"llm"`
	Review    ReviewConfig    `yaml:"review"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// LookupConfig holds word lookup orchestration settings.
type LookupConfig struct {
	AdapterTimeout    time.Duration `yaml:"adapter_timeout"    env:"LOOKUP_ADAPTER_TIMEOUT"    env-default:"8s"`
	CompletionTimeout time.Duration `yaml:"completion_timeout" env:"LOOKUP_COMPLETION_TIMEOUT" env-default:"20s"`
	StoreTimeout      time.Duration `yaml:"store_timeout"      env:"LOOKUP_STORE_TIMEOUT"      env-default:"3s"`
	Coalesce          bool          `yaml:"coalesce"           env:"LOOKUP_COALESCE"           env-default:"false"`
}

// CacheConfig holds in-process word cache settings.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"         env:"CACHE_TTL"         env-default:"168h"`
	MaxEntries int           `yaml:"max_entries" env:"CACHE_MAX_ENTRIES" env-default:"10000"`
}

// BilingualConfig holds credentials for the bilingual dictionary API.
// An empty AppKey or AppSecret disables the source (every call fails).
type BilingualConfig struct {
	BaseURL   string `yaml:"base_url"   env:"BILINGUAL_BASE_URL"   env-default:"https://openapi.youdao.com/api"`
	AppKey    string `yaml:"app_key"    env:"BILINGUAL_APP_KEY"`
	AppSecret string `yaml:"app_secret" env:"BILINGUAL_APP_SECRET"`
	From      string `yaml:"from"       env:"BILINGUAL_FROM"       env-default:"en"`
	To        string `yaml:"to"         env:"BILINGUAL_TO"         env-default:"zh-CHS"`
}

// FreeDictConfig holds open dictionary settings.
type FreeDictConfig struct {
	BaseURL string `yaml:"base_url" env:"FREEDICT_BASE_URL" env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
}

// LLMConfig holds generative completion settings.
// An empty APIKey disables the source (every call fails).
type LLMConfig struct {
	APIKey         string `yaml:"api_key"         env:"LLM_API_KEY"`
	BaseURL        string `yaml:"base_url"        env:"LLM_BASE_URL"`
	Model          string `yaml:"model"           env:"LLM_MODEL"           env-default:"claude-sonnet-4-5"`
	MaxTokens      int64  `yaml:"max_tokens"      env:"LLM_MAX_TOKENS"      env-default:"1024"`
	TargetLanguage string `yaml:"target_language" env:"LLM_TARGET_LANGUAGE" env-default:"Simplified Chinese"`
}

// ReviewConfig holds spaced-repetition settings.
type ReviewConfig struct {
	Timezone             string `yaml:"timezone"               env:"REVIEW_TIMEZONE"                env-default:"UTC"`
	DailyLimit           int    `yaml:"daily_limit"            env:"REVIEW_DAILY_LIMIT"             env-default:"20"`
	SessionRetentionDays int    `yaml:"session_retention_days" env:"REVIEW_SESSION_RETENTION_DAYS"  env-default:"30"`

	// Location is parsed from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// RateLimitConfig holds per-IP request limits for lookup endpoints.
type RateLimitConfig struct {
	LookupPerMinute int           `yaml:"lookup_per_minute" env:"RATE_LIMIT_LOOKUP_PER_MINUTE" env-default:"60"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}
