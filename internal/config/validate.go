package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if err := c.Lookup.validate(); err != nil {
		return fmt.Errorf("lookup: %w", err)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 (got %v)", c.Cache.TTL)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be > 0 (got %d)", c.Cache.MaxEntries)
	}

	if err := c.Review.validate(); err != nil {
		return fmt.Errorf("review: %w", err)
	}

	if c.RateLimit.LookupPerMinute <= 0 {
		return fmt.Errorf("rate_limit.lookup_per_minute must be > 0 (got %d)", c.RateLimit.LookupPerMinute)
	}

	return nil
}

func (l *LookupConfig) validate() error {
	if l.AdapterTimeout <= 0 {
		return fmt.Errorf("adapter_timeout must be > 0 (got %v)", l.AdapterTimeout)
	}
	if l.CompletionTimeout <= 0 {
		return fmt.Errorf("completion_timeout must be > 0 (got %v)", l.CompletionTimeout)
	}
	if l.StoreTimeout <= 0 {
		return fmt.Errorf("store_timeout must be > 0 (got %v)", l.StoreTimeout)
	}
	return nil
}

func (r *ReviewConfig) validate() error {
	if r.DailyLimit <= 0 {
		return fmt.Errorf("daily_limit must be > 0 (got %d)", r.DailyLimit)
	}
	if r.SessionRetentionDays <= 0 {
		return fmt.Errorf("session_retention_days must be > 0 (got %d)", r.SessionRetentionDays)
	}

	loc, err := ParseTimezone(r.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	r.Location = loc

	return nil
}

// ParseTimezone resolves an IANA zone name. An empty name means UTC.
func ParseTimezone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid zone %q: %w", name, err)
	}
	return loc, nil
}

// BilingualEnabled reports whether the bilingual dictionary has credentials.
func (c *Config) BilingualEnabled() bool {
	return c.Bilingual.AppKey != "" && c.Bilingual.AppSecret != ""
}

// LLMEnabled reports whether the completion source has credentials.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}
