package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route. A Path ending in "/" matches by prefix; an empty Method matches any method.
type Rule struct {
	Path   string
	Method string
	Limit  int           // Requests per window; zero or less means unlimited
	Window time.Duration
	Burst  int // Bucket capacity; defaults to Limit
}

func (r Rule) key() string {
	return r.Method + " " + r.Path
}

func (r Rule) burst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

func (r Rule) matches(path, method string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if strings.HasSuffix(r.Path, "/") {
		return strings.HasPrefix(path, r.Path)
	}
	return r.Path == path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Rules           []Rule
}

// Match returns the first exact rule for the request, then the first prefix rule, then the default.
func (c *Config) Match(path, method string) Rule {
	for _, r := range c.Rules {
		if !strings.HasSuffix(r.Path, "/") && r.matches(path, method) {
			return r
		}
	}
	for _, r := range c.Rules {
		if strings.HasSuffix(r.Path, "/") && r.matches(path, method) {
			return r
		}
	}
	return Rule{Path: "*", Limit: c.DefaultLimit, Window: c.DefaultWindow}
}

// DefaultRules limits completion and analysis endpoints more tightly than reads.
func DefaultRules() []Rule {
	return []Rule{
		// unlimited
		{Path: "/health", Method: "GET", Limit: 0},

		// calls a hosted LLM
		{Path: "/chat/messages", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// CPU-bound document extraction
		{Path: "/analyze", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/analyze/text", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/report", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// password checks
		{Path: "/sessions", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
	}
}

// DefaultConfig returns an enabled configuration with the default rules.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	var err error
	if cfg.Enabled, err = envBool("RATE_LIMIT_ENABLED", cfg.Enabled); err != nil {
		return nil, err
	}
	if cfg.DefaultLimit, err = envInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit); err != nil {
		return nil, err
	}
	if cfg.DefaultWindow, err = envDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow); err != nil {
		return nil, err
	}
	if cfg.CleanupInterval, err = envDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval); err != nil {
		return nil, err
	}
	cfg.Whitelist = parseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST"))

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %v", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
