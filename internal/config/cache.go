package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// Methods lists the HTTP methods to cache (e.g. GET, HEAD).  TTL defines the
// lifetime of cache entries.  KeyStrategy determines which parts of the request
// contribute to the cache key.  Prefix and MaxBodyBytes allow control over
// namespacing and the maximum size of responses to cache.
type CacheConfig struct {
	Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
	Methods      []string      `envconfig:"CACHE_METHODS" default:"GET"`
	TTL          time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	KeyStrategy  string        `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
	Prefix       string        `envconfig:"CACHE_PREFIX" default:"cache"`
	MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// Caches reports whether responses to the given method are cached.
func (c CacheConfig) Caches(method string) bool {
	method = strings.ToUpper(method)
	for _, m := range c.Methods {
		if m == method {
			return true
		}
	}
	return false
}

func (c *CacheConfig) normalize() {
	methods := c.Methods[:0]
	for _, m := range c.Methods {
		m = strings.TrimSpace(strings.ToUpper(m))
		if m != "" {
			methods = append(methods, m)
		}
	}
	c.Methods = methods
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
}
