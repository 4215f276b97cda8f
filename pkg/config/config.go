package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Server ServerConfig
	Optics OpticsConfig
	Cache  CacheConfig
	REST   RESTConfig
}

// ServerConfig holds REST server configuration.
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8080)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// OpticsConfig holds OPTICS run settings that the server validates and
// prints at startup. They are not applied to submitted runs: a run takes its
// parameters from its request, and its point and dimension limits from the
// submitting owner's quota.
type OpticsConfig struct {
	Epsilon          float64 // Default neighborhood radius (default: 1.0)
	MinPts           int     // Default density threshold (default: 5)
	PeakMode         string  // "topk" or "threshold" (default: "topk")
	TopK             int     // Default k for top-k peak mode (default: 5)
	PersistenceTau   float64 // Default persistence threshold (threshold mode)
	OutlierThreshold float64 // Default outlier_threshold (default: 0, meaning "none")
	MaxPoints        int     // Max dataset size accepted per run (default: 200000)
	MaxDimensions    int     // Max point dimensionality accepted per run (default: 4096)
}

// CacheConfig holds run-result cache configuration.
type CacheConfig struct {
	Enabled  bool          // Enable result caching
	Capacity int           // Max cache entries
	TTL      time.Duration // Time to live for cache entries
}

// RESTConfig holds configuration for the HTTP API's auth, CORS, and
// rate-limiting middleware.
type RESTConfig struct {
	JWTSigningKey       string        // HMAC signing key for bearer tokens
	TokenTTL            time.Duration // Issued-token lifetime
	AuthEnabled         bool          // Require a bearer token on non-public paths
	PublicPaths         []string      // Path prefixes exempt from authentication
	AdminPaths          []string      // Path prefixes requiring the "admin" role
	CORSEnabled         bool          // Emit CORS headers
	CORSOrigins         []string      // Allowed origins ("*" allows all)
	RateLimitEnabled    bool          // Enable per-owner rate limiting
	RateLimitRPS        float64       // Requests per second, per client key
	RateLimitBurst      int           // Token bucket burst size
	RateLimitCleanupTTL time.Duration // Idle-limiter eviction interval
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		Optics: OpticsConfig{
			Epsilon:          1.0,
			MinPts:           5,
			PeakMode:         "topk",
			TopK:             5,
			PersistenceTau:   0,
			OutlierThreshold: 0,
			MaxPoints:        200000,
			MaxDimensions:    4096,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
			TTL:      5 * time.Minute,
		},
		REST: RESTConfig{
			JWTSigningKey:       "",
			TokenTTL:            24 * time.Hour,
			AuthEnabled:         false,
			PublicPaths:         []string{"/v1/health", "/docs"},
			AdminPaths:          []string{"/v1/owners"},
			CORSEnabled:         true,
			CORSOrigins:         []string{"*"},
			RateLimitEnabled:    true,
			RateLimitRPS:        10,
			RateLimitBurst:      20,
			RateLimitCleanupTTL: 10 * time.Minute,
		},
	}
}

// LoadFromEnv loads configuration from environment variables, overriding
// defaults only where a variable is present.
func LoadFromEnv() *Config {
	cfg := Default()

	// Server configuration
	if host := os.Getenv("OPTICS_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("OPTICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("OPTICS_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("OPTICS_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("OPTICS_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("OPTICS_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("OPTICS_TLS_KEY")
	}

	// OPTICS defaults
	if eps := os.Getenv("OPTICS_EPSILON"); eps != "" {
		if e, err := strconv.ParseFloat(eps, 64); err == nil {
			cfg.Optics.Epsilon = e
		}
	}
	if minPts := os.Getenv("OPTICS_MIN_PTS"); minPts != "" {
		if mp, err := strconv.Atoi(minPts); err == nil {
			cfg.Optics.MinPts = mp
		}
	}
	if mode := os.Getenv("OPTICS_PEAK_MODE"); mode != "" {
		cfg.Optics.PeakMode = mode
	}
	if k := os.Getenv("OPTICS_TOP_K"); k != "" {
		if kVal, err := strconv.Atoi(k); err == nil {
			cfg.Optics.TopK = kVal
		}
	}
	if tau := os.Getenv("OPTICS_PERSISTENCE_TAU"); tau != "" {
		if t, err := strconv.ParseFloat(tau, 64); err == nil {
			cfg.Optics.PersistenceTau = t
		}
	}
	if outlier := os.Getenv("OPTICS_OUTLIER_THRESHOLD"); outlier != "" {
		if o, err := strconv.ParseFloat(outlier, 64); err == nil {
			cfg.Optics.OutlierThreshold = o
		}
	}
	if maxPoints := os.Getenv("OPTICS_MAX_POINTS"); maxPoints != "" {
		if mp, err := strconv.Atoi(maxPoints); err == nil {
			cfg.Optics.MaxPoints = mp
		}
	}
	if maxDims := os.Getenv("OPTICS_MAX_DIMENSIONS"); maxDims != "" {
		if md, err := strconv.Atoi(maxDims); err == nil {
			cfg.Optics.MaxDimensions = md
		}
	}

	// Cache configuration
	if cacheEnabled := os.Getenv("OPTICS_CACHE_ENABLED"); cacheEnabled == "false" {
		cfg.Cache.Enabled = false
	}
	if capacity := os.Getenv("OPTICS_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Cache.Capacity = c
		}
	}
	if ttl := os.Getenv("OPTICS_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = t
		}
	}

	// REST middleware configuration
	if key := os.Getenv("OPTICS_JWT_SIGNING_KEY"); key != "" {
		cfg.REST.JWTSigningKey = key
	}
	if ttl := os.Getenv("OPTICS_TOKEN_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.REST.TokenTTL = t
		}
	}
	if rps := os.Getenv("OPTICS_RATE_LIMIT_RPS"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.REST.RateLimitRPS = r
		}
	}
	if burst := os.Getenv("OPTICS_RATE_LIMIT_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			cfg.REST.RateLimitBurst = b
		}
	}
	if authEnabled := os.Getenv("OPTICS_AUTH_ENABLED"); authEnabled == "true" {
		cfg.REST.AuthEnabled = true
	}
	if corsEnabled := os.Getenv("OPTICS_CORS_ENABLED"); corsEnabled == "false" {
		cfg.REST.CORSEnabled = false
	}
	if rateLimitEnabled := os.Getenv("OPTICS_RATE_LIMIT_ENABLED"); rateLimitEnabled == "false" {
		cfg.REST.RateLimitEnabled = false
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	// OPTICS validation
	if c.Optics.Epsilon < 0 {
		return fmt.Errorf("invalid default epsilon: %v (must be >= 0)", c.Optics.Epsilon)
	}
	if c.Optics.MinPts < 1 {
		return fmt.Errorf("invalid default min_pts: %d (must be >= 1)", c.Optics.MinPts)
	}
	if c.Optics.PeakMode != "topk" && c.Optics.PeakMode != "threshold" {
		return fmt.Errorf("invalid peak mode: %q (must be \"topk\" or \"threshold\")", c.Optics.PeakMode)
	}
	if c.Optics.TopK < 1 {
		return fmt.Errorf("invalid default top_k: %d (must be >= 1)", c.Optics.TopK)
	}
	if c.Optics.MaxPoints < 1 {
		return fmt.Errorf("invalid max points: %d (must be > 0)", c.Optics.MaxPoints)
	}
	if c.Optics.MaxDimensions < 1 {
		return fmt.Errorf("invalid max dimensions: %d (must be > 0)", c.Optics.MaxDimensions)
	}

	// Cache validation
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d (must be > 0)", c.Cache.Capacity)
	}

	// REST validation
	if c.REST.RateLimitRPS <= 0 {
		return fmt.Errorf("invalid rate limit: %v (must be > 0)", c.REST.RateLimitRPS)
	}

	return nil
}

// Address returns the server address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
