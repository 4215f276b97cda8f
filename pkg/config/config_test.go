package config

import (
	"os"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Test Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 1000 {
		t.Errorf("Expected max connections 1000, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("Expected request timeout 30s, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.EnableTLS {
		t.Error("Expected TLS disabled by default")
	}

	// Test Optics defaults
	if cfg.Optics.Epsilon != 1.0 {
		t.Errorf("Expected Epsilon=1.0, got %v", cfg.Optics.Epsilon)
	}
	if cfg.Optics.MinPts != 5 {
		t.Errorf("Expected MinPts=5, got %d", cfg.Optics.MinPts)
	}
	if cfg.Optics.PeakMode != "topk" {
		t.Errorf("Expected PeakMode=topk, got %s", cfg.Optics.PeakMode)
	}
	if cfg.Optics.TopK != 5 {
		t.Errorf("Expected TopK=5, got %d", cfg.Optics.TopK)
	}
	if cfg.Optics.MaxPoints != 200000 {
		t.Errorf("Expected MaxPoints=200000, got %d", cfg.Optics.MaxPoints)
	}
	if cfg.Optics.MaxDimensions != 4096 {
		t.Errorf("Expected MaxDimensions=4096, got %d", cfg.Optics.MaxDimensions)
	}

	// Test Cache defaults
	if !cfg.Cache.Enabled {
		t.Error("Expected cache enabled by default")
	}
	if cfg.Cache.Capacity != 1000 {
		t.Errorf("Expected cache capacity 1000, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Expected cache TTL 5m, got %v", cfg.Cache.TTL)
	}

	// Test REST defaults
	if cfg.REST.RateLimitRPS != 10 {
		t.Errorf("Expected RateLimitRPS=10, got %v", cfg.REST.RateLimitRPS)
	}
	if cfg.REST.RateLimitBurst != 20 {
		t.Errorf("Expected RateLimitBurst=20, got %d", cfg.REST.RateLimitBurst)
	}
	if cfg.REST.TokenTTL != 24*time.Hour {
		t.Errorf("Expected TokenTTL=24h, got %v", cfg.REST.TokenTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	envVars := []string{
		"OPTICS_HOST", "OPTICS_PORT", "OPTICS_MAX_CONNECTIONS",
		"OPTICS_REQUEST_TIMEOUT", "OPTICS_ENABLE_TLS",
		"OPTICS_EPSILON", "OPTICS_MIN_PTS", "OPTICS_PEAK_MODE", "OPTICS_TOP_K",
		"OPTICS_CACHE_ENABLED", "OPTICS_CACHE_CAPACITY", "OPTICS_CACHE_TTL",
		"OPTICS_RATE_LIMIT_RPS", "OPTICS_RATE_LIMIT_BURST",
	}

	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	os.Setenv("OPTICS_HOST", "127.0.0.1")
	os.Setenv("OPTICS_PORT", "9090")
	os.Setenv("OPTICS_MAX_CONNECTIONS", "5000")
	os.Setenv("OPTICS_REQUEST_TIMEOUT", "60s")
	os.Setenv("OPTICS_ENABLE_TLS", "true")

	os.Setenv("OPTICS_EPSILON", "2.5")
	os.Setenv("OPTICS_MIN_PTS", "10")
	os.Setenv("OPTICS_PEAK_MODE", "threshold")
	os.Setenv("OPTICS_TOP_K", "8")

	os.Setenv("OPTICS_CACHE_ENABLED", "false")
	os.Setenv("OPTICS_CACHE_CAPACITY", "5000")
	os.Setenv("OPTICS_CACHE_TTL", "10m")

	os.Setenv("OPTICS_RATE_LIMIT_RPS", "50")
	os.Setenv("OPTICS_RATE_LIMIT_BURST", "100")

	cfg := LoadFromEnv()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 5000 {
		t.Errorf("Expected max connections 5000, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout != 60*time.Second {
		t.Errorf("Expected request timeout 60s, got %v", cfg.Server.RequestTimeout)
	}
	if !cfg.Server.EnableTLS {
		t.Error("Expected TLS enabled")
	}

	if cfg.Optics.Epsilon != 2.5 {
		t.Errorf("Expected Epsilon=2.5, got %v", cfg.Optics.Epsilon)
	}
	if cfg.Optics.MinPts != 10 {
		t.Errorf("Expected MinPts=10, got %d", cfg.Optics.MinPts)
	}
	if cfg.Optics.PeakMode != "threshold" {
		t.Errorf("Expected PeakMode=threshold, got %s", cfg.Optics.PeakMode)
	}
	if cfg.Optics.TopK != 8 {
		t.Errorf("Expected TopK=8, got %d", cfg.Optics.TopK)
	}

	if cfg.Cache.Enabled {
		t.Error("Expected cache disabled")
	}
	if cfg.Cache.Capacity != 5000 {
		t.Errorf("Expected cache capacity 5000, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Expected cache TTL 10m, got %v", cfg.Cache.TTL)
	}

	if cfg.REST.RateLimitRPS != 50 {
		t.Errorf("Expected RateLimitRPS=50, got %v", cfg.REST.RateLimitRPS)
	}
	if cfg.REST.RateLimitBurst != 100 {
		t.Errorf("Expected RateLimitBurst=100, got %d", cfg.REST.RateLimitBurst)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	originalPort := os.Getenv("OPTICS_PORT")
	defer func() {
		if originalPort == "" {
			os.Unsetenv("OPTICS_PORT")
		} else {
			os.Setenv("OPTICS_PORT", originalPort)
		}
	}()

	os.Setenv("OPTICS_PORT", "invalid")
	cfg := LoadFromEnv()

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080 for invalid value, got %d", cfg.Server.Port)
	}
}

func TestLoadFromEnv_DefaultsWhenNotSet(t *testing.T) {
	envVars := []string{
		"OPTICS_HOST", "OPTICS_PORT", "OPTICS_MAX_CONNECTIONS",
		"OPTICS_REQUEST_TIMEOUT", "OPTICS_ENABLE_TLS",
		"OPTICS_EPSILON", "OPTICS_MIN_PTS", "OPTICS_PEAK_MODE", "OPTICS_TOP_K",
		"OPTICS_CACHE_ENABLED", "OPTICS_CACHE_CAPACITY", "OPTICS_CACHE_TTL",
	}

	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}()

	cfg := LoadFromEnv()
	defaults := Default()

	if cfg.Server.Host != defaults.Server.Host {
		t.Errorf("Expected default host, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != defaults.Server.Port {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Optics.Epsilon != defaults.Optics.Epsilon {
		t.Errorf("Expected default epsilon, got %v", cfg.Optics.Epsilon)
	}
	if cfg.Cache.Enabled != defaults.Cache.Enabled {
		t.Errorf("Expected default cache enabled, got %v", cfg.Cache.Enabled)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "Valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "Invalid port (too low)",
			config: &Config{
				Server: ServerConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "Invalid port (too high)",
			config: &Config{
				Server: ServerConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "Invalid min_pts",
			config: &Config{
				Server: ServerConfig{Port: 8080},
				Optics: OpticsConfig{MinPts: 0, PeakMode: "topk", TopK: 1, MaxPoints: 1, MaxDimensions: 1},
				REST:   RESTConfig{RateLimitRPS: 1},
			},
			wantErr: true,
		},
		{
			name: "Invalid peak mode",
			config: &Config{
				Server: ServerConfig{Port: 8080},
				Optics: OpticsConfig{MinPts: 1, PeakMode: "bogus", TopK: 1, MaxPoints: 1, MaxDimensions: 1},
				REST:   RESTConfig{RateLimitRPS: 1},
			},
			wantErr: true,
		},
		{
			name: "Invalid max dimensions",
			config: &Config{
				Server: ServerConfig{Port: 8080},
				Optics: OpticsConfig{MinPts: 1, PeakMode: "topk", TopK: 1, MaxPoints: 1, MaxDimensions: 0},
				REST:   RESTConfig{RateLimitRPS: 1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{
		Host: "localhost",
		Port: 8080,
	}

	addr := cfg.Address()
	expected := "localhost:8080"

	if addr != expected {
		t.Errorf("Expected address %s, got %s", expected, addr)
	}

	defaultCfg := Default()
	addr = defaultCfg.Server.Address()
	expected = "0.0.0.0:8080"

	if addr != expected {
		t.Errorf("Expected default address %s, got %s", expected, addr)
	}
}
