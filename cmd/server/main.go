package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arjunmehta/opticscore/internal/runs"
	"github.com/arjunmehta/opticscore/pkg/api/rest"
	"github.com/arjunmehta/opticscore/pkg/api/rest/middleware"
	"github.com/arjunmehta/opticscore/pkg/config"
	"github.com/arjunmehta/opticscore/pkg/observability"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		configFile  = flag.String("config", "", "path to configuration file (optional)")
		host        = flag.String("host", "", "server host (overrides config/env)")
		port        = flag.Int("port", 0, "server port (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("OpticsCore Server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	cfg := loadConfig(*configFile)

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		observability.Fatalf("Invalid configuration: %v", err)
	}

	logger := observability.NewDefaultLogger()
	observability.SetGlobalLogger(logger)
	metrics := observability.NewMetrics()

	logger.Info("Initializing OpticsCore server")

	manager := runs.NewManager()
	store := runs.NewStore()

	var cache *runs.ResultCache
	if cfg.Cache.Enabled {
		cache = runs.NewResultCache(cfg.Cache.Capacity, cfg.Cache.TTL)
	} else {
		cache = runs.NewResultCache(0, 0)
	}

	printStartupInfo(cfg)

	restConfig := rest.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: cfg.REST.CORSEnabled,
		CORSOrigins: cfg.REST.CORSOrigins,
		Auth: middleware.AuthConfig{
			Enabled:     cfg.REST.AuthEnabled,
			JWTSecret:   cfg.REST.JWTSigningKey,
			PublicPaths: cfg.REST.PublicPaths,
			AdminPaths:  cfg.REST.AdminPaths,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:        cfg.REST.RateLimitEnabled,
			RequestsPerSec: cfg.REST.RateLimitRPS,
			Burst:          cfg.REST.RateLimitBurst,
			PerIP:          true,
			PerOwner:       true,
			GlobalLimit:    false,
		},
	}

	server, err := rest.NewServer(restConfig, manager, store, cache, metrics, logger)
	if err != nil {
		logger.Fatalf("Failed to create REST server: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting REST API server")
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	logger.Info("Server is ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		logger.Info(fmt.Sprintf("Received signal: %v", sig))
	case err := <-errChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("Error stopping REST server: %v", err)
	}

	logger.Info("Server stopped. Goodbye!")
}

func loadConfig(configFile string) *config.Config {
	if configFile != "" {
		fmt.Printf("Warning: config file support not yet implemented, using environment variables\n")
	}
	return config.LoadFromEnv()
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║    ___  ____ _____ ___ ____ ____   ____ ___  ____ _____  ║
║   / _ \|  _ \_   _|_ _/ ___/ ___| / ___/ _ \|  _ \| ____| ║
║  | | | | |_) || |  | | |   \___ \| |  | | | | |_) |  _|   ║
║  | |_| |  __/ | |  | | |___ ___) | |__| |_| |  _ <| |___  ║
║   \___/|_|    |_| |___\____|____/ \____\___/|_| \_\_____| ║
║                                                           ║
║   Density-Based Cluster Ordering over a REST API          ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║               Server Configuration                     ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Printf("║ Max Connections:  %-35d ║\n", cfg.Server.MaxConnections)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               REST API Configuration                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.REST.AuthEnabled)
	fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.REST.CORSEnabled)
	fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.REST.RateLimitEnabled)
	if cfg.REST.RateLimitEnabled {
		fmt.Printf("║ Rate:             %-35s ║\n", fmt.Sprintf("%.1f req/s (burst: %d)", cfg.REST.RateLimitRPS, cfg.REST.RateLimitBurst))
	}
	fmt.Printf("║ API Docs:         %-35s ║\n", fmt.Sprintf("http://%s:%d/docs", cfg.Server.Host, cfg.Server.Port))
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               OPTICS Defaults                          ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Epsilon:          %-35v ║\n", cfg.Optics.Epsilon)
	fmt.Printf("║ MinPts:           %-35d ║\n", cfg.Optics.MinPts)
	fmt.Printf("║ Peak Mode:        %-35s ║\n", cfg.Optics.PeakMode)
	fmt.Printf("║ Max Points:       %-35d ║\n", cfg.Optics.MaxPoints)
	fmt.Printf("║ Max Dimensions:   %-35d ║\n", cfg.Optics.MaxDimensions)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Cache Configuration                      ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.Cache.Enabled)
	fmt.Printf("║ Capacity:         %-35d ║\n", cfg.Cache.Capacity)
	fmt.Printf("║ TTL:              %-35s ║\n", cfg.Cache.TTL)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("OpticsCore Server - OPTICS density-based cluster ordering over HTTP")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  opticscore-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -config PATH      Configuration file path (not read; settings come from the environment)")
	fmt.Println("  -host HOST        Server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        Server port (default: 8080)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  (Connection, request-timeout, TLS and OPTICS run-default settings are")
	fmt.Println("   validated and printed at startup but not applied by the server.)")
	fmt.Println("  OPTICS_HOST                Server host")
	fmt.Println("  OPTICS_PORT                Server port")
	fmt.Println("  OPTICS_MAX_CONNECTIONS     Max concurrent connections")
	fmt.Println("  OPTICS_REQUEST_TIMEOUT     Request timeout (e.g., 30s)")
	fmt.Println("  OPTICS_ENABLE_TLS          Enable TLS (true/false)")
	fmt.Println("  OPTICS_EPSILON             Default neighborhood radius")
	fmt.Println("  OPTICS_MIN_PTS             Default density threshold")
	fmt.Println("  OPTICS_PEAK_MODE           Default peak mode (topk/threshold)")
	fmt.Println("  OPTICS_TOP_K               Default top-k peak count")
	fmt.Println("  OPTICS_MAX_POINTS          Max points accepted per run")
	fmt.Println("  OPTICS_MAX_DIMENSIONS      Max dimensionality accepted per run")
	fmt.Println("  OPTICS_CACHE_ENABLED       Enable run-result cache (true/false)")
	fmt.Println("  OPTICS_CACHE_CAPACITY      Cache capacity")
	fmt.Println("  OPTICS_CACHE_TTL           Cache TTL (e.g., 5m)")
	fmt.Println("  OPTICS_JWT_SIGNING_KEY     HMAC signing key for bearer tokens")
	fmt.Println("  OPTICS_AUTH_ENABLED        Require bearer tokens (true/false)")
	fmt.Println("  OPTICS_RATE_LIMIT_RPS      Requests per second, per owner")
	fmt.Println("  OPTICS_RATE_LIMIT_BURST    Token bucket burst size")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Start with default configuration")
	fmt.Println("  opticscore-server")
	fmt.Println()
	fmt.Println("  # Start on custom port")
	fmt.Println("  opticscore-server -port 9090")
	fmt.Println()
	fmt.Println("  # Start with environment variables")
	fmt.Println("  OPTICS_PORT=9090 OPTICS_MIN_PTS=10 opticscore-server")
	fmt.Println()
}
