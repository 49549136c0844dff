package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Capacity    int
	ChunkSize   int
	Mode        string
	HeaderWidth int
	Duration    time.Duration
	LogLevel    string
	LogFormat   string
	MetricsPort int
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.IntVar(&cfg.Capacity, "capacity",
		getEnvInt("KFIFO_CAPACITY", 4096),
		"Ring capacity in elements, rounded up to a power of two (env: KFIFO_CAPACITY)")

	flag.IntVar(&cfg.ChunkSize, "chunk-size",
		getEnvInt("KFIFO_CHUNK_SIZE", 256),
		"Largest transfer per operation in elements (env: KFIFO_CHUNK_SIZE)")

	flag.StringVar(&cfg.Mode, "mode",
		getEnv("KFIFO_MODE", "element"),
		"Stream mode: element, record (env: KFIFO_MODE)")

	flag.IntVar(&cfg.HeaderWidth, "header-width",
		getEnvInt("KFIFO_HEADER_WIDTH", 1),
		"Record length header width in bytes: 1, 2 (env: KFIFO_HEADER_WIDTH)")

	flag.DurationVar(&cfg.Duration, "duration",
		getEnvDuration("KFIFO_DURATION", 10*time.Second),
		"How long to stream (env: KFIFO_DURATION)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("KFIFO_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: KFIFO_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("KFIFO_LOG_FORMAT", "json"),
		"Log format: json, text (env: KFIFO_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("KFIFO_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: KFIFO_METRICS_PORT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.Capacity < 2 {
		return fmt.Errorf("invalid capacity: %d", cfg.Capacity)
	}

	if cfg.ChunkSize < 1 {
		return fmt.Errorf("invalid chunk size: %d", cfg.ChunkSize)
	}

	validModes := []string{"element", "record"}
	if !contains(validModes, cfg.Mode) {
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	if cfg.HeaderWidth != 1 && cfg.HeaderWidth != 2 {
		return fmt.Errorf("invalid header width: %d", cfg.HeaderWidth)
	}

	if cfg.Duration <= 0 {
		return fmt.Errorf("invalid duration: %s", cfg.Duration)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	// Validate metrics port
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - fifo stream load generator

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Stream bytes through a 64Ki ring for 30 seconds
  %s --capacity=65536 --chunk-size=512 --duration=30s

  # Stream variable-length records with 2-byte headers
  %s --mode=record --header-width=2

  # Expose Prometheus metrics while streaming
  %s --metrics-port=9090 --duration=5m

  # Run with environment variables
  export KFIFO_MODE=record
  export KFIFO_LOG_LEVEL=debug
  %s

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
