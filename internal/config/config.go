// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Library  LibraryConfig
	Server   ServerConfig
	Matching MatchingConfig
	Scraper  ScraperConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// DataPath is the base directory for derived data (search index, cache, history).
	DataPath string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// LibraryConfig holds reading-list library configuration.
type LibraryConfig struct {
	// BooksPath is the JSON file holding all book records.
	BooksPath string
	// VocabularyPath is the YAML taxonomy of valid classification values.
	VocabularyPath string
	// HistoryPath is the directory for pre-write snapshots of the books file.
	HistoryPath string
	// HistoryLimit caps how many snapshots are retained (0 keeps everything).
	HistoryLimit int
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// MatchingConfig holds fuzzy-classification thresholds.
// Match thresholds gate whether a candidate counts as a match at all;
// validation thresholds (stricter) gate whether a record is accepted
// without a warning.
type MatchingConfig struct {
	MatchThreshold      float64 // Default per-field match threshold (default: 0.6)
	GenreThreshold      float64 // Validation threshold for genre (default: 0.7)
	SubgenreThreshold   float64 // Validation threshold for subgenre (default: 0.7)
	TropeThreshold      float64 // Validation threshold for tropes (default: 0.6)
	MaxTropeResults     int     // Cap on trope matches per record (default: 10)
	MaxSuggestions      int     // Near-miss suggestions per failed field (default: 3)
	SuggestionThreshold float64 // Minimum similarity for a suggestion (default: 0.3)
}

// ScraperConfig holds availability-checker configuration.
type ScraperConfig struct {
	// RequestsPerSecond limits outbound requests per availability source.
	RequestsPerSecond float64
	// Burst is the token-bucket burst per source.
	Burst int
	// Timeout bounds a single availability request.
	Timeout time.Duration
	// CacheTTL is how long a cached availability result stays fresh.
	CacheTTL time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for derived data")
	booksPath := flag.String("books-path", "", "Path to books JSON file")
	vocabPath := flag.String("vocabulary-path", "", "Path to classification vocabulary YAML")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Library: LibraryConfig{
			BooksPath:      getConfigValue(*booksPath, "BOOKS_PATH", ""),
			VocabularyPath: getConfigValue(*vocabPath, "VOCABULARY_PATH", ""),
			HistoryLimit:   getIntConfigValue("", "HISTORY_LIMIT", 50),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "ShelfHelp Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Matching: MatchingConfig{
			MatchThreshold:      getFloatConfigValue("", "MATCH_THRESHOLD", 0.6),
			GenreThreshold:      getFloatConfigValue("", "GENRE_THRESHOLD", 0.7),
			SubgenreThreshold:   getFloatConfigValue("", "SUBGENRE_THRESHOLD", 0.7),
			TropeThreshold:      getFloatConfigValue("", "TROPE_THRESHOLD", 0.6),
			MaxTropeResults:     getIntConfigValue("", "MAX_TROPE_RESULTS", 10),
			MaxSuggestions:      getIntConfigValue("", "MAX_SUGGESTIONS", 3),
			SuggestionThreshold: getFloatConfigValue("", "SUGGESTION_THRESHOLD", 0.3),
		},
		Scraper: ScraperConfig{
			RequestsPerSecond: getFloatConfigValue("", "SCRAPER_RPS", 0.5),
			Burst:             getIntConfigValue("", "SCRAPER_BURST", 1),
		},
	}

	// Parse server timeouts.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Scraper.Timeout, err = parseDurationValue("", "SCRAPER_TIMEOUT", "20s"); err != nil {
		return nil, fmt.Errorf("invalid scraper timeout: %w", err)
	}
	if cfg.Scraper.CacheTTL, err = parseDurationValue("", "SCRAPER_CACHE_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid scraper cache TTL: %w", err)
	}

	// Expand and validate paths.
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.App.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Library.VocabularyPath == "" {
		return errors.New("vocabulary path is required")
	}

	for name, v := range map[string]float64{
		"MATCH_THRESHOLD":      c.Matching.MatchThreshold,
		"GENRE_THRESHOLD":      c.Matching.GenreThreshold,
		"SUBGENRE_THRESHOLD":   c.Matching.SubgenreThreshold,
		"TROPE_THRESHOLD":      c.Matching.TropeThreshold,
		"SUGGESTION_THRESHOLD": c.Matching.SuggestionThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}

	return nil
}

// expandPaths expands ~ and fills path defaults relative to the data path.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.App.DataPath, err = expandPath(c.App.DataPath, filepath.Join(homeDir, "ShelfHelp", "data"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}

	c.Library.BooksPath, err = expandPath(c.Library.BooksPath, filepath.Join(c.App.DataPath, "books.json"))
	if err != nil {
		return fmt.Errorf("invalid books path: %w", err)
	}

	c.Library.VocabularyPath, err = expandPath(c.Library.VocabularyPath, filepath.Join(c.App.DataPath, "classifications.yaml"))
	if err != nil {
		return fmt.Errorf("invalid vocabulary path: %w", err)
	}

	c.Library.HistoryPath, err = expandPath(c.Library.HistoryPath, filepath.Join(c.App.DataPath, "history"))
	if err != nil {
		return fmt.Errorf("invalid history path: %w", err)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
