package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// placeholderSecret is the value shipped in example .env files
const placeholderSecret = "change-me"

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Game   GameConfig
	I18n   I18nConfig

	// EnvFile is the .env file that was loaded, empty when none was found
	EnvFile string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host              string
	Port              string
	GinMode           string
	EnableHealthCheck bool
	EnableMCP         bool
	CORSOrigins       []string
	Debug             bool
	LogLevel          string
	TokenSecret       string
	TokenTTL          int
}

// GameConfig holds game-related configuration
type GameConfig struct {
	GridSize           int
	VictoryTile        int
	RandomSeed         uint64
	MaxConcurrentGames int
	GameSessionTimeout int
}

// I18nConfig holds internationalization configuration
type I18nConfig struct {
	DefaultLanguage    string
	SupportedLanguages []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envPaths := []string{
		".env",       // Current directory
		"../.env",    // Parent directory
		"../../.env", // Two levels up (for deeper nesting)
	}

	loaded := ""
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			loaded = path
			break
		}
	}

	config := FromEnv()
	config.EnvFile = loaded

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FromEnv reads the configuration from the process environment without
// touching .env files or validating the result
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              getEnv("SERVER_HOST", "0.0.0.0"),
			Port:              getEnv("SERVER_PORT", "6060"),
			GinMode:           getEnv("GIN_MODE", "release"),
			EnableHealthCheck: getEnvBool("ENABLE_HEALTH_CHECK", true),
			EnableMCP:         getEnvBool("ENABLE_MCP", true),
			CORSOrigins:       getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:6060"}),
			Debug:             getEnvBool("DEBUG", false),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			TokenSecret:       getEnv("SESSION_TOKEN_SECRET", ""),
			TokenTTL:          getEnvInt("SESSION_TOKEN_TTL", 86400),
		},
		Game: GameConfig{
			GridSize:           getEnvInt("GRID_SIZE", 4),
			VictoryTile:        getEnvInt("VICTORY_TILE", 2048),
			RandomSeed:         getEnvUint64("RANDOM_SEED", 0),
			MaxConcurrentGames: getEnvInt("MAX_CONCURRENT_GAMES", 1000),
			GameSessionTimeout: getEnvInt("GAME_SESSION_TIMEOUT", 3600),
		},
		I18n: I18nConfig{
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
			SupportedLanguages: getEnvSlice("SUPPORTED_LANGUAGES", []string{"en", "zh-CN", "ja", "es"}),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.TokenSecret == "" || c.Server.TokenSecret == placeholderSecret {
		return fmt.Errorf("SESSION_TOKEN_SECRET must be set to a secure value")
	}

	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("session token TTL must be positive")
	}

	if c.Game.GridSize < 2 || c.Game.GridSize > 8 {
		return fmt.Errorf("grid size must be between 2 and 8, got %d", c.Game.GridSize)
	}

	if v := c.Game.VictoryTile; v < 4 || v&(v-1) != 0 {
		return fmt.Errorf("victory tile must be a power of two >= 4, got %d", v)
	}

	if c.Game.MaxConcurrentGames < 0 || c.Game.GameSessionTimeout < 0 {
		return fmt.Errorf("game limits must not be negative")
	}

	return nil
}

// GetServerAddress returns the server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// SessionTimeout returns the idle timeout for game sessions, 0 disables eviction
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Game.GameSessionTimeout) * time.Second
}

// TokenLifetime returns how long issued session tokens stay valid
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.Server.TokenTTL) * time.Second
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
