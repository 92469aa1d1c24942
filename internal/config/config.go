package config

import (
	"os"
	"strconv"
)

type Config struct {
	ListenAddr      string
	StorageBackend  string // "sqlite" or "local"
	DBPath          string
	LegacyStorePath string
	LegacyQuota     int // bytes; <= 0 selects the default few-megabyte ceiling
	AnthropicAPIKey string
	AnthropicModel  string
	LogLevel        string
	LogFormat       string
	LogFile         string
}

func Load() *Config {
	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "sqlite"),
		DBPath:          getEnv("DB_PATH", "/data/pennyvault.db"),
		LegacyStorePath: getEnv("LEGACY_STORE_PATH", "/data/localstore.json"),
		LegacyQuota:     getEnvInt("LEGACY_STORE_QUOTA", 0),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		LogFile:         getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
