package util

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/doculens/backend/pkg/logger"
)

// LoadEnv reads a .env file into the process environment when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

// GetEnv returns the value of key, empty when unset.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvString returns the value of key, or defaultValue when unset.
func GetEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetEnvNumeric returns key parsed as a float, or defaultValue when unset or
// unparsable.
func GetEnvNumeric(key string, defaultValue int) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return float64(defaultValue)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return float64(defaultValue)
	}
	return parsed
}

// GetEnvBool returns key as a bool. Only the literals "true" and "false"
// count; anything else falls back to defaultValue.
func GetEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true":
		return true
	case "false":
		return false
	}
	return defaultValue
}
