package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// ATZ CRM connection
	ATZEnable   bool
	ATZBaseURL  string
	ATZAPIToken string
	ATZTimeout  time.Duration

	// Owner assignment
	ATZOwnerID  int               // default owner id, 0 means unset
	ATZOwnerMap map[string]string // internal extension -> owner id

	// Call log persistence
	ATZCustomFieldKey  string
	ATZActivityPath    string // preferred activity path; empty selects the custom-field strategy
	ATZListUsersOnBoot bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ATZEnable:   getEnvAsBool("ATZ_ENABLE", true),
		ATZBaseURL:  getEnv("ATZ_BASE_URL", "https://api.atzcrm.com/v1"),
		ATZAPIToken: getEnv("ATZ_API_TOKEN", getEnv("ATZ_TOKEN", "")),
		ATZTimeout:  getEnvAsDuration("ATZ_TIMEOUT", 15*time.Second),

		ATZOwnerID:  getEnvAsInt("ATZ_OWNER_ID", 0),
		ATZOwnerMap: getEnvAsStringMap("ATZ_OWNER_MAP"),

		ATZCustomFieldKey:  strings.TrimSpace(getEnv("ATZ_CUSTOM_FIELD_KEY", "Zadarma Call Log")),
		ATZActivityPath:    strings.TrimSpace(getEnv("ATZ_ACTIVITY_PATH", "")),
		ATZListUsersOnBoot: getEnvAsBool("ATZ_LIST_USERS_ON_BOOT", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "1" {
		return true
	}
	if valueStr == "0" {
		return false
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsStringMap parses a JSON object of strings. Malformed JSON yields an
// empty map rather than an error; a bad owner map must not stop the relay.
func getEnvAsStringMap(key string) map[string]string {
	out := map[string]string{}
	raw := getEnv(key, "")
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]string{}
	}
	return out
}
