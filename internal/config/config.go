package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by AGISEED_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("AGISEED_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// StorageDriver selects the persistence backend: postgres (default) or sqlite.
func StorageDriver() string {
	d := os.Getenv("STORAGE_DRIVER")
	if d == "" {
		return "postgres"
	}
	return d
}

// SQLitePath is the database file used by the sqlite driver.
// Defaults to "data/agiseed.db".
func SQLitePath() string {
	p := os.Getenv("SQLITE_PATH")
	if p == "" {
		return "data/agiseed.db"
	}
	return p
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// LLMProvider returns the configured completion provider.
// Defaults to "openai" if not set.
// Valid values: openai, anthropic, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// LLMRequestsPerSecond paces sequential sampling calls.
// Defaults to 0.9 (about 1.1s between calls).
func LLMRequestsPerSecond() float64 {
	return positiveFloat("LLM_REQUESTS_PER_SECOND", 0.9)
}

// SampleCount is how many completions are drawn per prompt. Defaults to 3.
func SampleCount() int {
	return positiveInt("SAMPLE_COUNT", 3)
}

// APIKey is an optional static bearer key for /v1 routes. Empty disables auth.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// LossAversionFactor scales negative experiences. Defaults to 2.0.
func LossAversionFactor() float64 {
	return positiveFloat("LOSS_AVERSION_FACTOR", 2.0)
}

// EmotionSensitivity scales the comfort, pride and shame engines. Defaults to 1.0.
func EmotionSensitivity() float64 {
	return positiveFloat("EMOTION_SENSITIVITY", 1.0)
}

// RecoveryInterval is how often elastic recovery runs. Defaults to 1h.
func RecoveryInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("RECOVERY_INTERVAL"))
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// IdentityIdleTTL is how long a loaded identity may sit unused before it is
// dropped from memory. Defaults to 30m; "0" keeps identities forever.
func IdentityIdleTTL() time.Duration {
	v := os.Getenv("IDENTITY_IDLE_TTL")
	if v == "0" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// RecoveryFactor is the step size of one recovery pass. Defaults to 0.01.
func RecoveryFactor() float64 {
	return positiveFloat("RECOVERY_FACTOR", 0.01)
}

// ToneProfilePath points at an optional YAML file overriding tone profiles.
func ToneProfilePath() string {
	return os.Getenv("TONE_PROFILE_PATH")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	return positiveFloat("RATE_LIMIT_RPS", 100)
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return positiveInt("RATE_LIMIT_BURST", 20)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func positiveFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func positiveInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
