package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Intake   IntakeConfig
	Assembly AssemblyConfig
	LLM      LLMConfig
	Tuning   TuningConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration. An empty host disables the
// refinement cache and the in-memory store is used instead.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds object-storage (archive) configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// IntakeConfig holds the intake watcher configuration
type IntakeConfig struct {
	Root          string
	SettleSeconds int
	WatchEnabled  bool
}

// AssemblyConfig holds AssemblyAI configuration
type AssemblyConfig struct {
	APIKey       string
	LanguageCode string
}

// LLMConfig holds text-generation provider configuration
type LLMConfig struct {
	Provider    string // "groq" or "gemini"
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string
	GeminiKeys  []string
	GeminiModel string
	LexiconPath string // optional YAML override for the researcher phrase lexicon
}

// TuningConfig holds pipeline tuning knobs. Parsed with envconfig under the
// PIPELINE prefix so deployments can override individual values.
type TuningConfig struct {
	StageConcurrency    int     `envconfig:"STAGE_CONCURRENCY" default:"3"`
	RefinementWindowSec float64 `envconfig:"REFINEMENT_WINDOW_SEC" default:"300"`
	QuestionRatioMin    float64 `envconfig:"QUESTION_RATIO_MIN" default:"0.35"`
	PhraseHitsMin       int     `envconfig:"PHRASE_HITS_MIN" default:"2"`
	LLMTimeoutSec       int     `envconfig:"LLM_TIMEOUT_SEC" default:"60"`
	CacheTTLMin         int     `envconfig:"CACHE_TTL_MIN" default:"1440"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "interview_insights"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", ""),
			BucketName:      getEnv("STORAGE_BUCKET", "study-archive"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Intake: IntakeConfig{
			Root:          getEnv("INTAKE_ROOT", "data/intake"),
			SettleSeconds: getEnvAsInt("INTAKE_SETTLE_SECONDS", 30),
			WatchEnabled:  getEnvAsBool("INTAKE_WATCH", true),
		},
		Assembly: AssemblyConfig{
			APIKey:       getEnv("ASSEMBLYAI_API_KEY", ""),
			LanguageCode: getEnv("ASSEMBLYAI_LANGUAGE", "en"),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "groq"),
			GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
			GroqBaseURL: getEnv("GROQ_API_URL", "https://api.groq.com"),
			GroqModel:   getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
			GeminiKeys:  getEnvAsSlice("GEMINI_API_KEYS"),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			LexiconPath: getEnv("RESEARCHER_LEXICON_PATH", ""),
		},
	}

	if err := envconfig.Process("PIPELINE", &config.Tuning); err != nil {
		return nil, fmt.Errorf("failed to parse tuning config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks required values and rejects obviously broken tuning.
func (c *Config) validate() error {
	if c.Intake.Root == "" {
		return fmt.Errorf("INTAKE_ROOT is required")
	}
	if c.Tuning.StageConcurrency < 1 {
		return fmt.Errorf("PIPELINE_STAGE_CONCURRENCY must be >= 1")
	}
	if c.Tuning.RefinementWindowSec <= 0 {
		return fmt.Errorf("PIPELINE_REFINEMENT_WINDOW_SEC must be > 0")
	}
	switch c.LLM.Provider {
	case "groq", "gemini", "":
	default:
		return fmt.Errorf("LLM_PROVIDER must be groq or gemini, got %q", c.LLM.Provider)
	}
	return nil
}

// GetDatabaseDSN builds the Postgres DSN from the database config.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: invalid integer for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s, using default %v", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsSlice gets a comma-separated environment variable as a string slice
func getEnvAsSlice(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(valueStr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
