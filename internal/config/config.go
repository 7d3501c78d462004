package config

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Storage  StorageConfig
	Audit    AuditConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type LLMConfig struct {
	Provider string
	Timeout  time.Duration
}

type GeminiConfig struct {
	APIKey        string
	ModelOverride string
	BaseURL       string
	StableVersion string
	FallbackModel string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type AuditConfig struct {
	Enabled bool
}

// envFiles are read in order; values already set in the environment win.
var envFiles = []string{".env.local", ".env"}

func Load() *Config {
	loaded := 0
	for _, name := range envFiles {
		if err := loadEnvFile(name); err != nil {
			continue
		}
		loaded++
	}
	if loaded == 0 {
		log.Println("No .env.local or .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_analyzer"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			Timeout:  getEnvAsDuration("PROVIDER_TIMEOUT", "20s"),
		},
		Gemini: GeminiConfig{
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			ModelOverride: getEnv("GEMINI_MODEL", ""),
			BaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			StableVersion: getEnv("GEMINI_STABLE_VERSION", "v1"),
			FallbackModel: getEnv("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", filepath.Join(os.TempDir(), "resume-uploads")),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10<<20),
		},
		Audit: AuditConfig{
			Enabled: getEnvAsBool("AUDIT_ENABLED", false),
		},
	}
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.LLM.Provider == ProviderOpenAI {
		return c.OpenAI.APIKey
	}
	return c.Gemini.APIKey
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// loadEnvFile strips a leading UTF-8 BOM before handing the file to godotenv,
// which would otherwise glue it onto the first key.
func loadEnvFile(name string) error {
	raw, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	values, err := godotenv.UnmarshalBytes(raw)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
