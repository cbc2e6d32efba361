package config

import (
	"fmt"
	"os"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// ProviderDefaults are server-level fallback credentials used when a user has
// not stored their own keys. Any of them may be empty; the per-user
// configuration always wins.
type ProviderDefaults struct {
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	VoiceAppID  string
	VoiceAPIKey string
	VoiceSecret string

	MapKey          string
	MapSecurityCode string
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type Config struct {
	Repositories RepositoriesConfig
	JWT          JWTConfig
	Providers    ProviderDefaults
	ServerPort   string
	PprofPort    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "voyago"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		JWT: JWTConfig{
			Secret:   getEnvOrDefault("JWT_SECRET", ""),
			Issuer:   getEnvOrDefault("JWT_ISSUER", "voyago"),
			Audience: getEnvOrDefault("JWT_AUDIENCE", "voyago-app"),
			Expiry:   24 * time.Hour,
		},
		Providers: ProviderDefaults{
			LLMAPIKey:  getEnvOrDefault("LLM_API_KEY", ""),
			LLMBaseURL: getEnvOrDefault("LLM_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
			LLMModel:   getEnvOrDefault("LLM_MODEL", "qwen-plus"),

			VoiceAppID:  getEnvOrDefault("VOICE_APP_ID", ""),
			VoiceAPIKey: getEnvOrDefault("VOICE_API_KEY", ""),
			VoiceSecret: getEnvOrDefault("VOICE_API_SECRET", ""),

			MapKey:          getEnvOrDefault("MAP_API_KEY", ""),
			MapSecurityCode: getEnvOrDefault("MAP_SECURITY_CODE", ""),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
		PprofPort:  getEnvOrDefault("PPROF_PORT", ":6061"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
