package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey     string        `env:"GEMINI_API_KEY" env-required:"true"`
	GenerativeModel  string        `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	EmbeddingModel   string        `env:"GEMINI_EMBEDDING_MODEL" env-default:"text-embedding-004"`
	AIRequestTimeout time.Duration `env:"AI_REQUEST_TIMEOUT" env-default:"60s"`
	DatabaseURL      string        `env:"DATABASE_URL" env-default:"file:smartjuris?mode=memory&cache=shared"`
	LibraryPath      string        `env:"LIBRARY_PATH"`
	HTTPPort         string        `env:"HTTP_PORT" env-default:"8080"`
	LogLevel         string        `env:"LOG_LEVEL" env-default:"INFO"`
	JWTSecret        string        `env:"JWT_SECRET" env-required:"true"`
	SessionTTL       time.Duration `env:"SESSION_TTL" env-default:"24h"`
	DefaultLocale    string        `env:"DEFAULT_LOCALE" env-default:"fr"`
}

var AppConfig Config

// Load reads the .env file when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.DefaultLocale != "fr" && cfg.DefaultLocale != "en" {
		return Config{}, fmt.Errorf("DEFAULT_LOCALE must be fr or en, got %q", cfg.DefaultLocale)
	}
	return cfg, nil
}

// LoadConfig populates AppConfig and exits the process on invalid configuration.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppConfig = cfg
}

func (c Config) Debug() bool {
	return c.LogLevel == "DEBUG"
}
