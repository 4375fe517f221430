// Package config loads the central server's own configuration from
// environment variables (with .env support), the server-side analogue of
// the teacher's cmd/tarsy/main.go + pkg/database.LoadConfigFromEnv idiom.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every environment variable spec.md §6 names for the
// central server.
type Config struct {
	DataBaseDir        string   `validate:"required"`
	ChromaHost         string   `validate:"required"`
	ChromaPort         int      `validate:"required,min=1,max=65535"`
	ServerHost         string   `validate:"required"`
	ServerPort         int      `validate:"required,min=1,max=65535"`
	APIKeysPath        string   `validate:"required"`
	SecurityPolicyPath string   `validate:"required"`
	Instances          []string `validate:"required,min=1"`
	PagesDir           string   `validate:"required"`
	LogDir             string   `validate:"required"`
}

var validate = validator.New()

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// Load reads .env from envPath (if present — a missing file is not fatal,
// matching cmd/tarsy/main.go's tolerant godotenv.Load), then builds Config
// from the environment with production-leaning defaults, and validates it.
func Load(envPath string) (Config, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	chromaPort, err := strconv.Atoi(getEnv("CHROMA_PORT", "8000"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CHROMA_PORT: %w", err)
	}
	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	var instances []string
	for _, name := range strings.Split(getEnv("INSTANCES", ""), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			instances = append(instances, name)
		}
	}

	cfg := Config{
		DataBaseDir:        getEnv("DATA_BASE_DIR", "./data"),
		ChromaHost:         getEnv("CHROMA_HOST", "localhost"),
		ChromaPort:         chromaPort,
		ServerHost:         getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:         serverPort,
		APIKeysPath:        getEnv("API_KEYS_PATH", "./config/api_keys.txt"),
		SecurityPolicyPath: getEnv("SECURITY_POLICY_PATH", "./config/security_policy.txt"),
		Instances:          instances,
		PagesDir:           getEnv("PAGES_DIR", "./data/pages"),
		LogDir:             getEnv("LOG_DIR", "./data/logs"),
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ChromaBaseURL is the http(s) origin pkg/vectorindex.NewHTTPClient dials
// for every instance's collection.
func (c Config) ChromaBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.ChromaHost, c.ChromaPort)
}

// ListenAddr is the address/port pair passed to gin's router.Run.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
