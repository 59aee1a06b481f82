package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	OpenAIAPIKey  string
	ServerPort    string
	LogLevel      string
}

// Load reads configuration from the environment. Values from an optional
// .env file in the working directory are applied first and never override
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	driver := getEnv("DB_DRIVER", "mysql")
	return &Config{
		DBDriver:      driver,
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", defaultDBPort(driver)),
		DBUser:        getEnv("DB_USER", "todouser"),
		DBPassword:    getEnv("DB_PASSWORD", "todopassword"),
		DBName:        getEnv("DB_NAME", "todolist"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// IsProduction reports whether the server runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func defaultDBPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "3306"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
