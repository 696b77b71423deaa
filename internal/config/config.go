package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	UploadDir    string
	GinMode      string
	OpenAIAPIKey string
}

func Load() *Config {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "3306"),
		DBUser:       getEnv("DB_USER", "marketuser"),
		DBPassword:   getEnv("DB_PASSWORD", "marketpassword"),
		DBName:       getEnv("DB_NAME", "project_marketplace"),
		JWTSecret:    getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AccessTTLMin: getEnvInt("ACCESS_TOKEN_TTL_MIN", 30),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
