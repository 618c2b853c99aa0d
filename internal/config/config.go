package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	RedisURL    string
	JWTSecret   string
	AccessTTL   time.Duration
	CORSOrigin  string
	AppVersion  string
	EmailDomain string
	// Ollama assistant
	OllamaURL   string
	OllamaModel string
	// Meilisearch (optional)
	MeiliURL       string
	MeiliMasterKey string
	// MinIO object storage (optional, empty endpoint keeps file bodies inline)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() Config {
	// Best-effort: a missing .env just means plain environment variables.
	_ = godotenv.Load()

	return Config{
		Addr:        getenv("CAMPUS_ADDR", ":8989"),
		RedisURL:    getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:   getenv("CAMPUS_JWT_SECRET", "campusmate-dev-secret"),
		AccessTTL:   time.Duration(getenvInt("CAMPUS_ACCESS_TTL_SECONDS", 86400)) * time.Second,
		CORSOrigin:  getenv("CAMPUS_CORS_ORIGIN", "*"),
		AppVersion:  getenv("CAMPUS_APP_VERSION", "1.0"),
		EmailDomain: getenv("CAMPUS_EMAIL_DOMAIN", "@bmsce.ac.in"),

		OllamaURL:   getenv("OLLAMA_URL", "http://127.0.0.1:11434/api/chat"),
		OllamaModel: getenv("OLLAMA_MODEL", "deepseek-r1:7b"),

		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "campus-permissions"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
