package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	Env             string
	LogLevel        string
	AdminID         string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TabCacheSize    int

	DBDriver      string
	PostgresUrl   string
	SQLitePath    string
	PostStore     string
	MongoURI      string
	MongoDatabase string

	StorageBackend          string
	MediaDir                string
	PublicBaseURL           string
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	S3Bucket                string
	S3Region                string
	S3PublicBaseURL         string

	MealDBBaseURL string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AdminID:         getEnv("ADMIN_ID", ""),
		JWTSecret:       getEnv("JWT_SECRET", "supersecretjwtkey"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		TabCacheSize:    getInt("TAB_CACHE_SIZE", 1024),

		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		PostgresUrl:   getEnv("POSTGRES_URL", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "recipes.db"),
		PostStore:     getEnv("POST_STORE", "sql"),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "recipes"),

		StorageBackend:          getEnv("STORAGE_BACKEND", "local"),
		MediaDir:                getEnv("MEDIA_DIR", "./media"),
		PublicBaseURL:           getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		S3Region:                getEnv("S3_REGION", "us-west-1"),
		S3PublicBaseURL:         getEnv("S3_PUBLIC_BASE_URL", ""),

		MealDBBaseURL: getEnv("MEALDB_BASE_URL", "https://www.themealdb.com/api/json/v1/1"),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
