package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/user/movieshelf/internal/model"
)

// Config 应用配置
type Config struct {
	Env          string
	AppSecret    string
	DatabaseURL  string
	TMDBToken    string
	TMDBBaseURL  string
	ImageBaseURL string
	JWTExpiry    time.Duration
	Port         string
	SiteName     string
	SiteUrl      string
}

// Load 加载配置
// 必需项缺失时立即返回 ConfigurationError，不把问题留到第一次网络请求
func Load() (*Config, error) {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "movieshelf")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := getEnv("DATABASE_URL", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL))

	env := getEnv("APP_ENV", "development")
	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

	var missing []string
	if os.Getenv("TMDB_TOKEN") == "" {
		missing = append(missing, "TMDB_TOKEN")
	}
	if env == "production" {
		// 生产环境不允许默认密钥和默认数据库口令
		if appSecret == "your-secret-key-change-in-production" {
			missing = append(missing, "APP_SECRET")
		}
		if os.Getenv("DATABASE_URL") == "" && os.Getenv("DB_PASSWORD") == "" {
			missing = append(missing, "DATABASE_URL")
		}
	}
	if len(missing) > 0 {
		return nil, &model.ConfigurationError{Missing: missing}
	}

	return &Config{
		Env:          env,
		AppSecret:    appSecret,
		DatabaseURL:  dbURL,
		TMDBToken:    os.Getenv("TMDB_TOKEN"),
		TMDBBaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		ImageBaseURL: getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500"),
		JWTExpiry:    time.Duration(expiryHours) * time.Hour,
		Port:         getEnv("PORT", "5005"),
		SiteName:     getEnv("SITE_NAME", "Movieshelf"),
		SiteUrl:      getEnv("SITE_URL", "http://localhost:5005"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
