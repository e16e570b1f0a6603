package config

import (
	"os"
	"strconv"
	"strings"
)

// Config 全部来自环境变量（main 里先用 godotenv 加载 .env）
type Config struct {
	Port    string
	GinMode string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	SessionSecret   string
	TrustUserHeader bool // 部署在鉴权网关之后时，信任 X-User-ID
	AllowedOrigins  []string

	UploadDir     string
	MaxUploadMB   int
	CloudinaryURL string

	RateLimitPerMinute int
	ProfanityWords     []string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "release"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "kkmk"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		SessionSecret:   getEnv("SESSION_SECRET", "secret_key_change_me"),
		TrustUserHeader: getBool("TRUST_USER_HEADER", false),
		AllowedOrigins:  getList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads/forum"),
		MaxUploadMB:   getInt("MAX_UPLOAD_MB", 5),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 60),
		ProfanityWords:     getList("PROFANITY_WORDS", nil),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       os.Getenv("LOG_PATH"),
		LogMaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:   getBool("LOG_COMPRESS", false),
	}
}

// MaxUploadBytes 上传大小上限
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultVal
}

// getList 逗号分隔
func getList(key string, defaultVal []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
