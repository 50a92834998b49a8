package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	// URL, when set, is used as the DSN instead of the individual fields.
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	ConnectAttempts    int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds settings for AWS S3 or any S3 endpoint reachable through the AWS SDK.
// Empty credentials fall back to the SDK default chain (env, shared config, IAM role).
type S3Config struct {
	Region       string
	Bucket       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// LocalConfig holds settings for the filesystem-backed store used in development.
type LocalConfig struct {
	Path          string
	PublicBaseURL string
}

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	Driver string // minio, s3 or local
	MinIO  MinIOConfig
	S3     S3Config
	Local  LocalConfig
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost          string
	SwaggerHost      string
	Port             string
	Timezone         string
	BodyLimitMB      int
	DefaultLanguage  string
	OperationTimeout time.Duration
	PresignExpiry    time.Duration
	CORSAllowOrigins string
	AuthTokens       []string
	Database         DatabaseConfig
	Storage          StorageConfig
	Log              LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:          getEnv("APP_HOST", "localhost:8080"),
		SwaggerHost:      getEnv("SWAGGER_HOST", ""),
		Port:             getEnv("PORT", "8080"), // default only for non-sensitive value
		Timezone:         getEnv("APP_TIMEZONE", "UTC"),
		BodyLimitMB:      getEnvInt("BODY_LIMIT_MB", 25),
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "en"),
		OperationTimeout: time.Duration(getEnvInt("OPERATION_TIMEOUT_SEC", 15)) * time.Second,
		PresignExpiry:    time.Duration(getEnvInt("PRESIGN_EXPIRY_SEC", 900)) * time.Second,
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		AuthTokens:       getEnvList("AUTH_TOKENS"),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			S3: S3Config{
				Region:       getEnv("AWS_REGION", "us-east-1"),
				Bucket:       getEnv("S3_BUCKET", ""),
				Endpoint:     getEnv("S3_ENDPOINT", ""),
				AccessKey:    getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
				UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", false),
			},
			Local: LocalConfig{
				Path:          getEnv("LOCAL_STORAGE_PATH", "./data/objects"),
				PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blank entries.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
