// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Media storage modes
const (
	StorageDatabase   = "database"
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Database      DatabaseConfig
	Redis         RedisConfig
	Server        ServerConfig
	Logging       LoggingConfig
	CORS          CORSConfig
	JWT           JWTConfig
	Admin         AdminConfig
	Media         MediaConfig
	S3            S3Config
	SMTP          SMTPConfig
	Sweep         SweepConfig
	APIKey        string
	SeedFile      string
	NotifyAddress string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings.
// An empty Host disables the notification queue.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// AdminConfig holds the credentials of the single site administrator
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// MediaConfig holds media storage settings
type MediaConfig struct {
	Storage     string
	BasePath    string
	PublicPath  string
	MaxFileSize int64
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SweepConfig holds orphan file sweeper settings
type SweepConfig struct {
	Schedule string
	Grace    time.Duration
}

// Enabled reports whether Redis is configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr returns the Redis address in host:port form
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	accessExpiry, err := time.ParseDuration(stringEnv("JWT_ACCESS_TOKEN_EXPIRY", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	// Admin credentials (empty hash disables password login)
	cfg.Admin.Username = stringEnv("ADMIN_USERNAME", "admin")
	cfg.Admin.PasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	// API Key configuration (optional, for service-to-service authentication)
	cfg.APIKey = os.Getenv("API_KEY")

	// Media storage configuration
	if err := loadMedia(cfg); err != nil {
		return nil, err
	}

	// Redis configuration (optional, for booking notifications)
	cfg.Redis.Host = os.Getenv("REDIS_HOST")
	redisPort, err := intEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	// SMTP configuration (optional, for the worker)
	cfg.SMTP.Host = stringEnv("SMTP_HOST", "localhost")
	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.SMTP.Port = smtpPort
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = stringEnv("SMTP_FROM", "noreply@djnacci.com")
	cfg.NotifyAddress = os.Getenv("BOOKING_NOTIFY_EMAIL")

	cfg.SeedFile = stringEnv("SEED_FILE", "seed/social_links.yaml")

	// Orphan sweeper configuration
	cfg.Sweep.Schedule = stringEnv("ORPHAN_SWEEP_SCHEDULE", "@every 1h")
	grace, err := time.ParseDuration(stringEnv("ORPHAN_SWEEP_GRACE", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORPHAN_SWEEP_GRACE: %w", err)
	}
	cfg.Sweep.Grace = grace

	return cfg, nil
}

// loadMedia reads and validates the media storage settings
func loadMedia(cfg *Config) error {
	cfg.Media.Storage = strings.ToLower(stringEnv("MEDIA_STORAGE", StorageDatabase))
	cfg.Media.BasePath = os.Getenv("MEDIA_BASE_PATH")
	cfg.Media.PublicPath = "/" + strings.Trim(stringEnv("MEDIA_PUBLIC_PATH", "/uploads"), "/")

	maxSize, err := intEnv("MEDIA_MAX_FILE_SIZE", 50*1024*1024)
	if err != nil {
		return err
	}
	cfg.Media.MaxFileSize = int64(maxSize)

	cfg.S3.Bucket = os.Getenv("S3_BUCKET")
	cfg.S3.Region = stringEnv("S3_REGION", "us-east-1")
	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if v := os.Getenv("S3_USE_PATH_STYLE"); v != "" {
		usePathStyle, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid S3_USE_PATH_STYLE: %w", err)
		}
		cfg.S3.UsePathStyle = usePathStyle
	}

	switch cfg.Media.Storage {
	case StorageDatabase:
	case StorageFilesystem:
		if cfg.Media.BasePath == "" {
			return fmt.Errorf("MEDIA_BASE_PATH is required for filesystem storage")
		}
	case StorageS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("invalid MEDIA_STORAGE: %s, must be 'database', 'filesystem' or 's3'", cfg.Media.Storage)
	}

	return nil
}

// parseOrigins parses comma-separated origins, defaulting to allow all
func parseOrigins(corsOrigins string) []string {
	if corsOrigins == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// DSN returns the database connection string.
// clientFoundRows makes RowsAffected count matched rows, so an UPDATE that
// changes nothing is still distinguishable from a missing row.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
