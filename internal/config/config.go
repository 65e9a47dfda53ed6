package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type UploadBackend string

const (
	UploadBackendLocal UploadBackend = "local" // Files on local disk (default)
	UploadBackendS3    UploadBackend = "s3"    // S3-compatible object storage
)

type (
	Config struct {
		HTTP
		Global
		Log
		Database
		Auth
		Password
		Upload
		S3
		Email
		Tasks
		Scheduler
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // json or text
	}
	Database struct {
		Path string
	}
	Auth struct {
		SessionTimeout  time.Duration // Inactivity timeout (default: 30m)
		SessionLifetime time.Duration // Absolute session lifetime (default: 24h)
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
		CSRFEnabled     bool

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Password struct {
		MinLength        int
		RequireUppercase bool
		RequireLowercase bool
		RequireDigit     bool
		RequireSpecial   bool
	}
	Upload struct {
		Backend           UploadBackend
		Directory         string // Root directory for the local backend
		MaxFileSize       int64  // Bytes (default: 5MB)
		AllowedExtensions []string
	}
	S3 struct {
		Region       string
		Bucket       string
		BaseEndpoint string // Optional, for MinIO and other S3-compatible services
		AccessKey    string
		SecretKey    string
	}
	Email struct {
		Enabled  bool
		Async    bool // Deliver through the task queue instead of inline
		From     string
		SMTPHost string
		SMTPPort int
		Username string
		Password string
	}
	Tasks struct {
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Scheduler struct {
		SessionCleanupSchedule string // Cron format: "*/15 * * * *" = every 15 minutes
		AuditCleanupSchedule   string // Cron format, empty disables audit retention
		AuditRetentionDays     int
	}
)

// splitList turns a comma-separated setting into a trimmed, non-empty slice.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("session_timeout", "30m")        // 1800s inactivity timeout
	v.SetDefault("auth_session_lifetime", "24h")  // absolute lifetime
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("csrf_enabled", true)            // security.csrf.enabled
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Password policy defaults
	v.SetDefault("password_min_length", 8)
	v.SetDefault("password_require_uppercase", true)
	v.SetDefault("password_require_lowercase", true)
	v.SetDefault("password_require_digit", true)
	v.SetDefault("password_require_special", false)

	// Upload defaults
	v.SetDefault("upload_backend", string(UploadBackendLocal))
	v.SetDefault("upload_directory", DefaultUploadDirectory)
	v.SetDefault("upload_max_file_size", DefaultMaxFileSize)
	v.SetDefault("upload_allowed_extensions", "pdf,doc,docx")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_base_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")

	// Email defaults
	v.SetDefault("email_enabled", false)
	v.SetDefault("email_async", true)
	v.SetDefault("email_from", "no-reply@jobportal.local")
	v.SetDefault("email_smtp_host", "localhost")
	v.SetDefault("email_smtp_port", 587)
	v.SetDefault("email_smtp_username", "")
	v.SetDefault("email_smtp_password", "")

	// Task queue defaults
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("session_cleanup_schedule", "*/15 * * * *")
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")
	v.SetDefault("audit_retention_days", 90)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionTimeout:   v.GetDuration("SESSION_TIMEOUT"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFEnabled:      v.GetBool("CSRF_ENABLED"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Password: Password{
			MinLength:        v.GetInt("PASSWORD_MIN_LENGTH"),
			RequireUppercase: v.GetBool("PASSWORD_REQUIRE_UPPERCASE"),
			RequireLowercase: v.GetBool("PASSWORD_REQUIRE_LOWERCASE"),
			RequireDigit:     v.GetBool("PASSWORD_REQUIRE_DIGIT"),
			RequireSpecial:   v.GetBool("PASSWORD_REQUIRE_SPECIAL"),
		},
		Upload: Upload{
			Backend:           UploadBackend(v.GetString("UPLOAD_BACKEND")),
			Directory:         v.GetString("UPLOAD_DIRECTORY"),
			MaxFileSize:       v.GetInt64("UPLOAD_MAX_FILE_SIZE"),
			AllowedExtensions: splitList(v.GetString("UPLOAD_ALLOWED_EXTENSIONS")),
		},
		S3: S3{
			Region:       v.GetString("S3_REGION"),
			Bucket:       v.GetString("S3_BUCKET"),
			BaseEndpoint: v.GetString("S3_BASE_ENDPOINT"),
			AccessKey:    v.GetString("S3_ACCESS_KEY"),
			SecretKey:    v.GetString("S3_SECRET_KEY"),
		},
		Email: Email{
			Enabled:  v.GetBool("EMAIL_ENABLED"),
			Async:    v.GetBool("EMAIL_ASYNC"),
			From:     v.GetString("EMAIL_FROM"),
			SMTPHost: v.GetString("EMAIL_SMTP_HOST"),
			SMTPPort: v.GetInt("EMAIL_SMTP_PORT"),
			Username: v.GetString("EMAIL_SMTP_USERNAME"),
			Password: v.GetString("EMAIL_SMTP_PASSWORD"),
		},
		Tasks: Tasks{
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Scheduler: Scheduler{
			SessionCleanupSchedule: v.GetString("SESSION_CLEANUP_SCHEDULE"),
			AuditCleanupSchedule:   v.GetString("AUDIT_CLEANUP_SCHEDULE"),
			AuditRetentionDays:     v.GetInt("AUDIT_RETENTION_DAYS"),
		},
	}
}
