package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.CSRFEnabled)

	assert.Equal(t, 8, cfg.Password.MinLength)
	assert.True(t, cfg.Password.RequireUppercase)
	assert.True(t, cfg.Password.RequireLowercase)
	assert.True(t, cfg.Password.RequireDigit)
	assert.False(t, cfg.Password.RequireSpecial)

	assert.Equal(t, UploadBackendLocal, cfg.Upload.Backend)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Upload.MaxFileSize)
	assert.Equal(t, []string{"pdf", "doc", "docx"}, cfg.Upload.AllowedExtensions)
	assert.False(t, cfg.Email.Enabled)

	assert.Equal(t, "*/15 * * * *", cfg.Scheduler.SessionCleanupSchedule)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.AuditCleanupSchedule)
	assert.Equal(t, 90, cfg.Scheduler.AuditRetentionDays)
	assert.Equal(t, 2, cfg.Tasks.Workers)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("PASSWORD_REQUIRE_SPECIAL", "true")
	t.Setenv("SESSION_TIMEOUT", "10m")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", " pdf , ,txt")
	t.Setenv("UPLOAD_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "resumes")

	cfg := NewConfig()

	assert.False(t, cfg.Auth.CSRFEnabled)
	assert.Equal(t, 12, cfg.Password.MinLength)
	assert.True(t, cfg.Password.RequireSpecial)
	assert.Equal(t, 10*time.Minute, cfg.Auth.SessionTimeout)
	assert.Equal(t, []string{"pdf", "txt"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, UploadBackendS3, cfg.Upload.Backend)
	assert.Equal(t, "resumes", cfg.S3.Bucket)
}
