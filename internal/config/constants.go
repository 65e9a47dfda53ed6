package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./jobportal.db"

	// DefaultUploadDirectory is where the local upload backend keeps resumes
	DefaultUploadDirectory = "./uploads/resumes"

	// DefaultMaxFileSize is the default upload limit in bytes (5MB)
	DefaultMaxFileSize = 5 * 1024 * 1024
)
