package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr           string
	DatabasePath   string
	MasterSecret   string
	UploadDir      string
	Debug          bool
	AllowedOrigins []string
	SMTP           SMTPConfig
}

// SMTPConfig holds outbound mail settings for password-reset codes. An empty
// Host disables mail delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr         *string
	DatabasePath *string
	MasterSecret *string
	UploadDir    *string
	Debug        *bool
}

// Load loads server configuration from environment variables (and an optional
// .env file in the working directory) and applies any explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	// Best-effort; a missing .env file is not an error.
	_ = godotenv.Load()

	port := 5000
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./chattr.db"
	}
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	masterSecret := os.Getenv("CHATTR_MASTER_SECRET")
	if overrides.MasterSecret != nil {
		masterSecret = *overrides.MasterSecret
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("CHATTR_MASTER_SECRET environment variable is required")
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if overrides.UploadDir != nil {
		uploadDir = *overrides.UploadDir
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	origins := []string{"*"}
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		origins = []string{origin}
	}

	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			smtpPort = p
		}
	}

	return &Config{
		Addr:           addr,
		DatabasePath:   dbPath,
		MasterSecret:   masterSecret,
		UploadDir:      uploadDir,
		Debug:          debug,
		AllowedOrigins: origins,
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("EMAIL_FROM"),
		},
	}, nil
}
