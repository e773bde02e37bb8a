/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters from operating system environment variables:
the running environment, port, CORS allowed origins, JWT secret, static file
directory, and S3 upload-store credentials.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int
	StaticDir   string

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string

	// S3 Storage Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3PublicBaseURL, when set, is prepended to object keys to form the
	// fileUrl returned after an upload. When empty, uploads resolve to the
	// server's own download endpoint.
	S3PublicBaseURL string
}

// LoadConfig reads and parses the application configuration from environment
// variables, applying development defaults and validating required values.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	cfg.StaticDir = os.Getenv("STATIC_DIR")
	if cfg.StaticDir == "" {
		cfg.StaticDir = "./public"
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if cfg.Environment == "development" {
		if jwtSecret == "" {
			jwtSecret = "your_default_insecure_secret_key_change_me"
		}
	} else {
		if jwtSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
	}
	cfg.JWTSecret = jwtSecret

	// --- S3 Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME environment variable is required for S3 storage connection")
	}

	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT environment variable is required for S3 storage connection")
	}

	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	if cfg.S3AccessKeyID == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required for S3 authentication")
	}

	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if cfg.S3SecretAccessKey == "" {
		return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required for S3 authentication")
	}

	cfg.S3PublicBaseURL = strings.TrimSuffix(os.Getenv("S3_PUBLIC_BASE_URL"), "/")

	return cfg, nil
}
