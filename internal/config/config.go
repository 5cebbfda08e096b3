package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	DiscordClientID     string
	DiscordClientSecret string
	DiscordBotToken     string
	DiscordAPIBaseURL   string // overridable for tests
	DiscordRedirectURL  string // must match the OAuth app's registered redirect URI
	FrontendURL         string // verification pages the callback redirects back to

	// bcrypt hash of the dashboard password; login is disabled when empty.
	DashboardPasswordHash string
	JWTPrivateKeyPath     string
	JWTPublicKeyPath      string
	JWTExpiryDays         int

	// Floor between consecutive Discord calls during a bulk member pull.
	PullDelay time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Servers         string
	VerifiedMembers string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Servers:         getEnv("DYNAMO_TABLE_SERVERS", "servers"),
			VerifiedMembers: getEnv("DYNAMO_TABLE_VERIFIED_MEMBERS", "verified_members"),
		},

		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordBotToken:     getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordAPIBaseURL:   getEnv("DISCORD_API_BASE_URL", "https://discord.com/api/v10"),
		DiscordRedirectURL:  getEnv("DISCORD_REDIRECT_URL", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),

		DashboardPasswordHash: getEnv("DASHBOARD_PASSWORD_HASH", ""),
		JWTPrivateKeyPath:     getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:      getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiryDays:         getEnvInt("JWT_EXPIRY_DAYS", 7),

		PullDelay: time.Duration(getEnvInt("PULL_DELAY_MS", 1000)) * time.Millisecond,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
