package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	HostingCloudinary = "cloudinary"
	HostingS3         = "s3"
)

type Config struct {
	// Server
	ServerPort string

	// Instagram (two-phase container/publish)
	InstagramAccessToken string
	InstagramBusinessID  string
	InstagramGraphURL    string
	IGMinProcessingDelay time.Duration
	IGMaxProcessingWait  time.Duration
	IGPollInterval       time.Duration
	IGPollStatus         bool

	// Facebook page
	FacebookPageToken string
	FacebookPageID    string
	FacebookGraphURL  string

	GraphAPIVersion string
	HTTPTimeout     time.Duration

	// Hosting
	HostingProvider string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3BucketName       string
	S3UseSSL           string
	S3PublicBaseURL    string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// Admin tokens for trigger endpoints
	AdminJWTSecret string

	// Campaign
	CampaignSchedule    string
	CampaignTimezone    string
	CampaignCatalogPath string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &Config{
		ServerPort: getEnv("PORT", getEnv("SERVER_PORT", "5000")),

		InstagramAccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		InstagramBusinessID:  getEnv("INSTAGRAM_BUSINESS_ID", ""),
		InstagramGraphURL:    getEnv("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com"),
		IGMinProcessingDelay: getDuration("IG_MIN_PROCESSING_DELAY", 5*time.Second),
		IGMaxProcessingWait:  getDuration("IG_MAX_PROCESSING_WAIT", 60*time.Second),
		IGPollInterval:       getDuration("IG_POLL_INTERVAL", 3*time.Second),
		IGPollStatus:         getBool("IG_POLL_STATUS", true),

		FacebookPageToken: getEnv("FACEBOOK_PAGE_TOKEN", ""),
		FacebookPageID:    getEnv("FACEBOOK_PAGE_ID", ""),
		FacebookGraphURL:  getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com"),

		GraphAPIVersion: getEnv("GRAPH_API_VERSION", "v18.0"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 30*time.Second),

		HostingProvider: strings.ToLower(getEnv("HOSTING_PROVIDER", "")),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "campaigns"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3BucketName:       getEnv("S3_BUCKET_NAME", ""),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),
		S3PublicBaseURL:    getEnv("S3_PUBLIC_BASE_URL", ""),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", ""),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		CampaignSchedule:    getEnv("CAMPAIGN_SCHEDULE", "0 9 * * *"),
		CampaignTimezone:    getEnv("CAMPAIGN_TIMEZONE", "Local"),
		CampaignCatalogPath: getEnv("CAMPAIGN_CATALOG_PATH", ""),
	}

	if config.HostingProvider == "" {
		config.HostingProvider = config.detectHostingProvider()
	}

	return config, nil
}

// InstagramConfigured reports whether both the token and the business account are set.
func (c *Config) InstagramConfigured() bool {
	return c.InstagramAccessToken != "" && c.InstagramBusinessID != ""
}

func (c *Config) FacebookConfigured() bool {
	return c.FacebookPageToken != "" && c.FacebookPageID != ""
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) S3Configured() bool {
	return c.S3BucketName != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

func (c *Config) HostingConfigured() bool {
	switch c.HostingProvider {
	case HostingCloudinary:
		return c.CloudinaryConfigured()
	case HostingS3:
		return c.S3Configured()
	}
	return false
}

func (c *Config) RedisConfigured() bool {
	return c.RedisHost != ""
}

func (c *Config) RabbitMQConfigured() bool {
	return c.RabbitMQHost != ""
}

// SchedulerEnabled is false when CAMPAIGN_SCHEDULE is empty or "off".
func (c *Config) SchedulerEnabled() bool {
	s := strings.TrimSpace(strings.ToLower(c.CampaignSchedule))
	return s != "" && s != "off"
}

func (c *Config) detectHostingProvider() string {
	if c.CloudinaryConfigured() {
		return HostingCloudinary
	}
	if c.S3Configured() {
		return HostingS3
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Plain integers are milliseconds.
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
