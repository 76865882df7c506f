package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	SecretKey string

	DatabaseURL     string
	DatabaseURLTest string

	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3UseSSL           bool
	S3Bucket           string
	S3BucketTest       string
	S3RequestTimeout   time.Duration

	UserStorageQuotaBytes int64

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// InitConfig loads configuration from the environment.
func InitConfig() {
	AppConfig = Config{
		Port:      getEnv("PORT", "8000"),
		SecretKey: getEnv("SECRET_KEY", "default-secret-key"),

		DatabaseURL: getEnv("DATABASE_URL",
			"root:root@tcp(localhost:3306)/cloudstash?charset=utf8mb4&parseTime=True&loc=Local"),
		DatabaseURLTest: getEnv("DATABASE_URL_TEST",
			"root:root@tcp(localhost:3306)/cloudstash_test?charset=utf8mb4&parseTime=True&loc=Local"),

		S3Endpoint:         getEnv("S3_ENDPOINT", "localhost:9000"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", "minioadmin"),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", "minioadmin"),
		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		S3UseSSL:           getEnvBool("S3_USE_SSL", false),
		S3Bucket:           getEnv("S3_BUCKET", "cloudstash"),
		S3BucketTest:       getEnv("S3_BUCKET_TEST", "cloudstash-test"),
		S3RequestTimeout:   getEnvDuration("S3_REQUEST_TIMEOUT", 30*time.Second),

		// 2 GiB per user unless overridden
		UserStorageQuotaBytes: getEnvInt64("USER_STORAGE_QUOTA_BYTES", 2*1024*1024*1024),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}
}
