package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	Port                string
	RedisURI            string
	DebounceMs          int
	MaxDrafts           int
	UploadTickMs        int
	PublishLatencyMs    int
	AnalyticsIntervalMs int
	MaxPostsPerDay      int
	SlotHorizonDays     int
	R2                  R2
}

func LoadConfig() *Config {
	return &Config{
		Port:                getEnv("PORT", "3000"),
		RedisURI:            getEnv("REDIS_URI", ""),
		DebounceMs:          getEnvInt("DEBOUNCE_MS", 1000),
		MaxDrafts:           getEnvInt("MAX_DRAFTS", 10),
		UploadTickMs:        getEnvInt("UPLOAD_TICK_MS", 500),
		PublishLatencyMs:    getEnvInt("PUBLISH_LATENCY_MS", 2000),
		AnalyticsIntervalMs: getEnvInt("ANALYTICS_INTERVAL_MS", 5000),
		MaxPostsPerDay:      getEnvInt("MAX_POSTS_PER_DAY", 5),
		SlotHorizonDays:     getEnvInt("SLOT_HORIZON_DAYS", 7),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
