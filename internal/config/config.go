package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppPort            string
	HMACSecret         string
	SigMaxAgeSeconds   int64
	ScanDebounce       time.Duration
	LaunchRegistryPath string
	AllowedOrigins     []string
	LogLevel           string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}

func getCSV(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func Load() Config {
	return Config{
		AppPort:            getenv("APP_PORT", "8080"),
		HMACSecret:         getenv("HMAC_SECRET", ""),
		SigMaxAgeSeconds:   getInt64("SIG_MAX_AGE_SECONDS", 300),
		ScanDebounce:       getMillis("SCAN_DEBOUNCE_MS", 1500*time.Millisecond),
		LaunchRegistryPath: getenv("LAUNCH_REGISTRY_PATH", ""),
		AllowedOrigins:     getCSV("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:           getenv("LOG_LEVEL", "info"),
	}
}
