// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/liamcoop/riskscore/internal/logger"
)

// Server captures HTTP server and storage configuration.
type Server struct {
	Port         string
	DatabaseURL  string // empty selects the in-memory store
	RefdataDir   string // empty selects the embedded reference data
	PolicyFile   string // empty selects the default policy
	SlowRequest  time.Duration
	RequestLimit time.Duration
	Log          logger.Options
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) Server {
	port := getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Server{
		Port:         port,
		DatabaseURL:  getenv("DATABASE_URL"),
		RefdataDir:   getenv("REFDATA_DIR"),
		PolicyFile:   getenv("POLICY_FILE"),
		SlowRequest:  duration(getenv("SLOW_REQUEST_THRESHOLD"), 500*time.Millisecond),
		RequestLimit: duration(getenv("REQUEST_TIMEOUT"), 30*time.Second),
		Log: logger.Options{
			Level:       getenv("LOG_LEVEL"),
			SampleRate:  positiveInt(getenv("ERROR_SAMPLE_RATE"), 1),
			OTEL:        strings.EqualFold(getenv("OTEL_ENABLED"), "true"),
			ServiceName: getenv("OTEL_SERVICE_NAME"),
		},
	}
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func positiveInt(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
