package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr           = ":8080"
	defaultDataDir        = "data"
	defaultThreshold      = 0.3
	defaultAlgorithm      = "ratcliff"
	defaultMaxUploadBytes = 16 << 20
	defaultLockTTL        = 30 * time.Second
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	MaxUploadBytes int64
	LogLevel       string
	LogFormat      string

	Storage   Storage
	Screening Screening
	Redis     RedisConfig

	// parseErrs holds the variables FromEnv could not parse.
	parseErrs []error
}

// Storage points at the directory holding the collection files.
type Storage struct {
	DataDir string
}

// Screening tunes the match engine.
type Screening struct {
	Threshold     float64
	Algorithm     string
	PreserveHolds bool
}

// RedisConfig enables cross-process collection locks when URL is set.
type RedisConfig struct {
	URL          string
	LockTTL      time.Duration
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Unparseable values fall back to their defaults; Validate reports them.
func FromEnv() Server {
	var env envReader
	cfg := Server{
		Addr:           envString("SCREENING_ADDR", defaultAddr),
		MaxUploadBytes: env.int64("SCREENING_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogFormat:      envString("LOG_FORMAT", "json"),
		Storage: Storage{
			DataDir: envString("SCREENING_DATA_DIR", defaultDataDir),
		},
		Screening: Screening{
			Threshold:     env.float("SCREENING_THRESHOLD", defaultThreshold),
			Algorithm:     strings.ToLower(envString("SCREENING_ALGORITHM", defaultAlgorithm)),
			PreserveHolds: env.bool("SCREENING_PRESERVE_HOLDS", false),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			LockTTL:      env.duration("REDIS_LOCK_TTL", defaultLockTTL),
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
	cfg.parseErrs = env.errs
	return cfg
}

// Validate checks ranges that FromEnv cannot express.
func (s Server) Validate() error {
	errs := append([]error(nil), s.parseErrs...)
	if t := s.Screening.Threshold; math.IsNaN(t) || t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("SCREENING_THRESHOLD must be within [0,1], got %v", s.Screening.Threshold))
	}
	switch s.Screening.Algorithm {
	case "ratcliff", "levenshtein":
	default:
		errs = append(errs, fmt.Errorf("SCREENING_ALGORITHM must be ratcliff or levenshtein, got %q", s.Screening.Algorithm))
	}
	if s.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("SCREENING_MAX_UPLOAD_BYTES must be positive, got %d", s.MaxUploadBytes))
	}
	if s.Storage.DataDir == "" {
		errs = append(errs, errors.New("SCREENING_DATA_DIR must not be empty"))
	}
	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envReader parses typed variables, remembering every value it had to
// replace with its default. Unset or blank variables are not errors.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (e *envReader) fail(key, raw string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s: cannot use %q: %w", key, raw, err))
}

func (e *envReader) float(key string, fallback float64) float64 {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = errors.New("not a finite number")
	}
	if err != nil {
		e.fail(key, raw, err)
		return fallback
	}
	return v
}

func (e *envReader) int64(key string, fallback int64) int64 {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		e.fail(key, raw, err)
		return fallback
	}
	return v
}

func (e *envReader) bool(key string, fallback bool) bool {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail(key, raw, err)
		return fallback
	}
	return v
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err == nil && v <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		e.fail(key, raw, err)
		return fallback
	}
	return v
}
