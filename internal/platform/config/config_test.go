package config

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"SCREENING_ADDR", "SCREENING_DATA_DIR", "SCREENING_THRESHOLD", "SCREENING_ALGORITHM",
		"SCREENING_PRESERVE_HOLDS", "SCREENING_MAX_UPLOAD_BYTES", "REDIS_URL", "REDIS_LOCK_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, 0.3, cfg.Screening.Threshold)
	assert.Equal(t, "ratcliff", cfg.Screening.Algorithm)
	assert.False(t, cfg.Screening.PreserveHolds)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCREENING_THRESHOLD", "0.75")
	t.Setenv("SCREENING_ALGORITHM", "Levenshtein")
	t.Setenv("SCREENING_PRESERVE_HOLDS", "true")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_LOCK_TTL", "5s")

	cfg := FromEnv()

	assert.Equal(t, 0.75, cfg.Screening.Threshold)
	assert.Equal(t, "levenshtein", cfg.Screening.Algorithm)
	assert.True(t, cfg.Screening.PreserveHolds)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := FromEnv()
	cfg.Screening.Threshold = 1.5
	cfg.Screening.Algorithm = "soundex"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCREENING_THRESHOLD")
	assert.Contains(t, err.Error(), "SCREENING_ALGORITHM")
}

func TestValidateReportsUnparseableValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, cfg Server)
	}{
		{
			name:  "non-numeric threshold falls back to the default",
			key:   "SCREENING_THRESHOLD",
			value: "abc",
			check: func(t *testing.T, cfg Server) { assert.Equal(t, 0.3, cfg.Screening.Threshold) },
		},
		{
			name:  "NaN threshold is not accepted",
			key:   "SCREENING_THRESHOLD",
			value: "NaN",
			check: func(t *testing.T, cfg Server) { assert.Equal(t, 0.3, cfg.Screening.Threshold) },
		},
		{
			name:  "infinite threshold is not accepted",
			key:   "SCREENING_THRESHOLD",
			value: "+Inf",
			check: func(t *testing.T, cfg Server) { assert.Equal(t, 0.3, cfg.Screening.Threshold) },
		},
		{
			name:  "upload limit with a unit suffix",
			key:   "SCREENING_MAX_UPLOAD_BYTES",
			value: "16MB",
			check: func(t *testing.T, cfg Server) { assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes) },
		},
		{
			name:  "lock ttl without a unit",
			key:   "REDIS_LOCK_TTL",
			value: "30",
			check: func(t *testing.T, cfg Server) { assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL) },
		},
		{
			name:  "preserve holds that is not a boolean",
			key:   "SCREENING_PRESERVE_HOLDS",
			value: "sometimes",
			check: func(t *testing.T, cfg Server) { assert.False(t, cfg.Screening.PreserveHolds) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg := FromEnv()
			tt.check(t, cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}

func TestValidateRejectsNaNThreshold(t *testing.T) {
	cfg := FromEnv()
	cfg.Screening.Threshold = math.NaN()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCREENING_THRESHOLD")
}
