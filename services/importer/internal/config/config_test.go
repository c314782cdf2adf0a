package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "DATASET_PATH", "DATASET_URL", "DATASET_TABLE",
		"IMPORT_REQUEST_TIMEOUT", "LOG_LEVEL", "DRY_RUN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresDatabase(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DRY_RUN", "true")
	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.DryRun)
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://edu.db")
	t.Setenv("DATASET_URL", "https://example.org/edu.csv")
	t.Setenv("IMPORT_REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite://edu.db", cfg.DatabaseURL)
	require.Equal(t, "https://example.org/edu.csv", cfg.DatasetURL)
	require.Equal(t, "educacion_basica", cfg.DatasetTable)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.False(t, cfg.DryRun)

	t.Setenv("IMPORT_REQUEST_TIMEOUT", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "IMPORT_REQUEST_TIMEOUT")
}
