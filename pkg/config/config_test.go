package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inDir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// clearEnv blanks variables so viper falls through to files and defaults.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	inDir(t, t.TempDir())
	clearEnv(t, ProfileEnvKey, "PORT", "DB_HOST", "REPORTS_FORMAT", "REPORTS_TERM", "MILESTONE_CACHE_TTL", "REPORTS_WORKER_RETRIES")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "text", cfg.Reports.Format)
	assert.Empty(t, cfg.Reports.Term)
	assert.Equal(t, 30*time.Minute, cfg.Cache.MilestoneTTL)
	assert.Equal(t, 0, cfg.Reports.WorkerRetries)
	assert.Empty(t, cfg.Profile)
}

func TestLoadProfileFile(t *testing.T) {
	dir := t.TempDir()
	inDir(t, dir)
	content := "REPORTS_TERM=sp25\nREPORTS_FORMAT=CSV\nDB_HOST=precious\nPORT=9000\nMILESTONE_CACHE_TTL=bogus\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "precious.env"), []byte(content), 0o600))

	clearEnv(t, "REPORTS_TERM", "REPORTS_FORMAT", "DB_HOST", "MILESTONE_CACHE_TTL")
	t.Setenv("PORT", "9100")
	t.Setenv(ProfileEnvKey, "precious")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "precious", cfg.Profile)
	assert.Equal(t, "SP25", cfg.Reports.Term)
	assert.Equal(t, "csv", cfg.Reports.Format)
	assert.Equal(t, "precious", cfg.Database.Host)
	assert.Equal(t, 9100, cfg.Port, "environment wins over the profile file")
	assert.Equal(t, 30*time.Minute, cfg.Cache.MilestoneTTL)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
