package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "ratings.db")
	t.Setenv("STORERATING_STORAGE__DRIVER", "sqlite")
	t.Setenv("STORERATING_STORAGE__PATH", path)
	t.Setenv("STORERATING_JWT__SECRET_KEY", "test-secret")
	t.Setenv("STORERATING_AUTH__BCRYPT_COST", "4")
	return path
}

func TestMigrate_SQLite(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema is up to date")

	_, err = execute(t, "migrate")
	assert.NoError(t, err)
}

func TestMigrate_MemoryRejected(t *testing.T) {
	t.Setenv("STORERATING_STORAGE__DRIVER", "memory")
	t.Setenv("STORERATING_JWT__SECRET_KEY", "test-secret")

	_, err := execute(t, "migrate")
	assert.ErrorContains(t, err, "no schema to migrate")
}

func TestSeed_SQLite(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "demo data loaded")

	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestConfigValidationFails(t *testing.T) {
	t.Setenv("STORERATING_STORAGE__DRIVER", "mongo")
	t.Setenv("STORERATING_JWT__SECRET_KEY", "test-secret")

	_, err := execute(t, "seed")
	assert.ErrorContains(t, err, "unknown storage.driver")
}
