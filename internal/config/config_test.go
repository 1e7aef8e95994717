package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("DB_STATEMENT_TIMEOUT", "3s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("REGISTER_STORAGE_TIMEOUT", "2s")
	t.Setenv("STORE_BACKEND", "memory")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 3*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, "docregister", cfg.Database.ApplicationName)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 2*time.Second, cfg.Register.StorageTimeout)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "minio", cfg.BlobBackend)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "150ms")
	assert.Equal(t, 150*time.Millisecond, getEnvDuration(key, time.Second))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}

func TestApplyFlags(t *testing.T) {
	cfg := &AppConfig{Port: "8080", StoreBackend: "postgres"}

	f, err := ApplyFlags(cfg, []string{"--port", "9090", "--store=memory", "--migrate-only"})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.True(t, f.MigrateOnly)

	_, err = ApplyFlags(cfg, []string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, p PolicyConfig)
	}{
		{
			name: "full policy",
			raw: `
statuses: [wip, issued, void]
initial_status: wip
superseded_status: void
supersede_previous: true
`,
			check: func(t *testing.T, p PolicyConfig) {
				assert.Equal(t, []string{"wip", "issued", "void"}, p.Statuses)
				assert.Equal(t, "void", p.SupersededStatus)
				assert.True(t, p.SupersedePrevious)
			},
		},
		{
			name: "initial status defaults to first",
			raw:  "statuses: [a, b]\n",
			check: func(t *testing.T, p PolicyConfig) {
				assert.Equal(t, "a", p.InitialStatus)
				assert.False(t, p.SupersedePrevious)
			},
		},
		{name: "empty statuses", raw: "statuses: []\n", wantErr: true},
		{name: "unknown initial", raw: "statuses: [a]\ninitial_status: z\n", wantErr: true},
		{name: "unknown superseded", raw: "statuses: [a]\nsupersede_previous: true\nsuperseded_status: z\n", wantErr: true},
		{name: "unknown field", raw: "statuses: [a]\ncolour: blue\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("statuses: [draft, issued]\n"), 0o600))

	p, err = LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, "draft", p.InitialStatus)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
