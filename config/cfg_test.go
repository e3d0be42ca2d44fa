package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[mysql]
dsn = "user:pass@tcp(localhost:3306)/tc?parseTime=true"

[http]
port = "8080"
allowed_origins = ["https://dashboard.example.com"]

[tutorcruncher]
enabled = true
token = "file-token"
detail_concurrency = 2

[sync]
schedule = "@every 5m"

[mailer]
recipients = ["tutors@example.com"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "user:pass@tcp(localhost:3306)/tc?parseTime=true", c.DB.DSN)
	assert.Equal(t, "8080", c.HTTP.Port)
	assert.Equal(t, []string{"https://dashboard.example.com"}, c.HTTP.AllowedOrigins)
	assert.True(t, c.TutorCruncher.Enabled)
	assert.Equal(t, "file-token", c.TutorCruncher.Token)
	assert.Equal(t, 2, c.TutorCruncher.DetailConcurrency)
	assert.Equal(t, "@every 5m", c.Sync.Schedule)
	assert.Equal(t, []string{"tutors@example.com"}, c.Mailer.Recipients)

	// defaults
	assert.Equal(t, "https://secure.tutorcruncher.com/api", c.TutorCruncher.BaseURL)
	assert.Equal(t, 500*time.Millisecond, c.TutorCruncher.PageDelay)
	assert.Equal(t, 5, c.TutorCruncher.MaxAttempts)
	assert.True(t, c.Sync.RunOnStart)
	assert.Equal(t, "Europe/London", c.Analytics.Timezone)
	assert.Equal(t, 28, c.Analytics.FinishInactivityDays)
	assert.Equal(t, time.Minute, c.HTTP.RequestTimeout)

	assert.NoError(t, c.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TUTORCRUNCHER_API_TOKEN", "env-token")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ANALYTICS__TIMEZONE", "UTC")
	t.Setenv("MAILER_RECIPIENTS", "a@example.com,b@example.com")

	c, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-token", c.TutorCruncher.Token)
	assert.Equal(t, "9090", c.HTTP.Port)
	assert.Equal(t, "UTC", c.Analytics.Timezone)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.Mailer.Recipients)
}

func TestLoadConfig_DSNFromParts(t *testing.T) {
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_USER", "tc")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DATABASE", "dashboard")

	c, err := LoadConfig(writeConfig(t, "[http]\nport = \"3000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "tc:secret@tcp(db.internal:3306)/dashboard?charset=utf8mb4&parseTime=true", c.DB.DSN)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "3000", c.HTTP.Port)
}

func TestValidate(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	c.TutorCruncher.Token = ""
	c.TutorCruncher.BaseURL = "not a url"
	c.Mailer.Recipients = []string{"tutors@example.com", "nobody"}

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tutorcruncher")
	assert.Contains(t, err.Error(), `invalid recipient "nobody"`)

	c.TutorCruncher.Enabled = false
	c.Mailer.Recipients = nil
	assert.NoError(t, c.Validate())
}
