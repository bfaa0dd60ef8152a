package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: dealflow-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: dealflow
    user: ${TEST_DB_USER}
  elasticsearch:
    url: http://localhost:9200
  redis:
    address: localhost:6379
workers:
  rank-startup-matches:
    enabled: false
    timeout: 5000
matching:
  batch_concurrency: 4
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_DB_USER", "matcher")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "matcher", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.GetAddresses())

	assert.Equal(t, 4, cfg.Matching.BatchConcurrency)
	assert.Equal(t, 50, cfg.Matching.MaxRankedResults)
	assert.Equal(t, "startups", cfg.Matching.CandidateIndex)
	assert.Equal(t, 5*time.Minute, cfg.Matching.CacheTTLDuration())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Observability.MetricsAddr)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	t.Setenv("TEST_DB_USER", "matcher")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	rank := cfg.Workers["rank-startup-matches"]
	assert.False(t, rank.Enabled)
	assert.Equal(t, 5*time.Second, rank.TimeoutDuration())
	assert.Equal(t, 5, rank.MaxJobsActive)

	calc := GetWorkerConfig(cfg, "calculate-startup-match")
	assert.True(t, calc.Enabled)
	assert.Equal(t, 3, calc.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "summarize-matches"))
	assert.False(t, IsWorkerEnabled(cfg, "rank-startup-matches"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{
			name: "missing broker",
			yaml: `
database:
  postgres: {host: h, database: d, user: u}
  elasticsearch: {url: http://es}
  redis: {address: r}
`,
			err: "camunda.broker_address is required",
		},
		{
			name: "missing elasticsearch",
			yaml: `
camunda: {broker_address: b}
database:
  postgres: {host: h, database: d, user: u}
  redis: {address: r}
`,
			err: "database.elasticsearch.addresses or url is required",
		},
		{
			name: "sns enabled without topic",
			yaml: `
camunda: {broker_address: b}
database:
  postgres: {host: h, database: d, user: u}
  elasticsearch: {url: http://es}
  redis: {address: r}
notifications:
  aws:
    sns: {enabled: true}
`,
			err: "matching.high_confidence_topic_arn is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MATCH_EVENTS_TOPIC_ARN", "")

			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestLoadFromFile_EnvOverridesEmptySecrets(t *testing.T) {
	t.Setenv("TEST_DB_USER", "matcher")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("MATCH_EVENTS_TOPIC_ARN", "arn:aws:sns:us-east-1:123:matches")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, "arn:aws:sns:us-east-1:123:matches", cfg.Matching.HighConfidenceTopicARN)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "require"}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=require", p.GetDSN())
}
