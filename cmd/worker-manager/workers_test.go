package main

import (
	"os"
	"path/filepath"
	"testing"

	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/matching"
	"dealflow-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistrations(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		"calculate-startup-match": {Enabled: true, MaxJobsActive: 5, Timeout: 30000},
		"rank-startup-matches":    {Enabled: false, MaxJobsActive: 2, Timeout: 60000},
		"validate-thesis-weights": {Enabled: true, MaxJobsActive: 10, Timeout: 5000},
		"summarize-matches":       {Enabled: true, MaxJobsActive: 5, Timeout: 15000},
	}}

	registrations, err := buildRegistrations(dependencies{
		cfg:    cfg,
		engine: matching.NewEngine(matching.DefaultConfig()),
		log:    logger.NewTestLogger(t),
	}, reg)
	require.NoError(t, err)

	require.Len(t, registrations, 4)
	byType := map[string]config.WorkerConfig{}
	for _, r := range registrations {
		assert.NotNil(t, r.Handler)
		byType[r.TaskType] = r.Config
	}
	assert.False(t, byType["rank-startup-matches"].Enabled)
	assert.Equal(t, 10, byType["validate-thesis-weights"].MaxJobsActive)
}

func TestBuildRegistrations_RequiresRegistryEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities":[{"id":"a","taskType":"calculate-startup-match"}]}`), 0o600))
	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)

	_, err = buildRegistrations(dependencies{
		cfg: &config.Config{},
		log: logger.NewNoOpLogger(),
	}, reg)
	assert.ErrorContains(t, err, "rank-startup-matches is not in the activity registry")
}

func TestNewEngine_Synonyms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("synonyms:\n  fintech:\n    - payments\n"), 0o600))

	engine, err := newEngine(config.MatchingConfig{SynonymsPath: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"payments"}, engine.Config().Synonyms["fintech"])

	_, err = newEngine(config.MatchingConfig{SynonymsPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
