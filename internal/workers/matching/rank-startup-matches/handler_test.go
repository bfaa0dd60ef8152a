package rankstartupmatches

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/matching/matchingtest"
	"dealflow-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchCandidates(ctx context.Context, thesis matching.InvestorThesis, limit int) ([]matching.StartupProfile, error) {
	args := m.Called(ctx, thesis, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]matching.StartupProfile), args.Error(1)
}

type MockTheses struct {
	mock.Mock
}

func (m *MockTheses) GetThesis(ctx context.Context, id string) (*matching.InvestorThesis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.InvestorThesis), args.Error(1)
}

func createMockJob(key int64, variables interface{}) entities.Job {
	raw, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:           key,
		Type:          TaskType,
		BpmnProcessId: "investor-dealflow",
		ElementId:     "Activity_RankStartupMatches",
		CustomHeaders: "{}",
		Retries:       3,
		Variables:     string(raw),
	}}
}

func newTestHandler(t *testing.T, opts HandlerOptions) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := reg.Validator()
	require.NoError(t, err)

	opts.Engine = matchingtest.Engine()
	opts.Validator = v
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger(t)
	}

	h, err := NewHandler(opts)
	require.NoError(t, err)
	h.newBatchID = func() string { return "batch-1" }
	return h
}

func pool() []matching.StartupProfile {
	return []matching.StartupProfile{
		matchingtest.Weak("weak-b"),
		matchingtest.Excluded("crypto-1"),
		matchingtest.Startup(),
		matchingtest.Weak("weak-a"),
	}
}

func TestHandler_Execute_RanksBestFirst(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})
	thesis := matchingtest.Thesis()

	output, err := h.Execute(context.Background(), &Input{Thesis: &thesis, Startups: pool()})
	require.NoError(t, err)

	assert.Equal(t, "batch-1", output.BatchID)
	assert.Equal(t, "thesis-123", output.ThesisID)
	assert.Equal(t, sourceInput, output.CandidateSource)
	assert.Equal(t, 4, output.TotalScored)
	assert.Equal(t, 1, output.ExcludedCount)

	require.Len(t, output.Matches, 3)
	assert.Equal(t, "startup-123", output.Matches[0].StartupID)
	assert.Equal(t, 98, output.Matches[0].OverallScore)
	assert.Equal(t, matching.MatchID("startup-123", "thesis-123"), output.Matches[0].MatchID)

	// equal scores keep a stable order by startup ID
	assert.Equal(t, output.Matches[1].OverallScore, output.Matches[2].OverallScore)
	assert.Equal(t, "weak-a", output.Matches[1].StartupID)
	assert.Equal(t, "weak-b", output.Matches[2].StartupID)

	for i, m := range output.Matches {
		assert.Equal(t, i+1, m.Rank)
	}
}

func TestHandler_Execute_IncludeExcluded(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})
	thesis := matchingtest.Thesis()

	output, err := h.Execute(context.Background(), &Input{Thesis: &thesis, Startups: pool(), IncludeExcluded: true})
	require.NoError(t, err)

	require.Len(t, output.Matches, 4)
	last := output.Matches[3]
	assert.Equal(t, "crypto-1", last.StartupID)
	assert.True(t, last.Excluded)
	assert.Equal(t, 0, last.OverallScore)
}

func TestHandler_Execute_Limit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxResults = 2
	h := newTestHandler(t, HandlerOptions{CustomConfig: cfg})
	thesis := matchingtest.Thesis()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unset uses max", 0, 2},
		{"below max", 1, 1},
		{"above max is capped", 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := h.Execute(context.Background(), &Input{Thesis: &thesis, Startups: pool(), Limit: tt.limit})
			require.NoError(t, err)
			assert.Len(t, output.Matches, tt.want)
			assert.Equal(t, 4, output.TotalScored)
		})
	}
}

func TestHandler_Execute_SearchesWhenNoStartups(t *testing.T) {
	thesis := matchingtest.Thesis()
	theses := &MockTheses{}
	theses.On("GetThesis", mock.Anything, "thesis-123").Return(&thesis, nil)

	searcher := &MockSearcher{}
	searcher.On("SearchCandidates", mock.Anything, thesis, DefaultConfig().CandidatePoolSize).
		Return([]matching.StartupProfile{matchingtest.Startup()}, nil)

	h := newTestHandler(t, HandlerOptions{Theses: theses, Searcher: searcher})
	output, err := h.Execute(context.Background(), &Input{ThesisID: "thesis-123"})

	require.NoError(t, err)
	assert.Equal(t, sourceSearch, output.CandidateSource)
	require.Len(t, output.Matches, 1)
	theses.AssertExpectations(t)
	searcher.AssertExpectations(t)
}

func TestHandler_Execute_Errors(t *testing.T) {
	thesis := matchingtest.Thesis()

	t.Run("search failure propagates", func(t *testing.T) {
		searcher := &MockSearcher{}
		searcher.On("SearchCandidates", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.NewIndexNotFoundError("startups"))

		h := newTestHandler(t, HandlerOptions{Searcher: searcher})
		_, err := h.Execute(context.Background(), &Input{Thesis: &thesis})
		assert.True(t, errors.HasCode(err, errors.ErrCodeIndexNotFound))
	})

	t.Run("thesis not found", func(t *testing.T) {
		theses := &MockTheses{}
		theses.On("GetThesis", mock.Anything, "gone").Return(nil, errors.NewThesisNotFoundError("gone"))

		h := newTestHandler(t, HandlerOptions{Theses: theses})
		_, err := h.Execute(context.Background(), &Input{ThesisID: "gone", Startups: pool()})
		assert.True(t, errors.HasCode(err, errors.ErrCodeThesisNotFound))
	})

	t.Run("no candidates and no searcher", func(t *testing.T) {
		h := newTestHandler(t, HandlerOptions{})
		_, err := h.Execute(context.Background(), &Input{Thesis: &thesis})
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	})

	t.Run("cancelled context", func(t *testing.T) {
		h := newTestHandler(t, HandlerOptions{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := h.Execute(ctx, &Input{Thesis: &thesis, Startups: pool()})
		assert.True(t, errors.HasCode(err, errors.ErrCodeScoringCancelled))
	})
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"thesisId":        "thesis-123",
		"limit":           5,
		"includeExcluded": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, input.Limit)
	assert.True(t, input.IncludeExcluded)

	_, err = h.parseInput(createMockJob(2, map[string]interface{}{"limit": 5}))
	assert.True(t, errors.HasCode(err, errors.ErrCodeSchemaValidationFailed))

	_, err = h.parseInput(createMockJob(3, map[string]interface{}{"thesisId": "t", "limit": 0}))
	assert.True(t, errors.HasCode(err, errors.ErrCodeSchemaValidationFailed))
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	app := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 90000},
	}}
	app.Matching.BatchConcurrency = 16
	app.Matching.MaxRankedResults = 100

	cfg := createConfigFromAppConfig(app, nil)
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 16, cfg.Concurrency)
	assert.Equal(t, 100, cfg.MaxResults)
	assert.Equal(t, 200, cfg.CandidatePoolSize)
	assert.NoError(t, cfg.Validate())

	app.Matching.CandidateLimit = 300
	assert.Equal(t, 300, createConfigFromAppConfig(app, nil).CandidatePoolSize)

	app.Matching.MaxRankedResults = 500
	assert.Equal(t, 2000, createConfigFromAppConfig(app, nil).CandidatePoolSize)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CandidatePoolSize = 10
	assert.ErrorContains(t, cfg.Validate(), "candidate_pool_size")

	cfg = DefaultConfig()
	cfg.Concurrency = 0
	assert.ErrorContains(t, cfg.Validate(), "concurrency")
}
