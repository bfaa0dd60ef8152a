package calculatestartupmatch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"dealflow-workers/internal/common/aws"
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

// ==========================
// Mocks
// ==========================

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetStartup(ctx context.Context, id string) (*matching.StartupProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.StartupProfile), args.Error(1)
}

func (m *MockStore) GetThesis(ctx context.Context, id string) (*matching.InvestorThesis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.InvestorThesis), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishMatchEvent(ctx context.Context, event aws.MatchEvent) error {
	return m.Called(ctx, event).Error(0)
}

// ==========================
// Helpers
// ==========================

func createMockJob(key int64, variables interface{}) entities.Job {
	raw, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "investor-dealflow",
		ElementId:          "Activity_CalculateStartupMatch",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(raw),
	}}
}

func newTestHandler(t *testing.T, opts HandlerOptions) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := reg.Validator()
	require.NoError(t, err)

	if opts.Engine == nil {
		opts.Engine = matchingtest.Engine()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger(t)
	}
	opts.Validator = v

	h, err := NewHandler(opts)
	require.NoError(t, err)
	h.now = func() time.Time { return matchingtest.Now }
	return h
}

func inlineInput() *Input {
	startup, thesis := matchingtest.Startup(), matchingtest.Thesis()
	return &Input{Startup: &startup, Thesis: &thesis}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_InlineRecords(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	output, err := h.Execute(context.Background(), inlineInput())
	require.NoError(t, err)

	assert.Equal(t, 98, output.OverallScore)
	assert.Equal(t, matching.ConfidenceHigh, output.ConfidenceLevel)
	assert.False(t, output.Excluded)
	assert.False(t, output.EventPublished)
	assert.Equal(t, matching.MatchID("startup-123", "thesis-123"), output.MatchID)
	assert.Equal(t, "startup-123", output.Match.StartupID)
}

func TestHandler_Execute_IsDeterministic(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	first, err := h.Execute(context.Background(), inlineInput())
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), inlineInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHandler_Execute_LooksUpByID(t *testing.T) {
	store := &MockStore{}
	startup, thesis := matchingtest.Startup(), matchingtest.Thesis()
	store.On("GetStartup", mock.Anything, "startup-123").Return(&startup, nil)
	store.On("GetThesis", mock.Anything, "thesis-123").Return(&thesis, nil)

	h := newTestHandler(t, HandlerOptions{Startups: store, Theses: store})
	output, err := h.Execute(context.Background(), &Input{StartupID: "startup-123", ThesisID: "thesis-123"})

	require.NoError(t, err)
	assert.Equal(t, 98, output.OverallScore)
	store.AssertExpectations(t)
}

func TestHandler_Execute_InlineWinsOverID(t *testing.T) {
	store := &MockStore{}
	h := newTestHandler(t, HandlerOptions{Startups: store, Theses: store})

	input := inlineInput()
	input.StartupID = "ignored"
	input.ThesisID = "ignored"

	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	store.AssertNotCalled(t, "GetStartup", mock.Anything, mock.Anything)
}

func TestHandler_Execute_LookupErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *MockStore)
		input *Input
		code  errors.ErrorCode
	}{
		{
			name: "startup not found",
			setup: func(s *MockStore) {
				s.On("GetStartup", mock.Anything, "missing").Return(nil, errors.NewStartupNotFoundError("missing"))
			},
			input: &Input{StartupID: "missing", ThesisID: "thesis-123"},
			code:  errors.ErrCodeStartupNotFound,
		},
		{
			name: "thesis lookup fails",
			setup: func(s *MockStore) {
				startup := matchingtest.Startup()
				s.On("GetStartup", mock.Anything, "startup-123").Return(&startup, nil)
				s.On("GetThesis", mock.Anything, "thesis-123").
					Return(nil, errors.NewQueryExecutionFailedError("get-thesis", stderrors.New("boom")))
			},
			input: &Input{StartupID: "startup-123", ThesisID: "thesis-123"},
			code:  errors.ErrCodeQueryExecutionFailed,
		},
		{
			name:  "nothing to score",
			setup: func(*MockStore) {},
			input: &Input{},
			code:  errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			tt.setup(store)
			h := newTestHandler(t, HandlerOptions{Startups: store, Theses: store})

			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestHandler_Execute_NoRepositoryConfigured(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	_, err := h.Execute(context.Background(), &Input{StartupID: "startup-123", ThesisID: "thesis-123"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

// ==========================
// Match events
// ==========================

func publishingConfig() *Config {
	cfg := DefaultConfig()
	cfg.PublishHighConfidence = true
	return cfg
}

func TestHandler_Execute_PublishesHighConfidence(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishMatchEvent", mock.Anything, mock.MatchedBy(func(e aws.MatchEvent) bool {
		return e.EventType == aws.EventHighConfidenceMatch &&
			e.MatchID == matching.MatchID("startup-123", "thesis-123") &&
			e.InvestorID == "investor-1" &&
			e.OverallScore == 98 &&
			e.ScoredAt.Equal(matchingtest.Now)
	})).Return(nil)

	h := newTestHandler(t, HandlerOptions{CustomConfig: publishingConfig(), Publisher: pub})
	output, err := h.Execute(context.Background(), inlineInput())

	require.NoError(t, err)
	assert.True(t, output.EventPublished)
	pub.AssertExpectations(t)
}

func TestHandler_Execute_PublishFailureFailsJob(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishMatchEvent", mock.Anything, mock.Anything).
		Return(errors.NewEventPublishFailedError("topic", stderrors.New("throttled")))

	h := newTestHandler(t, HandlerOptions{CustomConfig: publishingConfig(), Publisher: pub})
	_, err := h.Execute(context.Background(), inlineInput())

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEventPublishFailed))
}

func TestHandler_Execute_NoEventBelowHighConfidence(t *testing.T) {
	pub := &MockPublisher{}
	h := newTestHandler(t, HandlerOptions{CustomConfig: publishingConfig(), Publisher: pub})

	excluded := matchingtest.Excluded("startup-x")
	thesis := matchingtest.Thesis()
	output, err := h.Execute(context.Background(), &Input{Startup: &excluded, Thesis: &thesis})

	require.NoError(t, err)
	assert.True(t, output.Excluded)
	assert.Equal(t, 0, output.OverallScore)
	assert.False(t, output.EventPublished)
	pub.AssertNotCalled(t, "PublishMatchEvent", mock.Anything, mock.Anything)
}

// ==========================
// Input parsing
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	t.Run("ids", func(t *testing.T) {
		input, err := h.parseInput(createMockJob(1, map[string]interface{}{
			"startupId": "startup-123",
			"thesisId":  "thesis-123",
		}))
		require.NoError(t, err)
		assert.Equal(t, "startup-123", input.StartupID)
		assert.Nil(t, input.Startup)
	})

	t.Run("inline records round trip", func(t *testing.T) {
		input, err := h.parseInput(createMockJob(2, inlineInput()))
		require.NoError(t, err)
		require.NotNil(t, input.Startup)
		assert.Equal(t, matchingtest.Startup().CreatedAt, input.Startup.CreatedAt)
		assert.Equal(t, matchingtest.Thesis().Weights, input.Thesis.Weights)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := h.parseInput(createMockJob(3, map[string]interface{}{"startupId": "startup-123"}))
		require.Error(t, err)
		stdErr, ok := errors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeSchemaValidationFailed, stdErr.Code)
		assert.False(t, stdErr.Retryable)
	})

	t.Run("unparseable variables", func(t *testing.T) {
		job := createMockJob(4, nil)
		job.Variables = "{not json"
		_, err := h.parseInput(job)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	})
}

// ==========================
// Configuration
// ==========================

func TestCreateConfigFromAppConfig(t *testing.T) {
	app := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: false, MaxJobsActive: 12, Timeout: 4500},
	}}
	app.Notifications.AWS.SNS.Enabled = true

	cfg := createConfigFromAppConfig(app, nil)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 12, cfg.MaxJobsActive)
	assert.Equal(t, 4500*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.PublishHighConfidence)

	custom := &Config{Enabled: true, MaxJobsActive: 1, Timeout: time.Second}
	assert.Same(t, custom, createConfigFromAppConfig(app, custom))
	assert.Equal(t, DefaultConfig(), createConfigFromAppConfig(nil, nil))
}

func TestNewHandler_RejectsInvalidConfig(t *testing.T) {
	_, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 0, Timeout: time.Second},
		Logger:       logger.NewNoOpLogger(),
	})
	assert.ErrorContains(t, err, "max_jobs_active must be positive")
}
