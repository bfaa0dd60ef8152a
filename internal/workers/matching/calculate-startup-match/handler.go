// internal/workers/matching/calculate-startup-match/handler.go
package calculatestartupmatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealflow-workers/internal/common/aws"
	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/common/observability"
	"dealflow-workers/internal/common/validation"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-startup-match"

type Handler struct {
	config     *Config
	engine     *matching.Engine
	startups   repository.StartupReader
	theses     repository.ThesisReader
	publisher  aws.EventPublisher
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Engine        *matching.Engine
	Startups      repository.StartupReader
	Theses        repository.ThesisReader
	Publisher     aws.EventPublisher
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	engine := opts.Engine
	if engine == nil {
		engine = matching.NewEngine(matching.DefaultConfig())
	}

	publisher := opts.Publisher
	if publisher == nil {
		publisher = aws.NoopPublisher{}
	}

	validator := opts.Validator
	if validator == nil {
		validator = validation.NewValidator()
	}

	return &Handler{
		config:     cfg,
		engine:     engine,
		startups:   opts.Startups,
		theses:     opts.Theses,
		publisher:  publisher,
		validator:  validator,
		obs:        opts.Observability,
		errHandler: errors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:        time.Now,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartJobSpan(ctx, TaskType, job.GetKey())

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.run(ctx, job)
	if err != nil {
		observability.EndSpan(span, err)
		h.failJob(ctx, client, job, err, start)
		return
	}
	observability.EndSpan(span, nil)

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := h.parseInput(job)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse job variables: %v", err))
	}

	result, err := h.validator.Validate(TaskType, variables)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewSchemaValidationFailedError(result.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("decode job variables: %v", err))
	}
	return &input, nil
}

// Execute scores one startup against one thesis.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	startup, err := h.resolveStartup(ctx, input)
	if err != nil {
		return nil, err
	}
	thesis, err := h.resolveThesis(ctx, input)
	if err != nil {
		return nil, err
	}

	result := h.engine.ScoreMatch(*startup, *thesis, input.ExistingMatches)
	metrics.ObserveMatch(string(result.ConfidenceLevel), result.OverallScore, result.Excluded)

	output := &Output{
		MatchID:         matching.MatchID(startup.ID, thesis.ID),
		OverallScore:    result.OverallScore,
		ConfidenceLevel: result.ConfidenceLevel,
		Excluded:        result.Excluded,
		Match:           result,
	}

	h.logger.Info("match scored", map[string]interface{}{
		"startupId":  startup.ID,
		"thesisId":   thesis.ID,
		"score":      result.OverallScore,
		"confidence": string(result.ConfidenceLevel),
		"excluded":   result.Excluded,
	})

	if h.config.PublishHighConfidence && result.ConfidenceLevel == matching.ConfidenceHigh && !result.Excluded {
		if err := h.publisher.PublishMatchEvent(ctx, h.matchEvent(output, thesis)); err != nil {
			metrics.MatchEventsPublished.WithLabelValues("failed").Inc()
			return nil, err
		}
		metrics.MatchEventsPublished.WithLabelValues("published").Inc()
		output.EventPublished = true
	}

	return output, nil
}

func (h *Handler) resolveStartup(ctx context.Context, input *Input) (*matching.StartupProfile, error) {
	if input.Startup != nil {
		return input.Startup, nil
	}
	if input.StartupID == "" {
		return nil, errors.NewInvalidInputError("startup or startupId is required")
	}
	if h.startups == nil {
		return nil, errors.NewInvalidInputError("startup lookup is not configured; pass the startup inline")
	}
	return h.startups.GetStartup(ctx, input.StartupID)
}

func (h *Handler) resolveThesis(ctx context.Context, input *Input) (*matching.InvestorThesis, error) {
	if input.Thesis != nil {
		return input.Thesis, nil
	}
	if input.ThesisID == "" {
		return nil, errors.NewInvalidInputError("thesis or thesisId is required")
	}
	if h.theses == nil {
		return nil, errors.NewInvalidInputError("thesis lookup is not configured; pass the thesis inline")
	}
	return h.theses.GetThesis(ctx, input.ThesisID)
}

func (h *Handler) matchEvent(output *Output, thesis *matching.InvestorThesis) aws.MatchEvent {
	return aws.MatchEvent{
		EventType:    aws.EventHighConfidenceMatch,
		MatchID:      output.MatchID,
		StartupID:    output.Match.StartupID,
		ThesisID:     output.Match.ThesisID,
		InvestorID:   thesis.InvestorID,
		OverallScore: output.OverallScore,
		Confidence:   string(output.ConfidenceLevel),
		Reasons:      output.Match.MatchReason,
		ScoredAt:     h.now().UTC(),
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	workerCfg := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = workerCfg.Enabled
	if workerCfg.MaxJobsActive > 0 {
		cfg.MaxJobsActive = workerCfg.MaxJobsActive
	}
	if workerCfg.Timeout > 0 {
		cfg.Timeout = workerCfg.TimeoutDuration()
	}
	cfg.PublishHighConfidence = appConfig.Notifications.AWS.SNS.Enabled
	return cfg
}
