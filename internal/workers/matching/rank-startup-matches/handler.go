// internal/workers/matching/rank-startup-matches/handler.go
package rankstartupmatches

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

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
	"github.com/google/uuid"
)

const (
	TaskType = "rank-startup-matches"

	sourceInput  = "input"
	sourceSearch = "search"
)

type Handler struct {
	config     *Config
	engine     *matching.Engine
	theses     repository.ThesisReader
	searcher   repository.CandidateSearcher
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	newBatchID func() string
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Engine        *matching.Engine
	Theses        repository.ThesisReader
	Searcher      repository.CandidateSearcher
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

	validator := opts.Validator
	if validator == nil {
		validator = validation.NewValidator()
	}

	return &Handler{
		config:     cfg,
		engine:     engine,
		theses:     opts.Theses,
		searcher:   opts.Searcher,
		validator:  validator,
		obs:        opts.Observability,
		errHandler: errors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
		newBatchID: func() string { return uuid.NewString() },
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
	if input.Limit < 0 {
		return nil, errors.NewInvalidInputError("limit must be positive")
	}
	return &input, nil
}

// Execute scores every candidate against the thesis and returns the top
// matches, best first.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	thesis, err := h.resolveThesis(ctx, input)
	if err != nil {
		return nil, err
	}

	candidates, source, err := h.candidates(ctx, input, *thesis)
	if err != nil {
		return nil, err
	}

	results, err := h.engine.ScoreBatch(ctx, candidates, *thesis, input.ExistingMatches, h.config.Concurrency)
	if err != nil {
		return nil, errors.NewScoringCancelledError(err)
	}

	output := &Output{
		BatchID:         h.newBatchID(),
		ThesisID:        thesis.ID,
		TotalScored:     len(results),
		CandidateSource: source,
		Matches:         make([]RankedMatch, 0, len(results)),
	}

	for _, result := range results {
		metrics.ObserveMatch(string(result.ConfidenceLevel), result.OverallScore, result.Excluded)
		if result.Excluded {
			output.ExcludedCount++
			if !input.IncludeExcluded {
				continue
			}
		}
		output.Matches = append(output.Matches, RankedMatch{
			MatchID:     matching.MatchID(result.StartupID, result.ThesisID),
			MatchResult: result,
		})
	}

	sortMatches(output.Matches)

	if limit := h.limit(input.Limit); len(output.Matches) > limit {
		output.Matches = output.Matches[:limit]
	}
	for i := range output.Matches {
		output.Matches[i].Rank = i + 1
	}

	h.obs.RecordRanking(ctx, output.TotalScored, len(output.Matches))
	h.logger.Info("candidates ranked", map[string]interface{}{
		"thesisId": thesis.ID,
		"batchId":  output.BatchID,
		"source":   source,
		"scored":   output.TotalScored,
		"excluded": output.ExcludedCount,
		"returned": len(output.Matches),
	})

	return output, nil
}

// sortMatches orders by overall score, highest first. Ties fall back to
// startup ID so a ranking is reproducible.
func sortMatches(matches []RankedMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].OverallScore != matches[j].OverallScore {
			return matches[i].OverallScore > matches[j].OverallScore
		}
		return matches[i].StartupID < matches[j].StartupID
	})
}

func (h *Handler) limit(requested int) int {
	if requested <= 0 || requested > h.config.MaxResults {
		return h.config.MaxResults
	}
	return requested
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

func (h *Handler) candidates(ctx context.Context, input *Input, thesis matching.InvestorThesis) ([]matching.StartupProfile, string, error) {
	if len(input.Startups) > 0 {
		return input.Startups, sourceInput, nil
	}
	if h.searcher == nil {
		return nil, "", errors.NewInvalidInputError("candidate search is not configured; pass startups inline")
	}

	found, err := h.searcher.SearchCandidates(ctx, thesis, h.config.CandidatePoolSize)
	if err != nil {
		return nil, "", err
	}
	return found, sourceSearch, nil
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
	if appConfig.Matching.BatchConcurrency > 0 {
		cfg.Concurrency = appConfig.Matching.BatchConcurrency
	}
	if appConfig.Matching.MaxRankedResults > 0 {
		cfg.MaxResults = appConfig.Matching.MaxRankedResults
	}
	if appConfig.Matching.CandidateLimit > 0 {
		cfg.CandidatePoolSize = appConfig.Matching.CandidateLimit
	}
	if cfg.CandidatePoolSize < cfg.MaxResults {
		cfg.CandidatePoolSize = cfg.MaxResults * 4
	}
	return cfg
}
