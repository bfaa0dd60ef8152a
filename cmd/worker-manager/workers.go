package main

import (
	"fmt"

	"dealflow-workers/internal/common/aws"
	"dealflow-workers/internal/common/camunda"
	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/observability"
	"dealflow-workers/internal/common/validation"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/repository"
	"dealflow-workers/pkg/registry"

	csm "dealflow-workers/internal/workers/matching/calculate-startup-match"
	rsm "dealflow-workers/internal/workers/matching/rank-startup-matches"
	sm "dealflow-workers/internal/workers/matching/summarize-matches"
	vtw "dealflow-workers/internal/workers/matching/validate-thesis-weights"
)

// startupThesisReader is satisfied by the cached store.
type startupThesisReader interface {
	repository.StartupReader
	repository.ThesisReader
}

type dependencies struct {
	cfg       *config.Config
	engine    *matching.Engine
	store     startupThesisReader
	matches   repository.MatchReader
	searcher  repository.CandidateSearcher
	publisher aws.EventPublisher
	validator *validation.Validator
	obs       *observability.Observability
	log       logger.Logger
}

// buildRegistrations constructs every matching worker. A task type missing
// from the activity registry is a deployment mistake and stops startup.
func buildRegistrations(d dependencies, reg *registry.ActivityRegistry) ([]camunda.Registration, error) {
	calculate, err := csm.NewHandler(csm.HandlerOptions{
		AppConfig:     d.cfg,
		Engine:        d.engine,
		Startups:      d.store,
		Theses:        d.store,
		Publisher:     d.publisher,
		Validator:     d.validator,
		Observability: d.obs,
		Logger:        d.log,
	})
	if err != nil {
		return nil, err
	}

	rank, err := rsm.NewHandler(rsm.HandlerOptions{
		AppConfig:     d.cfg,
		Engine:        d.engine,
		Theses:        d.store,
		Searcher:      d.searcher,
		Validator:     d.validator,
		Observability: d.obs,
		Logger:        d.log,
	})
	if err != nil {
		return nil, err
	}

	weights, err := vtw.NewHandler(vtw.HandlerOptions{
		AppConfig:     d.cfg,
		Engine:        d.engine,
		Validator:     d.validator,
		Observability: d.obs,
		Logger:        d.log,
	})
	if err != nil {
		return nil, err
	}

	summarize, err := sm.NewHandler(sm.HandlerOptions{
		AppConfig:     d.cfg,
		Matches:       d.matches,
		Validator:     d.validator,
		Observability: d.obs,
		Logger:        d.log,
	})
	if err != nil {
		return nil, err
	}

	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{csm.TaskType, calculate},
		{rsm.TaskType, rank},
		{vtw.TaskType, weights},
		{sm.TaskType, summarize},
	}

	registrations := make([]camunda.Registration, 0, len(handlers))
	for _, h := range handlers {
		if _, ok := reg.Find(h.taskType); !ok {
			return nil, fmt.Errorf("task type %s is not in the activity registry", h.taskType)
		}
		registrations = append(registrations, camunda.Registration{
			TaskType: h.taskType,
			Config:   config.GetWorkerConfig(d.cfg, h.taskType),
			Handler:  h.handler,
		})
	}
	return registrations, nil
}
