// Package service implements the dispatch core: the classifier's
// escalation ladder, the approval gate, and the orchestrator.
package service

import (
	"context"

	"github.com/example/switchboard/internal/adapter/llm"
	"github.com/example/switchboard/internal/adapter/notify"
	"github.com/example/switchboard/internal/config"
	store "github.com/example/switchboard/internal/repository"
	"github.com/example/switchboard/internal/workers"
	"github.com/example/switchboard/policy"
)

type Service struct {
	store        store.Store
	llmClient    llm.LLMClient
	notifier     notify.Notifier
	registry     *workers.Registry
	config       *config.Config
	policyEngine *policy.Engine
}

func New(st store.Store, llmClient llm.LLMClient, notifier notify.Notifier, registry *workers.Registry, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        st,
		llmClient:    llmClient,
		notifier:     notifier,
		registry:     registry,
		config:       cfg,
		policyEngine: policyEngine,
	}
}

// Registry exposes the worker registry for introspection endpoints.
func (s *Service) Registry() *workers.Registry {
	return s.registry
}

// Models retrieves the model list from the LLM gateway.
func (s *Service) Models(ctx context.Context) ([]llm.Model, error) {
	return s.llmClient.ListModels(ctx)
}
