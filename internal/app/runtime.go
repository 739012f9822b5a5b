// Package app is the composition root: it turns resolved settings into a
// wired Assistant and DashboardService backed by real adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/urbanbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/urbanbot/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/urbanbot/internal/adapters/driven/notify/smtp"
	"github.com/custodia-labs/urbanbot/internal/adapters/driven/storage/cache"
	"github.com/custodia-labs/urbanbot/internal/adapters/driven/storage/sqlstore"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
	"github.com/custodia-labs/urbanbot/internal/core/services"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// Options customises how a Runtime is built. Zero values select the
// production adapters.
type Options struct {
	// PromptDir overrides ~/.urbanbot/prompts.
	PromptDir string

	// OpenStore opens the event store. Defaults to sqlstore.Open.
	OpenStore func(cfg domain.DatabaseSettings) (driven.EventStore, error)

	// NewLLM creates the generation client. Defaults to ai.CreateLLMService.
	NewLLM func(ctx context.Context, s *domain.LLMSettings) (driven.LLMService, error)

	// NewNotifier creates the e-mail channel. Defaults to SMTP.
	// It is only called when e-mail settings are complete.
	NewNotifier func(ctx context.Context, s domain.EmailSettings) (driven.Notifier, error)
}

func (o *Options) defaults() {
	if o.OpenStore == nil {
		o.OpenStore = func(cfg domain.DatabaseSettings) (driven.EventStore, error) {
			store, err := sqlstore.Open(cfg)
			if err != nil {
				return nil, err
			}
			return store, nil
		}
	}
	if o.NewLLM == nil {
		o.NewLLM = ai.CreateLLMService
	}
	if o.NewNotifier == nil {
		o.NewNotifier = func(ctx context.Context, s domain.EmailSettings) (driven.Notifier, error) {
			n, err := smtp.NewFromSettings(ctx, s, smtp.GoogleEndpoint)
			if err != nil {
				return nil, err
			}
			return n, nil
		}
	}
}

// Runtime holds the wired services and the resources they own.
type Runtime struct {
	settings  domain.Settings
	rules     []domain.TopicRule
	assistant *services.Assistant
	dashboard *services.DashboardService
	observer  *prometheus.Observer
	prompts   *file.PromptStore

	store    driven.EventStore
	llm      driven.LLMService
	notifier driven.Notifier
}

// New validates settings and builds a Runtime.
// Configuration errors list every missing key before anything is opened.
func New(ctx context.Context, settingsService driving.SettingsService, opts Options) (*Runtime, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	opts.defaults()

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{settings: *settings, observer: prometheus.NewObserver()}

	r.store, err = opts.OpenStore(settings.Database)
	if err != nil {
		return nil, fmt.Errorf("opening event store: %w", err)
	}

	r.llm, err = opts.NewLLM(ctx, &settings.LLM)
	if err != nil {
		r.Close() //nolint:errcheck
		return nil, fmt.Errorf("creating LLM service: %w", err)
	}

	r.prompts, err = file.NewPromptStore(opts.PromptDir)
	if err != nil {
		r.Close() //nolint:errcheck
		return nil, fmt.Errorf("opening prompt store: %w", err)
	}

	if settings.Email.IsConfigured() {
		r.notifier, err = opts.NewNotifier(ctx, settings.Email)
		if err != nil {
			r.Close() //nolint:errcheck
			return nil, fmt.Errorf("creating notifier: %w", err)
		}
	} else {
		logger.Debug("e-mail not configured; delivery requests will report failure")
	}

	if err := r.wire(); err != nil {
		r.Close() //nolint:errcheck
		return nil, err
	}
	return r, nil
}

func (r *Runtime) wire() error {
	s := r.settings
	r.rules = services.MergeTopicRules(domain.DefaultTopicRules(), s.Assistant.ExtraKeywords)

	retrieval := services.NewRetrievalService(r.store, s.Timeouts.Retrieval)
	retrieval.SetObserver(r.observer)

	prompts := services.NewPromptBuilder()
	prompts.SetPromptStore(r.prompts)

	generation := services.NewGenerationService(r.llm, s.LLM.Temperature, s.Timeouts.Generation)
	generation.SetPromptStore(r.prompts)
	generation.SetObserver(r.observer)

	dispatch := services.NewDispatchService(r.notifier, s.Timeouts.Dispatch)
	dispatch.SetObserver(r.observer)

	assistant, err := services.NewAssistant(services.AssistantDeps{
		Classifier:     services.NewClassifier(r.rules),
		Retriever:      retrieval,
		Prompts:        prompts,
		Generator:      generation,
		Composer:       services.NewReportComposer(),
		Dispatcher:     dispatch,
		Observer:       r.observer,
		ComposeGeneral: s.Assistant.ComposeGeneral,
	})
	if err != nil {
		return fmt.Errorf("wiring assistant: %w", err)
	}
	r.assistant = assistant
	counters := r.store
	if s.Dashboard.CacheTTL > 0 {
		counters = cache.NewEventStore(r.store, cache.DefaultSize, s.Dashboard.CacheTTL)
	}
	r.dashboard = services.NewDashboardService(counters, s.Timeouts.Retrieval)

	model := "none"
	if r.llm != nil {
		model = r.llm.ModelName()
	}
	logger.Debug("runtime ready: store=%s llm=%s/%s email=%t",
		s.Database.Driver, s.LLM.Provider, model, r.notifier != nil)
	return nil
}

// Assistant returns the question-answering service.
func (r *Runtime) Assistant() driving.Assistant {
	return r.assistant
}

// Dashboard returns the dashboard service.
func (r *Runtime) Dashboard() driving.DashboardService {
	return r.dashboard
}

// MetricsHandler serves the Prometheus registry.
func (r *Runtime) MetricsHandler() http.Handler {
	return r.observer.Handler()
}

// Rules returns the effective classifier rule table.
func (r *Runtime) Rules() []domain.TopicRule {
	return r.rules
}

// Settings returns the settings the runtime was built from.
func (r *Runtime) Settings() domain.Settings {
	return r.settings
}

// WatchPrompts reloads prompt templates when their files change.
// It blocks until ctx is done.
func (r *Runtime) WatchPrompts(ctx context.Context) error {
	return r.prompts.Watch(ctx, func(name string) {
		logger.Debug("prompt %q will be used from the next question", name)
	})
}

// Close releases the store, LLM client and notifier.
func (r *Runtime) Close() error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	if r.llm != nil {
		errs = append(errs, r.llm.Close())
	}
	if r.notifier != nil {
		errs = append(errs, r.notifier.Close())
	}
	return errors.Join(errs...)
}
