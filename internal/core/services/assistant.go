package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// Ensure Assistant implements the interface.
var _ driving.Assistant = (*Assistant)(nil)

// IntentClassifier maps a question to a topic and detects delivery intent.
type IntentClassifier interface {
	Classify(question string) domain.Topic
	WantsDelivery(question string) bool
}

// EventRetriever fetches the latest rows for a topic.
type EventRetriever interface {
	Fetch(ctx context.Context, topic domain.Topic) domain.Retrieval
}

// PromptRenderer builds a grounding prompt.
type PromptRenderer interface {
	Build(question string, topic domain.Topic, records []domain.EventRecord) string
}

// TextGenerator produces a completion.
type TextGenerator interface {
	Generate(ctx context.Context, userContent string) (string, error)
}

// ReportFormatter frames a completion as a report.
type ReportFormatter interface {
	Compose(topic domain.Topic, generated string) domain.Report
}

// ReportSender delivers a report and reports success.
type ReportSender interface {
	Send(ctx context.Context, subject, body string) bool
}

// AssistantDeps holds the collaborators of an Assistant.
// Observer and NewRequestID are optional.
type AssistantDeps struct {
	Classifier IntentClassifier
	Retriever  EventRetriever
	Prompts    PromptRenderer
	Generator  TextGenerator
	Composer   ReportFormatter
	Dispatcher ReportSender
	Observer   driven.Observer

	// ComposeGeneral frames General answers as reports. When false the
	// completion is returned unchanged.
	ComposeGeneral bool

	// NewRequestID overrides request id generation.
	NewRequestID func() string
}

// Assistant answers questions. It holds no per-request state and is safe
// for concurrent use when its collaborators are.
type Assistant struct {
	deps AssistantDeps
}

// NewAssistant creates an assistant from its collaborators.
func NewAssistant(deps AssistantDeps) (*Assistant, error) {
	var missing []string
	if deps.Classifier == nil {
		missing = append(missing, "classifier")
	}
	if deps.Retriever == nil {
		missing = append(missing, "retriever")
	}
	if deps.Prompts == nil {
		missing = append(missing, "prompt builder")
	}
	if deps.Generator == nil {
		missing = append(missing, "generator")
	}
	if deps.Composer == nil {
		missing = append(missing, "composer")
	}
	if deps.Dispatcher == nil {
		missing = append(missing, "dispatcher")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: assistant missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if deps.NewRequestID == nil {
		deps.NewRequestID = func() string { return uuid.NewString() }
	}
	return &Assistant{deps: deps}, nil
}

// run tracks the state trail of one request.
type run struct {
	answer domain.Answer
	log    logger.Entry
}

func (r *run) enter(s domain.State) {
	r.answer.State = s
	r.answer.Trail = append(r.answer.Trail, s)
	r.log.Debug("state=%s", s)
}

// Ask answers one question. See driving.Assistant.
func (a *Assistant) Ask(ctx context.Context, question string) (domain.Answer, error) {
	id := a.deps.NewRequestID()
	r := &run{
		answer: domain.Answer{RequestID: id, Delivery: domain.DeliveryNotRequested},
		log:    logger.WithRequest(id),
	}

	logger.Section("Ask")
	r.enter(domain.StateReceived)
	r.log.Debug("question=%q", question)

	topic := a.deps.Classifier.Classify(question)
	r.answer.Topic = topic
	r.log = r.log.With("topic", topic)
	r.enter(domain.StateClassified)

	var (
		generated string
		err       error
	)
	if topic == domain.TopicGeneral {
		r.enter(domain.StateSkipped)
		generated, err = a.deps.Generator.Generate(ctx, question)
	} else {
		res := a.deps.Retriever.Fetch(ctx, topic)
		if err := abandoned(ctx, r); err != nil {
			return r.answer, err
		}
		if !res.HasData() {
			if res.Status == domain.RetrievalFailed {
				r.log.Warn("retrieval failed: %v", res.Err)
			}
			r.answer.Text = domain.NoDataMessage(topic)
			r.enter(domain.StateNoData)
			return a.finish(r), nil
		}
		r.answer.Rows = len(res.Records)
		r.log = r.log.With("rows", r.answer.Rows)
		r.enter(domain.StateRetrieved)

		prompt := a.deps.Prompts.Build(question, topic, res.Records)
		r.enter(domain.StatePrompted)
		generated, err = a.deps.Generator.Generate(ctx, prompt)
	}

	if err == nil && strings.TrimSpace(generated) == "" {
		err = fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}
	if err != nil {
		if err := abandoned(ctx, r); err != nil {
			return r.answer, err
		}
		r.log.Error("generation failed: %v", err)
		r.answer.Text = domain.GenerationFailedMessage
		if errors.Is(err, domain.ErrGenerationTimeout) {
			r.answer.Text = domain.GenerationTimeoutMessage
		}
		r.enter(domain.StateGenerationFailed)
		if !errors.Is(err, domain.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}
		return a.finish(r), err
	}
	r.enter(domain.StateGenerated)

	text := generated
	subject := topic.Subject()
	if topic != domain.TopicGeneral || a.deps.ComposeGeneral {
		report := a.deps.Composer.Compose(topic, generated)
		text = report.String()
		subject = report.Subject()
		r.enter(domain.StateComposed)
	}

	if a.deps.Classifier.WantsDelivery(question) {
		if a.deps.Dispatcher.Send(ctx, subject, text) {
			text += domain.DispatchSuccessSuffix
			r.answer.Delivery = domain.DeliverySent
			r.enter(domain.StateDispatched)
		} else {
			text += domain.DispatchFailureSuffix
			r.answer.Delivery = domain.DeliveryFailed
			r.enter(domain.StateNotDispatched)
		}
	}

	r.answer.Text = text
	r.enter(domain.StateDone)
	return a.finish(r), nil
}

// abandoned returns the caller's context error once it has ended. A failed
// store or LLM call is then reported as the cancellation, not as no data
// or a generation failure.
func abandoned(ctx context.Context, r *run) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	r.log.Debug("abandoned at state=%s: %v", r.answer.State, err)
	return fmt.Errorf("ask: %w", err)
}

func (a *Assistant) finish(r *run) domain.Answer {
	if a.deps.Observer != nil {
		a.deps.Observer.ObserveAsk(r.answer.Topic, r.answer.State)
	}
	return r.answer
}
