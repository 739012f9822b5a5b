package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

type assistantFixture struct {
	retriever *stubRetriever
	prompts   *stubPrompts
	generator *stubGenerator
	composer  *stubComposer
	sender    *stubSender
	observer  *mockObserver
}

func newAssistantFixture() *assistantFixture {
	return &assistantFixture{
		retriever: &stubRetriever{result: domain.Retrieval{Status: domain.RetrievalOK, Records: trafficRecords()}},
		prompts:   &stubPrompts{},
		generator: &stubGenerator{text: "Traffic is heavy in Chennai."},
		composer:  &stubComposer{},
		sender:    &stubSender{ok: true},
		observer:  &mockObserver{},
	}
}

func (f *assistantFixture) build(t *testing.T, composeGeneral bool) *Assistant {
	t.Helper()
	a, err := NewAssistant(AssistantDeps{
		Classifier:     NewClassifier(nil),
		Retriever:      f.retriever,
		Prompts:        f.prompts,
		Generator:      f.generator,
		Composer:       f.composer,
		Dispatcher:     f.sender,
		Observer:       f.observer,
		ComposeGeneral: composeGeneral,
		NewRequestID:   func() string { return "req-1" },
	})
	require.NoError(t, err)
	return a
}

func TestNewAssistant_MissingDeps(t *testing.T) {
	_, err := NewAssistant(AssistantDeps{Classifier: NewClassifier(nil)})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "retriever")
	assert.Contains(t, err.Error(), "dispatcher")
}

func TestNewAssistant_DefaultRequestID(t *testing.T) {
	f := newAssistantFixture()
	a, err := NewAssistant(AssistantDeps{
		Classifier: NewClassifier(nil),
		Retriever:  f.retriever,
		Prompts:    f.prompts,
		Generator:  f.generator,
		Composer:   f.composer,
		Dispatcher: f.sender,
	})
	require.NoError(t, err)

	first, err := a.Ask(context.Background(), "hello")
	require.NoError(t, err)
	second, err := a.Ask(context.Background(), "hello")
	require.NoError(t, err)

	assert.Len(t, first.RequestID, 36)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

// Scenario: topic question with rows and no delivery keyword.
func TestAssistant_Ask_TopicWithRows(t *testing.T) {
	f := newAssistantFixture()
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "show me traffic in Chennai")

	require.NoError(t, err)
	assert.Equal(t, domain.TopicTraffic, ans.Topic)
	assert.Equal(t, "req-1", ans.RequestID)
	assert.Equal(t, 3, ans.Rows)
	assert.Equal(t, 1, f.retriever.calls)
	assert.Equal(t, 1, f.prompts.calls)
	require.Equal(t, 1, f.generator.calls)

	prompt := f.generator.inputs[0]
	assert.Contains(t, prompt, "show me traffic in Chennai")
	for _, r := range trafficRecords() {
		assert.Contains(t, prompt, r.Values[0])
		assert.Contains(t, prompt, r.Values[1])
	}

	want := domain.NewReport(domain.TopicTraffic, "Traffic is heavy in Chennai.").String()
	assert.Equal(t, want, ans.Text)
	assert.NotContains(t, ans.Text, domain.DispatchSuccessSuffix)
	assert.NotContains(t, ans.Text, domain.DispatchFailureSuffix)
	assert.Equal(t, 0, f.sender.calls)
	assert.Equal(t, domain.DeliveryNotRequested, ans.Delivery)

	assert.Equal(t, domain.StateDone, ans.State)
	assert.Equal(t, []domain.State{
		domain.StateReceived, domain.StateClassified, domain.StateRetrieved,
		domain.StatePrompted, domain.StateGenerated, domain.StateComposed, domain.StateDone,
	}, ans.Trail)
	assert.Equal(t, []domain.State{domain.StateDone}, f.observer.asks)
}

// Scenario: delivery requested but no rows.
func TestAssistant_Ask_NoData_ShortCircuits(t *testing.T) {
	f := newAssistantFixture()
	f.retriever.result = domain.Retrieval{Status: domain.RetrievalEmpty}
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "send me the latest accident report by email")

	require.NoError(t, err)
	assert.Equal(t, domain.TopicAccident, ans.Topic)
	assert.Equal(t, "⚠️ No accident data available in database.", ans.Text)
	assert.Equal(t, domain.StateNoData, ans.State)
	assert.Equal(t, 0, f.generator.calls)
	assert.Equal(t, 0, f.prompts.calls)
	assert.Equal(t, 0, f.sender.calls)
	assert.Equal(t, domain.DeliveryNotRequested, ans.Delivery)
}

func TestAssistant_Ask_RetrievalFailure_FoldsIntoNoData(t *testing.T) {
	f := newAssistantFixture()
	f.retriever.result = domain.Retrieval{Status: domain.RetrievalFailed, Err: domain.ErrRetrievalFailed}
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "pothole status")

	require.NoError(t, err)
	assert.Equal(t, domain.NoDataMessage(domain.TopicRoadDamage), ans.Text)
	assert.Equal(t, domain.StateNoData, ans.State)
	assert.Equal(t, 0, f.generator.calls)
}

func TestAssistant_Ask_CallerCancelled_IsNotNoData(t *testing.T) {
	store := memory.NewEventStore()
	store.Insert("accident_events", memory.Row{"city": "Chennai", "severity": "Severe", "event_time": "2025-01-12 08:00:00"})
	f := newAssistantFixture()
	a, err := NewAssistant(AssistantDeps{
		Classifier:   NewClassifier(nil),
		Retriever:    NewRetrievalService(store, time.Second),
		Prompts:      f.prompts,
		Generator:    f.generator,
		Composer:     f.composer,
		Dispatcher:   f.sender,
		Observer:     f.observer,
		NewRequestID: func() string { return "req-1" },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ans, err := a.Ask(ctx, "accident in Chennai")

	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Empty(t, ans.Text)
	assert.NotEqual(t, domain.StateNoData, ans.State)
	assert.Equal(t, domain.TopicAccident, ans.Topic)
	assert.Equal(t, 0, f.generator.calls)
	assert.Empty(t, f.observer.asks)
}

// cancellingGenerator ends the caller's context mid-call, as a client
// disconnecting during generation would.
type cancellingGenerator struct {
	cancel context.CancelFunc
}

func (g *cancellingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	g.cancel()
	<-ctx.Done()
	return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, ctx.Err())
}

func TestAssistant_Ask_CancelledDuringGeneration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newAssistantFixture()
	a, err := NewAssistant(AssistantDeps{
		Classifier: NewClassifier(nil),
		Retriever:  f.retriever,
		Prompts:    f.prompts,
		Generator:  &cancellingGenerator{cancel: cancel},
		Composer:   f.composer,
		Dispatcher: f.sender,
		Observer:   f.observer,
	})
	require.NoError(t, err)

	ans, err := a.Ask(ctx, "traffic in Chennai, email it")

	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Empty(t, ans.Text)
	assert.Equal(t, 0, f.sender.calls)
	assert.Empty(t, f.observer.asks)
}

// Scenario: no topic keyword.
func TestAssistant_Ask_General_PassesThrough(t *testing.T) {
	f := newAssistantFixture()
	f.generator.text = "It is sunny."
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "what is the weather like today")

	require.NoError(t, err)
	assert.Equal(t, domain.TopicGeneral, ans.Topic)
	assert.Equal(t, 0, f.retriever.calls)
	assert.Equal(t, 0, f.prompts.calls)
	require.Equal(t, 1, f.generator.calls)
	assert.Equal(t, "what is the weather like today", f.generator.inputs[0])
	assert.Equal(t, "It is sunny.", ans.Text)
	assert.Equal(t, 0, f.composer.calls)
	assert.Equal(t, []domain.State{
		domain.StateReceived, domain.StateClassified, domain.StateSkipped,
		domain.StateGenerated, domain.StateDone,
	}, ans.Trail)
}

func TestAssistant_Ask_General_ComposeEnabled(t *testing.T) {
	f := newAssistantFixture()
	f.generator.text = "It is sunny."
	a := f.build(t, true)

	ans, err := a.Ask(context.Background(), "what is the weather like today")

	require.NoError(t, err)
	assert.Equal(t, 1, f.composer.calls)
	assert.Equal(t, domain.NewReport(domain.TopicGeneral, "It is sunny.").String(), ans.Text)
	assert.Contains(t, ans.Trail, domain.StateComposed)
}

func TestAssistant_Ask_Delivery(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		sendOK     bool
		wantCalls  int
		wantSuffix string
		wantState  domain.State
		wantStatus domain.DeliveryStatus
	}{
		{"success", "email me the crowd report", true, 1, domain.DispatchSuccessSuffix, domain.StateDispatched, domain.DeliverySent},
		{"failure", "send the crowd numbers", false, 1, domain.DispatchFailureSuffix, domain.StateNotDispatched, domain.DeliveryFailed},
		{"not requested", "crowd numbers", true, 0, "", "", domain.DeliveryNotRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssistantFixture()
			f.generator.text = "Gate 3 is overcrowded."
			f.sender.ok = tt.sendOK
			a := f.build(t, false)

			ans, err := a.Ask(context.Background(), tt.question)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, f.sender.calls)
			assert.Equal(t, tt.wantStatus, ans.Delivery)
			report := domain.NewReport(domain.TopicCrowd, "Gate 3 is overcrowded.")
			assert.Equal(t, report.String()+tt.wantSuffix, ans.Text)
			if tt.wantCalls > 0 {
				assert.Equal(t, "UrbanBot Crowd Density Report", f.sender.subjects[0])
				assert.Equal(t, report.String(), f.sender.bodies[0])
				assert.Contains(t, ans.Trail, tt.wantState)
			} else {
				assert.NotContains(t, ans.Text, domain.DispatchSuccessSuffix)
				assert.NotContains(t, ans.Text, domain.DispatchFailureSuffix)
			}
			assert.Equal(t, domain.StateDone, ans.State)
		})
	}
}

func TestAssistant_Ask_General_Delivery(t *testing.T) {
	f := newAssistantFixture()
	f.generator.text = "Here is a summary."
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "send me a summary of the city")

	require.NoError(t, err)
	require.Equal(t, 1, f.sender.calls)
	assert.Equal(t, "UrbanBot Report", f.sender.subjects[0])
	assert.Equal(t, "Here is a summary.", f.sender.bodies[0])
	assert.Equal(t, "Here is a summary."+domain.DispatchSuccessSuffix, ans.Text)
}

func TestAssistant_Ask_GenerationFailure(t *testing.T) {
	f := newAssistantFixture()
	f.generator.err = fmt.Errorf("%w: quota exceeded", domain.ErrGenerationFailed)
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "email me the traffic report")

	require.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, domain.GenerationFailedMessage, ans.Text)
	assert.Equal(t, domain.StateGenerationFailed, ans.State)
	assert.Equal(t, 0, f.composer.calls)
	assert.Equal(t, 0, f.sender.calls)
	assert.Equal(t, []domain.State{domain.StateGenerationFailed}, f.observer.asks)
}

func TestAssistant_Ask_GenerationTimeout(t *testing.T) {
	f := newAssistantFixture()
	f.generator.err = fmt.Errorf("groq: %w", domain.ErrGenerationTimeout)
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "hello there")

	require.ErrorIs(t, err, domain.ErrGenerationTimeout)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, domain.GenerationTimeoutMessage, ans.Text)
}

func TestAssistant_Ask_UntaggedGeneratorError_IsWrapped(t *testing.T) {
	f := newAssistantFixture()
	f.generator.err = errors.New("boom")
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "hello")

	require.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.NotEmpty(t, ans.Text)
}

func TestAssistant_Ask_EmptyCompletion_IsFailure(t *testing.T) {
	f := newAssistantFixture()
	f.generator.text = " \n"
	a := f.build(t, false)

	ans, err := a.Ask(context.Background(), "hello")

	require.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, domain.GenerationFailedMessage, ans.Text)
}

func TestAssistant_Ask_EveryPathHasText(t *testing.T) {
	questions := []string{"", "accident", "traffic email", "weather", "send crowd"}
	for _, genErr := range []error{nil, domain.ErrGenerationFailed} {
		for _, status := range []domain.RetrievalStatus{domain.RetrievalOK, domain.RetrievalEmpty, domain.RetrievalFailed} {
			for _, q := range questions {
				f := newAssistantFixture()
				f.generator.err = genErr
				f.retriever.result.Status = status
				a := f.build(t, false)

				ans, _ := a.Ask(context.Background(), q)

				assert.NotEmpty(t, ans.Text, "q=%q status=%s err=%v", q, status, genErr)
				assert.True(t, ans.State.IsTerminal())
			}
		}
	}
}

// End-to-end over real collaborators and an in-memory store.
func TestAssistant_Ask_EndToEnd(t *testing.T) {
	store := memory.NewEventStore()
	store.Insert("traffic_events",
		memory.Row{"city": "Chennai", "predicted_traffic": "812", "congestion_level": "High", "event_time": "2025-02-01 10:00:00"},
		memory.Row{"city": "Chennai", "predicted_traffic": "640", "congestion_level": "Medium", "event_time": "2025-02-01 09:00:00"},
		memory.Row{"city": "Madurai", "predicted_traffic": "120", "congestion_level": "Low", "event_time": "2025-02-01 08:00:00"},
	)
	llm := &mockLLM{response: "Chennai has high congestion."}
	notifier := &mockNotifier{}

	a, err := NewAssistant(AssistantDeps{
		Classifier: NewClassifier(nil),
		Retriever:  NewRetrievalService(store, time.Second),
		Prompts:    NewPromptBuilder(),
		Generator:  NewGenerationService(llm, 0.3, time.Second),
		Composer:   NewReportComposer(),
		Dispatcher: NewDispatchService(notifier, time.Second),
	})
	require.NoError(t, err)

	ans, err := a.Ask(context.Background(), "show me traffic in Chennai and email it")

	require.NoError(t, err)
	require.Equal(t, 1, llm.calls)
	userContent := llm.messages[0][1].Content
	assert.Contains(t, userContent, "Database Context:")
	assert.Equal(t, 3, strings.Count(userContent, "2025-02-01"))
	assert.Less(t, strings.Index(userContent, "812"), strings.Index(userContent, "640"))

	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, "UrbanBot Traffic Report", notifier.messages[0].Subject)
	assert.Contains(t, notifier.messages[0].Body, "Chennai has high congestion.")
	assert.True(t, strings.HasSuffix(ans.Text, domain.DispatchSuccessSuffix))
}

func TestAssistant_Ask_ConcurrentCalls(t *testing.T) {
	store := memory.NewEventStore()
	store.Insert("crowd_events", memory.Row{"city": "Pune", "crowd_count": "40", "event_time": "1"})
	llm := &mockLLM{response: "ok"}

	a, err := NewAssistant(AssistantDeps{
		Classifier: NewClassifier(nil),
		Retriever:  NewRetrievalService(store, time.Second),
		Prompts:    NewPromptBuilder(),
		Generator:  NewGenerationService(llm, 0.3, time.Second),
		Composer:   NewReportComposer(),
		Dispatcher: NewDispatchService(nil, time.Second),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ans, err := a.Ask(context.Background(), "crowd now")
			assert.NoError(t, err)
			assert.Equal(t, domain.StateDone, ans.State)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, llm.calls)
}
