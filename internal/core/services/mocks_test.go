package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

// --- Driven port doubles ---

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu       sync.Mutex
	response string
	err      error
	delay    time.Duration
	calls    int
	messages [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	m.messages = append(m.messages, messages)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockEventStore implements driven.EventStore for testing.
type mockEventStore struct {
	records    []domain.EventRecord
	latestErr  error
	counts     map[string]int64
	countErr   error
	cities     []domain.CityCount
	byCityErr  error
	calls      int
	lastQuery  domain.EventQuery
	blockUntil bool
}

func (m *mockEventStore) Latest(ctx context.Context, q domain.EventQuery) ([]domain.EventRecord, error) {
	m.calls++
	m.lastQuery = q
	if m.blockUntil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.records, m.latestErr
}

func (m *mockEventStore) Count(_ context.Context, q domain.CountQuery) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.counts[q.Name], nil
}

func (m *mockEventStore) CountByCity(_ context.Context, _ domain.CountQuery) ([]domain.CityCount, error) {
	return m.cities, m.byCityErr
}

func (m *mockEventStore) Ping(_ context.Context) error { return nil }
func (m *mockEventStore) Close() error                 { return nil }

// mockNotifier implements driven.Notifier for testing.
type mockNotifier struct {
	err      error
	calls    int
	messages []driven.Message
	deadline bool
}

func (m *mockNotifier) Send(ctx context.Context, msg driven.Message) error {
	m.calls++
	m.messages = append(m.messages, msg)
	_, m.deadline = ctx.Deadline()
	return m.err
}

func (m *mockNotifier) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockObserver implements driven.Observer for testing.
type mockObserver struct {
	mu          sync.Mutex
	asks        []domain.State
	retrievals  []domain.RetrievalStatus
	generations []error
	dispatches  []bool
}

func (m *mockObserver) ObserveAsk(_ domain.Topic, state domain.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asks = append(m.asks, state)
}

func (m *mockObserver) ObserveRetrieval(_ domain.Topic, status domain.RetrievalStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrievals = append(m.retrievals, status)
}

func (m *mockObserver) ObserveGeneration(_ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, err)
}

func (m *mockObserver) ObserveDispatch(sent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatches = append(m.dispatches, sent)
}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	err    error
	called bool
	got    domain.LLMSettings
}

func (m *mockAIValidator) ValidateLLM(_ context.Context, cfg *domain.LLMSettings) error {
	m.called = true
	m.got = *cfg
	return m.err
}

// --- Collaborator doubles for the Assistant ---

type stubRetriever struct {
	result domain.Retrieval
	calls  int
}

func (s *stubRetriever) Fetch(_ context.Context, topic domain.Topic) domain.Retrieval {
	s.calls++
	r := s.result
	r.Topic = topic
	return r
}

type stubGenerator struct {
	text   string
	err    error
	calls  int
	inputs []string
}

func (s *stubGenerator) Generate(_ context.Context, userContent string) (string, error) {
	s.calls++
	s.inputs = append(s.inputs, userContent)
	return s.text, s.err
}

type stubPrompts struct {
	calls int
}

func (s *stubPrompts) Build(question string, topic domain.Topic, records []domain.EventRecord) string {
	s.calls++
	return NewPromptBuilder().Build(question, topic, records)
}

type stubComposer struct {
	calls int
}

func (s *stubComposer) Compose(topic domain.Topic, generated string) domain.Report {
	s.calls++
	return domain.NewReport(topic, generated)
}

type stubSender struct {
	ok       bool
	calls    int
	subjects []string
	bodies   []string
}

func (s *stubSender) Send(_ context.Context, subject, body string) bool {
	s.calls++
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, body)
	return s.ok
}
