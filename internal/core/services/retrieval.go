package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// DefaultRetrievalTimeout bounds a single event store fetch.
const DefaultRetrievalTimeout = 5 * time.Second

// RetrievalService fetches the latest event rows for a topic.
// Failures never propagate as errors; they are tagged on the result.
type RetrievalService struct {
	store    driven.EventStore
	timeout  time.Duration
	observer driven.Observer
}

// NewRetrievalService creates a new retrieval service.
// A non-positive timeout selects DefaultRetrievalTimeout.
func NewRetrievalService(store driven.EventStore, timeout time.Duration) *RetrievalService {
	if timeout <= 0 {
		timeout = DefaultRetrievalTimeout
	}
	return &RetrievalService{store: store, timeout: timeout}
}

// SetObserver sets the metrics sink.
func (s *RetrievalService) SetObserver(o driven.Observer) {
	s.observer = o
}

// Fetch runs the topic's fixed query under the retrieval timeout.
func (s *RetrievalService) Fetch(ctx context.Context, topic domain.Topic) domain.Retrieval {
	q, ok := domain.EventQueryFor(topic)
	if !ok {
		return s.fail(topic, nil, fmt.Errorf("%w: topic %q has no data source", domain.ErrInvalidInput, topic))
	}
	if s.store == nil {
		return s.fail(topic, q.Columns, fmt.Errorf("%w: no event store configured", domain.ErrRetrievalFailed))
	}

	logger.Debug("Fetching %s: table=%s limit=%d", topic, q.Table, q.Limit)

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	records, err := s.store.Latest(fetchCtx, q)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: timed out after %s: %w", domain.ErrRetrievalFailed, s.timeout, err)
		} else {
			err = fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
		}
		return s.fail(topic, q.Columns, err)
	}

	if len(records) > q.Limit {
		records = records[:q.Limit]
	}

	if len(records) == 0 {
		logger.Info("No %s rows in %s", topic, q.Table)
		s.observe(topic, domain.RetrievalEmpty)
		return domain.Retrieval{Topic: topic, Columns: q.Columns, Status: domain.RetrievalEmpty}
	}

	logger.Debug("Fetched %d %s rows in %s", len(records), topic, time.Since(start))
	s.observe(topic, domain.RetrievalOK)
	return domain.Retrieval{
		Topic:   topic,
		Columns: q.Columns,
		Records: records,
		Status:  domain.RetrievalOK,
	}
}

func (s *RetrievalService) fail(topic domain.Topic, columns []string, err error) domain.Retrieval {
	logger.Warn("retrieval %s failed: %v", topic, err)
	s.observe(topic, domain.RetrievalFailed)
	return domain.Retrieval{
		Topic:   topic,
		Columns: columns,
		Status:  domain.RetrievalFailed,
		Err:     err,
	}
}

func (s *RetrievalService) observe(topic domain.Topic, status domain.RetrievalStatus) {
	if s.observer != nil {
		s.observer.ObserveRetrieval(topic, status)
	}
}
