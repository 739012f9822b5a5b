package driven

import (
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// Observer records request outcomes. Implementations must be goroutine-safe.
type Observer interface {
	// ObserveAsk records the terminal state of one question.
	ObserveAsk(topic domain.Topic, state domain.State)

	// ObserveRetrieval records one event store fetch.
	ObserveRetrieval(topic domain.Topic, status domain.RetrievalStatus)

	// ObserveGeneration records one LLM call.
	ObserveGeneration(elapsed time.Duration, err error)

	// ObserveDispatch records one delivery attempt.
	ObserveDispatch(sent bool)
}
