package driving

import (
	"context"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// Assistant answers free-text questions about the city.
type Assistant interface {
	// Ask runs one question through classification, retrieval, generation,
	// composition and optional delivery. The returned Answer always carries
	// user-visible text unless ctx ended first; the error then wraps
	// ctx.Err(). Otherwise the error is non-nil only when generation
	// failed, and wraps domain.ErrGenerationFailed.
	Ask(ctx context.Context, question string) (domain.Answer, error)
}
