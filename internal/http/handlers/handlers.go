package handlers

import (
	"context"

	"github.com/tbourn/go-risk-gateway/internal/domain"
	"github.com/tbourn/go-risk-gateway/internal/services"
	"github.com/tbourn/go-risk-gateway/internal/upstream"
)

//
// Service contracts (context-aware)
//

// ScreeningService registers addresses with the risk provider and fetches
// verdicts.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ScreeningService interface {
	// Register forwards address to the provider on every call.
	Register(ctx context.Context, address string) (*upstream.Result, error)
	// Screen returns the provider's current verdict for address.
	Screen(ctx context.Context, address string) (*upstream.Result, error)
}

// AssessmentService records verdicts and serves recent history.
type AssessmentService interface {
	// Record appends one verdict.
	Record(ctx context.Context, in services.RecordInput) (*domain.RiskAssessment, error)
	// Latest returns up to limit verdicts, newest first.
	Latest(ctx context.Context, limit int) ([]domain.RiskAssessment, error)
}

// historyStats is implemented by assessment services that can describe the
// store cheaply; it enables the history ETag.
type historyStats interface {
	Stats(ctx context.Context) (count int64, maxID uint64, err error)
}

// historyLimiter reports how many records Latest will actually serve, so the
// ETag names the configured history size rather than the requested one.
type historyLimiter interface {
	EffectiveLimit(limit int) int
}

//
// Handler wiring
//

// Handlers groups the screening and history endpoints.
type Handlers struct {
	screenSvc ScreeningService
	assessSvc AssessmentService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(screenSvc ScreeningService, assessSvc AssessmentService) *Handlers {
	return &Handlers{screenSvc: screenSvc, assessSvc: assessSvc}
}
