// Package services – ScreeningService
//
// ScreeningService fronts the risk API: Register announces an address to the
// provider and Screen fetches its verdict. Neither call is deduplicated or
// retried. With write-through enabled, Screen also records the verdict via
// AssessmentService; a failed write is logged and the verdict still returned.
package services

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-risk-gateway/internal/domain"
	"github.com/tbourn/go-risk-gateway/internal/upstream"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RiskAPI is the subset of the upstream client used by ScreeningService.
type RiskAPI interface {
	Register(ctx context.Context, address string) (*upstream.Result, error)
	Fetch(ctx context.Context, address string) (*upstream.Result, error)
}

// Recorder stores a verdict. *AssessmentService satisfies it.
type Recorder interface {
	Record(ctx context.Context, in RecordInput) (*domain.RiskAssessment, error)
}

// ScreeningService coordinates upstream calls for a single address.
type ScreeningService struct {
	API RiskAPI

	// Store receives verdicts when WriteThrough is set.
	Store        Recorder
	WriteThrough bool

	// RequireEVMAddress rejects addresses that are not 0x-prefixed hex.
	RequireEVMAddress bool
}

// NewScreeningService constructs a ScreeningService without write-through.
func NewScreeningService(api RiskAPI) *ScreeningService {
	return &ScreeningService{API: api}
}

// Register validates address and forwards it to the provider.
func (s *ScreeningService) Register(ctx context.Context, address string) (*upstream.Result, error) {
	tr := otel.Tracer("services/ScreeningService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(attribute.String("entity.address", address)),
	)
	defer span.End()

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &ValidationError{Kind: MissingAddress}
	}
	if s.RequireEVMAddress && !common.IsHexAddress(address) {
		return nil, &ValidationError{Kind: InvalidAddress}
	}

	res, err := s.API.Register(ctx, address)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

// Screen fetches the provider's verdict for address.
func (s *ScreeningService) Screen(ctx context.Context, address string) (*upstream.Result, error) {
	tr := otel.Tracer("services/ScreeningService")
	ctx, span := tr.Start(ctx, "Screen",
		trace.WithAttributes(
			attribute.String("entity.address", address),
			attribute.Bool("write_through", s.WriteThrough),
		),
	)
	defer span.End()

	// The path segment is forwarded as-is; only an empty one is refused.
	if address == "" {
		return nil, &ValidationError{Kind: MissingAddress}
	}

	res, err := s.API.Fetch(ctx, address)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.WriteThrough && s.Store != nil {
		s.persist(ctx, address, res)
	}
	return res, nil
}

func (s *ScreeningService) persist(ctx context.Context, address string, res *upstream.Result) {
	risk := res.Risk
	if risk == "" {
		log.Warn().Str("address", address).Msg("write-through skipped: verdict carries no risk field")
		return
	}
	rec, err := s.Store.Record(ctx, RecordInput{
		Address: address,
		Risk:    risk,
		Payload: domain.Payload(res.Body),
	})
	if err != nil {
		log.Error().Err(err).Str("address", address).Msg("write-through failed")
		return
	}
	log.Debug().Uint64("id", rec.ID).Str("address", address).Msg("verdict recorded")
}
