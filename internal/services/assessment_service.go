// Package services – AssessmentService
//
// AssessmentService owns the history of risk verdicts. It validates what the
// caller wants stored, appends it through the repository and serves the most
// recent records, newest first. Storage faults surface as *PersistenceError so
// handlers can map them without knowing about GORM.
package services

import (
	"bytes"
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-risk-gateway/internal/config"
	"github.com/tbourn/go-risk-gateway/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AssessmentRepo defines the repository contract required by AssessmentService.
type AssessmentRepo interface {
	// CreateAssessment appends one record; the store assigns its id.
	CreateAssessment(ctx context.Context, db *gorm.DB, address, risk string, payload domain.Payload) (*domain.RiskAssessment, error)

	// ListLatestAssessments returns up to limit records, highest id first.
	ListLatestAssessments(ctx context.Context, db *gorm.DB, limit int) ([]domain.RiskAssessment, error)

	// AssessmentsStats returns the row count and highest id.
	AssessmentsStats(ctx context.Context, db *gorm.DB) (int64, uint64, error)
}

// RecordInput is what a caller asks to be stored.
type RecordInput struct {
	Address string
	Risk    string
	Payload domain.Payload
}

// AssessmentService records verdicts and serves recent history.
type AssessmentService struct {
	DB   *gorm.DB
	Repo AssessmentRepo

	// HistoryLimit caps Latest; values outside [1, config.MaxHistoryLimit]
	// fall back to config.MaxHistoryLimit.
	HistoryLimit int
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(db *gorm.DB, r AssessmentRepo, historyLimit int) *AssessmentService {
	return &AssessmentService{DB: db, Repo: r, HistoryLimit: historyLimit}
}

// Record validates in and appends it. Address and risk are trimmed; the
// payload is stored exactly as given.
func (s *AssessmentService) Record(ctx context.Context, in RecordInput) (rec *domain.RiskAssessment, err error) {
	tr := otel.Tracer("services/AssessmentService")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(attribute.String("entity.address", in.Address)),
	)
	defer span.End()
	defer func() { countStoreOp("record", err) }()

	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, &ValidationError{Kind: MissingAddress}
	}
	risk := strings.TrimSpace(in.Risk)
	if risk == "" {
		return nil, &ValidationError{Kind: MissingRisk}
	}
	if !isJSONContainer(in.Payload) {
		return nil, &ValidationError{Kind: InvalidPayload}
	}

	rec, err = s.Repo.CreateAssessment(ctx, s.DB, address, risk, in.Payload)
	if err != nil {
		span.RecordError(err)
		return nil, &PersistenceError{Kind: WriteFailed, Err: err}
	}
	span.SetAttributes(attribute.Int64("assessment.id", int64(rec.ID)))
	return rec, nil
}

// Latest returns up to limit records, newest first. limit <= 0 selects the
// configured history size; larger values are clamped to it.
func (s *AssessmentService) Latest(ctx context.Context, limit int) (items []domain.RiskAssessment, err error) {
	tr := otel.Tracer("services/AssessmentService")
	ctx, span := tr.Start(ctx, "Latest")
	defer span.End()
	defer func() { countStoreOp("latest", err) }()

	limit = s.EffectiveLimit(limit)
	span.SetAttributes(attribute.Int("limit", limit))

	items, err = s.Repo.ListLatestAssessments(ctx, s.DB, limit)
	if err != nil {
		span.RecordError(err)
		return nil, &PersistenceError{Kind: ReadFailed, Err: err}
	}
	if items == nil {
		items = []domain.RiskAssessment{}
	}
	return items, nil
}

// Stats returns the record count and highest id, used for history ETags.
func (s *AssessmentService) Stats(ctx context.Context) (count int64, maxID uint64, err error) {
	count, maxID, err = s.Repo.AssessmentsStats(ctx, s.DB)
	if err != nil {
		return 0, 0, &PersistenceError{Kind: ReadFailed, Err: err}
	}
	return count, maxID, nil
}

// EffectiveLimit is the number of records Latest serves for a requested limit.
func (s *AssessmentService) EffectiveLimit(limit int) int {
	max := s.historyLimit()
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

func (s *AssessmentService) historyLimit() int {
	if s.HistoryLimit < 1 || s.HistoryLimit > config.MaxHistoryLimit {
		return config.MaxHistoryLimit
	}
	return s.HistoryLimit
}

// isJSONContainer reports whether p is valid JSON whose top level is an
// object or array.
func isJSONContainer(p domain.Payload) bool {
	if !p.Valid() {
		return false
	}
	t := bytes.TrimLeft(p, " \t\r\n")
	return len(t) > 0 && (t[0] == '{' || t[0] == '[')
}
