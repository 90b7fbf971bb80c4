package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-risk-gateway/internal/domain"
)

// CreateAssessment inserts one row into responses and returns it with the
// engine-assigned ID and CreatedAt.
func CreateAssessment(ctx context.Context, db *gorm.DB, address, risk string, payload domain.Payload) (*domain.RiskAssessment, error) {
	a := &domain.RiskAssessment{
		Address: address,
		Risk:    risk,
		Data:    payload,
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// ListLatestAssessments returns up to limit rows ordered by id descending.
// The result is never nil.
func ListLatestAssessments(ctx context.Context, db *gorm.DB, limit int) ([]domain.RiskAssessment, error) {
	out := make([]domain.RiskAssessment, 0, limit)
	err := db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountAssessments returns the total number of stored rows.
func CountAssessments(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.RiskAssessment{}).Count(&n).Error
	return n, err
}
