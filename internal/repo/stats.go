package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-risk-gateway/internal/domain"
)

// AssessmentsStats returns the row count and highest id of the responses
// table. The HTTP layer derives the history ETag from the pair: since rows
// are append-only, any insert changes maxID.
//
// When the table is empty both values are zero.
func AssessmentsStats(ctx context.Context, db *gorm.DB) (count int64, maxID uint64, err error) {
	q := db.WithContext(ctx).Model(&domain.RiskAssessment{})

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		ID uint64
	}
	if err = db.WithContext(ctx).Model(&domain.RiskAssessment{}).
		Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}
