// Package domain defines the persistence model for risk assessments. The
// type is mapped with GORM and forms the core data layer of the screening
// gateway.
package domain

import (
	"time"
)

// RiskAssessment is one screened verdict: the address that was checked, the
// risk classification upstream returned, and the full upstream payload.
//
// Fields:
//   - ID: auto-increment primary key assigned by the database on insert.
//     It totally orders records by insertion and is never reused.
//   - Address: the screened identifier. Re-screens create new rows.
//   - Risk: the upstream classification, stored verbatim.
//   - Data: the raw upstream JSON payload (see Payload).
//   - CreatedAt: informational insert timestamp; ordering always uses ID.
//
// Rows are append-only. There is no update or delete path.
type RiskAssessment struct {
	ID        uint64    `json:"id"         gorm:"primaryKey;autoIncrement"`
	Address   string    `json:"address"    gorm:"type:text;not null;index:idx_responses_address"`
	Risk      string    `json:"risk"       gorm:"type:text;not null"`
	Data      Payload   `json:"data"       gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the database table name for RiskAssessment.
func (RiskAssessment) TableName() string { return "responses" }
