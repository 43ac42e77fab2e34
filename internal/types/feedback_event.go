package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FeedbackEvent struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string         `gorm:"column:user_id;not null;index" json:"user_id"`
	RuleID       string         `gorm:"column:rule_id;index" json:"rule_id,omitempty"`
	Satisfaction float64        `gorm:"column:satisfaction" json:"satisfaction"`
	Data         datatypes.JSON `gorm:"type:jsonb;column:data" json:"data"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (FeedbackEvent) TableName() string { return "feedback_event" }
