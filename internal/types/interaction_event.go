package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InteractionEvent is the durable mirror of one interaction pushed into the
// rule engine; the engine itself only sees the in-memory buffer.
type InteractionEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;not null;index" json:"user_id"`
	NodeID    string         `gorm:"column:node_id;index" json:"node_id,omitempty"`
	NodeType  string         `gorm:"column:node_type;index" json:"node_type,omitempty"`
	Data      datatypes.JSON `gorm:"type:jsonb;column:data" json:"data"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (InteractionEvent) TableName() string { return "interaction_event" }
