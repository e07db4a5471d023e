package usage

import (
	"time"

	"github.com/google/uuid"
)

// LLMUsageRecord is a best-effort ledger row for one LLM call. The
// enforcement counters live in Redis; this table is for reporting.
type LLMUsageRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Operation    string    `gorm:"column:operation;not null;index" json:"operation"`
	Model        string    `gorm:"column:model" json:"model"`
	InputTokens  int       `gorm:"column:input_tokens;not null;default:0" json:"input_tokens"`
	OutputTokens int       `gorm:"column:output_tokens;not null;default:0" json:"output_tokens"`
	CallCount    int       `gorm:"column:call_count;not null;default:1" json:"call_count"`
	CreatedAt    time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (LLMUsageRecord) TableName() string { return "llm_usage_record" }
