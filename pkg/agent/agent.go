package agent

import (
	"context"
	"time"
)

// Lifecycle status of an agent. Status is advisory for admin tooling: phone
// lookup does not filter by it, so DRAFT and PAUSED agents still answer
// their configured number.
const (
	StatusDraft  = "DRAFT"
	StatusLive   = "LIVE"
	StatusPaused = "PAUSED"
)

// Language mode preference configured per agent.
const (
	ModeBilingual = "BILINGUAL"
	ModeSpanish   = "ES"
	ModeEnglish   = "EN"
)

// Agent is the tenant-owned configuration answering a phone number.
// The phone number is unique among configured agents; Features is an opaque
// bag of premium flags the core never interprets.
type Agent struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	TenantID        string         `gorm:"size:36;index;not null" json:"tenant_id"`
	Name            string         `gorm:"size:120;not null" json:"name"`
	Status          string         `gorm:"size:16;default:DRAFT" json:"status"`
	LanguageMode    string         `gorm:"size:16;default:BILINGUAL" json:"language_mode"`
	VoiceProvider   string         `gorm:"size:32" json:"voice_provider"`
	VoiceID         string         `gorm:"size:64" json:"voice_id"`
	PhoneNumber     *string        `gorm:"uniqueIndex;size:20" json:"phone_number,omitempty"`
	KnowledgeBaseID string         `gorm:"size:36" json:"knowledge_base_id,omitempty"`
	Features        map[string]any `gorm:"serializer:json" json:"features,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }

// Directory is the read-only lookup surface consumed by the call core.
// Both lookups return (nil, nil) when no agent matches.
type Directory interface {
	FindByPhoneNumber(ctx context.Context, phone string) (*Agent, error)
	FindByID(ctx context.Context, id string) (*Agent, error)
}
