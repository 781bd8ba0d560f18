package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voxlane/voxlane/pkg/errorsx"
)

// ErrNotFound is returned by tenant-scoped operations on a missing agent.
var ErrNotFound = errors.New("agent not found")

// Store persists agents and implements Directory.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ Directory = (*Store)(nil)

// CreateInput carries the client-settable fields of an agent.
type CreateInput struct {
	Name            string         `json:"name"`
	Status          string         `json:"status"`
	LanguageMode    string         `json:"language_mode"`
	VoiceProvider   string         `json:"voice_provider"`
	VoiceID         string         `json:"voice_id"`
	PhoneNumber     string         `json:"phone_number"`
	KnowledgeBaseID string         `json:"knowledge_base_id"`
	Features        map[string]any `json:"features"`
}

// UpdateInput carries optional field updates; nil means leave unchanged.
type UpdateInput struct {
	Name            *string        `json:"name"`
	Status          *string        `json:"status"`
	LanguageMode    *string        `json:"language_mode"`
	VoiceProvider   *string        `json:"voice_provider"`
	VoiceID         *string        `json:"voice_id"`
	PhoneNumber     *string        `json:"phone_number"`
	KnowledgeBaseID *string        `json:"knowledge_base_id"`
	Features        map[string]any `json:"features"`
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(in.VoiceID) == "" {
		return errors.New("voice_id is required")
	}
	return nil
}

// Create inserts an agent scoped to the tenant.
func (s *Store) Create(ctx context.Context, tenantID string, in CreateInput) (*Agent, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.New("tenant id is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ag := &Agent{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		Name:            in.Name,
		Status:          defaultString(in.Status, StatusDraft),
		LanguageMode:    defaultString(in.LanguageMode, ModeBilingual),
		VoiceProvider:   defaultString(in.VoiceProvider, "elevenlabs"),
		VoiceID:         in.VoiceID,
		KnowledgeBaseID: in.KnowledgeBaseID,
		Features:        in.Features,
	}
	if p := strings.TrimSpace(in.PhoneNumber); p != "" {
		ag.PhoneNumber = &p
	}
	if err := s.db.WithContext(ctx).Create(ag).Error; err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAgentLookup)
	}
	return ag, nil
}

// List returns all agents belonging to the tenant.
func (s *Store) List(ctx context.Context, tenantID string) ([]Agent, error) {
	var out []Agent
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at").Find(&out).Error
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAgentLookup)
	}
	return out, nil
}

// GetForTenant fetches one agent, enforcing tenant ownership.
func (s *Store) GetForTenant(ctx context.Context, tenantID, id string) (*Agent, error) {
	var ag Agent
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&ag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAgentLookup)
	}
	return &ag, nil
}

// Update applies the non-nil fields of in to a tenant-owned agent.
func (s *Store) Update(ctx context.Context, tenantID, id string, in UpdateInput) (*Agent, error) {
	ag, err := s.GetForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	applyString(&ag.Name, in.Name)
	applyString(&ag.Status, in.Status)
	applyString(&ag.LanguageMode, in.LanguageMode)
	applyString(&ag.VoiceProvider, in.VoiceProvider)
	applyString(&ag.VoiceID, in.VoiceID)
	applyString(&ag.KnowledgeBaseID, in.KnowledgeBaseID)
	if in.PhoneNumber != nil {
		if p := strings.TrimSpace(*in.PhoneNumber); p == "" {
			ag.PhoneNumber = nil
		} else {
			ag.PhoneNumber = &p
		}
	}
	if in.Features != nil {
		ag.Features = in.Features
	}
	if err := s.db.WithContext(ctx).Save(ag).Error; err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAgentLookup)
	}
	return ag, nil
}

// Delete removes a tenant-owned agent.
func (s *Store) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.GetForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return errorsx.Wrap(s.db.WithContext(ctx).Delete(&Agent{}, "id = ?", id).Error, errorsx.ReasonAgentLookup)
}

// FindByPhoneNumber returns the agent answering phone, or (nil, nil).
func (s *Store) FindByPhoneNumber(ctx context.Context, phone string) (*Agent, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, nil
	}
	var ag Agent
	err := s.db.WithContext(ctx).Where("phone_number = ?", phone).First(&ag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAgentLookup)
	}
	return &ag, nil
}

// FindByID returns the agent with the given id, or (nil, nil).
func (s *Store) FindByID(ctx context.Context, id string) (*Agent, error) {
	var ag Agent
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAgentLookup)
	}
	return &ag, nil
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
