package call

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voxlane/voxlane/pkg/errorsx"
	"github.com/voxlane/voxlane/pkg/language"
)

var (
	// ErrEmptyCallID rejects operations without a provider call id.
	ErrEmptyCallID = errors.New("external call id is required")
	// ErrNotFound reports a lookup for an unknown external call id.
	ErrNotFound = errors.New("call session not found")
	// ErrFrozen reports a turn mutation attempted after call completion.
	ErrFrozen = errors.New("call session already ended")
)

// Store owns call session persistence. All mutating operations for one
// external call id are serialized through a keyed mutex, and the idempotent
// insert additionally relies on the unique index on external_call_id.
type Store struct {
	db    *gorm.DB
	locks *keyedMutex
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, locks: newKeyedMutex()}
}

// Get fetches a session with its transcript in append order, or ErrNotFound.
func (s *Store) Get(ctx context.Context, externalCallID string) (*Session, error) {
	if strings.TrimSpace(externalCallID) == "" {
		return nil, ErrEmptyCallID
	}
	return s.fetch(ctx, externalCallID)
}

// GetOrCreate returns the session for externalCallID, creating it on first
// arrival. The create is an idempotent upsert: when a session already exists
// it is returned untouched, and a concurrent first arrival resolves through
// the unique constraint rather than producing a duplicate row.
func (s *Store) GetOrCreate(ctx context.Context, externalCallID, tenantID, agentID, from, to string) (*Session, error) {
	if strings.TrimSpace(externalCallID) == "" {
		return nil, ErrEmptyCallID
	}
	unlock := s.locks.lock(externalCallID)
	defer unlock()

	sess, err := s.fetch(ctx, externalCallID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := &Session{
		ID:             uuid.NewString(),
		ExternalCallID: externalCallID,
		TenantID:       tenantID,
		AgentID:        agentID,
		FromNumber:     from,
		ToNumber:       to,
		Language:       language.Auto,
		Status:         StatusInProgress,
		StartedAt:      time.Now().UTC(),
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_call_id"}},
			DoNothing: true,
		}).
		Create(fresh)
	if res.Error != nil {
		return nil, errorsx.Wrap(res.Error, errorsx.ReasonSessionStore)
	}
	// RowsAffected == 0 means another creator won the race; fetch theirs.
	return s.fetch(ctx, externalCallID)
}

// RecordTurn appends one caller/assistant exchange to the transcript, pins
// the session language on the first concrete detection, and flags follow-up
// status. It fails with ErrFrozen once the call has ended.
func (s *Store) RecordTurn(ctx context.Context, externalCallID, callerText string, lang language.Language, assistantReply string, needsFollowup bool) (*Session, error) {
	if strings.TrimSpace(externalCallID) == "" {
		return nil, ErrEmptyCallID
	}
	unlock := s.locks.lock(externalCallID)
	defer unlock()

	sess, err := s.fetch(ctx, externalCallID)
	if err != nil {
		return nil, err
	}
	if sess.Ended() {
		return sess, ErrFrozen
	}

	now := time.Now().UTC()
	seq := len(sess.Transcript)
	turn := []Utterance{
		{SessionID: sess.ID, Seq: seq + 1, Speaker: SpeakerCaller, Text: callerText, CreatedAt: now},
		{SessionID: sess.ID, Seq: seq + 2, Speaker: SpeakerAssistant, Text: assistantReply, CreatedAt: now},
	}

	updates := map[string]any{}
	if sess.Language == language.Auto && lang.Concrete() {
		updates["language"] = lang
	}
	if needsFollowup {
		updates["status"] = StatusNeedsFollowup
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&turn).Error; err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&Session{}).Where("id = ?", sess.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSessionStore)
	}
	return s.fetch(ctx, externalCallID)
}

// Complete finalizes a session: sets endedAt, computes the summary from the
// trailing transcript lines, and promotes IN_PROGRESS to RESOLVED. It is
// idempotent and fails silently — duplicate completion callbacks and unknown
// ids return the current state (or nil) rather than an error.
func (s *Store) Complete(ctx context.Context, externalCallID string) (*Session, error) {
	if strings.TrimSpace(externalCallID) == "" {
		return nil, ErrEmptyCallID
	}
	unlock := s.locks.lock(externalCallID)
	defer unlock()

	sess, err := s.fetch(ctx, externalCallID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.Ended() {
		return sess, nil
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"ended_at": now,
		"summary":  sess.Summarize(),
	}
	if sess.Status == StatusInProgress {
		updates["status"] = StatusResolved
	}
	if err := s.db.WithContext(ctx).Model(&Session{}).Where("id = ?", sess.ID).Updates(updates).Error; err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSessionStore)
	}
	return s.fetch(ctx, externalCallID)
}

func (s *Store) fetch(ctx context.Context, externalCallID string) (*Session, error) {
	var sess Session
	err := s.db.WithContext(ctx).
		Preload("Transcript", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq") }).
		Where("external_call_id = ?", externalCallID).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSessionStore)
	}
	return &sess, nil
}
