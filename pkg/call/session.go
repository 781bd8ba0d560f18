package call

import (
	"strings"
	"time"

	"github.com/voxlane/voxlane/pkg/language"
)

// Status is the resolution state of a call session. Terminality is tracked
// separately through EndedAt: a call may end while in any status.
type Status string

const (
	StatusInProgress    Status = "IN_PROGRESS"
	StatusNeedsFollowup Status = "NEEDS_FOLLOWUP"
	StatusResolved      Status = "RESOLVED"
)

// Speaker tags one side of a transcript line.
type Speaker string

const (
	SpeakerCaller    Speaker = "caller"
	SpeakerAssistant Speaker = "assistant"
)

// SummaryLines is how many trailing transcript lines feed the summary.
// Each turn contributes two lines, so this captures the last five turns.
const SummaryLines = 10

// Utterance is one transcript line. The transcript grows strictly by append
// in Seq order and is never mutated or reordered.
type Utterance struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	SessionID string    `gorm:"size:36;index;not null" json:"-"`
	Seq       int       `gorm:"not null" json:"seq"`
	Speaker   Speaker   `gorm:"size:16;not null" json:"speaker"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (Utterance) TableName() string { return "call_utterances" }

// Session is the persisted record of one phone call. ExternalCallID is the
// provider call identifier and the natural key: at most one session exists
// per external id.
type Session struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	ExternalCallID string            `gorm:"uniqueIndex;size:64;not null" json:"external_call_id"`
	TenantID       string            `gorm:"size:36;index" json:"tenant_id"`
	AgentID        string            `gorm:"size:36;index" json:"agent_id"`
	FromNumber     string            `gorm:"size:20" json:"from_number"`
	ToNumber       string            `gorm:"size:20" json:"to_number"`
	Language       language.Language `gorm:"size:8;default:auto" json:"language"`
	Status         Status            `gorm:"size:20;default:IN_PROGRESS" json:"status"`
	Transcript     []Utterance       `gorm:"foreignKey:SessionID;references:ID" json:"transcript"`
	Summary        string            `gorm:"type:text" json:"summary,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	EndedAt        *time.Time        `json:"ended_at,omitempty"`
	CreatedAt      time.Time         `json:"-"`
	UpdatedAt      time.Time         `json:"-"`
}

func (Session) TableName() string { return "call_sessions" }

// Ended reports whether the session is terminal. Once true, status and
// transcript are frozen.
func (s *Session) Ended() bool { return s.EndedAt != nil }

// TranscriptLines renders the transcript as flat "Caller:"/"AI:" lines.
func (s *Session) TranscriptLines() []string {
	lines := make([]string, 0, len(s.Transcript))
	for _, u := range s.Transcript {
		prefix := "Caller: "
		if u.Speaker == SpeakerAssistant {
			prefix = "AI: "
		}
		lines = append(lines, prefix+u.Text)
	}
	return lines
}

// Summarize joins the trailing SummaryLines transcript lines in order.
func (s *Session) Summarize() string {
	lines := s.TranscriptLines()
	if len(lines) > SummaryLines {
		lines = lines[len(lines)-SummaryLines:]
	}
	return strings.Join(lines, "\n")
}
