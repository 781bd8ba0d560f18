package mock

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/voxlane/voxlane/pkg/agent"
	"github.com/voxlane/voxlane/pkg/call"
	"github.com/voxlane/voxlane/pkg/language"
	"github.com/voxlane/voxlane/pkg/orchestrator"
	synthmock "github.com/voxlane/voxlane/pkg/providers/mock"
)

func newTestTransport(t *testing.T) (*Transport, *call.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&agent.Agent{}, &call.Session{}, &call.Utterance{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	agents := agent.NewStore(db)
	if _, err := agents.Create(context.Background(), "tenant-1", agent.CreateInput{
		Name:        "Front Desk",
		VoiceID:     "voice-1",
		PhoneNumber: "+15550002222",
	}); err != nil {
		t.Fatalf("seed agent: %v", err)
	}
	sessions := call.NewStore(db)
	orch := orchestrator.New(orchestrator.Options{
		Agents:   agents,
		Sessions: sessions,
		Synth:    synthmock.NewSynthesizer(),
	})
	return New(orch), sessions
}

func TestFullConversation(t *testing.T) {
	tr, sessions := newTestTransport(t)
	ctx := context.Background()

	greeting := tr.StartCall(ctx, "+15550001111", "+15550002222", "CA1")
	if greeting.Kind != orchestrator.ActionSpeak || !greeting.FollowUpGather {
		t.Fatalf("unexpected greeting: %+v", greeting)
	}

	reply := tr.Speak(ctx, "CA1", "Necesito una cita para mañana")
	if reply.Language != language.Spanish {
		t.Fatalf("expected spanish reply, got %s", reply.Language)
	}

	tr.EndCall(ctx, "CA1")
	sess, err := sessions.Get(ctx, "CA1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !sess.Ended() || sess.Status != call.StatusResolved {
		t.Fatalf("expected ended resolved session, got %+v", sess)
	}
	if len(sess.Transcript) != 2 {
		t.Fatalf("expected 2 transcript lines, got %d", len(sess.Transcript))
	}
	if sess.Summary == "" {
		t.Fatalf("expected summary set on completion")
	}

	if got := len(tr.Actions()); got != 2 {
		t.Fatalf("expected 2 recorded actions, got %d", got)
	}
}
