package twilio

import (
	"context"
	"testing"

	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/voxlane/voxlane/pkg/transports"
)

type stubCreator struct {
	last *api.CreateCallParams
	sid  string
	err  error
}

func (s *stubCreator) CreateCall(params *api.CreateCallParams) (*api.ApiV2010Call, error) {
	s.last = params
	if s.err != nil {
		return nil, s.err
	}
	return &api.ApiV2010Call{Sid: &s.sid}, nil
}

func TestDialerUsesConfiguredVoiceWebhook(t *testing.T) {
	stub := &stubCreator{sid: "CA123"}
	d := NewDialer(Config{
		AccountSID: "AC1",
		AuthToken:  "token",
		PublicURL:  "https://voxlane.example.com",
	})
	d.client = stub

	sid, err := d.Dial(context.Background(), "+15550001111", "+15550002222", "")
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	if sid != "CA123" {
		t.Fatalf("expected sid CA123, got %s", sid)
	}
	if stub.last == nil || stub.last.Url == nil {
		t.Fatalf("expected Url param")
	}
	if *stub.last.Url != "https://voxlane.example.com/twilio/voice" {
		t.Fatalf("unexpected url %s", *stub.last.Url)
	}
	if stub.last.To == nil || *stub.last.To != "+15550001111" {
		t.Fatalf("expected To param")
	}
	if stub.last.From == nil || *stub.last.From != "+15550002222" {
		t.Fatalf("expected From param")
	}
}

func TestDialerUsesOverrideURL(t *testing.T) {
	stub := &stubCreator{sid: "CA999"}
	d := NewDialer(Config{AccountSID: "AC1", AuthToken: "token"})
	d.client = stub

	override := "https://override.example.com/twilio/voice"
	_, err := d.Dial(context.Background(), "+100", "+200", override)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	if stub.last == nil || stub.last.Url == nil || *stub.last.Url != override {
		t.Fatalf("expected override url")
	}
}

func TestDialerSendDigits(t *testing.T) {
	stub := &stubCreator{sid: "CA777"}
	d := NewDialer(Config{AccountSID: "AC1", AuthToken: "token"})
	d.client = stub

	_, err := d.DialWithOptions(context.Background(), "+100", "+200", "https://example.com/twilio/voice",
		transports.DialOptions{SendDigits: "W123#"})
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	if stub.last == nil || stub.last.SendDigits == nil || *stub.last.SendDigits != "W123#" {
		t.Fatalf("expected send digits param")
	}
}

func TestDialerRequiresCredentials(t *testing.T) {
	d := NewDialer(Config{})
	if _, err := d.Dial(context.Background(), "+100", "+200", ""); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
	d = NewDialer(Config{AccountSID: "AC1", AuthToken: "token"})
	if _, err := d.Dial(context.Background(), "", "+200", ""); err == nil {
		t.Fatalf("expected error for missing to")
	}
}
