package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/voxlane/voxlane/pkg/agent"
)

func newTestHandler(t *testing.T) *Handler {
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
	if err := db.AutoMigrate(&agent.Agent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewHandler(agent.NewStore(db), nil)
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, tenant, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, path, err)
	}
	return resp
}

func decodeAgent(t *testing.T, resp *http.Response) agent.Agent {
	t.Helper()
	defer resp.Body.Close()
	var ag agent.Agent
	if err := json.NewDecoder(resp.Body).Decode(&ag); err != nil {
		t.Fatalf("decode agent: %v", err)
	}
	return ag
}

func TestRequiresTenantHeader(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	resp := doJSON(t, srv, http.MethodGet, "/agents", "", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without tenant header, got %d", resp.StatusCode)
	}
}

func TestCreateAndGetAgent(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	resp := doJSON(t, srv, http.MethodPost, "/agents", "tenant-1",
		`{"name":"Front Desk","voice_id":"voice-1","phone_number":"+15550002222"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeAgent(t, resp)
	if created.ID == "" || created.Status != agent.StatusDraft {
		t.Fatalf("unexpected created agent: %+v", created)
	}

	resp = doJSON(t, srv, http.MethodGet, "/agents/"+created.ID, "tenant-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeAgent(t, resp)
	if got.Name != "Front Desk" {
		t.Fatalf("unexpected agent: %+v", got)
	}

	// Another tenant cannot see it.
	resp = doJSON(t, srv, http.MethodGet, "/agents/"+created.ID, "tenant-2", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign tenant, got %d", resp.StatusCode)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	resp := doJSON(t, srv, http.MethodPost, "/agents", "tenant-1", `{"voice_id":"voice-1"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodPost, "/agents", "tenant-1", `not json`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", resp.StatusCode)
	}
}

func TestUpdateAndDeleteAgent(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	resp := doJSON(t, srv, http.MethodPost, "/agents", "tenant-1",
		`{"name":"Front Desk","voice_id":"voice-1"}`)
	created := decodeAgent(t, resp)

	resp = doJSON(t, srv, http.MethodPatch, "/agents/"+created.ID, "tenant-1",
		`{"status":"LIVE","phone_number":"+15550003333"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated := decodeAgent(t, resp)
	if updated.Status != agent.StatusLive {
		t.Fatalf("expected LIVE, got %s", updated.Status)
	}
	if updated.Name != "Front Desk" {
		t.Fatalf("expected name preserved, got %s", updated.Name)
	}
	if updated.PhoneNumber == nil || *updated.PhoneNumber != "+15550003333" {
		t.Fatalf("expected phone updated, got %+v", updated.PhoneNumber)
	}

	resp = doJSON(t, srv, http.MethodDelete, "/agents/"+created.ID, "tenant-1", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodGet, "/agents/"+created.ID, "tenant-1", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodGet, "/agents", "tenant-1", "")
	defer resp.Body.Close()
	var list []agent.Agent
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}
