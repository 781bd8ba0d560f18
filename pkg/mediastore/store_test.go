package mediastore

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPutReturnsPublicURL(t *testing.T) {
	store, err := New(t.TempDir(), "https://example.com/media/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	url, err := store.Put("reply.mp3", []byte("audio"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "https://example.com/media/reply.mp3" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestPutStripsPathTraversal(t *testing.T) {
	store, err := New(t.TempDir(), "https://example.com/media")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	url, err := store.Put("../../etc/passwd", []byte("x"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "https://example.com/media/passwd" {
		t.Fatalf("expected base name only, got %q", url)
	}
}

func TestHandlerServesStoredFiles(t *testing.T) {
	store, err := New(t.TempDir(), "https://example.com/media")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Put("a.mp3", []byte("mp3-bytes")); err != nil {
		t.Fatalf("put: %v", err)
	}
	srv := httptest.NewServer(store.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/a.mp3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "mp3-bytes" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, body)
	}
}
