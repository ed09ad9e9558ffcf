package daemonclient_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"autotex/internal/daemonclient"
)

func TestStatusSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"running":true,"cache_entries":3,"compiler_configured":true}`)
	}))
	defer server.Close()

	client, err := daemonclient.New(server.URL, "secret")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.CacheEntries != 3 || !status.CompilerConfigured {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestNewWithEmptyBindReturnsNilClient(t *testing.T) {
	client, err := daemonclient.New("", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client for empty bind")
	}
	if _, err := client.Status(context.Background()); !errors.Is(err, daemonclient.ErrAPIUnavailable) {
		t.Fatalf("expected ErrAPIUnavailable, got %v", err)
	}
}

func TestCompileBuildsSubmissionPath(t *testing.T) {
	var gotPath, gotMethod, gotChecksum string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotChecksum = r.URL.Query().Get("checksum")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"submission_id":"42","checksum":"abc123","status":"in_progress"}`)
	}))
	defer server.Close()

	client, err := daemonclient.New(server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	state, err := client.Compile(context.Background(), 42, "abc123")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/submissions/42/compile" || gotChecksum != "abc123" {
		t.Fatalf("unexpected request %s %s checksum=%s", gotMethod, gotPath, gotChecksum)
	}
	if state.Status != "in_progress" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestLogSurfacesDaemonErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"submission not found"}`)
	}))
	defer server.Close()

	client, err := daemonclient.New(server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, _, err := client.Log(context.Background(), 42, "abc123"); err == nil {
		t.Fatal("expected error from daemon")
	} else if got := err.Error(); got != "daemon returned 404: submission not found" {
		t.Fatalf("unexpected error message %q", got)
	}
}

func TestPreviewCopiesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.5 fake"))
	}))
	defer server.Close()

	client, err := daemonclient.New(server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	contentType, err := client.Preview(context.Background(), 42, "abc123", &buf)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if buf.String() != "%PDF-1.5 fake" {
		t.Fatalf("unexpected body %q", buf.String())
	}
}
