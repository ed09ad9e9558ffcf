package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTranscript(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "autotex.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

func TestAnnotateCommandWritesAnnotatedLog(t *testing.T) {
	path := writeTranscript(t, "~~~~~~~~~~~ Running pdflatex for the first time ~~~~~~~~\n"+
		"Output written on paper.pdf\n")

	out, err := runCLI(t, "annotate", "--status", "succeeded", path)
	if err != nil {
		t.Fatalf("annotate failed: %v", err)
	}
	if !strings.Contains(out, "<b>Marked Up Log:</b>") {
		t.Fatalf("expected annotated output, got %q", out)
	}
	if !strings.Contains(out, "tex-success") {
		t.Fatalf("expected success classification, got %q", out)
	}
}

func TestAnnotateCommandWritesOutputFile(t *testing.T) {
	path := writeTranscript(t, "~~~~~~~~~~~ Running pdflatex for the first time ~~~~~~~~\n")
	target := filepath.Join(t.TempDir(), "annotated.html")

	if _, err := runCLI(t, "annotate", "-o", target, path); err != nil {
		t.Fatalf("annotate failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "Summary of TeX runs:") {
		t.Fatalf("expected run summary in output file, got %q", data)
	}
}

func TestAnnotateCommandRejectsUnknownStatus(t *testing.T) {
	path := writeTranscript(t, "anything\n")

	if _, err := runCLI(t, "annotate", "--status", "maybe", path); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestRunsCommandListsRunsPlain(t *testing.T) {
	path := writeTranscript(t, "~~~~~~~~~~~ Running latex for the first time ~~~~~~~~\n"+
		"~~~~~~~~~~~ Running latex for the second time ~~~~~~~~\n")

	out, err := runCLI(t, "runs", "--plain", path)
	if err != nil {
		t.Fatalf("runs failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 runs, got %q", out)
	}
	if lines[0] != "1\tlatex\tfirst" || lines[1] != "2\tlatex\tsecond" {
		t.Fatalf("unexpected run listing %q", out)
	}
}

func TestRunsCommandReportsEmptyTranscript(t *testing.T) {
	path := writeTranscript(t, "no banners here\n")

	out, err := runCLI(t, "runs", path)
	if err != nil {
		t.Fatalf("runs failed: %v", err)
	}
	if !strings.Contains(out, "No compiler runs found") {
		t.Fatalf("expected empty notice, got %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
}

func TestCompileStatusTalksToDaemonAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/submissions/42/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"submission_id":"42","checksum":"abc123","status":"succeeded"}`)
	}))
	defer server.Close()

	out, err := runCLI(t, "--api", server.URL, "compile", "status", "42", "abc123")
	if err != nil {
		t.Fatalf("compile status failed: %v", err)
	}
	if !strings.Contains(out, "Status: succeeded") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStatusCommandRendersDaemonState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"running":true,"cache_entries":2,"cache_db_path":"/tmp/a.db","lock_file_path":"/tmp/a.lock","compiler_configured":true}`)
	}))
	defer server.Close()

	out, err := runCLI(t, "--api", server.URL, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Running: yes") || !strings.Contains(out, "2 entries") {
		t.Fatalf("unexpected output %q", out)
	}
}
