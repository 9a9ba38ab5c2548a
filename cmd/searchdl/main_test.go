package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/hession/searchdl/internal/config"
	"github.com/hession/searchdl/internal/download"
	"github.com/hession/searchdl/internal/websearch"
	"github.com/spf13/cobra"
)

func parsedCommand(t *testing.T, args ...string) (*cobra.Command, *flagValues) {
	t.Helper()
	f := &flagValues{}
	cmd := &cobra.Command{Use: "test"}
	bindFlags(cmd, f)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) failed: %v", args, err)
	}
	return cmd, f
}

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Download.Dir = "/srv/files"
	cfg.Search.ResultsPerPage = 20

	cmd, f := parsedCommand(t, "-m", "60")
	applyFlags(cmd, cfg, f)

	if cfg.Search.MaxResults != 60 {
		t.Errorf("MaxResults = %d, want 60", cfg.Search.MaxResults)
	}
	// unchanged flags keep the config values even though their defaults differ
	if cfg.Download.Dir != "/srv/files" {
		t.Errorf("Download.Dir = %s, want /srv/files", cfg.Download.Dir)
	}
	if cfg.Search.ResultsPerPage != 20 {
		t.Errorf("ResultsPerPage = %d, want 20", cfg.Search.ResultsPerPage)
	}
}

func TestApplyFlags_AllFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd, f := parsedCommand(t,
		"-v", "-d", "out", "-s", "example.com", "-f", "pdf,doc", "-x",
		"-t", "2.5", "-m", "10", "-p", "5",
		"--provider", "searxng", "--base-url", "http://localhost:8080",
		"--metrics-file", "run.prom",
	)
	applyFlags(cmd, cfg, f)

	if cfg.Download.Dir != "out" {
		t.Errorf("Download.Dir = %s, want out", cfg.Download.Dir)
	}
	if !cfg.Download.ForceDirectories {
		t.Error("ForceDirectories should be true")
	}
	if cfg.Download.TimeoutSeconds != 2.5 {
		t.Errorf("Download.TimeoutSeconds = %v, want 2.5", cfg.Download.TimeoutSeconds)
	}
	if cfg.Search.TimeoutSeconds != 3 {
		t.Errorf("Search.TimeoutSeconds = %d, want 3", cfg.Search.TimeoutSeconds)
	}
	if cfg.Search.MaxResults != 10 || cfg.Search.ResultsPerPage != 5 {
		t.Errorf("MaxResults/ResultsPerPage = %d/%d, want 10/5", cfg.Search.MaxResults, cfg.Search.ResultsPerPage)
	}
	if cfg.Search.Provider != "searxng" || cfg.Search.BaseURL != "http://localhost:8080" {
		t.Errorf("provider = %s %s", cfg.Search.Provider, cfg.Search.BaseURL)
	}
	if cfg.Download.MetricsFile != "run.prom" {
		t.Errorf("MetricsFile = %s, want run.prom", cfg.Download.MetricsFile)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	if f.site != "example.com" || f.fileTypes != "pdf,doc" {
		t.Errorf("site/fileTypes = %s/%s", f.site, f.fileTypes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestApplyFlags_ZeroTimeoutKeepsSearchTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd, f := parsedCommand(t, "-t", "0")
	applyFlags(cmd, cfg, f)

	if cfg.Download.TimeoutSeconds != 0 {
		t.Errorf("Download.TimeoutSeconds = %v, want 0", cfg.Download.TimeoutSeconds)
	}
	if cfg.Search.TimeoutSeconds != 15 {
		t.Errorf("Search.TimeoutSeconds = %d, want 15", cfg.Search.TimeoutSeconds)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"success", nil, 0, "", ""},
		{"interrupted", context.Canceled, 0, "", ""},
		{"wrapped interrupt", fmt.Errorf("run: %w", context.Canceled), 0, "", ""},
		{
			"search failure",
			&websearch.SearchError{Provider: "duckduckgo", Err: errors.New("status 503")},
			0, "Search failed: ", "",
		},
		{
			"filesystem failure",
			&download.FilesystemError{Op: "write", Path: "out/a.pdf", Err: syscall.ENOSPC},
			1, "", "raised when tried to save the file 'out/a.pdf'",
		},
		{"usage", errors.New("requires at least one query word"), 1, "", "Error: requires at least one query word"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := exitCode(tt.err, &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("exitCode() = %d, want %d", code, tt.wantCode)
			}
			if tt.wantStdout == "" && stdout.Len() > 0 {
				t.Errorf("unexpected stdout: %q", stdout.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr == "" && stderr.Len() > 0 {
				t.Errorf("unexpected stderr: %q", stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "searchdl v"+version) {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"config", "init", "--config", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// a second init must not overwrite the file
	cmd = newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"config", "init", "--config", path})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error when config file already exists")
	}

	stdout.Reset()
	cmd = newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"config", "--config", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(stdout.String(), path) {
		t.Errorf("config output should name the file, got %q", stdout.String())
	}
}

func TestRootCommand_InvalidProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(config.DefaultConfig(), path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", path, "--provider", "altavista", "foo"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for an unknown provider")
	}
	if code := exitCode(err, &stdout, &stderr); code != 1 {
		t.Errorf("exitCode() = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "altavista") {
		t.Errorf("stderr should name the provider, got %q", stderr.String())
	}
}

func TestRootCommand_MissingExplicitConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "foo"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestRootCommand_FlagOverridesInvalidConfigValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"query":"foo","results":[]}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search:\n  max_results: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	common := []string{"--config", path, "--provider", "searxng", "--base-url", server.URL, "-d", t.TempDir()}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append(append([]string{}, common...), "foo"))
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected the invalid max_results to be rejected without an override")
	}

	stdout.Reset()
	cmd = newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append(append([]string{}, common...), "-m", "5", "foo"))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("-m should override the invalid config value, got %v", err)
	}
	if !strings.Contains(stdout.String(), "foo") {
		t.Errorf("expected the query to be printed, got %q", stdout.String())
	}
}
