package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.PageFetched(50)
	m.PageFetched(30)
	m.Download(OutcomeDownloaded, 2048)
	m.Download(OutcomeDownloaded, 1024)
	m.Download(OutcomeSkipped, 0)
	m.Download(OutcomeFailed, 0)
	m.TransportError("status")

	if got := testutil.ToFloat64(m.pagesTotal); got != 2 {
		t.Errorf("Expected 2 pages, got %v", got)
	}
	if got := testutil.ToFloat64(m.resultsTotal); got != 80 {
		t.Errorf("Expected 80 results, got %v", got)
	}
	if got := testutil.ToFloat64(m.downloadsTotal.WithLabelValues(OutcomeDownloaded)); got != 2 {
		t.Errorf("Expected 2 downloads, got %v", got)
	}
	if got := testutil.ToFloat64(m.downloadsTotal.WithLabelValues(OutcomeSkipped)); got != 1 {
		t.Errorf("Expected 1 skip, got %v", got)
	}
	if got := testutil.ToFloat64(m.bytesTotal); got != 3072 {
		t.Errorf("Expected 3072 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(m.errorsTotal.WithLabelValues("status")); got != 1 {
		t.Errorf("Expected 1 status error, got %v", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.PageFetched(3)
	m.Download(OutcomeDownloaded, 10)

	path := filepath.Join(t.TempDir(), "searchdl.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"searchdl_pages_fetched_total 1",
		`searchdl_downloads_total{outcome="downloaded"} 1`,
		"searchdl_last_run_finished_timestamp_seconds",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Textfile should contain %q", want)
		}
	}
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.PageFetched(1)
	r.Download(OutcomeFailed, 0)
	r.TransportError("timeout")
}
