package logbridge

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gcharanteja/unilogger/domain"
	"github.com/gcharanteja/unilogger/internal/trackertest"
	"github.com/gcharanteja/unilogger/tracker"
)

func newTestRun(t *testing.T) (*trackertest.Server, *tracker.Run) {
	t.Helper()
	s := trackertest.New(t)
	ctx := context.Background()
	client := tracker.New(s.APIKey(), s.URL(), 0)

	teamID, err := client.ResolveTeam(ctx, "Bridge Team", "")
	if err != nil {
		t.Fatalf("ResolveTeam failed: %v", err)
	}
	projectID, err := client.ResolveProject(ctx, teamID, "bridge-project", "")
	if err != nil {
		t.Fatalf("ResolveProject failed: %v", err)
	}
	run, err := client.InitRun(ctx, projectID, domain.InitRunRequest{Name: "bridge-run"})
	if err != nil {
		t.Fatalf("InitRun failed: %v", err)
	}
	return s, run
}

func runMessages(t *testing.T, run *tracker.Run) []domain.Metric {
	t.Helper()
	metrics, err := run.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	return metrics
}

func TestStepsStartAtOneAndIncrease(t *testing.T) {
	_, run := newTestRun(t)
	logger := New(run, Options{})

	logger.Info("first")
	logger.Warn("second")
	logger.Error("third")

	metrics := runMessages(t, run)
	if len(metrics) != 3 {
		t.Fatalf("expected 3 records, got %d", len(metrics))
	}
	for i, m := range metrics {
		if m.Step != int64(i+1) {
			t.Fatalf("expected step %d, got %d", i+1, m.Step)
		}
		if m.Name != "console_output" {
			t.Fatalf("unexpected metric name %q", m.Name)
		}
	}
	if metrics[0].Value.Text() != "INFO: first" {
		t.Fatalf("unexpected first record: %q", metrics[0].Value.Text())
	}
	if metrics[1].Value.Text() != "WARN: second" {
		t.Fatalf("unexpected second record: %q", metrics[1].Value.Text())
	}
	if metrics[2].Value.Text() != "ERROR: third" {
		t.Fatalf("unexpected third record: %q", metrics[2].Value.Text())
	}
}

func TestLevelFiltering(t *testing.T) {
	_, run := newTestRun(t)
	logger := New(run, Options{})

	logger.Debug("invisible")
	logger.Info("visible")

	metrics := runMessages(t, run)
	if len(metrics) != 1 {
		t.Fatalf("expected debug to be filtered, got %d records", len(metrics))
	}
	if metrics[0].Value.Text() != "INFO: visible" {
		t.Fatalf("unexpected record: %q", metrics[0].Value.Text())
	}
}

func TestAttrsAndGroupsFormatted(t *testing.T) {
	_, run := newTestRun(t)
	logger := New(run, Options{})

	logger.Info("epoch done", "epoch", 3, "loss", 0.25)
	logger.WithGroup("train").Info("lr updated", "lr", 0.001)
	logger.With("model", "resnet").Info("saved")

	metrics := runMessages(t, run)
	if len(metrics) != 3 {
		t.Fatalf("expected 3 records, got %d", len(metrics))
	}
	if got := metrics[0].Value.Text(); got != "INFO: epoch done epoch=3 loss=0.25" {
		t.Fatalf("unexpected record: %q", got)
	}
	if got := metrics[1].Value.Text(); got != "INFO: lr updated train.lr=0.001" {
		t.Fatalf("unexpected record: %q", got)
	}
	if got := metrics[2].Value.Text(); got != "INFO: saved model=resnet" {
		t.Fatalf("unexpected record: %q", got)
	}
}

func TestDerivedLoggersShareStepCounter(t *testing.T) {
	_, run := newTestRun(t)
	logger := New(run, Options{})
	tagged := logger.With("phase", "eval")

	logger.Info("a")
	tagged.Info("b")
	logger.Info("c")

	metrics := runMessages(t, run)
	if len(metrics) != 3 {
		t.Fatalf("expected 3 records, got %d", len(metrics))
	}
	for i, m := range metrics {
		if m.Step != int64(i+1) {
			t.Fatalf("steps not shared: record %d has step %d", i, m.Step)
		}
	}
}

func TestSendFailureNeverEscapes(t *testing.T) {
	var fails atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/1/runs/init", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"project_id":1,"name":"n","status":"running","created_at":"2026-01-23T10:00:00Z"}`))
	})
	mux.HandleFunc("/runs/1/log", func(w http.ResponseWriter, r *http.Request) {
		if fails.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"storage full"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"run_id":1,"name":"console_output","value":"x","step":1,"created_at":"2026-01-23T10:00:00Z"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := tracker.New("k", server.URL, 0)
	run, err := client.InitRun(context.Background(), 1, domain.InitRunRequest{Name: "n"})
	if err != nil {
		t.Fatalf("InitRun failed: %v", err)
	}

	var diag bytes.Buffer
	logger := New(run, Options{ErrorWriter: &diag})

	logger.Info("delivered")
	fails.Store(true)
	logger.Info("dropped")
	logger.Info("dropped again")

	out := diag.String()
	if !strings.Contains(out, "dropped log record (step 2)") {
		t.Fatalf("expected diagnostic for step 2, got %q", out)
	}
	if !strings.Contains(out, "dropped log record (step 3)") {
		t.Fatalf("expected diagnostic for step 3, got %q", out)
	}
	if !strings.Contains(out, "storage full") {
		t.Fatalf("expected server detail in diagnostic, got %q", out)
	}
}

func TestConsoleTee(t *testing.T) {
	_, run := newTestRun(t)
	var console bytes.Buffer
	logger := New(run, Options{Console: true, ConsoleWriter: &console})

	logger.Info("visible everywhere")

	if !strings.Contains(console.String(), "visible everywhere") {
		t.Fatalf("expected console output, got %q", console.String())
	}
	metrics := runMessages(t, run)
	if len(metrics) != 1 {
		t.Fatalf("expected 1 record on the run, got %d", len(metrics))
	}
}

func TestDebugLevelOption(t *testing.T) {
	_, run := newTestRun(t)
	logger := New(run, Options{Level: slog.LevelDebug})

	logger.Debug("now visible")

	metrics := runMessages(t, run)
	if len(metrics) != 1 {
		t.Fatalf("expected debug record, got %d", len(metrics))
	}
	if metrics[0].Value.Text() != "DEBUG: now visible" {
		t.Fatalf("unexpected record: %q", metrics[0].Value.Text())
	}
}
