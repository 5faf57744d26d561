package daemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"reelsync/internal/config"
	"reelsync/internal/daemon"
	"reelsync/internal/metadata"
	"reelsync/internal/query"
	"reelsync/internal/reconcile"
	"reelsync/internal/resolve"
	"reelsync/internal/services"
	"reelsync/internal/testsupport"
	"reelsync/internal/workflow"
)

type stubResolver struct{}

func (stubResolver) Resolve(context.Context, query.Query) (*metadata.Record, error) {
	return nil, errors.New("not used")
}

func (stubResolver) FetchMovie(context.Context, int64, string) (*metadata.Record, error) {
	return nil, errors.New("not used")
}

func (stubResolver) FetchShow(context.Context, resolve.FetchRequest) (*metadata.Record, error) {
	return nil, errors.New("not used")
}

func testDaemon(t *testing.T) (*daemon.Daemon, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Workflow.PollInterval = 1

	store := testsupport.NewMemoryStore()
	engine := reconcile.New(store, nil, time.Millisecond)
	manager := workflow.NewManager(cfg.Workflow, store, stubResolver{}, engine, nil, nil)
	return daemon.New(&cfg, manager, nil), &cfg
}

func TestRunRefusesSecondInstance(t *testing.T) {
	d, cfg := testDaemon(t)

	// Hold the lock the way a first instance would.
	lock := flock.New(daemon.LockPath(cfg))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("prelock failed: %v %v", locked, err)
	}
	defer lock.Unlock()

	err = d.Run(context.Background())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected lock refusal, got %v", err)
	}
}

func TestRunStartsAndStops(t *testing.T) {
	d, _ := testDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Let the loop spin up, then ask for shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

type fixedStats struct{ stats workflow.Stats }

func (f fixedStats) Stats() workflow.Stats { return f.stats }

func TestAPIHandlerEndpoints(t *testing.T) {
	provider := fixedStats{stats: workflow.Stats{TotalSynced: 7, LastCycleID: "cycle-1"}}
	api := daemon.NewAPIServer("127.0.0.1:0", provider, nil)
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz returned %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/status")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	defer resp.Body.Close()
	var status struct {
		Status string         `json:"status"`
		Loop   workflow.Stats `json:"loop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "running" || status.Loop.TotalSynced != 7 {
		t.Fatalf("unexpected status payload: %+v", status)
	}
}
