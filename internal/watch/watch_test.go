package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"

	"credal/internal/config"
	"credal/internal/loader"
	"credal/internal/program"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(debounce string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Watch.Debounce = debounce
	return cfg
}

func TestWatcherStartStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.plp")
	if err := os.WriteFile(path, []byte("a.\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w, err := New([]string{path}, testConfig("500ms"), loader.New(nil), nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !w.IsWatching() {
		t.Error("expected IsWatching=true after Start")
	}
	if dirs := w.WatchedDirs(); len(dirs) != 1 || dirs[0] != dir {
		t.Errorf("WatchedDirs = %v, want [%s]", dirs, dir)
	}

	w.Stop()
	if w.IsWatching() {
		t.Error("expected IsWatching=false after Stop")
	}

	// Stop is idempotent.
	w.Stop()
}

func TestWatcherRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.plp")
	if err := os.WriteFile(path, []byte("0.3::a.\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	results := make(chan *program.Program, 4)
	onChange := func(runID string, prog *program.Program, err error) {
		if err != nil {
			t.Errorf("re-normalization failed: %v", err)
			return
		}
		if runID == "" {
			t.Error("empty run ID")
		}
		results <- prog
	}

	w, err := New([]string{path}, testConfig("20ms"), loader.New(nil), nil, onChange)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("0.3::a.\n0.7::b.\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case prog := <-results:
		if len(prog.ProbFacts) != 2 {
			t.Errorf("got %d probabilistic facts after rewrite, want 2", len(prog.ProbFacts))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no re-normalization within 5s")
	}

	if stats := w.GetStats(); stats.RunsTriggered == 0 {
		t.Error("expected RunsTriggered > 0")
	}
}

func TestWatcherReportsParseFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.plp")
	if err := os.WriteFile(path, []byte("a.\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	errs := make(chan error, 4)
	onChange := func(runID string, prog *program.Program, err error) {
		errs <- err
	}

	w, err := New([]string{path}, testConfig("20ms"), loader.New(nil), nil, onChange)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("a :- .\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case err := <-errs:
		if err == nil {
			t.Error("expected an error for the broken source")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no re-normalization within 5s")
	}

	if stats := w.GetStats(); stats.Errors == 0 {
		t.Error("expected Errors > 0 after a failed run")
	}
}

func TestHandleEventFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.plp")

	w, err := New([]string{path}, testConfig("500ms"), loader.New(nil), nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := w.watcher.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write})
	if len(w.debounceMap) != 0 {
		t.Error("unwatched extension was recorded")
	}

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	if len(w.debounceMap) != 1 {
		t.Error("watched extension was not recorded")
	}

	// Chmod-only events are ignored even for watched extensions.
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "q.plp"), Op: fsnotify.Chmod})
	if len(w.debounceMap) != 1 {
		t.Error("chmod event was recorded")
	}
}

func TestStatsTracking(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.plp")

	w, err := New([]string{path}, testConfig("500ms"), loader.New(nil), nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := w.watcher.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Remove})

	stats := w.GetStats()
	if stats.FilesCreated != 1 || stats.FilesModified != 1 || stats.FilesDeleted != 1 {
		t.Errorf("stats = %+v, want one create, one modify, one delete", stats)
	}
	if stats.LastEventType != "delete" {
		t.Errorf("LastEventType = %q, want %q", stats.LastEventType, "delete")
	}
	if stats.LastEventPath != path {
		t.Errorf("LastEventPath = %q, want %q", stats.LastEventPath, path)
	}

	w.ResetStats()
	if stats := w.GetStats(); stats.FilesCreated != 0 || stats.LastEventType != "" {
		t.Errorf("stats after reset = %+v, want zero value", stats)
	}
}
