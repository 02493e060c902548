package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "127.0.0.1:9000", "--detach=true"})
	want := []string{"daemon", "--addr", "127.0.0.1:9000"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagesyncd.pid")
	if err := writePID(path, 4242); err != nil {
		t.Fatalf("writePID: %v", err)
	}
	pid, err := readPID(path)
	if err != nil {
		t.Fatalf("readPID: %v", err)
	}
	if pid != 4242 {
		t.Fatalf("pid = %d, want 4242", pid)
	}

	if err := os.WriteFile(path, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Fatal("readPID accepted a malformed pid file")
	}
}

func TestEnsureDaemonNotRunningClearsStalePID(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "pagesyncd.pid")

	if err := ensureDaemonNotRunning(pidFile); err != nil {
		t.Fatalf("missing pid file: %v", err)
	}

	if err := writePID(pidFile, os.Getpid()); err != nil {
		t.Fatal(err)
	}
	if err := ensureDaemonNotRunning(pidFile); err == nil {
		t.Fatal("live pid not reported as running")
	}

	// PIDs near the top of the range are not in use on test machines.
	if err := writePID(pidFile, 1<<22-3); err != nil {
		t.Fatal(err)
	}
	if err := writeState(statePath(pidFile), daemonRuntimeState{PID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := ensureDaemonNotRunning(pidFile); err != nil {
		t.Fatalf("stale pid: %v", err)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Fatalf("stale pid file left behind: %v", err)
	}
	if _, err := os.Stat(statePath(pidFile)); !os.IsNotExist(err) {
		t.Fatalf("stale state file left behind: %v", err)
	}
}

func TestRuntimeStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	in := daemonRuntimeState{PID: 77, Addr: "127.0.0.1:8787", StartedAt: started, Route: "/budget"}
	if err := writeState(path, in); err != nil {
		t.Fatalf("writeState: %v", err)
	}
	out, err := readState(path)
	if err != nil {
		t.Fatalf("readState: %v", err)
	}
	if out.Route != "/budget" || out.Addr != in.Addr || !out.StartedAt.Equal(started) {
		t.Fatalf("readState = %+v, want %+v", out, in)
	}
}
