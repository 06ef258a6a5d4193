package backend

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{Binary: "bd-kanban-no-such-binary"}
	_, err := r.Run(context.Background(), Request{Args: []string{"list", "--json"}})
	if KindOf(err) != KindConnectionLost {
		t.Fatalf("kind = %v, want %v (err: %v)", KindOf(err), KindConnectionLost, err)
	}
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if be.Op != "list" {
		t.Errorf("op = %q, want %q", be.Op, "list")
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix echo")
	}
	r := &ExecRunner{Binary: "echo"}
	res, err := r.Run(context.Background(), Request{Args: []string{"hello"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(string(res.Stdout)) != "hello" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
}

func TestExecRunnerExitError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix false")
	}
	r := &ExecRunner{Binary: "false"}
	res, err := r.Run(context.Background(), Request{Args: nil})
	if KindOf(err) != KindBackend {
		t.Fatalf("kind = %v, want %v (err: %v)", KindOf(err), KindBackend, err)
	}
	if res.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", res.ExitCode)
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix sleep")
	}
	r := &ExecRunner{Binary: "sleep"}
	start := time.Now()
	_, err := r.Run(context.Background(), Request{Args: []string{"30"}, Timeout: 100 * time.Millisecond})
	if KindOf(err) != KindTimeout {
		t.Fatalf("kind = %v, want %v (err: %v)", KindOf(err), KindTimeout, err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("kill took %v, process group not reaped", elapsed)
	}
}

func TestExecRunnerContextCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix sleep")
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	r := &ExecRunner{Binary: "sleep"}
	_, err := r.Run(ctx, Request{Args: []string{"30"}})
	if err == nil {
		t.Fatal("expected error after cancel")
	}
	// Caller-initiated cancellation is not a backend fault; no Error wrap.
	if KindOf(err) != "" {
		t.Errorf("cancel wrapped as %v, want plain context error", KindOf(err))
	}
}
