package util

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunCapturedSuccess(t *testing.T) {
	script := writeScript(t, `pwd; echo "$SYNTH_VALUE" >&2`)
	dir := t.TempDir()

	res, err := RunCaptured(context.Background(), 5*time.Second, dir, script, nil, map[string]string{"SYNTH_VALUE": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if got := strings.TrimSpace(res.Stdout); got != dir && got != resolved {
		t.Fatalf("command ran in %q, want %q", got, dir)
	}
	if res.Diagnostic() != "hello" {
		t.Fatalf("unexpected diagnostic: %q", res.Diagnostic())
	}
}

func TestRunCapturedExitCode(t *testing.T) {
	script := writeScript(t, `echo "bad profile" >&2; exit 3`)
	res, err := RunCaptured(context.Background(), 5*time.Second, "", script, nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if res.ExitCode != 3 || res.TimedOut {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Diagnostic() != "bad profile" {
		t.Fatalf("unexpected diagnostic: %q", res.Diagnostic())
	}
}

func TestRunCapturedTimeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)
	res, err := RunCaptured(context.Background(), 100*time.Millisecond, "", script, nil, nil)
	if err == nil || !res.TimedOut {
		t.Fatalf("expected timeout, got %v %+v", err, res)
	}
}

func TestRequireBinary(t *testing.T) {
	script := writeScript(t, "true")
	if err := RequireBinary(script); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RequireBinary(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected missing binary error")
	}
	if err := RequireBinary("sh"); err != nil {
		t.Fatalf("sh should be on PATH: %v", err)
	}
}

func TestMergeEnvOverridesInOrder(t *testing.T) {
	t.Setenv("SYNTH_VALUE", "inherited")
	env := MergeEnv(map[string]string{"SYNTH_VALUE": "override", "A_FIRST": "1"})

	last := ""
	for _, kv := range env {
		if strings.HasPrefix(kv, "SYNTH_VALUE=") {
			last = kv
		}
	}
	if last != "SYNTH_VALUE=override" {
		t.Fatalf("override not last: %q", last)
	}
	tail := env[len(env)-2:]
	if tail[0] != "A_FIRST=1" || tail[1] != "SYNTH_VALUE=override" {
		t.Fatalf("extra entries not sorted: %v", tail)
	}
}
