package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// RequireBinary verifies the binary exists. Names containing a path
// separator are checked on disk, bare names are looked up on PATH.
func RequireBinary(name string) error {
	if strings.ContainsRune(name, filepath.Separator) {
		info, err := os.Stat(name)
		if err != nil {
			return fmt.Errorf("required binary not found: %s", name)
		}
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return fmt.Errorf("required binary is not executable: %s", name)
		}
		return nil
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("required binary not found: %s", name)
	}
	return nil
}

// ResolveBinary makes path-like names absolute so they survive a change of
// working directory. Bare names are returned unchanged for PATH lookup.
func ResolveBinary(name string) (string, error) {
	if !strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}
	return filepath.Abs(name)
}

// Command builds an exec.Cmd with sanitized env.
func Command(ctx context.Context, name string, args []string, env map[string]string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = MergeEnv(env)
	return cmd
}

// CommandResult is the captured outcome of RunCaptured.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Diagnostic returns the most useful output for an error message.
func (r CommandResult) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// RunCaptured runs cmd to completion under timeout, capturing both output
// streams. A non-zero exit, a start failure or the deadline all return an
// error; the result is populated in every case.
func RunCaptured(ctx context.Context, timeout time.Duration, dir, name string, args []string, env map[string]string) (CommandResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := Command(ctx, name, args, env)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Orphaned grandchildren must not keep the pipes open past the deadline.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	res := CommandResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: cmd.ProcessState.ExitCode()}
	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		return res, fmt.Errorf("%s timed out after %s", filepath.Base(name), timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, fmt.Errorf("%s exited with status %d", filepath.Base(name), exitErr.ExitCode())
	}
	return res, err
}
