// Package command runs the external helper tools with a bounded runtime.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	DefaultTimeout = time.Second
	waitDelay      = 100 * time.Millisecond
)

// RunFunc runs a tool and returns its trimmed stdout.
type RunFunc func(ctx context.Context, path string, args ...string) (string, error)

// Run executes path with args. A non-zero exit, a failure to start or a
// cancelled ctx is returned as an error carrying the tool's stderr.
func Run(ctx context.Context, path string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children left behind by a killed tool must not keep us waiting on the pipes
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	outStr := strings.TrimSpace(stdout.String())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%w)", ctxErr, err)
		}
		errStr := strings.TrimSpace(stderr.String())
		if errStr == "" {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return "", fmt.Errorf("%s: %w, stderr: %s", path, err, errStr)
	}

	return outStr, nil
}

// Runner applies a fixed timeout to every call.
type Runner struct {
	Timeout time.Duration
	Run     RunFunc
}

func NewRunner(timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Runner{Timeout: timeout, Run: Run}
}

func (r Runner) Output(ctx context.Context, path string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	run := r.Run
	if run == nil {
		run = Run
	}
	return run(ctx, path, args...)
}
