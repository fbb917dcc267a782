// SPDX-License-Identifier: AGPL-3.0-or-later

// Package executor runs the external tools hb drives, such as gn, and tees
// their output into the build log.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ohos-build/hb/internal/logging"
)

// Command is one external process invocation.
type Command struct {
	// Label names the command in logs; defaults to the executable base name.
	Label string
	Path  string
	Args  []string
	Dir   string
	// Env is layered over the parent environment.
	Env map[string]string
}

// Argv returns the full argument vector, executable first.
func (c Command) Argv() []string {
	return append([]string{c.Path}, c.Args...)
}

func (c Command) label() string {
	if c.Label != "" {
		return c.Label
	}
	return filepath.Base(c.Path)
}

// Result holds the outcome of a finished process.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Runner executes commands. Output is copied to Stdout/Stderr, appended to
// the log file and emitted line by line at debug level.
type Runner struct {
	LogPath string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run starts cmd and waits for it. A non-zero exit returns the
// *exec.ExitError together with the populated Result.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Path == "" {
		return Result{ExitCode: -1}, errors.New("executor: empty command path")
	}
	logger := logging.FromContext(ctx).With("cmd", cmd.label())

	stdoutSink := r.Stdout
	if stdoutSink == nil {
		stdoutSink = os.Stdout
	}
	stderrSink := r.Stderr
	if stderrSink == nil {
		stderrSink = os.Stderr
	}

	var logFile io.Writer = io.Discard
	if r.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.LogPath), 0o755); err != nil {
			return Result{ExitCode: -1}, fmt.Errorf("ensure log dir: %w", err)
		}
		f, err := os.OpenFile(r.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return Result{ExitCode: -1}, fmt.Errorf("open build log: %w", err)
		}
		defer f.Close()
		logFile = f
	}

	stdoutWriter := NewLineWriter(io.MultiWriter(stdoutSink, logFile), func(line string) {
		logger.Debug("output", "stream", "stdout", "line", line)
	})
	stderrWriter := NewLineWriter(io.MultiWriter(stderrSink, logFile), func(line string) {
		logger.Debug("output", "stream", "stderr", "line", line)
	})

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = buildEnv(os.Environ(), cmd.Env)
	c.Stdout = stdoutWriter
	c.Stderr = stderrWriter

	start := time.Now()
	err := c.Run()
	stdoutWriter.Flush()
	stderrWriter.Flush()
	result := Result{Duration: time.Since(start)}

	if err == nil {
		logger.Info("command finished", "duration", result.Duration)
		return result, nil
	}
	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	logger.Error("command failed", "exit_code", result.ExitCode, "duration", result.Duration, "err", err)
	return result, err
}

func buildEnv(base []string, overrides map[string]string) []string {
	env := append([]string{}, base...)
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = upsertEnv(env, k, overrides[k])
	}
	return env
}

func upsertEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
