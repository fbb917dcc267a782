//go:build unix

// SPDX-License-Identifier: AGPL-3.0-or-later
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunnerTeesOutputToLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out", "build.log")
	var stdout, stderr bytes.Buffer
	r := &Runner{LogPath: logPath, Stdout: &stdout, Stderr: &stderr}

	res, err := r.Run(context.Background(), Command{
		Path: "/bin/sh",
		Args: []string{"-c", `echo "hello $HB_TEST"; echo oops 1>&2`},
		Env:  map[string]string{"HB_TEST": "world"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit=%d", res.ExitCode)
	}
	if stdout.String() != "hello world\n" {
		t.Fatalf("stdout=%q", stdout.String())
	}
	if stderr.String() != "oops\n" {
		t.Fatalf("stderr=%q", stderr.String())
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello world") || !strings.Contains(string(data), "oops") {
		t.Fatalf("log missing output: %q", data)
	}
}

func TestRunnerReportsExitCode(t *testing.T) {
	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	res, err := r.Run(context.Background(), Command{Path: "/bin/sh", Args: []string{"-c", "exit 3"}})
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exit error, got %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit=%d", res.ExitCode)
	}
}
