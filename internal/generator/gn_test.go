// SPDX-License-Identifier: AGPL-3.0-or-later
package generator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/ohos-build/hb/internal/executor"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls []executor.Command
	err   error
}

func (f *fakeRunner) Run(_ context.Context, cmd executor.Command) (executor.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return executor.Result{ExitCode: 1}, f.err
	}
	return executor.Result{}, nil
}

func fakeGn(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gn")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func newTestGn(t *testing.T, cfg Config) (*Gn, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	if cfg.Executable == "" {
		cfg.Executable = fakeGn(t)
	}
	if cfg.OutPath == "" {
		cfg.OutPath = "/src/out/rk3568"
	}
	cfg.Runner = runner
	g, err := New(cfg)
	require.NoError(t, err)
	return g, runner
}

func TestConvertArgs(t *testing.T) {
	g, _ := newTestGn(t, Config{})
	g.RegisterArg("is_debug", true)
	g.RegisterArg("product_name", "rk3568")
	g.RegisterArg("jobs", 8)
	g.RegisterArg("use_ccache", false)
	g.RegisterArg("targets", []string{"a"})
	g.RegisterArg("extra", map[string]any{"k": "v"})
	g.RegisterArg("ratio", 0.5)

	require.Equal(t, []string{
		"is_debug=true",
		"jobs=8",
		`product_name="rk3568"`,
		"use_ccache=false",
	}, g.ConvertArgs())
}

func TestConvertFlags(t *testing.T) {
	g, _ := newTestGn(t, Config{})
	g.RegisterFlag("--export-compile-commands", "")
	g.RegisterFlag("--ide", "VS2019")
	g.RegisterFlag("--check", true)

	require.Equal(t, []string{
		"--check=true",
		"--export-compile-commands",
		"--ide=vs2019",
	}, g.ConvertFlags())
}

func TestRunBuildsGenCommand(t *testing.T) {
	g, runner := newTestGn(t, Config{RootPath: "/src"})
	g.RegisterArg("product_name", "rk3568")
	g.RegisterArg("is_debug", false)
	g.RegisterFlag("--export-compile-commands", "")

	require.NoError(t, g.Run(context.Background()))
	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	require.Equal(t, g.cfg.Executable, call.Path)
	require.Equal(t, "/src", call.Dir)
	require.Equal(t, []string{
		"gen",
		`--args=is_debug=false product_name="rk3568"`,
		"/src/out/rk3568",
		"--export-compile-commands",
	}, call.Args)
}

func TestScriptExecutableOnlyForConstrainedOS(t *testing.T) {
	g, _ := newTestGn(t, Config{ScriptExecutable: "/usr/bin/python3", ConstrainedOS: true})
	argv := g.GenArgv()
	require.Equal(t, "--script-executable=/usr/bin/python3", argv[len(argv)-1])

	g, _ = newTestGn(t, Config{ScriptExecutable: "/usr/bin/python3"})
	for _, a := range g.GenArgv() {
		require.NotContains(t, a, "--script-executable")
	}
}

func TestGenFailureIsPhaseError(t *testing.T) {
	g, runner := newTestGn(t, Config{})
	cause := errors.New("exit status 1")
	runner.err = cause

	err := g.Run(context.Background())
	require.ErrorIs(t, err, hberr.ErrGnPhaseFailed)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "[3000] GN phase failed: exit status 1", err.Error())
}

func TestExecuteCommandTable(t *testing.T) {
	g, runner := newTestGn(t, Config{})
	for _, cmd := range []CmdType{CmdPath, CmdDesc, CmdLs, CmdRefs, CmdFormat, CmdClean} {
		err := g.Execute(context.Background(), cmd)
		require.ErrorIs(t, err, hberr.ErrUnsupportedGn, cmd.String())
	}
	err := g.Execute(context.Background(), CmdType(42))
	require.ErrorIs(t, err, hberr.ErrUnsupportedGn)
	require.Contains(t, err.Error(), "cmd(42)")
	require.Empty(t, runner.calls)
}

func TestNewFailsWithoutExecutable(t *testing.T) {
	_, err := New(Config{Executable: filepath.Join(t.TempDir(), "gn")})
	require.ErrorIs(t, err, hberr.ErrGnMissing)

	_, err = New(Config{})
	require.ErrorIs(t, err, hberr.ErrGnMissing)
}

func TestDryRunPrintsCommand(t *testing.T) {
	var out bytes.Buffer
	g, runner := newTestGn(t, Config{DryRun: true, Out: &out, OutPath: "/src/out/my product"})
	g.RegisterArg("product_name", "rk3568")

	require.NoError(t, g.Run(context.Background()))
	require.Empty(t, runner.calls)
	words, err := shellquote.Split(out.String())
	require.NoError(t, err)
	require.Equal(t, g.GenArgv(), words)
	require.Equal(t, "/src/out/my product", words[3])
}
