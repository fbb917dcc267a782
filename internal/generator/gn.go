// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generator turns resolved build arguments into GN invocations.
package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/ohos-build/hb/internal/executor"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/logging"
)

// CmdType selects a gn sub-command.
type CmdType int

const (
	CmdGen CmdType = iota + 1
	CmdPath
	CmdDesc
	CmdLs
	CmdRefs
	CmdFormat
	CmdClean
)

var cmdNames = map[CmdType]string{
	CmdGen:    "gen",
	CmdPath:   "path",
	CmdDesc:   "desc",
	CmdLs:     "ls",
	CmdRefs:   "refs",
	CmdFormat: "format",
	CmdClean:  "clean",
}

func (c CmdType) String() string {
	if name, ok := cmdNames[c]; ok {
		return name
	}
	return "cmd(" + strconv.Itoa(int(c)) + ")"
}

// CommandRunner executes a prepared command. *executor.Runner satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, cmd executor.Command) (executor.Result, error)
}

// Config carries everything Gn needs from the tool configuration.
type Config struct {
	Executable string
	OutPath    string
	RootPath   string
	// ScriptExecutable is passed as --script-executable when
	// ConstrainedOS is set.
	ScriptExecutable string
	ConstrainedOS    bool
	Runner           CommandRunner
	// DryRun prints the gen command line to Out instead of running it.
	DryRun bool
	Out    io.Writer
}

// Gn collects args and flags and invokes the gn executable.
type Gn struct {
	cfg   Config
	args  map[string]any
	flags map[string]any
}

type handler func(g *Gn, ctx context.Context) error

var handlers = map[CmdType]handler{
	CmdGen:    (*Gn).gen,
	CmdPath:   unsupported(CmdPath),
	CmdDesc:   unsupported(CmdDesc),
	CmdLs:     unsupported(CmdLs),
	CmdRefs:   unsupported(CmdRefs),
	CmdFormat: unsupported(CmdFormat),
	CmdClean:  unsupported(CmdClean),
}

// New validates cfg. It fails when the executable is missing so that no
// build step runs against an absent gn.
func New(cfg Config) (*Gn, error) {
	if cfg.Executable == "" {
		return nil, hberr.Missing(hberr.CodeGnMissing, "There is no gn executable configured")
	}
	if err := checkExecutable(cfg.Executable); err != nil {
		return nil, err
	}
	if cfg.Runner == nil {
		cfg.Runner = &executor.Runner{}
	}
	return &Gn{cfg: cfg, args: map[string]any{}, flags: map[string]any{}}, nil
}


// RegisterArg records a build argument passed through --args.
func (g *Gn) RegisterArg(key string, value any) { g.args[key] = value }

// RegisterFlag records a command-line flag appended after the out dir.
func (g *Gn) RegisterFlag(key string, value any) { g.flags[key] = value }

// Run generates build files.
func (g *Gn) Run(ctx context.Context) error {
	return g.Execute(ctx, CmdGen)
}

// Execute dispatches cmd through the command table.
func (g *Gn) Execute(ctx context.Context, cmd CmdType) error {
	h, ok := handlers[cmd]
	if !ok {
		return hberr.Config(hberr.CodeUnsupportedGnCmd, "You are trying to use an unsupported gn cmd type %q", cmd.String())
	}
	return h(g, ctx)
}

func unsupported(cmd CmdType) handler {
	return func(*Gn, context.Context) error {
		return hberr.Config(hberr.CodeUnsupportedGnCmd, "gn %s is not supported yet", cmd)
	}
}

// ConvertArgs renders registered args as gn assignments, sorted by key.
// Only bool, string and integer values are representable; others are
// dropped.
func (g *Gn) ConvertArgs() []string {
	out := make([]string, 0, len(g.args))
	for _, key := range sortedKeys(g.args) {
		switch v := g.args[key].(type) {
		case bool:
			out = append(out, strings.ToLower(fmt.Sprintf("%s=%t", key, v)))
		case string:
			out = append(out, fmt.Sprintf("%s=\"%s\"", key, v))
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			out = append(out, fmt.Sprintf("%s=%d", key, v))
		}
	}
	return out
}

// ConvertFlags renders registered flags sorted by key. An empty string
// value yields the bare key.
func (g *Gn) ConvertFlags() []string {
	out := make([]string, 0, len(g.flags))
	for _, key := range sortedKeys(g.flags) {
		v := g.flags[key]
		if s, ok := v.(string); ok && s == "" {
			out = append(out, key)
			continue
		}
		out = append(out, strings.ToLower(fmt.Sprintf("%s=%v", key, v)))
	}
	return out
}

// GenArgv returns the full gn gen command line.
func (g *Gn) GenArgv() []string {
	argv := []string{g.cfg.Executable, "gen", "--args=" + strings.Join(g.ConvertArgs(), " "), g.cfg.OutPath}
	argv = append(argv, g.ConvertFlags()...)
	if g.cfg.ConstrainedOS {
		argv = append(argv, "--script-executable="+g.cfg.ScriptExecutable)
	}
	return argv
}

func (g *Gn) gen(ctx context.Context) error {
	argv := g.GenArgv()
	logger := logging.FromContext(ctx)
	line := shellquote.Join(argv...)
	if g.cfg.DryRun {
		out := g.cfg.Out
		if out == nil {
			out = os.Stdout
		}
		_, err := fmt.Fprintln(out, line)
		return err
	}
	logger.Info("Executing gn command", "cmd", line)

	cmd := executor.Command{Label: "gn gen", Path: argv[0], Args: argv[1:], Dir: g.cfg.RootPath}
	if _, err := g.cfg.Runner.Run(ctx, cmd); err != nil {
		return hberr.External(hberr.CodeGnPhaseFailed, err, "GN phase failed")
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
