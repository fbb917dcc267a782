// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cmd wires the hb command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/ohos-build/hb/internal/argstore"
	"github.com/ohos-build/hb/internal/configloader"
	"github.com/ohos-build/hb/internal/coredb"
	"github.com/ohos-build/hb/internal/engine"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/modules"
	"github.com/ohos-build/hb/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg      *types.Config
	logger   *slog.Logger
	db       *coredb.DB
	history  *coredb.History
	store    *argstore.Store
	resolver *engine.Resolver
	registry *modules.ArgResolver
	session  *modules.Session
}

// NewRootCmd builds the hb command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "hb",
		Short:         "OHOS build front end",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.DisableFlagParsing {
				if err := a.parseGlobalFlags(args); err != nil {
					return err
				}
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to hb.yaml (overrides "+configloader.EnvConfig+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(newBuildCmd(a))
	root.AddCommand(newSetCmd(a))
	root.AddCommand(newEnvCmd(a))
	root.AddCommand(newCleanCmd(a))
	root.AddCommand(newToolCmd(a))
	root.AddCommand(NewCompletionCmd(root))
	return root
}

// Execute runs hb and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// parseGlobalFlags picks the root flags out of a raw argv for commands that
// hand their arguments to the resolver untouched.
func (a *app) parseGlobalFlags(argv []string) error {
	flags := pflag.NewFlagSet("hb", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)
	flags.StringVar(&a.configPath, "config", a.configPath, "")
	flags.StringVar(&a.logLevel, "log-level", a.logLevel, "")
	flags.BoolP("help", "h", false, "")
	if err := flags.Parse(argv); err != nil {
		return hberr.Config(hberr.CodeUnknownArgKind, "parse global options: %v", err)
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := configloader.Resolve(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return hberr.Config(hberr.CodeSchemaIO, "invalid --log-level %q", a.logLevel)
	}
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.LogFormat, level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, a.logger)
	ctx = argstore.WithInvocation(ctx, uuid.NewString())
	cmd.SetContext(ctx)

	var storeOpts []argstore.Option
	db, err := coredb.Open(ctx, coredb.Options{DataDir: cfg.DataDir})
	if err != nil {
		a.logger.Warn("history disabled", "err", err)
	} else {
		a.db = db
		a.history = coredb.NewHistory(db)
		storeOpts = append(storeOpts, argstore.WithRecorder(a.history))
	}
	a.store = argstore.New(cfg.ArgsDir, storeOpts...)
	a.resolver = engine.NewResolver(a.store, engine.WithWarner(logging.NewWarner(cmd.ErrOrStderr())))
	a.registry = modules.NewArgResolver()
	a.session = modules.NewSession()
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// printError renders err the way hb reports failures.
func printError(w io.Writer, err error) {
	var coded *hberr.Error
	if errors.As(err, &coded) {
		msg := coded.Message
		if coded.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, coded.Err)
		}
		fmt.Fprintf(w, "[OHOS ERROR] [%s]: %s\n", coded.Code, msg)
		return
	}
	fmt.Fprintf(w, "[OHOS ERROR] %v\n", err)
}
