// SPDX-License-Identifier: AGPL-3.0-or-later
package modules

import (
	"context"
	"fmt"
	"os"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/argstore"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/types"
)

const (
	argCleanPhase = "clean_phase"
	argCleanArgs  = "clean_args"
)

// CleanModule removes build output and, on request, persisted arguments.
type CleanModule struct {
	args     map[string]*args.Argument
	resolver *ArgResolver
	store    *argstore.Store
	outPath  string
}

func NewCleanModule(resolved map[string]*args.Argument, resolver *ArgResolver, store *argstore.Store, outPath string) *CleanModule {
	return &CleanModule{args: resolved, resolver: resolver, store: store, outPath: outPath}
}

func (m *CleanModule) Workflow() types.Workflow        { return types.WorkflowClean }
func (m *CleanModule) Args() map[string]*args.Argument { return m.args }

// Run cleans according to clean_phase: regular removes the output
// directory, deep also resets every persisted argument file, none keeps
// everything. clean_args resets the argument files on its own.
func (m *CleanModule) Run(ctx context.Context) error {
	for _, name := range sortedArgNames(m.args) {
		if err := m.resolver.ResolveArg(ctx, m.args[name], m); err != nil {
			return err
		}
	}

	logger := logging.FromContext(ctx)
	phase := types.CleanRegular
	if arg, ok := m.args[argCleanPhase]; ok {
		phase = types.ParseCleanPhase(arg.String())
	}
	resetArgs := false
	if arg, ok := m.args[argCleanArgs]; ok {
		resetArgs = arg.Bool()
	}

	if phase == types.CleanRegular || phase == types.CleanDeep {
		if m.outPath == "" {
			return fmt.Errorf("clean: output path not configured")
		}
		if err := os.RemoveAll(m.outPath); err != nil {
			return fmt.Errorf("remove %s: %w", m.outPath, err)
		}
		logger.Info("removed output", "path", m.outPath, "phase", phase.String())
	}
	if phase == types.CleanDeep || resetArgs {
		if err := m.store.ResetAll(); err != nil {
			return err
		}
		logger.Info("reset persisted args", "dir", m.store.Dir())
	}
	return nil
}
