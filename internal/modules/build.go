// SPDX-License-Identifier: AGPL-3.0-or-later
package modules

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/engine"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/types"
)

// Generator is the build-file generator driven at the targetGenerate phase.
// *generator.Gn satisfies it.
type Generator interface {
	RegisterArg(key string, value any)
	RegisterFlag(key string, value any)
	Run(ctx context.Context) error
}

// BuildModule runs the build phases against the resolved build arguments.
type BuildModule struct {
	args      map[string]*args.Argument
	resolver  *ArgResolver
	generator Generator
}

func NewBuildModule(resolved map[string]*args.Argument, resolver *ArgResolver, gen Generator) *BuildModule {
	return &BuildModule{args: resolved, resolver: resolver, generator: gen}
}

func (m *BuildModule) Workflow() types.Workflow        { return types.WorkflowBuild }
func (m *BuildModule) Args() map[string]*args.Argument { return m.args }

// Run walks the build phases in order. Arguments of a phase are resolved in
// name order; the generator runs once the targetGenerate arguments are done.
func (m *BuildModule) Run(ctx context.Context) error {
	if m.generator == nil {
		return hberr.Missing(hberr.CodeGnMissing, "build module has no generator")
	}
	byPhase := make(map[types.BuildPhase][]string)
	for _, name := range sortedArgNames(m.args) {
		phase := m.args[name].Phase()
		byPhase[phase] = append(byPhase[phase], name)
	}
	logger := logging.FromContext(ctx)
	for _, phase := range types.BuildPhases() {
		for _, name := range byPhase[phase] {
			if err := m.resolver.ResolveArg(ctx, m.args[name], m); err != nil {
				return fmt.Errorf("%s phase: %w", phase, err)
			}
		}
		if phase == types.PhaseTargetGenerate {
			logger.Info("running generator")
			if err := m.generator.Run(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildModule(ref string, m Module) (*BuildModule, error) {
	bm, ok := m.(*BuildModule)
	if !ok {
		return nil, wrongModule(ref, m)
	}
	return bm, nil
}

// resolveGnArgs registers each key=value entry of a list argument.
func resolveGnArgs(_ context.Context, arg *args.Argument, m Module) error {
	bm, err := buildModule("resolveGnArgs", m)
	if err != nil {
		return err
	}
	for _, entry := range arg.List() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return &engine.ArgError{Arg: arg.Name(), Msg: fmt.Sprintf("gn arg %q is not key=value", entry)}
		}
		bm.generator.RegisterArg(strings.TrimSpace(key), parseGnValue(strings.TrimSpace(value)))
	}
	return nil
}

// resolveGnFlags registers each --flag or --flag=value entry.
func resolveGnFlags(_ context.Context, arg *args.Argument, m Module) error {
	bm, err := buildModule("resolveGnFlags", m)
	if err != nil {
		return err
	}
	for _, entry := range arg.List() {
		key, value, _ := strings.Cut(entry, "=")
		bm.generator.RegisterFlag(key, value)
	}
	return nil
}

// resolveToGnArg passes the argument through under its own name.
func resolveToGnArg(_ context.Context, arg *args.Argument, m Module) error {
	bm, err := buildModule("resolveToGnArg", m)
	if err != nil {
		return err
	}
	bm.generator.RegisterArg(arg.Name(), arg.Value())
	return nil
}

func resolveTargetCpu(_ context.Context, arg *args.Argument, m Module) error {
	bm, err := buildModule("resolveTargetCpu", m)
	if err != nil {
		return err
	}
	if cpu := arg.String(); cpu != "" {
		bm.generator.RegisterArg("target_cpu", cpu)
	}
	return nil
}

var buildVariants = map[string]struct{}{"user": {}, "root": {}}

func resolveBuildVariant(_ context.Context, arg *args.Argument, m Module) error {
	bm, err := buildModule("resolveBuildVariant", m)
	if err != nil {
		return err
	}
	variant := arg.String()
	if variant == "" {
		return nil
	}
	if _, ok := buildVariants[variant]; !ok {
		return &engine.ArgError{Arg: arg.Name(), Msg: fmt.Sprintf("unknown build variant %q", variant)}
	}
	bm.generator.RegisterArg("build_variant", variant)
	return nil
}

// parseGnValue maps literal text to the gn value type it spells.
func parseGnValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
