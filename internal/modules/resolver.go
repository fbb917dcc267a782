// SPDX-License-Identifier: AGPL-3.0-or-later
package modules

import (
	"context"
	"sort"
	"sync"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/types"
)

// Module is the view of a workflow module handed to resolver functions.
type Module interface {
	Workflow() types.Workflow
	Args() map[string]*args.Argument
}

// ResolveFunc implements one resolveFuntion reference from a schema.
type ResolveFunc func(ctx context.Context, arg *args.Argument, m Module) error

// ArgResolver maps resolve-function references to implementations.
type ArgResolver struct {
	mu    sync.RWMutex
	funcs map[string]ResolveFunc
}

// NewArgResolver returns a registry preloaded with the built-in resolvers.
func NewArgResolver() *ArgResolver {
	r := &ArgResolver{funcs: make(map[string]ResolveFunc)}
	for ref, fn := range builtinResolvers {
		r.funcs[ref] = fn
	}
	return r
}

// Register adds or replaces the implementation of ref.
func (r *ArgResolver) Register(ref string, fn ResolveFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[ref] = fn
}

// ResolveArg runs the resolver named by arg. Arguments without a reference
// are left alone.
func (r *ArgResolver) ResolveArg(ctx context.Context, arg *args.Argument, m Module) error {
	if arg == nil {
		return nil
	}
	ref := arg.ResolveFunction()
	if ref == "" {
		return nil
	}
	r.mu.RLock()
	fn, ok := r.funcs[ref]
	r.mu.RUnlock()
	if !ok {
		return hberr.Config(hberr.CodeUnknownReference,
			"resolve function %q of arg %q is not registered", ref, arg.Name())
	}
	logging.FromContext(ctx).Debug("resolving arg", "arg", arg.Name(), "resolver", ref, "workflow", m.Workflow())
	return fn(ctx, arg, m)
}

var builtinResolvers = map[string]ResolveFunc{
	"resolveProductName":  resolveProductName,
	"resolveSetParameter": resolveSetParameter,
	"resolveGnArgs":       resolveGnArgs,
	"resolveGnFlags":      resolveGnFlags,
	"resolveToGnArg":      resolveToGnArg,
	"resolveTargetCpu":    resolveTargetCpu,
	"resolveBuildVariant": resolveBuildVariant,
}

// sortedArgNames returns the keys of m in order.
func sortedArgNames(m map[string]*args.Argument) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func requireArg(m Module, name string) (*args.Argument, error) {
	arg, ok := m.Args()[name]
	if !ok || arg == nil {
		return nil, hberr.Config(hberr.CodeUnknownReference, "arg %q is not defined for module %q", name, m.Workflow())
	}
	return arg, nil
}

func wrongModule(ref string, m Module) error {
	return hberr.Config(hberr.CodeUnknownReference, "resolve function %q cannot run in module %q", ref, m.Workflow())
}
