// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine resolves a workflow's arguments: it parses live command-line
// input against the persisted schema, coerces values and writes them back.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/argsloader"
	"github.com/ohos-build/hb/internal/argstore"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/types"
	"github.com/spf13/pflag"
)

// ArgError reports a malformed command-line value for one argument.
type ArgError struct {
	Arg string
	Msg string
}

func (e *ArgError) Error() string { return fmt.Sprintf("arg %s: %s", e.Arg, e.Msg) }

// Resolver binds live command-line input to a workflow's stored schema.
type Resolver struct {
	store  *argstore.Store
	warner *logging.Warner
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWarner sets where deprecation warnings are printed.
func WithWarner(w *logging.Warner) Option {
	return func(r *Resolver) { r.warner = w }
}

// NewResolver returns a Resolver reading and persisting through store.
func NewResolver(store *argstore.Store, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.warner == nil {
		r.warner = logging.NewWarner(nil)
	}
	return r
}

// Store returns the backing argument store.
func (r *Resolver) Store() *argstore.Store { return r.store }

func newFlagSet(workflow types.Workflow) *pflag.FlagSet {
	flags := pflag.NewFlagSet(string(workflow), pflag.ContinueOnError)
	// Several layers share one argv; options owned by another layer are skipped.
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)
	return flags
}

func addHelpFlag(flags *pflag.FlagSet) {
	if flags.Lookup("help") != nil {
		return
	}
	short := "h"
	if flags.ShorthandLookup(short) != nil {
		short = ""
	}
	flags.BoolP("help", short, false, "show this help message and exit")
}

// PrintHelp writes usage for every option of workflow plus any options added
// by extra.
func (r *Resolver) PrintHelp(workflow types.Workflow, w io.Writer, extra ...func(*pflag.FlagSet)) error {
	schema, err := r.store.Load(workflow)
	if err != nil {
		return err
	}
	flags := newFlagSet(workflow)
	if err := argsloader.RegisterSchema(flags, schema); err != nil {
		return err
	}
	for _, fn := range extra {
		fn(flags)
	}
	addHelpFlag(flags)
	fmt.Fprintf(w, "usage: hb %s [options]\n\noptions:\n%s", workflow, flags.FlagUsages())
	return nil
}

// ResolveAll parses argv against the schema of workflow and persists every
// argument's resulting value. Options not in the schema are ignored.
func (r *Resolver) ResolveAll(ctx context.Context, workflow types.Workflow, argv []string) (map[string]*args.Argument, error) {
	schema, err := r.store.Load(workflow)
	if err != nil {
		return nil, err
	}
	if argstore.InvocationFrom(ctx) == "" {
		ctx = argstore.WithInvocation(ctx, uuid.NewString())
	}
	logger := logging.FromContext(ctx).With(slog.String("workflow", string(workflow)))

	flags := newFlagSet(workflow)
	resolved := make(map[string]*args.Argument, len(schema))
	keys := argsloader.SortedKeys(schema)
	for _, key := range keys {
		d := schema[key]
		if err := argsloader.Register(flags, d); err != nil {
			return nil, err
		}
		arg, err := args.FromDescriptor(d)
		if err != nil {
			return nil, err
		}
		resolved[arg.Name()] = arg
	}
	addHelpFlag(flags)
	if err := flags.Parse(argv); err != nil {
		return nil, hberr.Wrap(hberr.CodeUnknownArgKind, err, "parse %s options", workflow)
	}

	for _, key := range keys {
		d := schema[key]
		arg := resolved[args.NormalizeName(d.ArgName)]
		assigned, err := readFlag(flags, d, arg)
		if err != nil {
			return nil, err
		}
		if arg.Deprecated() && !reflect.DeepEqual(arg.Value(), assigned) {
			logger.Warn("deprecated option changed", slog.String("arg", arg.Name()))
			r.warner.Warnf("compile option %q will be deprecated, please consider use other options", arg.Name())
		}
		arg.SetValue(assigned)
		if err := r.store.Persist(ctx, workflow, key, assigned); err != nil {
			return nil, err
		}
	}
	logger.Debug("arguments resolved", slog.Int("count", len(resolved)))
	return resolved, nil
}

func readFlag(flags *pflag.FlagSet, d types.Descriptor, arg *args.Argument) (any, error) {
	name := argsloader.FlagName(d)
	switch arg.Kind() {
	case types.KindList:
		v, err := flags.GetStringArray(name)
		if err != nil {
			return nil, hberr.Wrap(hberr.CodeUnknownArgKind, err, "read --%s", name)
		}
		return args.FlattenList(v), nil
	case types.KindBool, types.KindGate:
		v, err := flags.GetBool(name)
		if err != nil {
			return nil, hberr.Wrap(hberr.CodeUnknownArgKind, err, "read --%s", name)
		}
		return args.CoerceBool(v), nil
	case types.KindInt:
		v, err := flags.GetInt(name)
		if err != nil {
			return nil, hberr.Wrap(hberr.CodeUnknownArgKind, err, "read --%s", name)
		}
		return v, nil
	case types.KindStr:
		v, err := flags.GetString(name)
		if err != nil {
			return nil, hberr.Wrap(hberr.CodeUnknownArgKind, err, "read --%s", name)
		}
		return v, nil
	case types.KindDict:
		if !flags.Changed(name) {
			return arg.Value(), nil
		}
		pairs, err := flags.GetStringArray(name)
		if err != nil {
			return nil, hberr.Wrap(hberr.CodeUnknownArgKind, err, "read --%s", name)
		}
		return parsePairs(arg.Name(), pairs)
	default:
		return nil, hberr.Config(hberr.CodeUnknownArgKind, "Unknown arg type %q for arg %q", d.ArgType, arg.Name())
	}
}

// parsePairs accepts repeated k=v values; later keys win.
func parsePairs(name string, pairs []string) (map[string]any, error) {
	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, &ArgError{Arg: name, Msg: fmt.Sprintf("invalid pair %q, expected k=v", p)}
		}
		k := strings.TrimSpace(kv[0])
		if k == "" {
			return nil, &ArgError{Arg: name, Msg: "empty key"}
		}
		m[k] = kv[1]
	}
	return m, nil
}

func sortedNames(resolved map[string]*args.Argument) []string {
	out := make([]string, 0, len(resolved))
	for name := range resolved {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
