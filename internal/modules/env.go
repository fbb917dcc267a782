// SPDX-License-Identifier: AGPL-3.0-or-later
package modules

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/types"
)

// EnvModule reports the resolved env arguments.
type EnvModule struct {
	args     map[string]*args.Argument
	resolver *ArgResolver
}

func NewEnvModule(resolved map[string]*args.Argument, resolver *ArgResolver) *EnvModule {
	return &EnvModule{args: resolved, resolver: resolver}
}

func (m *EnvModule) Workflow() types.Workflow        { return types.WorkflowEnv }
func (m *EnvModule) Args() map[string]*args.Argument { return m.args }

// Resolve runs the resolver function of every env argument in name order.
func (m *EnvModule) Resolve(ctx context.Context) error {
	for _, name := range sortedArgNames(m.args) {
		if err := m.resolver.ResolveArg(ctx, m.args[name], m); err != nil {
			return err
		}
	}
	return nil
}

// Show writes one row per argument, sorted by name.
func (m *EnvModule) Show(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tVALUE")
	for _, name := range sortedArgNames(m.args) {
		arg := m.args[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, arg.Kind(), formatValue(arg.Value()))
	}
	return tw.Flush()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return "-"
		}
		return t
	case []string:
		if len(t) == 0 {
			return "-"
		}
		return strings.Join(t, ",")
	case map[string]any:
		if len(t) == 0 {
			return "-"
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, t[k]))
		}
		return strings.Join(pairs, ",")
	default:
		return fmt.Sprint(t)
	}
}
