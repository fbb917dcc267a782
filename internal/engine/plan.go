// SPDX-License-Identifier: AGPL-3.0-or-later
package engine

import (
	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/types"
)

// BuildPlan groups resolved arguments by build phase in execution order.
// Phases without arguments and arguments without a phase are left out.
func BuildPlan(workflow types.Workflow, resolved map[string]*args.Argument) types.Plan {
	plan := types.Plan{Workflow: workflow}
	byPhase := make(map[types.BuildPhase][]types.PlanArg)
	for _, name := range sortedNames(resolved) {
		arg := resolved[name]
		if arg.Phase() == types.PhaseNone {
			continue
		}
		byPhase[arg.Phase()] = append(byPhase[arg.Phase()], types.PlanArg{
			Name:     name,
			Kind:     arg.Kind().String(),
			Value:    arg.Value(),
			Resolver: arg.ResolveFunction(),
		})
	}
	for _, phase := range types.BuildPhases() {
		if entries := byPhase[phase]; len(entries) > 0 {
			plan.Phases = append(plan.Phases, types.PlanPhase{Phase: phase.String(), Args: entries})
		}
	}
	return plan
}
