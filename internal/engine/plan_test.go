// SPDX-License-Identifier: AGPL-3.0-or-later
package engine

import (
	"testing"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/types"
)

func TestBuildPlanGroupsByPhase(t *testing.T) {
	resolved := map[string]*args.Argument{}
	for _, d := range []types.Descriptor{
		{ArgName: "--target-cpu", ArgType: "str", ArgPhase: "preTargetGenerate", ArgDefault: "arm64", ResolveFunction: "resolveTargetCpu"},
		{ArgName: "--ccache", ArgType: "bool", ArgPhase: "prebuild", ArgDefault: true},
		{ArgName: "--build-target", ArgType: "list", ArgPhase: "preTargetGenerate", ArgDefault: []any{"b", "a"}},
		{ArgName: "--log-level", ArgType: "str", ArgDefault: "info"},
	} {
		a, err := args.FromDescriptor(d)
		if err != nil {
			t.Fatalf("descriptor %s: %v", d.ArgName, err)
		}
		resolved[a.Name()] = a
	}

	plan := BuildPlan(types.WorkflowBuild, resolved)

	if plan.Workflow != types.WorkflowBuild {
		t.Fatalf("unexpected workflow %s", plan.Workflow)
	}
	if len(plan.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %+v", plan.Phases)
	}
	if plan.Phases[0].Phase != "prebuild" || plan.Phases[0].Args[0].Name != "ccache" {
		t.Fatalf("unexpected first phase %+v", plan.Phases[0])
	}
	second := plan.Phases[1]
	if second.Phase != "preTargetGenerate" || len(second.Args) != 2 {
		t.Fatalf("unexpected second phase %+v", second)
	}
	if second.Args[0].Name != "build_target" || second.Args[1].Resolver != "resolveTargetCpu" {
		t.Fatalf("args not sorted by name: %+v", second.Args)
	}
}
