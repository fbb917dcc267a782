// SPDX-License-Identifier: AGPL-3.0-or-later
package types

// Plan previews how a build would resolve its arguments, phase by phase,
// without running any resolver or the generator.
type Plan struct {
	Workflow Workflow    `json:"workflow" yaml:"workflow"`
	Phases   []PlanPhase `json:"phases,omitempty" yaml:"phases,omitempty"`
}

type PlanPhase struct {
	Phase string    `json:"phase" yaml:"phase"`
	Args  []PlanArg `json:"args" yaml:"args"`
}

type PlanArg struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Value    any    `json:"value" yaml:"value"`
	Resolver string `json:"resolver,omitempty" yaml:"resolver,omitempty"`
}
