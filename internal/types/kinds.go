// SPDX-License-Identifier: AGPL-3.0-or-later
package types

// ArgKind is the value kind of an argument. It drives default coercion and
// how the command-line option is registered.
type ArgKind int

const (
	KindNone ArgKind = iota
	KindBool
	KindInt
	KindStr
	KindList
	KindDict
	// KindGate behaves like KindBool but is rendered separately in help.
	KindGate
)

var argKindNames = map[ArgKind]string{
	KindNone: "none",
	KindBool: "bool",
	KindInt:  "int",
	KindStr:  "str",
	KindList: "list",
	KindDict: "dict",
	KindGate: "gate",
}

// ParseArgKind maps an argType tag to its kind. Unknown tags map to KindNone.
func ParseArgKind(s string) ArgKind {
	for k, name := range argKindNames {
		if k != KindNone && name == s {
			return k
		}
	}
	return KindNone
}

func (k ArgKind) String() string {
	if name, ok := argKindNames[k]; ok {
		return name
	}
	return "none"
}

// IsBoolean reports whether values of this kind are booleans.
func (k ArgKind) IsBoolean() bool { return k == KindBool || k == KindGate }

// BuildPhase tags an argument with the build stage it belongs to.
type BuildPhase int

const (
	PhaseNone BuildPhase = iota
	PhasePreBuild
	PhasePreLoad
	PhaseLoad
	PhasePreTargetGenerate
	PhaseTargetGenerate
	PhasePostTargetGenerate
	PhasePreTargetCompilation
	PhaseTargetCompilation
	PhasePostTargetCompilation
	PhasePostBuild
)

var buildPhaseNames = []string{
	"none",
	"prebuild",
	"preload",
	"load",
	"preTargetGenerate",
	"targetGenerate",
	"postTargetGenerate",
	"preTargetCompilation",
	"targetCompilation",
	"postTargetCompilation",
	"postbuild",
}

// BuildPhases lists every phase after PhaseNone in execution order.
func BuildPhases() []BuildPhase {
	out := make([]BuildPhase, 0, len(buildPhaseNames)-1)
	for i := PhasePreBuild; i <= PhasePostBuild; i++ {
		out = append(out, i)
	}
	return out
}

// ParseBuildPhase maps an argPhase tag to its phase; unknown or empty tags
// map to PhaseNone.
func ParseBuildPhase(s string) BuildPhase {
	for i, name := range buildPhaseNames {
		if i > 0 && name == s {
			return BuildPhase(i)
		}
	}
	return PhaseNone
}

func (p BuildPhase) String() string {
	if int(p) >= 0 && int(p) < len(buildPhaseNames) {
		return buildPhaseNames[p]
	}
	return "none"
}

// CleanPhase selects how much state the clean workflow removes.
type CleanPhase int

const (
	CleanRegular CleanPhase = iota
	CleanDeep
	CleanNone
)

// ParseCleanPhase maps a clean tag to its phase; unknown tags map to CleanNone.
func ParseCleanPhase(s string) CleanPhase {
	switch s {
	case "regular":
		return CleanRegular
	case "deep":
		return CleanDeep
	default:
		return CleanNone
	}
}

func (p CleanPhase) String() string {
	switch p {
	case CleanRegular:
		return "regular"
	case CleanDeep:
		return "deep"
	default:
		return "none"
	}
}

// Workflow identifies a top-level hb operation.
type Workflow string

const (
	WorkflowBuild Workflow = "build"
	WorkflowSet   Workflow = "set"
	WorkflowEnv   Workflow = "env"
	WorkflowClean Workflow = "clean"
	WorkflowTool  Workflow = "tool"
	WorkflowHelp  Workflow = "help"
)

// ArgWorkflows lists the workflows that own an argument schema.
func ArgWorkflows() []Workflow {
	return []Workflow{WorkflowBuild, WorkflowSet, WorkflowEnv, WorkflowClean}
}
