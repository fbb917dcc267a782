// SPDX-License-Identifier: AGPL-3.0-or-later

// Package args holds the typed, in-memory form of a schema descriptor.
package args

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/types"
)

// Argument is one configurable parameter of a workflow. Value always holds
// the Go type matching Kind: bool for bool/gate, int, string, []string for
// list and map[string]any for dict.
type Argument struct {
	name            string
	help            string
	phase           types.BuildPhase
	attributes      types.Attributes
	kind            types.ArgKind
	value           any
	resolveFunction string
}

// NormalizeName turns a CLI option name such as "--product-name" into the
// identifier used as schema key ("product_name").
func NormalizeName(optionName string) string {
	name := strings.ReplaceAll(optionName, "-", "_")
	if len(name) < 2 {
		return ""
	}
	return name[2:]
}

// FromDescriptor builds an Argument from a schema entry, coercing the
// persisted default into the kind's value type.
func FromDescriptor(d types.Descriptor) (*Argument, error) {
	name := NormalizeName(d.ArgName)
	kind := types.ParseArgKind(d.ArgType)
	if kind == types.KindNone {
		return nil, hberr.Config(hberr.CodeUnknownArgKind, "Unknown arg type %q for arg %q", d.ArgType, name)
	}
	value, err := Coerce(kind, d.ArgDefault)
	if err != nil {
		return nil, hberr.Wrap(hberr.CodeUnknownArgKind, err, "invalid default for arg %q", name)
	}
	return &Argument{
		name:            name,
		help:            d.ArgHelp,
		phase:           types.ParseBuildPhase(d.ArgPhase),
		attributes:      d.ArgAttribute.Clone(),
		kind:            kind,
		value:           value,
		resolveFunction: d.ResolveFunction,
	}, nil
}

// New constructs an Argument directly; value is coerced like a descriptor default.
func New(name string, kind types.ArgKind, value any) (*Argument, error) {
	return FromDescriptor(types.Descriptor{ArgName: "--" + name, ArgType: kind.String(), ArgDefault: value})
}

func (a *Argument) Name() string                 { return a.name }
func (a *Argument) Help() string                 { return a.help }
func (a *Argument) Phase() types.BuildPhase      { return a.phase }
func (a *Argument) Attributes() types.Attributes { return a.attributes }
func (a *Argument) Kind() types.ArgKind          { return a.kind }
func (a *Argument) Value() any                   { return a.value }
func (a *Argument) SetValue(v any)               { a.value = v }
func (a *Argument) ResolveFunction() string      { return a.resolveFunction }
func (a *Argument) SetResolveFunction(ref string) {
	a.resolveFunction = ref
}

// Deprecated reports whether changing this argument should warn the user.
func (a *Argument) Deprecated() bool { return a.attributes.Deprecated }

func (a *Argument) Bool() bool {
	b, _ := a.value.(bool)
	return b
}

func (a *Argument) Int() int {
	i, _ := a.value.(int)
	return i
}

func (a *Argument) String() string {
	s, _ := a.value.(string)
	return s
}

func (a *Argument) List() []string {
	l, _ := a.value.([]string)
	return l
}

func (a *Argument) Dict() map[string]any {
	m, _ := a.value.(map[string]any)
	return m
}

// Coerce converts raw, as decoded from JSON or read from a flag, into the
// value type of kind.
func Coerce(kind types.ArgKind, raw any) (any, error) {
	switch kind {
	case types.KindBool, types.KindGate:
		if raw == nil {
			return false, nil
		}
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", raw)
		}
		return b, nil
	case types.KindInt:
		return toInt(raw)
	case types.KindStr:
		if raw == nil {
			return "", nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	case types.KindList:
		return FlattenList(raw), nil
	case types.KindDict:
		return toDict(raw)
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

// CoerceBool applies truthiness to flag values: non-empty strings, non-zero
// numbers and true are true.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []string:
		return len(t) > 0
	case nil:
		return false
	default:
		return true
	}
}

// FlattenList collapses arbitrarily nested lists into a deduplicated set of
// strings. The result is sorted so persisted files stay stable.
func FlattenList(v any) []string {
	seen := make(map[string]struct{})
	var walk func(any)
	walk = func(item any) {
		switch t := item.(type) {
		case nil:
		case []string:
			for _, s := range t {
				seen[s] = struct{}{}
			}
		case []any:
			for _, it := range t {
				walk(it)
			}
		case string:
			seen[t] = struct{}{}
		default:
			seen[fmt.Sprint(t)] = struct{}{}
		}
	}
	walk(v)
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func toInt(raw any) (int, error) {
	switch t := raw.(type) {
	case nil:
		return 0, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("expected integer, got %v", t)
		}
		return int(t), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", t)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func toDict(raw any) (map[string]any, error) {
	out := make(map[string]any)
	switch t := raw.(type) {
	case nil:
	case map[string]any:
		for k, v := range t {
			out[k] = v
		}
	case map[string]string:
		for k, v := range t {
			out[k] = v
		}
	default:
		return nil, fmt.Errorf("expected mapping, got %T", raw)
	}
	return out, nil
}
