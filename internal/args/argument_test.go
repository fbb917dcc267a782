package args

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/types"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"--product-name": "product_name",
		"--all":          "all",
		"-x":             "",
		"--gn-args":      "gn_args",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestFromDescriptorValueMatchesKind(t *testing.T) {
	cases := []struct {
		name     string
		argType  string
		def      any
		wantType string
		want     any
	}{
		{"bool", "bool", true, "bool", true},
		{"gate", "gate", false, "bool", false},
		{"int from json number", "int", float64(3), "int", 3},
		{"str", "str", "rk3568", "string", "rk3568"},
		{"list nested", "list", []any{[]any{"a", "b"}, []any{"b"}}, "[]string", []string{"a", "b"}},
		{"list empty", "list", nil, "[]string", []string{}},
		{"dict", "dict", map[string]any{"k": "v"}, "map[string]interface {}", map[string]any{"k": "v"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			arg, err := FromDescriptor(types.Descriptor{
				ArgName:    "--demo-arg",
				ArgType:    tc.argType,
				ArgDefault: tc.def,
			})
			if err != nil {
				t.Fatalf("FromDescriptor: %v", err)
			}
			if arg.Name() != "demo_arg" {
				t.Fatalf("name=%q", arg.Name())
			}
			if got := reflect.TypeOf(arg.Value()).String(); got != tc.wantType {
				t.Fatalf("value type=%s want %s", got, tc.wantType)
			}
			if !reflect.DeepEqual(arg.Value(), tc.want) {
				t.Fatalf("value=%#v want %#v", arg.Value(), tc.want)
			}
		})
	}
}

func TestFromDescriptorUnknownKindFails(t *testing.T) {
	for _, argType := range []string{"float", "", "none", "string"} {
		arg, err := FromDescriptor(types.Descriptor{ArgName: "--jobs", ArgType: argType, ArgDefault: 1})
		if err == nil {
			t.Fatalf("argType %q: expected error, got %#v", argType, arg)
		}
		if !errors.Is(err, hberr.ErrUnknownArgKind) {
			t.Fatalf("argType %q: expected unknown-kind error, got %v", argType, err)
		}
		if arg != nil {
			t.Fatalf("argType %q: expected no argument on failure", argType)
		}
	}
}

func TestFromDescriptorCopiesMetadata(t *testing.T) {
	arg, err := FromDescriptor(types.Descriptor{
		ArgName:         "--product-name",
		ArgHelp:         "product to build",
		ArgPhase:        "prebuild",
		ArgAttribute:    types.Attributes{Deprecated: true},
		ArgType:         "str",
		ArgDefault:      "",
		ResolveFunction: "resolveProductName",
	})
	if err != nil {
		t.Fatalf("FromDescriptor: %v", err)
	}
	if arg.Phase() != types.PhasePreBuild || !arg.Deprecated() || arg.Help() != "product to build" {
		t.Fatalf("metadata not copied: %+v", arg)
	}
	if arg.ResolveFunction() != "resolveProductName" {
		t.Fatalf("resolve function=%q", arg.ResolveFunction())
	}
	arg.SetResolveFunction("other")
	if arg.ResolveFunction() != "other" {
		t.Fatalf("SetResolveFunction had no effect")
	}
}

func TestFromDescriptorRejectsMistypedDefault(t *testing.T) {
	if _, err := FromDescriptor(types.Descriptor{ArgName: "--ccache", ArgType: "bool", ArgDefault: "yes"}); err == nil {
		t.Fatalf("expected error for string default on bool arg")
	}
	if _, err := FromDescriptor(types.Descriptor{ArgName: "--jobs", ArgType: "int", ArgDefault: 1.5}); err == nil {
		t.Fatalf("expected error for fractional int default")
	}
}

func TestFlattenListDeduplicates(t *testing.T) {
	got := FlattenList([]any{[]any{"a", "b"}, []any{"b"}, "c", []string{"a"}})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("FlattenList=%v", got)
	}
}

func TestCoerceBool(t *testing.T) {
	truthy := []any{true, "x", 1, []string{"a"}}
	falsy := []any{false, "", 0, nil, []string{}}
	for _, v := range truthy {
		if !CoerceBool(v) {
			t.Fatalf("expected %#v to be true", v)
		}
	}
	for _, v := range falsy {
		if CoerceBool(v) {
			t.Fatalf("expected %#v to be false", v)
		}
	}
}
