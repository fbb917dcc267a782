// SPDX-License-Identifier: AGPL-3.0-or-later

// Package argsloader turns schema descriptors into command-line options.
package argsloader

import (
	"sort"
	"strings"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/types"
	"github.com/spf13/pflag"
)

const (
	gateHelpPrefix       = "[gate] "
	deprecatedHelpPrefix = "(deprecated) "
)

// FlagName returns the option name registered for d ("--product-name" ->
// "product-name").
func FlagName(d types.Descriptor) string {
	return strings.TrimLeft(d.ArgName, "-")
}

// Register adds one option for d to flags, using the persisted argDefault as
// the option default so an omitted option keeps the stored value.
func Register(flags *pflag.FlagSet, d types.Descriptor) error {
	name := FlagName(d)
	kind := types.ParseArgKind(d.ArgType)
	if kind == types.KindNone {
		return hberr.Config(hberr.CodeUnknownArgKind, "Unknown arg type %q for arg %q", d.ArgType, args.NormalizeName(d.ArgName))
	}
	def, err := args.Coerce(kind, d.ArgDefault)
	if err != nil {
		return hberr.Wrap(hberr.CodeUnknownArgKind, err, "invalid default for arg %q", name)
	}
	if flags.Lookup(name) != nil {
		return hberr.Config(hberr.CodeUnknownReference, "option --%s is registered twice", name)
	}
	short := shorthand(d.ArgAttribute.Abbreviation)
	if short != "" && flags.ShorthandLookup(short) != nil {
		short = ""
	}
	help := d.ArgHelp
	if d.ArgAttribute.Deprecated {
		help = deprecatedHelpPrefix + help
	}

	switch kind {
	case types.KindBool:
		flags.BoolP(name, short, def.(bool), help)
	case types.KindGate:
		flags.BoolP(name, short, def.(bool), gateHelpPrefix+help)
	case types.KindInt:
		flags.IntP(name, short, def.(int), help)
	case types.KindStr:
		flags.StringP(name, short, def.(string), help)
	case types.KindList:
		// StringArray keeps each occurrence verbatim; GN values carry quotes
		// and commas.
		flags.StringArrayP(name, short, def.([]string), help)
	case types.KindDict:
		// Repeated --name k=v pairs; the persisted map is used when absent.
		flags.StringArrayP(name, short, nil, help)
	}
	return nil
}

// RegisterSchema registers every descriptor of schema.
func RegisterSchema(flags *pflag.FlagSet, schema types.Schema) error {
	for _, key := range SortedKeys(schema) {
		if err := Register(flags, schema[key]); err != nil {
			return err
		}
	}
	return nil
}

// SortedKeys returns the schema keys in lexical order.
func SortedKeys(schema types.Schema) []string {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shorthand(abbrev string) string {
	s := strings.TrimLeft(abbrev, "-")
	if len(s) != 1 {
		return ""
	}
	return s
}
