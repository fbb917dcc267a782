// SPDX-License-Identifier: AGPL-3.0-or-later
package types

import (
	"encoding/json"
	"fmt"
)

// Descriptor is one entry of an args schema file.
// The resolveFuntion tag keeps the spelling used by existing schema files.
type Descriptor struct {
	ArgName         string     `json:"argName"`
	ArgHelp         string     `json:"argHelp"`
	ArgPhase        string     `json:"argPhase,omitempty"`
	ArgAttribute    Attributes `json:"argAttribute"`
	ArgType         string     `json:"argType"`
	ArgDefault      any        `json:"argDefault"`
	ResolveFunction string     `json:"resolveFuntion"`
}

// Schema maps normalized argument names to their descriptors.
type Schema map[string]Descriptor

// Attributes are the policy flags attached to an argument. Keys hb does not
// know about are kept in Extra and written back unchanged.
type Attributes struct {
	Deprecated   bool
	Optional     bool
	Abbreviation string
	Extra        map[string]any
}

const (
	attrDeprecated   = "deprecated"
	attrOptional     = "optional"
	attrAbbreviation = "abbreviation"
)

// Clone returns a deep-enough copy for independent mutation.
func (a Attributes) Clone() Attributes {
	if a.Extra == nil {
		return a
	}
	extra := make(map[string]any, len(a.Extra))
	for k, v := range a.Extra {
		extra[k] = v
	}
	a.Extra = extra
	return a
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+3)
	for k, v := range a.Extra {
		out[k] = v
	}
	if a.Deprecated {
		out[attrDeprecated] = true
	}
	if a.Optional {
		out[attrOptional] = true
	}
	if a.Abbreviation != "" {
		out[attrAbbreviation] = a.Abbreviation
	}
	return json.Marshal(out)
}

func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode argAttribute: %w", err)
	}
	*a = Attributes{}
	for k, v := range raw {
		switch k {
		case attrDeprecated:
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("argAttribute %q must be a boolean", k)
			}
			a.Deprecated = b
		case attrOptional:
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("argAttribute %q must be a boolean", k)
			}
			a.Optional = b
		case attrAbbreviation:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("argAttribute %q must be a string", k)
			}
			a.Abbreviation = s
		default:
			if a.Extra == nil {
				a.Extra = make(map[string]any)
			}
			a.Extra[k] = v
		}
	}
	return nil
}
