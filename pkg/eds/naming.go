package eds

import (
	"fmt"
	"strings"
)

// NamingStrategy synthesizes the name of a compact sub-object from the
// array name and the sub-index. It must be a pure function.
type NamingStrategy func(base string, sub uint8) string

// NameUnderscore joins with an underscore and a decimal sub-index:
// "Pre-defined error field_5".
func NameUnderscore(base string, sub uint8) string {
	return fmt.Sprintf("%s_%d", base, sub)
}

// NameUnderscoreHex joins with an underscore and a lowercase hex sub-index:
// "Pre-defined error field_a".
func NameUnderscoreHex(base string, sub uint8) string {
	return fmt.Sprintf("%s_%x", base, sub)
}

// NameSpace joins with a space and a decimal sub-index: "Sensor Status 3".
func NameSpace(base string, sub uint8) string {
	return fmt.Sprintf("%s %d", base, sub)
}

var namingStrategies = map[string]NamingStrategy{
	"underscore":     NameUnderscore,
	"underscore-hex": NameUnderscoreHex,
	"space":          NameSpace,
}

// ParseNaming returns the strategy registered under name: "underscore",
// "underscore-hex" or "space". An empty name selects NameUnderscoreHex.
func ParseNaming(name string) (NamingStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return NameUnderscoreHex, nil
	}
	if s, ok := namingStrategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown naming strategy %q", name)
}
