package query

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliasesYAML []byte

// Alias maps one canonical key to the surface forms that select it.
type Alias struct {
	Key   string   `yaml:"key"`
	Forms []string `yaml:"forms"`
}

// AliasTable is an ordered list of aliases.  Order only affects the order of
// extracted keys.
type AliasTable []Alias

// Keys returns the canonical keys in table order.
func (t AliasTable) Keys() []string {
	out := make([]string, len(t))
	for i, a := range t {
		out[i] = a.Key
	}
	return out
}

// Aliases holds the five lookup tables used by the extractor.  A value is
// never modified after ParseAliases returns it.
type Aliases struct {
	Airlines   AliasTable `yaml:"airlines"`
	Features   AliasTable `yaml:"features"`
	Statuses   AliasTable `yaml:"statuses"`
	Categories AliasTable `yaml:"categories"`
	Providers  AliasTable `yaml:"providers"`
}

// ParseAliases decodes alias tables from YAML.  Surface forms are lowercased
// and trimmed; empty forms, empty keys and duplicate keys are rejected.
func ParseAliases(data []byte) (*Aliases, error) {
	var a Aliases
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	tables := map[string]AliasTable{
		"airlines":   a.Airlines,
		"features":   a.Features,
		"statuses":   a.Statuses,
		"categories": a.Categories,
		"providers":  a.Providers,
	}
	for name, t := range tables {
		seen := make(map[string]bool, len(t))
		for i := range t {
			if t[i].Key == "" {
				return nil, fmt.Errorf("aliases %s[%d]: empty key", name, i)
			}
			if seen[t[i].Key] {
				return nil, fmt.Errorf("aliases %s: duplicate key %q", name, t[i].Key)
			}
			seen[t[i].Key] = true
			for j, f := range t[i].Forms {
				f = strings.ToLower(strings.TrimSpace(f))
				if f == "" {
					return nil, fmt.Errorf("aliases %s.%s: empty form", name, t[i].Key)
				}
				t[i].Forms[j] = f
			}
		}
	}
	return &a, nil
}

// LoadAliases reads alias tables from path.  An empty path selects the
// built-in tables.
func LoadAliases(path string) (*Aliases, error) {
	if path == "" {
		return DefaultAliases(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	return ParseAliases(data)
}

var builtinAliases = mustParseAliases(defaultAliasesYAML)

func mustParseAliases(data []byte) *Aliases {
	a, err := ParseAliases(data)
	if err != nil {
		panic(err)
	}
	return a
}

// DefaultAliases returns the built-in tables.  Callers must not modify them.
func DefaultAliases() *Aliases { return builtinAliases }
