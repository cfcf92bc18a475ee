package semantics

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"archgraph/pkg/domain"
)

// tableConfig is the YAML shape for an endpoint rule override file. Operators
// can constrain the built-in rules without a rebuild; they cannot invent new
// element or relationship types.
type tableConfig struct {
	Version           int          `yaml:"version"`
	RelationshipTypes []ruleConfig `yaml:"relationship_types"`
}

type ruleConfig struct {
	Name  string       `yaml:"name"`
	From  []string     `yaml:"from"`
	To    []string     `yaml:"to"`
	Pairs []pairConfig `yaml:"pairs"`
}

type pairConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadTable reads a YAML endpoint rule file and builds a table from it.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading semantics table: %w", err)
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("loading semantics table: %w", err)
	}
	return table, nil
}

// ParseTable builds a table from YAML bytes, rejecting unknown type names.
func ParseTable(data []byte) (*Table, error) {
	var cfg tableConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	rules := make(map[domain.RelationshipType]EndpointRule, len(cfg.RelationshipTypes))
	for _, rc := range cfg.RelationshipTypes {
		rt := domain.RelationshipType(strings.ToUpper(rc.Name))
		rule := EndpointRule{From: typeSet(), To: typeSet()}
		for _, f := range rc.From {
			rule.From[domain.ElementType(f)] = struct{}{}
		}
		for _, t := range rc.To {
			rule.To[domain.ElementType(t)] = struct{}{}
		}
		for _, p := range rc.Pairs {
			rule.Pairs = append(rule.Pairs, TypePair{
				From: domain.ElementType(p.From),
				To:   domain.ElementType(p.To),
			})
		}
		rules[rt] = rule
	}
	return &Table{rules: rules}, nil
}

func validateConfig(cfg *tableConfig) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if len(cfg.RelationshipTypes) == 0 {
		return fmt.Errorf("no relationship types defined")
	}
	seen := make(map[string]struct{})
	for _, rc := range cfg.RelationshipTypes {
		name := strings.ToUpper(rc.Name)
		if name == "" {
			return fmt.Errorf("relationship type with empty name")
		}
		if !domain.RelationshipType(name).Known() {
			return fmt.Errorf("unknown relationship type: %s", rc.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate relationship type: %s", rc.Name)
		}
		seen[name] = struct{}{}
		if len(rc.From)+len(rc.To) == 0 && len(rc.Pairs) == 0 {
			return fmt.Errorf("relationship type %s has no endpoint constraints", rc.Name)
		}
		for _, f := range rc.From {
			if !domain.ElementType(f).Known() {
				return fmt.Errorf("relationship type %s: unknown element type %q", rc.Name, f)
			}
		}
		for _, t := range rc.To {
			if !domain.ElementType(t).Known() {
				return fmt.Errorf("relationship type %s: unknown element type %q", rc.Name, t)
			}
		}
		for _, p := range rc.Pairs {
			if !domain.ElementType(p.From).Known() || !domain.ElementType(p.To).Known() {
				return fmt.Errorf("relationship type %s: unknown element type in pair %s->%s", rc.Name, p.From, p.To)
			}
		}
	}
	return nil
}
