package rulefile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spicery/soundchanger/pkg/soundclass"
)

// RuleSet is the YAML form of a rule file:
//
//	classes:
//	  - C=p,t,k
//	rules:
//	  - C -> 0 / _#
//
// Nodes are kept so errors can point at the YAML line.
type RuleSet struct {
	Classes []yaml.Node `yaml:"classes"`
	Rules   []yaml.Node `yaml:"rules"`
}

// LoadYAML reads a YAML rule set.
func (l *Loader) LoadYAML(data []byte) (*File, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rule set: %w", err)
	}

	f := &File{Registry: soundclass.NewRegistry()}
	for _, node := range set.Classes {
		if node.Kind != yaml.ScalarNode {
			return nil, &LineError{Line: node.Line, Err: fmt.Errorf("class definition must be a string")}
		}
		if err := l.define(f.Registry, node.Line, node.Value, removeSpace(node.Value)); err != nil {
			return nil, err
		}
	}
	f.Registry.DefineAll()

	for _, node := range set.Rules {
		if node.Kind != yaml.ScalarNode {
			return nil, &LineError{Line: node.Line, Err: fmt.Errorf("rule must be a string")}
		}
		text := strings.TrimSpace(node.Value)
		if text == "" {
			continue
		}
		f.Rules = append(f.Rules, Source{Line: node.Line, Text: text})
	}
	return f, nil
}

// Marshal renders the file as a YAML rule set.
func (f *File) Marshal() ([]byte, error) {
	out := struct {
		Classes []string `yaml:"classes"`
		Rules   []string `yaml:"rules"`
	}{}
	for _, name := range f.Registry.Names() {
		if name == soundclass.AllName {
			continue
		}
		c, _ := f.Registry.Lookup(name)
		out.Classes = append(out.Classes, c.Definition())
	}
	for _, src := range f.Rules {
		out.Rules = append(out.Rules, src.Text)
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule set to YAML: %w", err)
	}
	return data, nil
}
