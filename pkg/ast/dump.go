package ast

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// dumpNode is the YAML shape of a node.
type dumpNode struct {
	Kind        Kind        `yaml:"kind"`
	Text        *string     `yaml:"text,omitempty"`
	Class       string      `yaml:"class,omitempty"`
	Members     []string    `yaml:"members,omitempty,flow"`
	Index       *int        `yaml:"index,omitempty"`
	Positive    *bool       `yaml:"positive,omitempty"`
	Stage       *int        `yaml:"stage,omitempty"`
	Children    []*dumpNode `yaml:"children,omitempty"`
	Target      *dumpNode   `yaml:"target,omitempty"`
	Replacement *dumpNode   `yaml:"replacement,omitempty"`
	Pre         *dumpNode   `yaml:"pre,omitempty"`
	Post        *dumpNode   `yaml:"post,omitempty"`
	Changes     []*dumpNode `yaml:"changes,omitempty"`
	Positives   []*dumpNode `yaml:"positive_environments,omitempty"`
	Negatives   []*dumpNode `yaml:"negative_environments,omitempty"`
}

// Dump renders a node tree as YAML.
func Dump(n Node) (string, error) {
	out, err := yaml.Marshal(toDump(n))
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s node to YAML: %w", n.Kind(), err)
	}
	return string(out), nil
}

func toDump(n Node) *dumpNode {
	d := &dumpNode{Kind: n.Kind()}
	switch x := n.(type) {
	case *Sound:
		text := x.Text
		d.Text = &text
	case *SoundClassRef:
		d.Class = x.Class.Name()
		d.Members = x.Class.Sounds()
	case *IndexedClassRef:
		index := x.Index
		d.Class = x.Class.Name()
		d.Members = x.Class.Sounds()
		d.Index = &index
	case *Optional:
		d.Children = []*dumpNode{toDump(x.Inner)}
	case *Repetition:
		d.Children = []*dumpNode{toDump(x.Inner)}
	case *Alternation:
		for _, alt := range x.Alternatives {
			d.Children = append(d.Children, toDump(alt))
		}
	case *Sequence:
		for _, e := range x.Elements {
			d.Children = append(d.Children, toDump(e))
		}
	case *WordBoundary:
	case *Environment:
		positive := x.Positive
		d.Positive = &positive
		d.Pre = toDump(x.Pre)
		d.Post = toDump(x.Post)
	case *Change:
		stage := x.Stage
		d.Stage = &stage
		d.Target = toDump(x.Target)
		d.Replacement = toDump(x.Replacement)
	case *Rule:
		for _, c := range x.Changes {
			d.Changes = append(d.Changes, toDump(c))
		}
		for _, env := range x.Positive {
			d.Positives = append(d.Positives, toDump(env))
		}
		for _, env := range x.Negative {
			d.Negatives = append(d.Negatives, toDump(env))
		}
	}
	return d
}
