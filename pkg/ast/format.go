package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a node back into rule notation.
func Format(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch x := n.(type) {
	case *Sound:
		if x.Text == "" {
			b.WriteString("0")
		} else {
			b.WriteString(x.Text)
		}
	case *SoundClassRef:
		b.WriteString(x.Class.Name())
	case *IndexedClassRef:
		b.WriteString(x.Class.Name())
		b.WriteString(strconv.Itoa(x.Index))
	case *Optional:
		b.WriteString("(")
		write(b, x.Inner)
		b.WriteString(")")
	case *Repetition:
		write(b, x.Inner)
		b.WriteString("...")
	case *Alternation:
		b.WriteString("{")
		for i, alt := range x.Alternatives {
			if i > 0 {
				b.WriteString(",")
			}
			write(b, alt)
		}
		b.WriteString("}")
	case *Sequence:
		for _, e := range x.Elements {
			write(b, e)
		}
	case *WordBoundary:
		b.WriteString("#")
	case *Environment:
		if x.Positive {
			b.WriteString("/ ")
		} else {
			b.WriteString("/! ")
		}
		write(b, x.Pre)
		b.WriteString("_")
		write(b, x.Post)
	case *Change:
		write(b, x.Target)
		b.WriteString(" -> ")
		write(b, x.Replacement)
	case *Rule:
		writeRule(b, x)
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}

func writeRule(b *strings.Builder, r *Rule) {
	stages := r.Stages()
	for i, stage := range stages {
		if i == 0 {
			writeList(b, stage, func(c *Change) *Sequence { return c.Target })
		}
		b.WriteString(" -> ")
		writeList(b, stage, func(c *Change) *Sequence { return c.Replacement })
	}
	for _, env := range r.Positive {
		b.WriteString(" ")
		write(b, env)
	}
	for _, env := range r.Negative {
		b.WriteString(" ")
		write(b, env)
	}
}

func writeList(b *strings.Builder, changes []*Change, pick func(*Change) *Sequence) {
	for i, c := range changes {
		if i > 0 {
			b.WriteString(", ")
		}
		write(b, pick(c))
	}
}
