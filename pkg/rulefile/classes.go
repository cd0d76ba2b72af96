package rulefile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rivo/uniseg"

	"github.com/spicery/soundchanger/pkg/soundclass"
)

// value is the result of a class expression. A sequence is a plain list of
// sounds; a class is a defined class or the product of one.
type value struct {
	*soundclass.Class
	isClass bool
}

// evaluator evaluates class expressions against the classes defined so far.
type evaluator struct {
	registry *soundclass.Registry
	near     []string // class names one edit away from a bare expression
}

// DefineClass parses a name=expression definition and registers the class.
// Whitespace has already been removed from def.
func DefineClass(registry *soundclass.Registry, def string) (*soundclass.Class, error) {
	c, _, err := defineClass(registry, def)
	return c, err
}

func defineClass(registry *soundclass.Registry, def string) (*soundclass.Class, []string, error) {
	name, expr, ok := strings.Cut(def, "=")
	if !ok {
		return nil, nil, fmt.Errorf("sound class definition must be of the form name=expression")
	}
	if name == "" {
		return nil, nil, fmt.Errorf("sound class definition has no name")
	}
	if strings.ContainsFunc(name, isReserved) {
		return nil, nil, fmt.Errorf("sound class name %q contains a rule symbol", name)
	}
	ev := &evaluator{registry: registry}
	v, err := ev.eval(expr)
	if err != nil {
		return nil, nil, err
	}
	c, err := registry.Define(name, v.Class)
	return c, ev.near, err
}

func isReserved(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("/!,#(){}>→*", r) || unicode.IsDigit(r)
}

func (ev *evaluator) eval(expr string) (value, error) {
	if expr == "" {
		return value{}, fmt.Errorf("empty class expression")
	}
	if c, ok := ev.registry.Lookup(expr); ok {
		return value{Class: c, isClass: true}, nil
	}
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") && !strings.ContainsAny(expr[1:len(expr)-1], "()") {
		return ev.eval(expr[1 : len(expr)-1])
	}
	// Splitting on the last * evaluates right to left, which tends to put
	// longer sounds first.
	if i := strings.LastIndex(expr, "*"); i >= 0 {
		left, err := ev.eval(expr[:i])
		if err != nil {
			return value{}, err
		}
		right, err := ev.eval(expr[i+1:])
		if err != nil {
			return value{}, err
		}
		return product(left, right), nil
	}
	if strings.Contains(expr, ",") {
		return ev.list(strings.Split(expr, ",")), nil
	}
	ev.checkNear(expr)
	return value{Class: soundclass.New("", graphemes(expr)...)}, nil
}

// product combines each sound of the left side with each sound of the right
// side plus the empty string. A plain sequence times a class prepends the
// sequence to the class instead.
func product(left, right value) value {
	if !left.isClass && right.isClass {
		return value{Class: soundclass.New("", soundclass.Combine(right.Sounds(), left.Sounds(), true)...), isClass: true}
	}
	sounds := soundclass.Combine(left.Sounds(), right.Sounds(), false)
	return value{Class: soundclass.New("", sounds...), isClass: left.isClass}
}

// list builds a sequence from comma-separated items. Items naming a class are
// nested in place.
func (ev *evaluator) list(items []string) value {
	b := soundclass.NewBuilder("")
	for _, item := range items {
		if item == "" {
			continue
		}
		if c, ok := ev.registry.Lookup(item); ok {
			b.AddClass(c)
			continue
		}
		b.AddSound(item)
	}
	return value{Class: b.Build()}
}

// checkNear records class names that a bare expression may have been meant
// to be.
func (ev *evaluator) checkNear(expr string) {
	if uniseg.GraphemeClusterCount(expr) < 2 {
		return
	}
	for _, name := range ev.registry.Names() {
		if len(name) > 1 && fuzzy.LevenshteinDistance(expr, name) == 1 {
			ev.near = append(ev.near, name)
		}
	}
}

func graphemes(s string) []string {
	var out []string
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}
