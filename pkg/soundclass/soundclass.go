// Package soundclass holds named, ordered collections of sounds and the
// registry that rule compilation resolves class names against.
package soundclass

import (
	"strings"
)

// member is one entry of a class definition: either a literal sound or a
// nested class that is expanded in place when the class is iterated.
type member struct {
	sound string
	class *Class
}

// Class is a named, insertion-ordered set of sounds. A Class is immutable once
// built; nested classes are flattened into the sound list at build time.
type Class struct {
	name    string
	members []member
	sounds  []string
	index   map[string]int
}

// Builder accumulates the members of a Class in definition order.
type Builder struct {
	name    string
	members []member
}

// NewBuilder starts a class definition with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// AddSound appends a literal sound.
func (b *Builder) AddSound(sounds ...string) *Builder {
	for _, s := range sounds {
		b.members = append(b.members, member{sound: s})
	}
	return b
}

// AddClass appends a nested class.
func (b *Builder) AddClass(c *Class) *Builder {
	if c != nil {
		b.members = append(b.members, member{class: c})
	}
	return b
}

// Build freezes the definition into a Class.
func (b *Builder) Build() *Class {
	c := &Class{
		name:    b.name,
		members: append([]member(nil), b.members...),
		index:   make(map[string]int),
	}
	for _, m := range c.members {
		if m.class != nil {
			for _, s := range m.class.sounds {
				c.add(s)
			}
			continue
		}
		c.add(m.sound)
	}
	return c
}

func (c *Class) add(s string) {
	if _, seen := c.index[s]; seen {
		return
	}
	c.index[s] = len(c.sounds)
	c.sounds = append(c.sounds, s)
}

// New creates a class directly from a list of sounds.
func New(name string, sounds ...string) *Class {
	return NewBuilder(name).AddSound(sounds...).Build()
}

// Name returns the class name ("" for anonymous derived classes).
func (c *Class) Name() string {
	return c.name
}

// Rename returns a copy of the class under a new name.
func (c *Class) Rename(name string) *Class {
	cp := *c
	cp.name = name
	return &cp
}

// Sounds returns the flattened sounds in order. The slice must not be modified.
func (c *Class) Sounds() []string {
	return c.sounds
}

// Len returns the number of distinct sounds.
func (c *Class) Len() int {
	return len(c.sounds)
}

// At returns the sound at ordinal i.
func (c *Class) At(i int) (string, bool) {
	if i < 0 || i >= len(c.sounds) {
		return "", false
	}
	return c.sounds[i], true
}

// Index returns the ordinal of sound within the class, or -1.
func (c *Class) Index(sound string) int {
	if i, ok := c.index[sound]; ok {
		return i
	}
	return -1
}

// Contains reports whether sound is a member.
func (c *Class) Contains(sound string) bool {
	_, ok := c.index[sound]
	return ok
}

// String returns the class name.
func (c *Class) String() string {
	return c.name
}

// Definition renders the class as name=member,member with nested classes
// shown by name.
func (c *Class) Definition() string {
	parts := make([]string, 0, len(c.members))
	for _, m := range c.members {
		if m.class != nil {
			parts = append(parts, m.class.name)
		} else {
			parts = append(parts, m.sound)
		}
	}
	return c.name + "=" + strings.Join(parts, ",")
}

// Combine pairs every sound of base with every modifier plus the empty
// modifier, in base-major order: Combine({p,t}, {ʰ}) is pʰ,p,tʰ,t.
// When prepend is set the modifiers are written before the base sound and the
// iteration is modifier-major: Combine({p,t}, {s}, true) is sp,st,p,t.
func Combine(base, modifiers []string, prepend bool) []string {
	mods := append(append([]string(nil), modifiers...), "")
	out := make([]string, 0, len(base)*len(mods))
	if prepend {
		for _, m := range mods {
			for _, s := range base {
				out = append(out, m+s)
			}
		}
		return out
	}
	for _, s := range base {
		for _, m := range mods {
			out = append(out, s+m)
		}
	}
	return out
}

// Multiply derives an anonymous class from base by appending each modifier
// (and the empty modifier) to each base sound.
func Multiply(base *Class, modifiers ...string) *Class {
	return New("", Combine(base.sounds, modifiers, false)...)
}
