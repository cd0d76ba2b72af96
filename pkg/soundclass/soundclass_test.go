package soundclass

import (
	"reflect"
	"testing"
)

func TestMultiply(t *testing.T) {
	c := New("C", "b", "c")
	got := Multiply(c, "a", "e").Sounds()
	expected := []string{"ba", "be", "b", "ca", "ce", "c"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		modifiers []string
		prepend   bool
		expected  []string
	}{
		{"Append single modifier", []string{"p", "t", "k"}, []string{"ʰ"}, false, []string{"pʰ", "p", "tʰ", "t", "kʰ", "k"}},
		{"Append two modifiers", []string{"a"}, []string{"1", "2"}, false, []string{"a1", "a2", "a"}},
		{"Prepend", []string{"p", "t"}, []string{"s"}, true, []string{"sp", "st", "p", "t"}},
		{"No modifiers", []string{"a", "b"}, nil, false, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine(tt.base, tt.modifiers, tt.prepend)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNestedClassesFlattenInPlace(t *testing.T) {
	stops := New("T", "p", "t")
	c := NewBuilder("C").AddSound("m").AddClass(stops).AddSound("s", "t").Build()

	expected := []string{"m", "p", "t", "s"}
	if !reflect.DeepEqual(c.Sounds(), expected) {
		t.Errorf("Expected %v, got %v", expected, c.Sounds())
	}
	if c.Index("s") != 3 {
		t.Errorf("Expected index 3 for 's', got %d", c.Index("s"))
	}
	if c.Index("x") != -1 {
		t.Errorf("Expected -1 for a non-member, got %d", c.Index("x"))
	}
	if c.Definition() != "C=m,T,s,t" {
		t.Errorf("Unexpected definition %q", c.Definition())
	}
}

func TestClassAt(t *testing.T) {
	c := New("V", "a", "e")
	if s, ok := c.At(1); !ok || s != "e" {
		t.Errorf("Expected 'e', got %q (ok=%v)", s, ok)
	}
	if _, ok := c.At(2); ok {
		t.Errorf("Expected out of range lookup to fail")
	}
}

func TestRegistryRedefinition(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Define("T", New("", "p", "t", "k")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	base, _ := r.Lookup("T")
	if _, err := r.Define("T", Multiply(base, "ː")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	c, err := r.Get("T")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []string{"pː", "p", "tː", "t", "kː", "k"}
	if !reflect.DeepEqual(c.Sounds(), expected) {
		t.Errorf("Expected %v, got %v", expected, c.Sounds())
	}
	if c.Name() != "T" {
		t.Errorf("Expected name T, got %q", c.Name())
	}
	if r.Len() != 1 {
		t.Errorf("Expected one registry entry, got %d", r.Len())
	}
}

func TestRegistryUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("X"); err == nil {
		t.Errorf("Expected error for unknown class")
	}
	if _, err := r.Define("", New("", "a")); err == nil {
		t.Errorf("Expected error for unnamed class")
	}
}

func TestRegistrySoundsAndAll(t *testing.T) {
	r := NewRegistry()
	r.Define("C", New("", "t", "ts", "k"))
	r.Define("V", New("", "a", "e"))

	sounds := r.Sounds()
	if sounds[0] != "ts" {
		t.Errorf("Expected longest sound first, got %v", sounds)
	}
	if len(sounds) != 5 {
		t.Errorf("Expected 5 sounds, got %v", sounds)
	}

	all := r.DefineAll()
	if all.Len() != 5 || all.Name() != AllName {
		t.Errorf("Unexpected _ALL class %s", all.Definition())
	}
	if again := r.DefineAll(); again != all {
		t.Errorf("Expected DefineAll to keep the existing class")
	}
	if names := r.Names(); !reflect.DeepEqual(names, []string{"C", "V", AllName}) {
		t.Errorf("Unexpected names %v", names)
	}
}
