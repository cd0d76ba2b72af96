package rulefile

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spicery/soundchanger/pkg/parser"
	"github.com/spicery/soundchanger/pkg/soundchange"
	"github.com/spicery/soundchanger/pkg/soundclass"
)

func sounds(t *testing.T, r *soundclass.Registry, name string) string {
	t.Helper()
	c, err := r.Get(name)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return strings.Join(c.Sounds(), ",")
}

func TestClassExpressions(t *testing.T) {
	tests := []struct {
		name     string
		defs     []string
		class    string
		expected string
	}{
		{"Graphemes", []string{"V=aeiou"}, "V", "a,e,i,o,u"},
		{"Comma list", []string{"C=p,ts,k"}, "C", "p,ts,k"},
		{"Combining marks stay together", []string{"V=ãé"}, "V", "ã,é"},
		{"Class times sounds", []string{"T=pt", "T=T*ː"}, "T", "pː,p,tː,t"},
		{"Class times list", []string{"T=p,t", "A=T*(ʰ,ʷ)"}, "A", "pʰ,pʷ,p,tʰ,tʷ,t"},
		{"Sounds times class", []string{"T=p,t", "A=s*T"}, "A", "sp,st,p,t"},
		{"Sounds times sounds", []string{"A=ab*1"}, "A", "a1,a,b1,b"},
		{"Split on last star", []string{"A=a*b*c"}, "A", "abc,ab,ac,a"},
		{"Copy of class", []string{"V=ae", "W=V"}, "W", "a,e"},
		{"Nested class", []string{"P=p,b", "K=k,g", "S=P,K,q"}, "S", "p,b,k,g,q"},
		{"Parentheses", []string{"A=(a,b)"}, "A", "a,b"},
		{"Empty items skipped", []string{"A=a,,b,"}, "A", "a,b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := soundclass.NewRegistry()
			for _, def := range tt.defs {
				if _, err := DefineClass(r, def); err != nil {
					t.Fatalf("Unexpected error defining %q: %v", def, err)
				}
			}
			if got := sounds(t, r, tt.class); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestClassDefinitionErrors(t *testing.T) {
	for _, def := range []string{"abc", "=abc", "A=", "A1=b", "A#=b", "A=()"} {
		t.Run(def, func(t *testing.T) {
			if _, err := DefineClass(soundclass.NewRegistry(), def); err == nil {
				t.Errorf("Expected error for %q", def)
			}
		})
	}
}

const textRules = `% a comment
classes:
  C = p, t, k
  G = b, d, g
  V = aeiou

# another comment
rules:
  C -> G / V_V
  V -> 0 / _#

% done
`

func TestLoad(t *testing.T) {
	f, err := (&Loader{}).Load(strings.NewReader(textRules))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := sounds(t, f.Registry, "C"); got != "p,t,k" {
		t.Errorf("Expected p,t,k, got %s", got)
	}
	if got := sounds(t, f.Registry, soundclass.AllName); got != "p,t,k,b,d,g,a,e,i,o,u" {
		t.Errorf("Unexpected _ALL class %s", got)
	}
	if len(f.Rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(f.Rules))
	}
	if f.Rules[0].Line != 9 || f.Rules[0].Text != "C -> G / V_V" {
		t.Errorf("Unexpected first rule %+v", f.Rules[0])
	}

	rules, err := f.Compile(soundchange.DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	words, err := soundchange.ApplyAll(rules, []string{"pata", "kapo"}, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if words[0] != "pad" || words[1] != "kab" {
		t.Errorf("Expected [pad kab], got %v", words)
	}
}

func TestLoadKeepsUserAll(t *testing.T) {
	f, err := (&Loader{}).Load(strings.NewReader("_ALL=x,y\nC=p\nrules:\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := sounds(t, f.Registry, soundclass.AllName); got != "x,y" {
		t.Errorf("Expected user-defined _ALL to be kept, got %s", got)
	}
}

func TestLoadClassError(t *testing.T) {
	_, err := (&Loader{}).Load(strings.NewReader("C=p,t\nbroken line\nrules:\n"))
	var lerr *LineError
	if !errors.As(err, &lerr) {
		t.Fatalf("Expected LineError, got %v", err)
	}
	if lerr.Line != 2 || lerr.Text != "broken line" {
		t.Errorf("Unexpected error details %+v", lerr)
	}
}

func TestCompileCollectsErrors(t *testing.T) {
	f, err := (&Loader{}).Load(strings.NewReader("rules:\na -> b\nc ->\nd -> e\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rules, err := f.Compile(soundchange.DefaultOptions())
	if len(rules) != 2 {
		t.Errorf("Expected the 2 good rules, got %d", len(rules))
	}
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if perr.Line != 3 {
		t.Errorf("Expected error on line 3, got %d", perr.Line)
	}
}

func TestNearClassNameWarning(t *testing.T) {
	var buf bytes.Buffer
	l := &Loader{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	if _, err := l.Load(strings.NewReader("Vow=a,e\nX=Vo\nrules:\n")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "did_you_mean=Vow") {
		t.Errorf("Expected a suggestion, got %q", buf.String())
	}
}

const yamlRules = `classes:
  - C=p,t,k
  - V = a, e
rules:
  - C -> 0 / _#
  - ""
  - a -> e
`

func TestLoadYAML(t *testing.T) {
	f, err := (&Loader{}).LoadYAML([]byte(yamlRules))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := sounds(t, f.Registry, "V"); got != "a,e" {
		t.Errorf("Expected a,e, got %s", got)
	}
	if len(f.Rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(f.Rules))
	}
	if f.Rules[0].Line != 5 || f.Rules[1].Line != 7 {
		t.Errorf("Expected rules on lines 5 and 7, got %d and %d", f.Rules[0].Line, f.Rules[1].Line)
	}

	out, err := f.Marshal()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	again, err := (&Loader{}).LoadYAML(out)
	if err != nil {
		t.Fatalf("Unexpected error reloading: %v", err)
	}
	if len(again.Rules) != 2 || sounds(t, again.Registry, "C") != "p,t,k" {
		t.Errorf("Marshalled rule set did not load back:\n%s", out)
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	tests := []string{
		"classes: [[a]]\n",
		"classes:\n  - nonsense\n",
		"rules:\n  - {a: b}\n",
		"classes: 3\n",
	}
	for _, input := range tests {
		if _, err := (&Loader{}).LoadYAML([]byte(input)); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "rules.txt")
	yamlPath := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(textPath, []byte(textRules), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte(yamlRules), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &Loader{}
	f, err := l.LoadFile(textPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.Rules) != 2 {
		t.Errorf("Expected 2 rules from text file, got %d", len(f.Rules))
	}
	f, err = l.LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := f.Registry.Lookup("V"); !ok {
		t.Error("Expected class V from YAML file")
	}

	if _, err := l.LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("strict: true\nlog_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cfg.Strict {
		t.Error("Expected strict to be set")
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", level)
	}
	if cfg.Workers != DefaultConfig().Workers || cfg.HistoryFile != ".soundchanger_history" {
		t.Errorf("Expected unmentioned settings to keep defaults, got %+v", cfg)
	}

	out, err := DefaultConfig().YAML()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, key := range []string{"strict:", "workers:", "log_level: warn", "color: true", "history_file:"} {
		if !strings.Contains(out, key) {
			t.Errorf("Expected %q in default config:\n%s", key, out)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad_level.yaml":   "log_level: loud\n",
		"bad_workers.yaml": "workers: 0\n",
		"bad_yaml.yaml":    "strict: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("Expected error")
			}
		})
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}
}
