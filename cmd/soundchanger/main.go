package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spicery/soundchanger/pkg/ast"
	"github.com/spicery/soundchanger/pkg/lexicon"
	"github.com/spicery/soundchanger/pkg/rulefile"
	"github.com/spicery/soundchanger/pkg/soundchange"
	"github.com/spicery/soundchanger/pkg/soundclass"
	"github.com/spicery/soundchanger/pkg/tokenizer"
)

const (
	version     = "0.1.0"
	logLevelEnv = "SOUNDCHANGER_LOG_LEVEL"
	usage       = `soundchanger - apply sound change rules to a word list

Usage:
  soundchanger --rules <file> [options]

Options:
  -h, --help            Show this help message
  -v, --version         Show version information
  --rules <file>        Rule file: text format, or YAML if it ends in .yaml/.yml
  --lexicon <file>      Word list, one word per line (defaults to stdin)
  --output <file>       Output file (defaults to stdout)
  --config <file>       YAML config file (optional)
  --make-config         Generate default config YAML to stdout
  --strict              Reject rule characters that are not defined sounds
  --workers <n>         Number of words processed in parallel per rule
  --time                Report how long applying the rules took
  --diff                Show changed words as "before → after"
  --trace               Show every replacement each rule makes
  --tokens <rule>       Print the tokens of a rule, one JSON object per line
  --ast                 Print the parsed rules as YAML
  --repl                Read words interactively
  --log-level <level>   debug, info, warn or error (or set ` + logLevelEnv + `)

Examples:
  soundchanger --rules latin.txt --lexicon words.txt           # Write the evolved words to stdout
  soundchanger --rules latin.txt --lexicon words.txt --diff    # Show only what changed
  soundchanger --rules latin.yaml --repl                       # Try words interactively
  soundchanger --rules latin.txt --tokens "C -> G / V_V"       # Inspect how a rule is tokenized
  soundchanger --make-config > soundchanger.yaml               # Generate default configuration
`
)

type options struct {
	showHelp, showVersion bool
	makeConfig            bool
	strict                bool
	showTime, diff, trace bool
	showAST, repl         bool
	workers               int
	rulesFile             string
	lexiconFile           string
	outputFile            string
	configFile            string
	tokensRule            string
	logLevel              string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("soundchanger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.showHelp, "h", false, "Show help")
	fs.BoolVar(&opts.showHelp, "help", false, "Show help")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version")
	fs.BoolVar(&opts.makeConfig, "make-config", false, "Generate default config YAML")
	fs.BoolVar(&opts.strict, "strict", false, "Require defined sounds")
	fs.BoolVar(&opts.showTime, "time", false, "Report timing")
	fs.BoolVar(&opts.diff, "diff", false, "Show changed words")
	fs.BoolVar(&opts.trace, "trace", false, "Show replacements")
	fs.BoolVar(&opts.showAST, "ast", false, "Print parsed rules as YAML")
	fs.BoolVar(&opts.repl, "repl", false, "Interactive mode")
	fs.IntVar(&opts.workers, "workers", 0, "Parallel words per rule")
	fs.StringVar(&opts.rulesFile, "rules", "", "Rule file")
	fs.StringVar(&opts.lexiconFile, "lexicon", "", "Word list (defaults to stdin)")
	fs.StringVar(&opts.outputFile, "output", "", "Output file (defaults to stdout)")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file")
	fs.StringVar(&opts.tokensRule, "tokens", "", "Rule to tokenize")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level")

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if opts.showHelp {
		fs.Usage()
		return 0
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "soundchanger version %s\n", version)
		return 0
	}

	if opts.makeConfig {
		out, err := rulefile.DefaultConfig().YAML()
		if err != nil {
			fmt.Fprintf(stderr, "Error generating default config: %v\n", err)
			return 1
		}
		fmt.Fprint(stdout, out)
		return 0
	}

	// Reject any positional arguments
	if len(fs.Args()) > 0 {
		fmt.Fprintf(stderr, "Error: Unexpected positional arguments. Use --rules and --lexicon flags instead.\n\n")
		fs.Usage()
		return 1
	}

	cfg, err := loadConfig(fs, &opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	st := newStyles(cfg.Color)

	// Load rules if specified
	file := &rulefile.File{Registry: soundclass.NewRegistry()}
	if opts.rulesFile != "" {
		loader := &rulefile.Loader{Logger: logger}
		file, err = loader.LoadFile(opts.rulesFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading rules file '%s': %v\n", opts.rulesFile, err)
			return 1
		}
	}

	if opts.tokensRule != "" {
		return printTokens(opts.tokensRule, file.Registry, cfg.Strict, stdout, stderr)
	}

	if opts.rulesFile == "" {
		fmt.Fprintf(stderr, "Error: --rules is required.\n\n")
		fs.Usage()
		return 1
	}

	status := 0
	rules, err := file.Compile(soundchange.Options{Strict: cfg.Strict, Logger: logger})
	if err != nil {
		// Bad rules are skipped; the others still run.
		fmt.Fprintln(stderr, st.err.Render(err.Error()))
		status = 1
	}
	logger.Info("loaded rules", "file", opts.rulesFile, "rules", len(rules), "classes", file.Registry.Len())

	if opts.showAST {
		if err := printAST(rules, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return status
	}

	if opts.repl {
		if err := runREPL(rules, cfg, st, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return status
	}

	// Read input
	var words []string
	if opts.lexiconFile == "" {
		words, err = lexicon.Load(stdin)
	} else {
		words, err = lexicon.LoadFile(opts.lexiconFile)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	start := time.Now()
	var evolved []string
	if opts.trace {
		evolved, err = traceAll(rules, words, st, stderr)
	} else {
		evolved, err = soundchange.ApplyAll(rules, words, cfg.Workers)
	}
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintln(stderr, st.err.Render(err.Error()))
		status = 1
	}

	if opts.diff {
		printDiff(words, evolved, st, stdout)
	}

	// Without --output, a diff replaces the plain word list on stdout.
	if opts.outputFile != "" || !opts.diff {
		if err := writeWords(opts.outputFile, evolved, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.showTime {
		fmt.Fprintf(stderr, "Applied %d rules to %d words in %s\n", len(rules), len(words), elapsed)
	}
	return status
}

// loadConfig merges the config file, the log level environment variable and
// the flags that were set, in increasing order of precedence.
func loadConfig(fs *flag.FlagSet, opts *options) (*rulefile.Config, error) {
	cfg := rulefile.DefaultConfig()
	if opts.configFile != "" {
		loaded, err := rulefile.LoadConfig(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if env := os.Getenv(logLevelEnv); env != "" {
		cfg.LogLevel = env
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Strict = opts.strict
		case "workers":
			cfg.Workers = opts.workers
		case "log-level":
			cfg.LogLevel = opts.logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printTokens outputs the tokens of a rule as JSON, one per line (even if
// there was an error).
func printTokens(rule string, registry *soundclass.Registry, strict bool, stdout, stderr io.Writer) int {
	tokens, tokenizeErr := tokenizer.Tokenize(rule, tokenizer.InventoryFrom(registry, strict))
	for _, token := range tokens {
		jsonBytes, err := json.Marshal(token)
		if err != nil {
			fmt.Fprintf(stderr, "JSON encoding error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(jsonBytes))
	}
	if tokenizeErr != nil {
		fmt.Fprintf(stderr, "Tokenization error: %v\n", tokenizeErr)
		return 1
	}
	return 0
}

func printAST(rules []*soundchange.Rule, w io.Writer) error {
	for i, rule := range rules {
		if i > 0 {
			fmt.Fprintln(w, "---")
		}
		out, err := ast.Dump(rule.AST)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# line %d: %s\n%s", rule.Line, rule.Text, out)
	}
	return nil
}

// writeWords writes to outputFile, or to stdout when it is empty. An
// output file is not touched when there are no words.
func writeWords(outputFile string, words []string, stdout io.Writer) error {
	if outputFile != "" {
		return lexicon.WriteFile(outputFile, words)
	}
	if len(words) == 0 {
		return nil
	}
	if err := lexicon.Write(stdout, words); err != nil {
		return fmt.Errorf("failed to write words: %w", err)
	}
	_, err := fmt.Fprintln(stdout)
	return err
}
