package main

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/generator/languages"
	"github.com/mcncl/shapegen/internal/logging"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/naming"
	"github.com/mcncl/shapegen/internal/parser"
	"github.com/mcncl/shapegen/internal/query"
	"github.com/mcncl/shapegen/internal/schema"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string   `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	URL         string   `help:"Fetch the input JSON from an http(s) URL." short:"u" name:"url"`
	Output      string   `help:"Output file, or directory when several languages are generated. If not specified, writes to stdout." short:"o" type:"path"`
	Languages   []string `help:"Target language (go, python). Repeat to generate several." short:"l" name:"lang" default:"go"`
	Package     string   `help:"Package name for generated Go code." short:"p"`
	RootName    string   `help:"Name for the root type." short:"r"`
	Select      string   `help:"jq expression selecting the part of the input to analyze." short:"s"`
	Set         []string `help:"Override a configuration key, e.g. --set types.pointer_strategy=never." name:"set" placeholder:"KEY=VALUE"`
	Config      string   `help:"Path to configuration file. Defaults to the nearest .shapegen.yml." short:"c" type:"path"`
	Format      bool     `help:"Format the output code." short:"f" default:"true" negatable:""`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	LogFile     string   `help:"Write logs to this file, rotated by size." name:"log-file" type:"path"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.2.0"
)

func main() {
	// Parse CLI arguments with Kong
	cli := kong.Must(&CLI,
		kong.Name("shapegen"),
		kong.Description("Infer a schema from JSON and generate Go or Python types for it"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := cli.Parse(os.Args[1:]); err != nil {
		// The usage is already shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("shapegen version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}

	cleanup, err := setupLogging(cfg)
	if err != nil {
		fail(errors.NewOutputError("failed to set up logging", err))
	}

	err = run(&Context{Debug: CLI.Debug, Config: cfg, Stdout: os.Stdout, Stderr: os.Stderr})
	_ = cleanup()
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	// Use our custom error handling to provide user-friendly error messages
	fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
	fmt.Fprintf(os.Stderr, "\nFor help, run: shapegen --help\n")
	os.Exit(1)
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then the command-line flags and --set overrides.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	var overrides []string
	if CLI.Package != "" {
		overrides = append(overrides, "package="+CLI.Package)
	}
	if CLI.RootName != "" {
		overrides = append(overrides, "root_name="+CLI.RootName)
	}
	if !CLI.Format {
		overrides = append(overrides, "format=false")
	}
	overrides = append(overrides, CLI.Set...)

	cfg, err := config.Load(path, overrides)
	if err != nil {
		var cfgErr *errors.ConfigError
		if stderrors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, errors.NewConfigFileError(fmt.Sprintf("failed to load '%s'", path), err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) (func() error, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.FilePath = cfg.Logging.File
	if CLI.Debug {
		logCfg.Level = "debug"
	}
	if CLI.LogFile != "" {
		logCfg.FilePath = CLI.LogFile
	}
	_, cleanup, err := logging.Setup(logCfg)
	return cleanup, err
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	stdout, stderr := ctx.Stdout, ctx.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	// 1. Resolve target languages before touching the input
	registry := languages.NewRegistry()
	langs, err := resolveLanguages(registry, CLI.Languages, cfg)
	if err != nil {
		return err
	}

	// 2. Parse JSON input
	doc, err := parseInput()
	if err != nil {
		// Error is already wrapped by parseInput
		return err
	}

	// 3. Select the sub-document to analyze
	value := doc.Root
	if CLI.Select != "" {
		value, err = query.Select(value, CLI.Select)
		if err != nil {
			return err
		}
	}

	// 4. Analyze JSON structure
	reg, root := generator.Analyze(value, cfg.RootName, schema.WithDescriptions(cfg.Comments))

	// 5. Generate code for every language
	results, err := generator.GenerateAll(context.Background(), registry, langs, cfg, reg, root)
	if err != nil {
		return errors.NewGenerateError("failed to generate code", err)
	}

	for _, res := range results {
		for _, w := range res.Warnings {
			fmt.Fprintf(stderr, "Warning (%s): %s\n", res.Metadata.Language, w)
		}
		if !res.Success {
			return res.Err
		}
	}

	// 6. Output the result
	return writeOutput(results, stdout, stderr)
}

// resolveLanguages returns the canonical, de-duplicated target languages.
// Every generator is built once so configuration errors surface before
// any input is read.
func resolveLanguages(registry *generator.Registry, requested []string, cfg *config.Config) ([]string, error) {
	if len(requested) == 0 {
		requested = []string{"go"}
	}
	seen := make(map[string]bool)
	var langs []string
	for _, lang := range requested {
		if _, err := registry.New(lang, cfg.Clone()); err != nil {
			return nil, err
		}
		name, _ := registry.Resolve(lang)
		if !seen[name] {
			seen[name] = true
			langs = append(langs, name)
		}
	}
	return langs, nil
}

// parseInput reads JSON from a file, a URL or stdin
func parseInput() (models.Document, error) {
	if CLI.Input != "" && CLI.URL != "" {
		return models.Document{}, errors.NewInputError("cannot specify both --input and --url", errors.ErrInvalidFilePath)
	}
	if CLI.Input != "" {
		// Parse from file
		return parser.ParseFile(CLI.Input)
	}
	if CLI.URL != "" {
		return parser.ParseURL(context.Background(), CLI.URL, nil)
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		// No data provided on stdin and not in interactive mode
		return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseString(string(jsonData))
}

// outputName is the file name used for one language when writing to a
// directory, e.g. "root.go".
func outputName(res *generator.Result) string {
	return naming.Convert(res.Metadata.RootSchema, naming.Snake) + res.Metadata.FileExtension
}

// writeOutput writes code to a file, a directory or stdout
func writeOutput(results []*generator.Result, stdout, stderr io.Writer) error {
	if CLI.Output == "" {
		var buf bytes.Buffer
		for i, res := range results {
			if len(results) > 1 {
				if i > 0 {
					buf.WriteString("\n")
				}
				fmt.Fprintf(&buf, "==> %s <==\n", outputName(res))
			}
			buf.WriteString(strings.TrimSpace(res.Code))
			buf.WriteString("\n")
		}
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}

	if len(results) == 1 {
		if err := os.WriteFile(CLI.Output, []byte(results[0].Code), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(stderr, "Generated %s code written to %s\n", results[0].Metadata.Language, CLI.Output)
		return nil
	}

	if err := os.MkdirAll(CLI.Output, 0o755); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create directory '%s'", CLI.Output), err)
	}
	for _, res := range results {
		path := filepath.Join(CLI.Output, outputName(res))
		if err := os.WriteFile(path, []byte(res.Code), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(stderr, "Generated %s code written to %s\n", res.Metadata.Language, path)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (models.Document, error) {
	fmt.Fprintln(os.Stderr, "shapegen interactive mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	// Read all input until EOF (Ctrl+D)
	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Document{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return models.Document{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData)
}
