package formatter

import (
	"fmt"
	"strings"

	"golang.org/x/tools/imports"
)

// Formatter is responsible for formatting Go code according to standard conventions
type Formatter struct {
	options *imports.Options
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{
		options: &imports.Options{
			FormatOnly: true, // never add or remove imports, only sort and group them
			Comments:   true,
			TabIndent:  true,
			TabWidth:   8,
		},
	}
}

// Format takes Go code as a string and returns gofmt-formatted code with
// imports sorted and grouped into standard library and third-party blocks.
func (f *Formatter) Format(code string) (string, error) {
	// Handle empty input
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := imports.Process("generated.go", []byte(code), f.options)
	if err != nil {
		return "", fmt.Errorf("failed to parse Go code: %w", err)
	}
	return string(formatted), nil
}
