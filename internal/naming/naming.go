// Package naming turns arbitrary JSON keys into identifiers for a target
// language.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// Case is an identifier case style.
type Case string

// Supported case styles.
const (
	Snake          Case = "snake"
	Camel          Case = "camel"
	Pascal         Case = "pascal"
	Kebab          Case = "kebab"
	ScreamingSnake Case = "screaming_snake"
)

// Cases lists every supported case style.
var Cases = []Case{Snake, Camel, Pascal, Kebab, ScreamingSnake}

// DefaultPlaceholder replaces names that sanitize to nothing.
const DefaultPlaceholder = "field"

var (
	invalidChars  = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	repeatedSnake = regexp.MustCompile(`_+`)
	repeatedKebab = regexp.MustCompile(`-+`)
)

// ParseCase returns the Case named s.
func ParseCase(s string) (Case, bool) {
	for _, c := range Cases {
		if string(c) == strings.ToLower(s) {
			return c, true
		}
	}
	return "", false
}

// maxConvertPasses bounds the fixed-point loop in Convert.
const maxConvertPasses = 8

// Convert cleans raw and converts it to c. It is pure and idempotent:
// Convert(Convert(x, c), c) == Convert(x, c).
//
// strcase splits upper-case runs differently on a second pass ("ABC"
// becomes "Abc"), so the conversion is repeated until it settles.
func Convert(raw string, c Case) string {
	converted := convertOnce(raw, c)
	for i := 0; i < maxConvertPasses; i++ {
		next := convertOnce(converted, c)
		if next == converted {
			break
		}
		converted = next
	}
	return converted
}

func convertOnce(raw string, c Case) string {
	cleaned := clean(raw)

	var converted string
	switch c {
	case Snake:
		converted = repeatedSnake.ReplaceAllString(strcase.ToSnake(cleaned), "_")
	case ScreamingSnake:
		converted = repeatedSnake.ReplaceAllString(strcase.ToScreamingSnake(cleaned), "_")
	case Kebab:
		converted = repeatedKebab.ReplaceAllString(strcase.ToKebab(cleaned), "-")
	case Camel:
		converted = strcase.ToLowerCamel(cleaned)
	case Pascal:
		converted = strcase.ToCamel(cleaned)
	default:
		converted = cleaned
	}

	converted = strings.Trim(converted, "_-")
	if converted == "" {
		converted = DefaultPlaceholder
	}
	if unicode.IsDigit(rune(converted[0])) {
		converted = "_" + converted
	}
	return converted
}

// clean replaces characters outside [A-Za-z0-9_-] and trims separators.
func clean(raw string) string {
	cleaned := invalidChars.ReplaceAllString(raw, "_")
	cleaned = strings.Trim(cleaned, "_-")
	if cleaned == "" {
		return DefaultPlaceholder
	}
	return cleaned
}

type cacheKey struct {
	raw string
	c   Case
}

// Sanitizer resolves collisions between converted names and the reserved
// words of a language, and between names used in the same run. It is not
// safe for concurrent use; each generation run owns one.
type Sanitizer struct {
	reserved map[string]struct{}
	suffix   string
	used     map[string]struct{}
	cache    map[cacheKey]string
}

// New returns a Sanitizer that appends suffix to names matching a reserved
// word or builtin exactly.
func New(reserved, builtins []string, suffix string) *Sanitizer {
	s := &Sanitizer{
		reserved: make(map[string]struct{}, len(reserved)+len(builtins)),
		suffix:   suffix,
	}
	for _, w := range reserved {
		s.reserved[w] = struct{}{}
	}
	for _, w := range builtins {
		s.reserved[w] = struct{}{}
	}
	s.Reset()
	return s
}

// Suffix returns the reserved-word suffix.
func (s *Sanitizer) Suffix() string {
	return s.suffix
}

// WithSuffix returns a fresh Sanitizer with the same reserved words and a
// different suffix.
func (s *Sanitizer) WithSuffix(suffix string) *Sanitizer {
	out := &Sanitizer{reserved: s.reserved, suffix: suffix}
	out.Reset()
	return out
}

// Reset forgets every name used so far.
func (s *Sanitizer) Reset() {
	s.used = make(map[string]struct{})
	s.cache = make(map[cacheKey]string)
}

// IsReserved reports whether name is a reserved word or builtin.
func (s *Sanitizer) IsReserved(name string) bool {
	_, ok := s.reserved[name]
	return ok
}

// Reserve marks name as used without sanitizing it.
func (s *Sanitizer) Reserve(name string) {
	s.used[name] = struct{}{}
}

// Sanitize converts raw to c and makes it unique in this run. The same raw
// name and case always resolve to the same identifier until Reset. The
// boolean reports whether a reserved word or a duplicate had to be
// resolved.
func (s *Sanitizer) Sanitize(raw string, c Case) (string, bool) {
	key := cacheKey{raw: raw, c: c}
	if name, ok := s.cache[key]; ok {
		return name, false
	}

	base := Convert(raw, c)
	name := base
	resolved := false
	if s.IsReserved(name) {
		name += s.suffix
		resolved = true
	}
	for i := 1; ; i++ {
		if _, taken := s.used[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s%s%d", base, numberSeparator(c), i)
		resolved = true
	}

	s.cache[key] = name
	s.used[name] = struct{}{}
	return name, resolved
}

func numberSeparator(c Case) string {
	switch c {
	case Snake, ScreamingSnake:
		return "_"
	case Kebab:
		return "-"
	default:
		return ""
	}
}
