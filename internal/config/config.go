package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/shapegen/internal/errors"
)

// Pointer strategies
const (
	PointerOptionalOnly = "optional_only"
	PointerAlways       = "always"
	PointerNever        = "never"
	PointerSmart        = "smart"
)

// Conflict strategies
const (
	ConflictAny       = "any"
	ConflictInterface = "interface"
	ConflictStrict    = "strict"
	ConflictFirstType = "first_type"
)

// Config represents the complete configuration for shapegen
type Config struct {
	Package    string           `yaml:"package" schema:"package" validate:"required"`
	RootName   string           `yaml:"root_name" schema:"root_name" validate:"required"`
	Comments   bool             `yaml:"comments" schema:"comments"`
	Format     bool             `yaml:"format" schema:"format"`
	Naming     NamingConfig     `yaml:"naming" schema:"naming"`
	Types      TypesConfig      `yaml:"types" schema:"types"`
	JSONTags   JSONTagsConfig   `yaml:"json_tags" schema:"json_tags"`
	Validation ValidationConfig `yaml:"validation" schema:"validation"`
	Logging    LoggingConfig    `yaml:"logging" schema:"logging"`

	// Extensions holds keys this struct does not know about. They are
	// passed through to the language generators untouched.
	Extensions map[string]interface{} `yaml:",inline" schema:"-"`
}

// NamingConfig controls type and field naming
type NamingConfig struct {
	TypeCase       string            `yaml:"type_case" schema:"type_case" validate:"omitempty,oneof=snake camel pascal kebab screaming_snake"`
	FieldCase      string            `yaml:"field_case" schema:"field_case" validate:"omitempty,oneof=snake camel pascal kebab screaming_snake"`
	ReservedSuffix string            `yaml:"reserved_suffix" schema:"reserved_suffix" validate:"required"`
	FieldMappings  map[string]string `yaml:"field_mappings" schema:"-"`
}

// TypesConfig controls type mapping
type TypesConfig struct {
	PointerStrategy     string            `yaml:"pointer_strategy" schema:"pointer_strategy" validate:"oneof=optional_only always never smart"`
	ConflictStrategy    string            `yaml:"conflict_strategy" schema:"conflict_strategy" validate:"oneof=any interface strict first_type"`
	UnknownType         string            `yaml:"unknown_type" schema:"unknown_type"`
	WarnDroppedOptional bool              `yaml:"warn_dropped_optional" schema:"warn_dropped_optional"`
	Overrides           map[string]string `yaml:"overrides" schema:"-" validate:"dive,keys,oneof=string integer float boolean timestamp,endkeys,required"`
	Mappings            []TypeMapping     `yaml:"mappings" schema:"-" validate:"dive"`
}

// TypeMapping defines a pattern-based type mapping
type TypeMapping struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Type    string `yaml:"type" validate:"required"`
	Import  string `yaml:"import,omitempty"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// JSONTagsConfig controls JSON tag generation
type JSONTagsConfig struct {
	Enabled    bool     `yaml:"enabled" schema:"enabled"`
	Omitempty  bool     `yaml:"omitempty" schema:"omitempty"`
	SkipFields []string `yaml:"skip_fields" schema:"skip_fields"`
}

// ValidationConfig controls validation tag generation
type ValidationConfig struct {
	Enabled bool             `yaml:"enabled" schema:"enabled"`
	Rules   []ValidationRule `yaml:"rules" schema:"-" validate:"dive"`
}

// ValidationRule defines a pattern-based validation rule
type ValidationRule struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Tag     string `yaml:"tag" validate:"required"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	Level string `yaml:"level" schema:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file" schema:"file"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Package:  "main",
		RootName: "Root",
		Comments: true,
		Format:   true,
		Naming: NamingConfig{
			ReservedSuffix: "_",
			FieldMappings:  make(map[string]string),
		},
		Types: TypesConfig{
			PointerStrategy:     PointerOptionalOnly,
			ConflictStrategy:    ConflictAny,
			WarnDroppedOptional: true,
			Overrides:           make(map[string]string),
			Mappings:            []TypeMapping{},
		},
		JSONTags: JSONTagsConfig{
			Enabled:   true,
			Omitempty: true,
		},
		Validation: ValidationConfig{
			Enabled: false,
			Rules:   []ValidationRule{},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Extensions: make(map[string]interface{}),
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ensureMaps()

	return cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path
// (if any), then the key=value overrides.
func Load(path string, overrides []string) (*Config, error) {
	cfg := NewConfig()
	if path != "" {
		fileConfig, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".shapegen.yml", ".shapegen.yaml", "shapegen.yml", "shapegen.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) ensureMaps() {
	if c.Naming.FieldMappings == nil {
		c.Naming.FieldMappings = make(map[string]string)
	}
	if c.Types.Overrides == nil {
		c.Types.Overrides = make(map[string]string)
	}
	if c.Extensions == nil {
		c.Extensions = make(map[string]interface{})
	}
}

var overrideDecoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(false)
	return dec
}()

// ApplyOverrides applies "key=value" overrides using the dotted YAML key
// names, e.g. "types.pointer_strategy=never". Map entries are addressed
// as "types.overrides.integer=int32". Keys the Config does not know are
// stored in Extensions.
func (c *Config) ApplyOverrides(overrides []string) error {
	c.ensureMaps()
	values := url.Values{}
	for _, override := range overrides {
		key, value, ok := strings.Cut(override, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return &errors.ConfigError{Key: override, Value: "", Reason: "override must have the form key=value"}
		}
		switch {
		case strings.HasPrefix(key, "types.overrides."):
			c.Types.Overrides[strings.TrimPrefix(key, "types.overrides.")] = value
		case strings.HasPrefix(key, "naming.field_mappings."):
			c.Naming.FieldMappings[strings.TrimPrefix(key, "naming.field_mappings.")] = value
		default:
			values.Add(key, value)
		}
	}
	if len(values) == 0 {
		return nil
	}

	err := overrideDecoder.Decode(c, values)
	if err == nil {
		return nil
	}
	var multi schema.MultiError
	if !stderrors.As(err, &multi) {
		return &errors.ConfigError{Key: "overrides", Value: values.Encode(), Reason: err.Error()}
	}
	for key, keyErr := range multi {
		var unknown schema.UnknownKeyError
		if stderrors.As(keyErr, &unknown) {
			c.Extensions[key] = values.Get(key)
			continue
		}
		return &errors.ConfigError{Key: key, Value: values.Get(key), Reason: keyErr.Error()}
	}
	return nil
}

var configValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks every value and compiles regex patterns. The first
// problem is returned as an *errors.ConfigError.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &errors.ConfigError{Key: configKey(fe.Namespace()), Value: fe.Value(), Reason: reason(fe)}
		}
		return &errors.ConfigError{Key: "config", Value: "", Reason: err.Error()}
	}
	return c.compilePatterns()
}

// configKey turns "Config.types.pointer_strategy" into "types.pointer_strategy".
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	// Compile type mapping patterns
	for i := range c.Types.Mappings {
		mapping := &c.Types.Mappings[i]
		regex, err := regexp.Compile(mapping.Pattern)
		if err != nil {
			return &errors.ConfigError{Key: fmt.Sprintf("types.mappings[%d].pattern", i), Value: mapping.Pattern, Reason: err.Error()}
		}
		mapping.regex = regex
	}

	// Compile validation rule patterns
	for i := range c.Validation.Rules {
		rule := &c.Validation.Rules[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return &errors.ConfigError{Key: fmt.Sprintf("validation.rules[%d].pattern", i), Value: rule.Pattern, Reason: err.Error()}
		}
		rule.regex = regex
	}

	return nil
}

// MatchesField checks if this type mapping matches the given field name
func (tm *TypeMapping) MatchesField(fieldName string) bool {
	if tm.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(tm.Pattern)
		if err != nil {
			return false
		}
		tm.regex = regex
	}
	return tm.regex.MatchString(fieldName)
}

// MatchesField checks if this validation rule matches the given field name
func (vr *ValidationRule) MatchesField(fieldName string) bool {
	if vr.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(vr.Pattern)
		if err != nil {
			return false
		}
		vr.regex = regex
	}
	return vr.regex.MatchString(fieldName)
}

// FieldMapping returns the explicit identifier configured for a JSON key
func (c *Config) FieldMapping(jsonKey string) (string, bool) {
	mapped, exists := c.Naming.FieldMappings[jsonKey]
	return mapped, exists
}

// FindTypeMapping finds the first type mapping that matches the field name
func (c *Config) FindTypeMapping(fieldName string) (TypeMapping, bool) {
	for i := range c.Types.Mappings {
		if c.Types.Mappings[i].MatchesField(fieldName) {
			return c.Types.Mappings[i], true
		}
	}
	return TypeMapping{}, false
}

// FindValidationRule finds the first validation rule that matches the field name
func (c *Config) FindValidationRule(fieldName string) (ValidationRule, bool) {
	if !c.Validation.Enabled {
		return ValidationRule{}, false
	}

	for i := range c.Validation.Rules {
		if c.Validation.Rules[i].MatchesField(fieldName) {
			return c.Validation.Rules[i], true
		}
	}
	return ValidationRule{}, false
}

// ShouldSkipField checks if a field should be skipped (json:"-")
func (c *Config) ShouldSkipField(fieldName string) bool {
	for _, skip := range c.JSONTags.SkipFields {
		if skip == fieldName {
			return true
		}
	}
	return false
}

// Extension returns an extension value rendered as a string.
func (c *Config) Extension(key string) (string, bool) {
	v, ok := c.Extensions[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

// Clone returns a deep copy, so concurrent generators never share maps.
func (c *Config) Clone() *Config {
	out := *c
	out.Naming.FieldMappings = copyMap(c.Naming.FieldMappings)
	out.Types.Overrides = copyMap(c.Types.Overrides)
	out.Types.Mappings = append([]TypeMapping(nil), c.Types.Mappings...)
	out.JSONTags.SkipFields = append([]string(nil), c.JSONTags.SkipFields...)
	out.Validation.Rules = append([]ValidationRule(nil), c.Validation.Rules...)
	out.Extensions = make(map[string]interface{}, len(c.Extensions))
	for k, v := range c.Extensions {
		out.Extensions[k] = v
	}
	return &out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
