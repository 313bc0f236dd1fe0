package python

import (
	"strconv"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/errors"
)

// Style selects the kind of class emitted for a Schema.
type Style string

// Supported styles.
const (
	StyleDataclass Style = "dataclass"
	StylePydantic  Style = "pydantic"
	StyleTypedDict Style = "typeddict"
)

// OptionalStyle selects how a nullable annotation is spelled.
type OptionalStyle string

// Supported optional styles.
const (
	OptionalUnion    OptionalStyle = "union"    // T | None
	OptionalOptional OptionalStyle = "optional" // Optional[T]
)

// Options are the Python specific settings read from configuration
// extensions.
type Options struct {
	Style         Style
	OptionalStyle OptionalStyle
	Frozen        bool // dataclass
	Slots         bool // dataclass
	KwOnly        bool // dataclass
	ExtraForbid   bool // pydantic
	Total         bool // typeddict
}

// DefaultOptions returns the options used when no extension is set.
func DefaultOptions() Options {
	return Options{
		Style:         StyleDataclass,
		OptionalStyle: OptionalUnion,
		Total:         true,
	}
}

// ParseOptions reads Options from cfg.Extensions. Unknown values fail with
// a *errors.ConfigError naming the key.
func ParseOptions(cfg *config.Config) (Options, error) {
	opts := DefaultOptions()

	if v, ok := cfg.Extension("style"); ok {
		switch Style(v) {
		case StyleDataclass, StylePydantic, StyleTypedDict:
			opts.Style = Style(v)
		default:
			return opts, &errors.ConfigError{Key: "style", Value: v, Reason: "must be one of: dataclass, pydantic, typeddict"}
		}
	}
	if v, ok := cfg.Extension("optional_style"); ok {
		switch OptionalStyle(v) {
		case OptionalUnion, OptionalOptional:
			opts.OptionalStyle = OptionalStyle(v)
		default:
			return opts, &errors.ConfigError{Key: "optional_style", Value: v, Reason: "must be one of: union, optional"}
		}
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"frozen", &opts.Frozen},
		{"slots", &opts.Slots},
		{"kw_only", &opts.KwOnly},
		{"extra_forbid", &opts.ExtraForbid},
		{"total", &opts.Total},
	}
	for _, f := range flags {
		v, ok := cfg.Extension(f.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &errors.ConfigError{Key: f.key, Value: v, Reason: "must be a boolean"}
		}
		*f.dst = b
	}
	return opts, nil
}
