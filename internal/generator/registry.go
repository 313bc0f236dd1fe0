package generator

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/schema"
)

// Factory builds a Generator for one run. It returns a *errors.ConfigError
// when cfg cannot be used for the language.
type Factory func(cfg *config.Config) (Generator, error)

// Registry maps language names and aliases to generator factories.
type Registry struct {
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// Register adds a language under its canonical name and optional aliases.
func (r *Registry) Register(language string, factory Factory, aliases ...string) {
	language = strings.ToLower(language)
	r.factories[language] = factory
	for _, alias := range aliases {
		r.aliases[strings.ToLower(alias)] = language
	}
}

// Languages returns the canonical names of every registered language, sorted.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.factories))
	for lang := range r.factories {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Resolve returns the canonical name for a language or alias.
func (r *Registry) Resolve(language string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(language))
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	_, ok := r.factories[name]
	return name, ok
}

// New builds a Generator for language.
func (r *Registry) New(language string, cfg *config.Config) (Generator, error) {
	name, ok := r.Resolve(language)
	if !ok {
		return nil, &errors.UnsupportedLanguageError{Language: language, Supported: r.Languages()}
	}
	return r.factories[name](cfg)
}

// GenerateAll runs one generation per language concurrently. Every
// generator is built up front from its own copy of cfg, so an unsupported
// language or invalid configuration fails before any code is generated.
// Results follow the order of langs.
func GenerateAll(ctx context.Context, registry *Registry, langs []string, cfg *config.Config, reg *schema.Registry, root string) ([]*Result, error) {
	gens := make([]Generator, len(langs))
	for i, lang := range langs {
		gen, err := registry.New(lang, cfg.Clone())
		if err != nil {
			return nil, err
		}
		gens[i] = gen
	}

	results := make([]*Result, len(langs))
	g, ctx := errgroup.WithContext(ctx)
	for i, gen := range gens {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Run(gen, reg, root)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
