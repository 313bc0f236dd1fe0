package golang

import (
	"fmt"
	"strings"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/schema"
)

// DefaultUnknownType is used for values whose type cannot be inferred.
const DefaultUnknownType = "interface{}"

var integerTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
}

var floatTypes = map[string]bool{"float32": true, "float64": true}

// primitive is a Go type for one scalar kind.
type primitive struct {
	decl  string
	imprt string
}

func defaultPrimitives() map[models.Kind]primitive {
	return map[models.Kind]primitive{
		models.KindString:    {decl: "string"},
		models.KindInteger:   {decl: "int64"},
		models.KindFloat:     {decl: "float64"},
		models.KindBoolean:   {decl: "bool"},
		models.KindTimestamp: {decl: "time.Time", imprt: "time"},
	}
}

// buildPrimitives applies types.overrides to the default table.
func buildPrimitives(cfg *config.Config) (map[models.Kind]primitive, error) {
	prims := defaultPrimitives()
	for name, decl := range cfg.Types.Overrides {
		kind, ok := models.ParseKind(name)
		if !ok {
			return nil, &errors.ConfigError{Key: "types.overrides." + name, Value: decl, Reason: "not a primitive kind"}
		}
		decl = strings.TrimSpace(decl)
		switch {
		case kind == models.KindInteger && !integerTypes[decl]:
			return nil, &errors.ConfigError{Key: "types.overrides.integer", Value: decl, Reason: "not a Go integer type"}
		case kind == models.KindFloat && !floatTypes[decl]:
			return nil, &errors.ConfigError{Key: "types.overrides.float", Value: decl, Reason: "not a Go float type"}
		}
		p := primitive{decl: decl}
		if decl == "time.Time" {
			p.imprt = "time"
		}
		prims[kind] = p
	}
	return prims, nil
}

// MapField maps f, a field of the schema named schemaName, to a Go type.
func (g *Generator) MapField(schemaName string, f *schema.Field) (generator.TargetType, error) {
	var t generator.TargetType
	if tm, ok := g.cfg.FindTypeMapping(f.Name); ok && f.Name != "" {
		t = generator.TargetType{Decl: tm.Type, Nilable: isNilable(tm.Type)}
		if tm.Import != "" {
			t.Imports = []string{tm.Import}
		}
	} else {
		var err error
		t, err = g.mapKind(schemaName, f.Name, f)
		if err != nil {
			return generator.TargetType{}, err
		}
	}

	if f.Optional {
		t = g.applyPointerStrategy(schemaName, f.Name, t)
	}
	return t, nil
}

func (g *Generator) mapKind(schemaName, fieldName string, f *schema.Field) (generator.TargetType, error) {
	where := schemaName + "." + fieldName

	switch f.Kind {
	case models.KindString, models.KindInteger, models.KindFloat, models.KindBoolean, models.KindTimestamp:
		p := g.primitives[f.Kind]
		t := generator.TargetType{Decl: p.decl, Nilable: isNilable(p.decl)}
		if p.imprt != "" {
			t.Imports = []string{p.imprt}
		}
		return t, nil

	case models.KindObject:
		if f.Schema == nil {
			return g.unknown(fmt.Sprintf("%s: object without schema, using %s", where, g.unknownType)), nil
		}
		return generator.TargetType{Decl: g.typeName(f.Schema.Name)}, nil

	case models.KindList:
		if f.Elem == nil || f.Elem.Kind == models.KindUnknown {
			return generator.TargetType{
				Decl:    "[]" + g.unknownType,
				Nilable: true,
				Hints:   []string{fmt.Sprintf("%s: array with unknown element type, using []%s", where, g.unknownType)},
			}, nil
		}
		elem, err := g.mapKind(schemaName, fieldName, f.Elem)
		if err != nil {
			return generator.TargetType{}, err
		}
		return generator.TargetType{Decl: "[]" + elem.Decl, Imports: elem.Imports, Nilable: true, Hints: elem.Hints}, nil

	case models.KindConflict:
		return g.resolveConflict(schemaName, fieldName, f.ConflictKinds)

	case models.KindOther:
		return g.unknown(fmt.Sprintf("%s: unsupported value type %s, using %s", where, f.TypeName, g.unknownType)), nil

	default:
		return g.unknown(fmt.Sprintf("%s: unknown type, using %s", where, g.unknownType)), nil
	}
}

func (g *Generator) resolveConflict(schemaName, fieldName string, kinds []models.Kind) (generator.TargetType, error) {
	names := strings.Join(models.KindNames(kinds), ", ")
	switch g.cfg.Types.ConflictStrategy {
	case config.ConflictStrict:
		return generator.TargetType{}, &errors.ConflictError{Schema: schemaName, Field: fieldName, Kinds: kinds}
	case config.ConflictFirstType:
		if len(kinds) > 0 {
			t, err := g.mapKind(schemaName, fieldName, &schema.Field{Name: fieldName, Kind: kinds[0]})
			if err != nil {
				return t, err
			}
			t.Hints = append(t.Hints, fmt.Sprintf("%s.%s: used first type (%s) from conflict: %s",
				schemaName, fieldName, kinds[0], names))
			return t, nil
		}
	}
	return g.unknown(fmt.Sprintf("%s.%s: conflicting kinds (%s) resolved with %s",
		schemaName, fieldName, names, g.unknownType)), nil
}

func (g *Generator) unknown(hint string) generator.TargetType {
	return generator.TargetType{Decl: g.unknownType, Nilable: true, Hints: []string{hint}}
}

func (g *Generator) applyPointerStrategy(schemaName, fieldName string, t generator.TargetType) generator.TargetType {
	switch g.cfg.Types.PointerStrategy {
	case config.PointerNever:
		if !t.Nilable && g.cfg.Types.WarnDroppedOptional {
			t.Hints = append(t.Hints, fmt.Sprintf(
				"%s.%s: optionality dropped, %s cannot represent a missing value (pointer_strategy=never)",
				schemaName, fieldName, t.Decl))
		}
		return t
	case config.PointerAlways:
		return pointer(t)
	case config.PointerSmart:
		// Empty strings already read as absent for most consumers.
		if t.Nilable || t.Decl == "string" {
			return t
		}
		return pointer(t)
	default:
		if t.Nilable {
			return t
		}
		return pointer(t)
	}
}

func pointer(t generator.TargetType) generator.TargetType {
	if strings.HasPrefix(t.Decl, "*") {
		return t
	}
	t.Decl = "*" + t.Decl
	t.Nilable = true
	return t
}

// isNilable reports whether a Go type can already hold nil.
func isNilable(decl string) bool {
	return strings.HasPrefix(decl, "[]") ||
		strings.HasPrefix(decl, "map[") ||
		strings.HasPrefix(decl, "*") ||
		decl == "interface{}" ||
		decl == "any"
}
