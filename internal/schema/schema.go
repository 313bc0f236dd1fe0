// Package schema turns an analyzed Shape into named Schemas and Fields
// ready for code generation.
package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcncl/shapegen/internal/models"
)

// DefaultRootName is the name given to the root Schema when none is specified.
const DefaultRootName = "Root"

// RootValueField is the single field of the Schema wrapping a non-object root.
const RootValueField = "value"

// Schema is a named structural entity. Fields keep first-seen key order.
type Schema struct {
	Name        string
	Fields      []*Field
	Description string
}

// Field is one member of a Schema, or the element description of a list.
type Field struct {
	Name     string // original JSON key, empty for list elements
	Kind     models.Kind
	Optional bool

	Schema        *Schema // KindObject
	Elem          *Field  // KindList
	ConflictKinds []models.Kind
	TypeName      string // KindOther

	Description string
}

// Field returns the field with the given JSON key.
func (s *Schema) Field(name string) (*Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Dependencies returns the Schemas referenced directly by s's fields, in
// field order. Schemas of list elements are found through any number of
// nested list levels.
func (s *Schema) Dependencies() []*Schema {
	var deps []*Schema
	for _, f := range s.Fields {
		if ref := f.Ref(); ref != nil {
			deps = append(deps, ref)
		}
	}
	return deps
}

// Ref returns the Schema a field refers to, either directly or as the
// element of a (possibly nested) list.
func (f *Field) Ref() *Schema {
	for cur := f; cur != nil; cur = cur.Elem {
		if cur.Kind == models.KindObject {
			return cur.Schema
		}
		if cur.Kind != models.KindList {
			return nil
		}
	}
	return nil
}

// ConflictCount returns the number of fields with conflicting kinds.
func (s *Schema) ConflictCount() int {
	n := 0
	for _, f := range s.Fields {
		if f.Kind == models.KindConflict {
			n++
		}
	}
	return n
}

// UnknownCount returns the number of fields whose kind is unknown.
func (s *Schema) UnknownCount() int {
	n := 0
	for _, f := range s.Fields {
		if f.Kind == models.KindUnknown {
			n++
		}
	}
	return n
}

// Depth returns the nesting depth of s, counting s itself as 1.
func (s *Schema) Depth() int {
	return s.depth(map[*Schema]bool{})
}

func (s *Schema) depth(visiting map[*Schema]bool) int {
	if visiting[s] {
		return 0
	}
	visiting[s] = true
	defer delete(visiting, s)

	deepest := 1
	for _, dep := range s.Dependencies() {
		if d := dep.depth(visiting) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Option configures Normalize.
type Option func(*normalizer)

// WithDescriptions toggles the advisory descriptions attached to Schemas
// and Fields. They are on by default.
func WithDescriptions(enabled bool) Option {
	return func(n *normalizer) {
		n.descriptions = enabled
	}
}

type normalizer struct {
	names        map[string]int
	descriptions bool
	title        cases.Caser
}

// Normalize converts shape into a Schema tree named rootName. A non-object
// root is wrapped in a Schema with a single field named "value".
//
// Nested object fields are named after their parent and key
// ("Root" + "Address"); list elements add "Item". Names are unique within
// one call.
func Normalize(shape *models.Shape, rootName string, opts ...Option) *Schema {
	if rootName == "" {
		rootName = DefaultRootName
	}
	n := &normalizer{
		names:        make(map[string]int),
		descriptions: true,
		title:        cases.Title(language.Und, cases.NoLower),
	}
	for _, opt := range opts {
		opt(n)
	}

	if shape.Kind == models.KindObject {
		return n.convertObject(shape, n.uniqueName(rootName))
	}

	root := &Schema{Name: n.uniqueName(rootName)}
	root.Fields = []*Field{n.convertField(RootValueField, shape, root.Name)}
	n.describeSchema(root)
	return root
}

func (n *normalizer) convertObject(shape *models.Shape, name string) *Schema {
	if shape.Kind != models.KindObject {
		panic(fmt.Sprintf("schema: expected object shape for %s, got %s", name, shape.Kind))
	}

	s := &Schema{Name: name, Fields: make([]*Field, 0, shape.Children.Len())}
	for pair := shape.Children.Oldest(); pair != nil; pair = pair.Next() {
		s.Fields = append(s.Fields, n.convertField(pair.Key, pair.Value, name))
	}
	n.describeSchema(s)
	return s
}

func (n *normalizer) convertField(key string, shape *models.Shape, parent string) *Field {
	f := &Field{Name: key, Kind: shape.Kind, Optional: shape.Optional}
	base := parent + n.titleKey(key)

	switch shape.Kind {
	case models.KindObject:
		f.Schema = n.convertObject(shape, n.uniqueName(base))
	case models.KindList:
		f.Elem = n.convertElem(shape.Elem, base+"Item")
	case models.KindConflict:
		f.ConflictKinds = append([]models.Kind(nil), shape.Kinds...)
	case models.KindOther:
		f.TypeName = shape.TypeName
	}
	n.describeField(f)
	return f
}

func (n *normalizer) convertElem(shape *models.Shape, name string) *Field {
	if shape == nil {
		return &Field{Kind: models.KindUnknown}
	}
	elem := &Field{Kind: shape.Kind}
	switch shape.Kind {
	case models.KindObject:
		elem.Schema = n.convertObject(shape, n.uniqueName(name))
	case models.KindList:
		elem.Elem = n.convertElem(shape.Elem, name+"Item")
	case models.KindConflict:
		elem.ConflictKinds = append([]models.Kind(nil), shape.Kinds...)
	case models.KindOther:
		elem.TypeName = shape.TypeName
	}
	return elem
}

// titleKey splits a JSON key on anything that is not a letter or digit and
// title-cases each word: "user_id" becomes "UserId", "homePage" "HomePage".
func (n *normalizer) titleKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(n.title.String(w))
	}
	if b.Len() == 0 {
		return "Field"
	}
	return b.String()
}

// uniqueName ensures schema names are unique. The second use of a base
// name gets the suffix 2.
func (n *normalizer) uniqueName(base string) string {
	if n.names[base] == 0 {
		n.names[base] = 1
		return base
	}
	for i := n.names[base] + 1; ; i++ {
		name := fmt.Sprintf("%s%d", base, i)
		if n.names[name] == 0 {
			n.names[base] = i
			n.names[name] = 1
			return name
		}
	}
}

func (n *normalizer) describeField(f *Field) {
	if !n.descriptions {
		return
	}
	switch f.Kind {
	case models.KindConflict:
		f.Description = "Mixed types: " + strings.Join(models.KindNames(f.ConflictKinds), ", ")
	case models.KindUnknown:
		f.Description = "Type unknown"
	case models.KindList:
		switch {
		case f.Elem.Kind == models.KindConflict:
			f.Description = "Array with mixed types"
		case f.Elem.Kind == models.KindUnknown:
			f.Description = "Array with unknown element type"
		case f.Elem.Schema != nil && len(f.Elem.Schema.Fields) > 5:
			f.Description = "Array of complex objects"
		}
	case models.KindObject:
		if f.Optional && isComplex(f.Schema) {
			f.Description = "Optional complex structure"
		}
	}
}

func isComplex(s *Schema) bool {
	return len(s.Fields) > 3 || len(s.Dependencies()) > 0
}

func (n *normalizer) describeSchema(s *Schema) {
	if !n.descriptions {
		return
	}
	conflicts, unknowns := s.ConflictCount(), s.UnknownCount()
	switch {
	case len(s.Fields) == 0:
		s.Description = "No fields detected"
	case conflicts >= 3:
		s.Description = fmt.Sprintf("Multiple type conflicts (%d fields)", conflicts)
	case unknowns >= 3:
		s.Description = fmt.Sprintf("Multiple unknown types (%d fields)", unknowns)
	case len(s.Fields) >= 15:
		s.Description = fmt.Sprintf("Large structure (%d fields)", len(s.Fields))
	case s.Depth() >= 3:
		s.Description = "Deeply nested structure"
	case conflicts > 0 && unknowns > 0:
		s.Description = fmt.Sprintf("Mixed issues: %d conflicts, %d unknowns", conflicts, unknowns)
	}
}
