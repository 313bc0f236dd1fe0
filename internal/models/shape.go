package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Shape is the unnamed structural summary of one JSON subtree.
//
// Objects carry their children in first-seen key order. Lists carry a single
// element shape: a primitive element is a bare Shape of that kind, an empty
// list has an unknown element and a mixed list has a conflict element whose
// Kinds holds every kind that was observed.
type Shape struct {
	Kind     Kind
	TypeName string // runtime type name, KindOther only
	Optional bool   // set on children produced by an object merge
	Children *orderedmap.OrderedMap[string, *Shape]
	Elem     *Shape
	Kinds    []Kind // KindConflict only, canonical order
}

// NewObjectShape returns an object shape without children.
func NewObjectShape() *Shape {
	return &Shape{Kind: KindObject, Children: orderedmap.New[string, *Shape]()}
}

// NewListShape returns a list shape with the given element.
func NewListShape(elem *Shape) *Shape {
	return &Shape{Kind: KindList, Elem: elem}
}

// NewConflictShape returns a conflict shape recording kinds.
func NewConflictShape(kinds KindSet) *Shape {
	return &Shape{Kind: KindConflict, Kinds: kinds.Sorted()}
}

// Keys returns the object keys in first-seen order.
func (s *Shape) Keys() []string {
	if s == nil || s.Children == nil {
		return nil
	}
	keys := make([]string, 0, s.Children.Len())
	for pair := s.Children.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Child returns the child shape for key.
func (s *Shape) Child(key string) (*Shape, bool) {
	if s == nil || s.Children == nil {
		return nil, false
	}
	return s.Children.Get(key)
}

// Conflicts maps every conflicting child key to the kinds recorded for it.
func (s *Shape) Conflicts() map[string][]Kind {
	conflicts := make(map[string][]Kind)
	if s == nil || s.Children == nil {
		return conflicts
	}
	for pair := s.Children.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Kind == KindConflict {
			conflicts[pair.Key] = pair.Value.Kinds
		}
	}
	return conflicts
}

// Equal reports whether two shapes describe the same structure. When
// ordered is false, object key order is ignored.
func (s *Shape) Equal(o *Shape, ordered bool) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Kind != o.Kind || s.TypeName != o.TypeName || s.Optional != o.Optional {
		return false
	}
	if len(s.Kinds) != len(o.Kinds) {
		return false
	}
	for i := range s.Kinds {
		if s.Kinds[i] != o.Kinds[i] {
			return false
		}
	}
	if !s.Elem.Equal(o.Elem, ordered) {
		return false
	}
	sk, ok := s.Keys(), o.Keys()
	if len(sk) != len(ok) {
		return false
	}
	for i, key := range sk {
		if ordered && ok[i] != key {
			return false
		}
		a, _ := s.Child(key)
		b, found := o.Child(key)
		if !found || !a.Equal(b, ordered) {
			return false
		}
	}
	return true
}
