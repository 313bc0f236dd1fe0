// Package analyzer walks decoded JSON and produces the structural Shape of
// it, merging sibling list elements into a single consolidated shape.
package analyzer

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/parser"
	"github.com/mcncl/shapegen/internal/sniffer"
)

// SampleSize is the number of non-empty list elements inspected per list.
const SampleSize = 20

// Analyze returns the Shape of value. It is pure and deterministic: the same
// value always produces an equal Shape.
func Analyze(value models.JSONValue) *models.Shape {
	switch v := value.(type) {
	case models.JSONObject:
		return analyzeObject(v)
	case models.JSONArray:
		return analyzeList(v)
	case map[string]interface{}, []interface{}:
		return Analyze(parser.Normalize(v))
	default:
		return scalarShape(v)
	}
}

func scalarShape(value models.JSONValue) *models.Shape {
	kind := sniffer.Classify(value)
	shape := &models.Shape{Kind: kind}
	if kind == models.KindOther {
		shape.TypeName = sniffer.TypeName(value)
	}
	return shape
}

// analyzeObject never marks children optional; a lone object has no
// siblings to compare against.
func analyzeObject(obj models.JSONObject) *models.Shape {
	shape := models.NewObjectShape()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		shape.Children.Set(pair.Key, Analyze(pair.Value))
	}
	return shape
}

func analyzeList(arr models.JSONArray) *models.Shape {
	sample := make([]*models.Shape, 0, SampleSize)
	for _, elem := range arr {
		if isEmpty(elem) {
			continue
		}
		sample = append(sample, Analyze(elem))
		if len(sample) == SampleSize {
			break
		}
	}
	if len(sample) == 0 {
		return models.NewListShape(&models.Shape{Kind: models.KindUnknown})
	}
	return models.NewListShape(mergeElements(sample))
}

// isEmpty reports whether a list element carries no structural signal.
func isEmpty(value models.JSONValue) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case models.JSONArray:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	case models.JSONObject:
		return v.Len() == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// mergeElements folds the shapes of sibling list elements into one element
// shape. Elements that agree on a kind are merged; any disagreement yields
// a conflict recording every kind seen.
func mergeElements(elems []*models.Shape) *models.Shape {
	kinds := make(models.KindSet)
	for _, e := range elems {
		addKinds(kinds, e)
	}
	if len(kinds) != 1 {
		return models.NewConflictShape(kinds)
	}

	switch elems[0].Kind {
	case models.KindObject:
		return MergeObjects(elems)
	case models.KindList:
		return MergeLists(elems)
	default:
		return &models.Shape{Kind: elems[0].Kind, TypeName: elems[0].TypeName}
	}
}

func addKinds(set models.KindSet, s *models.Shape) {
	if s.Kind == models.KindConflict {
		set.Add(s.Kinds...)
		return
	}
	set.Add(s.Kind)
}

type keyStats struct {
	present  int
	nulls    int
	optional bool
	values   []*models.Shape
}

// MergeObjects merges N object shapes into one. A key is optional when it
// is missing from any input, null in any input, or already optional in one.
// A key whose non-null shapes disagree on kind becomes a conflict.
func MergeObjects(shapes []*models.Shape) *models.Shape {
	stats := orderedmap.New[string, *keyStats]()
	for _, s := range shapes {
		for pair := s.Children.Oldest(); pair != nil; pair = pair.Next() {
			st, ok := stats.Get(pair.Key)
			if !ok {
				st = &keyStats{}
				stats.Set(pair.Key, st)
			}
			st.present++
			if pair.Value.Kind == models.KindUnknown {
				st.nulls++
			}
			if pair.Value.Optional {
				st.optional = true
			}
			st.values = append(st.values, pair.Value)
		}
	}

	merged := models.NewObjectShape()
	for pair := stats.Oldest(); pair != nil; pair = pair.Next() {
		st := pair.Value
		child := mergeField(st.values)
		child.Optional = st.present < len(shapes) || st.nulls > 0 || st.optional
		merged.Children.Set(pair.Key, child)
	}
	return merged
}

func mergeField(values []*models.Shape) *models.Shape {
	nonNull := make([]*models.Shape, 0, len(values))
	for _, v := range values {
		if v.Kind != models.KindUnknown {
			nonNull = append(nonNull, v)
		}
	}
	if len(nonNull) == 0 {
		nonNull = values
	}

	kinds := make(models.KindSet)
	for _, v := range nonNull {
		addKinds(kinds, v)
	}

	switch len(kinds) {
	case 0:
		return &models.Shape{Kind: models.KindUnknown}
	case 1:
		first := nonNull[0]
		switch first.Kind {
		case models.KindObject:
			return MergeObjects(nonNull)
		case models.KindList:
			return MergeLists(nonNull)
		default:
			return &models.Shape{Kind: first.Kind, TypeName: first.TypeName}
		}
	default:
		return models.NewConflictShape(kinds)
	}
}

// MergeLists merges list shapes into one list shape. Unknown elements (from
// empty lists) are ignored; the remaining elements merge like the elements
// of a single list.
func MergeLists(shapes []*models.Shape) *models.Shape {
	elems := make([]*models.Shape, 0, len(shapes))
	for _, s := range shapes {
		if s.Elem == nil || s.Elem.Kind == models.KindUnknown {
			continue
		}
		elems = append(elems, s.Elem)
	}
	if len(elems) == 0 {
		return models.NewListShape(&models.Shape{Kind: models.KindUnknown})
	}
	return models.NewListShape(mergeElements(elems))
}
