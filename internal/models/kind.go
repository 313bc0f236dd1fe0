package models

import (
	"sort"
	"strings"
)

// Kind is the closed classification of a JSON value. Every component after the
// sniffer switches over Kind instead of inspecting values.
type Kind int

// The declaration order is the canonical order used whenever a set of kinds
// is stored or printed.
const (
	KindUnknown Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
	KindObject
	KindList
	KindConflict
	KindOther
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindString:    "string",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBoolean:   "boolean",
	KindTimestamp: "timestamp",
	KindObject:    "object",
	KindList:      "list",
	KindConflict:  "conflict",
	KindOther:     "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == strings.ToLower(name) {
			return k, true
		}
	}
	return KindUnknown, false
}

// IsContainer reports whether k is an object or a list.
func (k Kind) IsContainer() bool {
	return k == KindObject || k == KindList
}

// KindSet collects distinct kinds.
type KindSet map[Kind]struct{}

// Add inserts kinds into the set.
func (s KindSet) Add(kinds ...Kind) {
	for _, k := range kinds {
		s[k] = struct{}{}
	}
}

// Sorted returns the kinds in canonical order.
func (s KindSet) Sorted() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// KindNames renders kinds as their names, in the given order.
func KindNames(kinds []Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
