package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// JSONValue is a generic type to represent any JSON value.
// This can be a string, json.Number, boolean, nil, JSONObject or JSONArray.
type JSONValue interface{}

// JSONObject is a JSON object that remembers the order its keys were read in.
type JSONObject = *orderedmap.OrderedMap[string, JSONValue]

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// NewJSONObject returns an empty ordered JSON object.
func NewJSONObject() JSONObject {
	return orderedmap.New[string, JSONValue]()
}

// Document holds one parsed JSON document ready for analysis.
type Document struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}
