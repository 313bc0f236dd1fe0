// Package query selects the part of a document to analyze with a jq
// expression.
package query

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/models"
	"github.com/mcncl/shapegen/internal/parser"
)

// Select runs a jq expression against value. A single result is returned
// as is; several results are collected into one array. Objects in the
// result carry their keys in sorted order.
func Select(value models.JSONValue, expression string) (models.JSONValue, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" || expression == "." {
		return value, nil
	}

	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("invalid jq expression %q", expression), err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("failed to compile jq expression %q", expression), err)
	}

	var results []interface{}
	iter := code.Run(toPlain(value))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, errors.NewQueryError(fmt.Sprintf("jq expression %q failed", expression), err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, errors.NewQueryError(fmt.Sprintf("jq expression %q produced no results", expression), nil)
	case 1:
		return parser.Normalize(results[0]), nil
	default:
		return parser.Normalize(results), nil
	}
}

// toPlain converts the document model into the values gojq operates on.
func toPlain(value models.JSONValue) interface{} {
	switch v := value.(type) {
	case models.JSONObject:
		out := make(map[string]interface{}, v.Len())
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = toPlain(pair.Value)
		}
		return out
	case models.JSONArray:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = toPlain(item)
		}
		return out
	case json.Number:
		return plainNumber(v)
	default:
		return v
	}
}

func plainNumber(n json.Number) interface{} {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return b
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}
