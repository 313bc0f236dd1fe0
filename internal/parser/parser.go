package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/shapegen/internal/errors" // Custom errors package
	"github.com/mcncl/shapegen/internal/models"
)

// Parse converts JSON data from an io.Reader into a Document.
// Object keys keep the order they appear in the input.
func Parse(reader io.Reader) (models.Document, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	rootValue, err := decodeValue(decoder, true)
	if err != nil {
		if stderrors.Is(err, io.EOF) { // io.EOF on the first token means nothing was decoded
			return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Document{}, wrapDecodeError(err)
	}

	// Anything other than EOF after the first value is either a second
	// document or garbage.
	if _, err := decoder.Token(); err == nil {
		return models.Document{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.Document{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	_, isArray := rootValue.(models.JSONArray)
	return models.Document{Root: rootValue, RootIsArray: isArray}, nil
}

func wrapDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("json syntax error at offset %d: %v", syntaxError.Offset, syntaxError),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("json syntax error: unexpected EOF", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// decodeValue reads one JSON value token by token so that objects can be
// built as ordered maps.
func decodeValue(decoder *json.Decoder, root bool) (models.JSONValue, error) {
	tok, err := decoder.Token()
	if err != nil {
		if !root && stderrors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil // Primitives (string, json.Number, bool, nil) are returned as is
	}

	switch delim {
	case '{':
		obj := models.NewJSONObject()
		for decoder.More() {
			keyTok, err := decoder.Token()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeValue(decoder, false)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if err := closeDelim(decoder, '}'); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := models.JSONArray{}
		for decoder.More() {
			val, err := decodeValue(decoder, false)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if err := closeDelim(decoder, ']'); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func closeDelim(decoder *json.Decoder, want json.Delim) error {
	tok, err := decoder.Token()
	if err != nil {
		return unexpectedEOF(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func unexpectedEOF(err error) error {
	if stderrors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Normalize converts values produced by other decoders (map[string]any,
// []any, float64, int, *big.Int) into the document model. Plain maps carry
// no key order, so their keys are added in sorted order.
func Normalize(val interface{}) models.JSONValue {
	switch v := val.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := models.NewJSONObject()
		for _, k := range keys {
			obj.Set(k, Normalize(v[k]))
		}
		return obj
	case []interface{}:
		arr := make(models.JSONArray, len(v))
		for i, value := range v {
			arr[i] = Normalize(value)
		}
		return arr
	case models.JSONObject:
		obj := models.NewJSONObject()
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			obj.Set(pair.Key, Normalize(pair.Value))
		}
		return obj
	case models.JSONArray:
		arr := make(models.JSONArray, len(v))
		for i, value := range v {
			arr[i] = Normalize(value)
		}
		return arr
	case int:
		return json.Number(strconv.Itoa(v))
	case int64:
		return json.Number(strconv.FormatInt(v, 10))
	case float64:
		return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
	case *big.Int:
		return json.Number(v.String())
	default:
		return v
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("failed to open file '%s'", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
