// Package sniffer classifies single JSON scalars into a models.Kind.
package sniffer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mcncl/shapegen/internal/models"
)

// MinTimestampLength is the shortest string (in runes) that is tried as a timestamp.
const MinTimestampLength = 4

const cacheSize = 4096

// Time format patterns (ordered by specificity - most specific first)
var (
	rfc3339NanoRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}(Z|[+-]\d{2}:\d{2})$`)             // 2006-01-02T15:04:05.999999999Z
	rfc3339Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	iso8601Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateOnlyRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
	dateTimeRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05
)

var fastPatterns = []*regexp.Regexp{rfc3339NanoRegex, rfc3339Regex, iso8601Regex, dateOnlyRegex, dateTimeRegex}

var timestampCache *lru.Cache[string, bool]

func init() {
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		panic(fmt.Sprintf("sniffer: creating timestamp cache: %v", err))
	}
	timestampCache = cache
}

// Classify returns the Kind of a decoded JSON value. Containers are reported
// as object or list; any scalar that is not a string, number, bool or null
// is KindOther, and its runtime type name is available from TypeName.
func Classify(value models.JSONValue) models.Kind {
	switch v := value.(type) {
	case nil:
		return models.KindUnknown
	case string:
		if utf8.RuneCountInString(v) >= MinTimestampLength && IsTimestamp(v) {
			return models.KindTimestamp
		}
		return models.KindString
	case json.Number:
		if isIntegerLiteral(string(v)) {
			return models.KindInteger
		}
		return models.KindFloat
	case bool:
		return models.KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return models.KindInteger
	case float32, float64:
		return models.KindFloat
	case models.JSONObject, map[string]interface{}:
		return models.KindObject
	case models.JSONArray, []interface{}:
		return models.KindList
	default:
		return models.KindOther
	}
}

// TypeName returns the runtime type name of value, used for KindOther.
func TypeName(value models.JSONValue) string {
	return fmt.Sprintf("%T", value)
}

func isIntegerLiteral(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".eE")
}

// IsTimestamp reports whether s looks like an absolute date or date-time.
//
// The anchored ISO/RFC 3339 patterns are tried first; anything else goes
// through dateparse.ParseAny. Strings without a digit and strings made only
// of digits are never timestamps.
func IsTimestamp(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if ok, found := timestampCache.Get(s); found {
		return ok
	}
	ok := detectTimestamp(s)
	timestampCache.Add(s, ok)
	return ok
}

func detectTimestamp(s string) bool {
	for _, pattern := range fastPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}

	hasDigit, allDigits := false, true
	for _, r := range s {
		if unicode.IsDigit(r) {
			hasDigit = true
		} else {
			allDigits = false
		}
	}
	if !hasDigit || allDigits {
		return false
	}
	if strings.Contains(s, "@") {
		return false
	}
	return parsesAsDate(s)
}

// parsesAsDate recovers from parser panics on pathological input.
func parsesAsDate(s string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := dateparse.ParseAny(s)
	return err == nil
}
