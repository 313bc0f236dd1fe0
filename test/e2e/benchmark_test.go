package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/generator/languages"
	"github.com/mcncl/shapegen/internal/parser"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"timestamp":  time.Now().Format(time.RFC3339),
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})

	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}

	return result
}

// generateWideJSON creates a JSON object with many fields at the same level
func generateWideJSON(fieldCount int) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < fieldCount; i++ {
		// Mix different types of fields
		switch i % 5 {
		case 0:
			result[fmt.Sprintf("string_field_%d", i)] = fmt.Sprintf("value_%d", i)
		case 1:
			result[fmt.Sprintf("int_field_%d", i)] = i
		case 2:
			result[fmt.Sprintf("bool_field_%d", i)] = i%2 == 0
		case 3:
			result[fmt.Sprintf("float_field_%d", i)] = float64(i) + 0.5
		case 4:
			// Nested object
			result[fmt.Sprintf("object_field_%d", i)] = map[string]interface{}{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
		}
	}

	return result
}

// generateArrayJSON creates a list of records where some keys are missing
func generateArrayJSON(itemCount int) []interface{} {
	items := make([]interface{}, itemCount)
	for i := range items {
		item := map[string]interface{}{
			"id":         i,
			"name":       fmt.Sprintf("Item %d", i),
			"created_at": time.Now().Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
			"tags":       []string{"a", "b"},
		}
		if i%3 == 0 {
			item["discount"] = 0.25
		}
		items[i] = item
	}
	return items
}

// benchmarkPipeline measures parsing, analysis and generation of data for
// every registered language.
func benchmarkPipeline(b *testing.B, data interface{}) {
	b.Helper()
	raw, err := json.Marshal(data)
	require.NoError(b, err)

	registry := languages.NewRegistry()
	cfg := config.NewConfig()

	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc, err := parser.ParseString(string(raw))
		if err != nil {
			b.Fatal(err)
		}
		reg, root := generator.Analyze(doc.Root, cfg.RootName)
		results, err := generator.GenerateAll(context.Background(), registry, registry.Languages(), cfg, reg, root)
		if err != nil {
			b.Fatal(err)
		}
		for _, res := range results {
			if !res.Success {
				b.Fatal(res.Err)
			}
		}
	}
}

// BenchmarkDeepNesting benchmarks performance with deeply nested JSON structures
func BenchmarkDeepNesting(b *testing.B) {
	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Shallow", 2, 3},
		{"Medium", 4, 3},
		{"Deep", 6, 2},
	}

	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			benchmarkPipeline(b, generateNestedJSON(depth.depth, depth.width))
		})
	}
}

// BenchmarkWideStructures benchmarks performance with objects that have many fields
func BenchmarkWideStructures(b *testing.B) {
	for _, width := range []int{10, 100, 500} {
		b.Run(fmt.Sprintf("Fields%d", width), func(b *testing.B) {
			benchmarkPipeline(b, generateWideJSON(width))
		})
	}
}

// BenchmarkArrayProcessing benchmarks performance with large arrays of records
func BenchmarkArrayProcessing(b *testing.B) {
	for _, size := range []int{10, 1000, 10000} {
		b.Run(fmt.Sprintf("Items%d", size), func(b *testing.B) {
			benchmarkPipeline(b, generateArrayJSON(size))
		})
	}
}
