package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/shapegen/internal/config"
	"github.com/mcncl/shapegen/internal/formatter"
	"github.com/mcncl/shapegen/internal/generator"
	"github.com/mcncl/shapegen/internal/generator/golang"
	"github.com/mcncl/shapegen/internal/parser"
)

// generateUnformatted runs the pipeline with formatting disabled so the
// formatter can be exercised on the raw generator output.
func generateUnformatted(t *testing.T, jsonInput, rootName string) string {
	t.Helper()

	doc, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	reg, root := generator.Analyze(doc.Root, rootName)

	cfg := config.NewConfig()
	cfg.Format = false
	gen, err := golang.NewGenerator(cfg)
	require.NoError(t, err)

	code, _, err := gen.Generate(reg, root)
	require.NoError(t, err)
	return code
}

func TestIntegration_ParserAnalyzerGeneratorFormatter(t *testing.T) {
	// Test the full pipeline: Parser -> Analyzer -> Generator -> Formatter
	jsonInput := `{
		"user_id": 123,
		"username": "johndoe",
		"is_active": true,
		"profile": {
			"full_name": "John Doe",
			"email": "john.doe@example.com"
		}
	}`

	generatedCode := generateUnformatted(t, jsonInput, "User")

	// Format the generated code
	formattedCode, err := formatter.NewFormatter().Format(generatedCode)
	require.NoError(t, err)

	// Verify that the formatted code is valid Go code
	assert.Contains(t, formattedCode, "package main")
	assert.Contains(t, formattedCode, "type User struct")
	assert.Contains(t, formattedCode, "type UserProfile struct")
	assert.Contains(t, formattedCode, "`json:\"user_id\"`")
	assert.Contains(t, formattedCode, "Profile  UserProfile `json:\"profile\"`")

	// Formatting is idempotent
	again, err := formatter.NewFormatter().Format(formattedCode)
	require.NoError(t, err)
	assert.Equal(t, formattedCode, again)
}

func TestIntegration_ArrayOfObjects(t *testing.T) {
	// Test with an array of objects
	jsonInput := `[
		{"id": 1, "name": "Product 1", "price": 19.99, "added": "2024-03-01T09:00:00Z"},
		{"id": 2, "name": "Product 2", "price": 29.99}
	]`

	generatedCode := generateUnformatted(t, jsonInput, "Product")

	formattedCode, err := formatter.NewFormatter().Format(generatedCode)
	require.NoError(t, err)

	// The root list is wrapped in a struct with a single value field
	assert.Contains(t, formattedCode, "type Product struct")
	assert.Contains(t, formattedCode, "type ProductValueItem struct")
	assert.Contains(t, formattedCode, "Value []ProductValueItem `json:\"value\"`")
	assert.Contains(t, formattedCode, "`json:\"id\"`")
	assert.Contains(t, formattedCode, "`json:\"price\"`")
	assert.Contains(t, formattedCode, "Added *time.Time `json:\"added,omitempty\"`")
	assert.Contains(t, formattedCode, "import (\n\t\"time\"\n)")
}
