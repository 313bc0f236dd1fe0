package e2e_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const complexJSON = `{
	"id": 12345,
	"uuid": "550e8400-e29b-41d4-a716-446655440000",
	"created_at": "2023-05-20T14:56:23Z",
	"updated_at": null,
	"config": {
		"enabled": true,
		"timeout_seconds": 30,
		"features": ["logging", "metrics", "alerting"],
		"rate_limits": {
			"per_second": 100,
			"burst": 150
		},
		"environments": {
			"development": {"debug": true, "log_level": "debug"},
			"production": {"debug": false, "log_level": "info"}
		}
	},
	"users": [
		{
			"id": 1,
			"name": "Alice",
			"roles": ["admin", "user"],
			"metadata": {"last_login": "2023-05-19T10:30:00Z", "login_count": 42}
		},
		{
			"id": 2,
			"name": "Bob",
			"roles": ["user"],
			"metadata": {"last_login": "2023-05-18T09:15:00Z", "login_count": 17},
			"manager": {"id": 1}
		}
	],
	"stats": {
		"requests": 1234567,
		"success_rate": 0.9999,
		"response_times": [0.045, 0.067, 0.032, 0.051]
	},
	"active": true
}`

// shapegen runs the command from the module root with the given arguments.
func shapegen(args ...string) *exec.Cmd {
	return exec.Command("go", append([]string{"run", "../.."}, args...)...)
}

// TestEndToEnd_ComplexNestedStructures tests the application with complex nested JSON structures
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()

	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(complexJSON), 0o644))
	outputFile := filepath.Join(tempDir, "complex_output.go")

	output, err := shapegen("-i", jsonFile, "-o", outputFile, "-p", "main").CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	generatedCode, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	code := string(generatedCode)

	// Check package and imports
	assert.Contains(t, code, "package main")
	assert.Contains(t, code, "import (")
	assert.Contains(t, code, "\t\"time\"")

	// Check for struct definitions
	for _, name := range []string{
		"Root",
		"RootConfig",
		"RootConfigRateLimits",
		"RootConfigEnvironments",
		"RootConfigEnvironmentsDevelopment",
		"RootConfigEnvironmentsProduction",
		"RootUsersItem",
		"RootUsersItemMetadata",
		"RootUsersItemManager",
		"RootStats",
	} {
		assert.Contains(t, code, "type "+name+" struct")
	}

	// Check for specific fields and types
	assert.Regexp(t, `Id\s+int64\s+\x60json:"id"\x60`, code)
	assert.Contains(t, code, "`json:\"uuid\"`")
	assert.Regexp(t, `CreatedAt\s+time\.Time\s+\x60json:"created_at"\x60`, code)
	assert.Regexp(t, `UpdatedAt\s+interface\{\}\s+\x60json:"updated_at"\x60`, code)
	assert.Regexp(t, `Config\s+RootConfig\s+\x60json:"config"\x60`, code)
	assert.Regexp(t, `Users\s+\[\]RootUsersItem\s+\x60json:"users"\x60`, code)
	assert.Regexp(t, `Manager\s+\*RootUsersItemManager\s+\x60json:"manager,omitempty"\x60`, code)
	assert.Regexp(t, `ResponseTimes\s+\[\]float64\s+\x60json:"response_times"\x60`, code)
	assert.Regexp(t, `LastLogin\s+time\.Time\s+\x60json:"last_login"\x60`, code)
	assert.Regexp(t, `Active\s+bool\s+\x60json:"active"\x60`, code)

	// Verify the code compiles
	verifyCode := fmt.Sprintf("%s\n\nfunc main() {\n\t// Just to verify it compiles\n\t_ = Root{}\n}\n", code)
	tmpGoFile := filepath.Join(tempDir, "verify_compile.go")
	require.NoError(t, os.WriteFile(tmpGoFile, []byte(verifyCode), 0o644))

	compileOut, err := exec.Command("go", "build", "-o", os.DevNull, tmpGoFile).CombinedOutput()
	require.NoError(t, err, "Generated code does not compile: %s", string(compileOut))
}

// TestEndToEnd_PythonIsValidSyntax checks every Python style against the
// Python parser when one is available.
func TestEndToEnd_PythonIsValidSyntax(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available")
	}

	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(complexJSON), 0o644))

	for _, style := range []string{"dataclass", "pydantic", "typeddict"} {
		t.Run(style, func(t *testing.T) {
			outputFile := filepath.Join(tempDir, style+".py")
			output, err := shapegen("-i", jsonFile, "-o", outputFile, "-l", "python", "--set", "style="+style).CombinedOutput()
			require.NoError(t, err, "CLI command failed: %s", string(output))

			check := exec.Command(python, "-c", "import ast, sys; ast.parse(open(sys.argv[1]).read())", outputFile)
			checkOut, err := check.CombinedOutput()
			require.NoError(t, err, "Generated Python does not parse: %s", string(checkOut))
		})
	}
}

// TestEndToEnd_MultipleLanguages writes one file per language into a directory
func TestEndToEnd_MultipleLanguages(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "models")

	cmd := shapegen("-l", "go", "-l", "python", "-r", "ApiResponse", "-o", outDir)
	cmd.Stdin = strings.NewReader(`{"status": "ok", "items": [{"id": 1}]}`)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "CLI command failed: %s", stderr.String())

	goCode, err := os.ReadFile(filepath.Join(outDir, "api_response.go"))
	require.NoError(t, err)
	assert.Contains(t, string(goCode), "type ApiResponseItemsItem struct")

	pyCode, err := os.ReadFile(filepath.Join(outDir, "api_response.py"))
	require.NoError(t, err)
	assert.Contains(t, string(pyCode), "class ApiResponseItemsItem:")
	assert.Contains(t, string(pyCode), "items: list[ApiResponseItemsItem]")
}

// TestEndToEnd_HeterogeneousArrays tests the application with arrays containing mixed types
func TestEndToEnd_HeterogeneousArrays(t *testing.T) {
	jsonContent := `{
		"mixed_array": [1, "string", true, null, {"nested": "object"}, [1, 2, 3]],
		"number_array": [1, 2.5, 3],
		"sparse": [{"a": 1}, {"b": "x"}]
	}`

	cmd := shapegen()
	cmd.Stdin = strings.NewReader(jsonContent)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "CLI command failed: %s", stderr.String())

	code := stdout.String()
	assert.Regexp(t, `MixedArray\s+\[\]interface\{\}\s+\x60json:"mixed_array"\x60`, code)
	// Integers and floats are distinct kinds
	assert.Regexp(t, `NumberArray\s+\[\]interface\{\}\s+\x60json:"number_array"\x60`, code)
	assert.Regexp(t, `A\s+\*int64\s+\x60json:"a,omitempty"\x60`, code)
	assert.Regexp(t, `B\s+\*string\s+\x60json:"b,omitempty"\x60`, code)
	assert.Contains(t, stderr.String(), "Root.mixed_array: conflicting kinds")
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected string
		isError  bool
	}{
		{name: "EmptyObject", json: `{}`, expected: "type Root struct"},
		{name: "EmptyArray", json: `[]`, expected: "Value []interface{}"},
		{name: "SingleValue", json: `"just a string"`, expected: "Value string"},
		{name: "SingleNumber", json: `42`, expected: "Value int64"},
		{name: "SingleBoolean", json: `true`, expected: "Value bool"},
		{name: "SingleNull", json: `null`, expected: "Value interface{}"},
		{name: "InvalidJSON", json: `{"name": "Invalid JSON",}`, isError: true},
		{
			name:     "DeeplyNestedObject",
			json:     `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`,
			expected: "type RootLevel1Level2Level3Level4Level5 struct",
		},
		{name: "DeeplyNestedArray", json: `[[[[[[42]]]]]]`, expected: "Value [][][][][][]int64"},
		{name: "DuplicateNames", json: `{"a_b": {"x": 1}, "aB": {"y": 2}}`, expected: "type RootAb2 struct"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := shapegen()
			cmd.Stdin = strings.NewReader(tc.json)
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			err := cmd.Run()

			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
				return
			}
			require.NoError(t, err, "Unexpected error for %s: %s", tc.name, stderr.String())
			assert.Contains(t, stdout.String(), tc.expected, "Expected output not found for %s", tc.name)
		})
	}
}
