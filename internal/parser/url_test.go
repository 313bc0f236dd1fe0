package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/shapegen/internal/models"
)

func TestValidateURL(t *testing.T) {
	for _, raw := range []string{"http://example.com/api", "https://example.com/api", "HTTPS://example.com/api"} {
		_, err := ValidateURL(raw)
		assert.NoError(t, err, raw)
	}

	for _, raw := range []string{"ftp://example.com/data.json", "file:///path/to/file.json", "example.com/api", "notascheme://example.com"} {
		_, err := ValidateURL(raw)
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "invalid URL scheme", raw)
	}

	_, err := ValidateURL("http://")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing host")
}

func TestParseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"id": 7, "name": "x"}`))
		case "/empty":
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	doc, err := ParseURL(context.Background(), server.URL+"/ok", server.Client())
	require.NoError(t, err)
	root := doc.Root.(models.JSONObject)
	assert.Equal(t, []string{"id", "name"}, keysOf(root))
	id, _ := root.Get("id")
	assert.Equal(t, json.Number("7"), id)

	_, err = ParseURL(context.Background(), server.URL+"/missing", server.Client())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	_, err = ParseURL(context.Background(), server.URL+"/empty", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
