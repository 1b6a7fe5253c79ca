package openapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestGenerate(t *testing.T) {
	out, err := Generate("1.2.3")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &doc))

	assert.Equal(t, "3.0.0", doc["openapi"])
	info := doc["info"].(map[interface{}]interface{})
	assert.Equal(t, "PoliteCode Translate API", info["title"])
	assert.Equal(t, "1.2.3", info["version"])

	paths := doc["paths"].(map[interface{}]interface{})
	for _, p := range []string{"/api/health", "/api/translate", "/api/templates", "/metrics"} {
		assert.Contains(t, paths, p)
	}

	schemas := doc["components"].(map[interface{}]interface{})["schemas"].(map[interface{}]interface{})
	diag := schemas["Diagnostic"].(map[interface{}]interface{})
	category := diag["properties"].(map[interface{}]interface{})["category"].(map[interface{}]interface{})
	assert.Contains(t, category["enum"], "entry-point")
}

func TestGenerateRequiresVersion(t *testing.T) {
	_, err := Generate("")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated", "openapi", "spec.yaml")
	require.NoError(t, WriteFile(path, "0.1.0"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "openapi: 3.0.0")
	assert.Contains(t, string(content), "/api/translate:")
}
