package http_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cada @Security de los handlers debe nombrar un esquema declarado en docs/swagger.json;
// de lo contrario Swagger UI no envía el token.
func TestAnotaciones_SecurityDeclarado(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "docs", "swagger.json"))
	require.NoError(t, err)
	var doc struct {
		SecurityDefinitions map[string]json.RawMessage `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotEmpty(t, doc.SecurityDefinitions)

	files, err := filepath.Glob("*_handler.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	found := 0
	for _, name := range files {
		f, err := os.Open(name)
		require.NoError(t, err)
		sc := bufio.NewScanner(f)
		for line := 1; sc.Scan(); line++ {
			fields := strings.Fields(sc.Text())
			if len(fields) != 3 || fields[0] != "//" || fields[1] != "@Security" {
				continue
			}
			found++
			assert.Contains(t, doc.SecurityDefinitions, fields[2], "%s:%d", name, line)
		}
		f.Close()
	}
	assert.Positive(t, found)
}
