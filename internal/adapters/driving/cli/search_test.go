package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestSearchCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "berlin plant", "-c", "tesla", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, 3, ts.retrieval.gotK)
	assert.Contains(t, out, "[1] Tesla opens plant (0.91)")
	assert.Contains(t, out, "Source: https://a.example/1")
	assert.Contains(t, out, "Tesla opened a new plant in Berlin.")
}

func TestSearchCmd_DefaultLimit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "q", "-c", "tesla")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, ts.retrieval.gotK)
}

func TestSearchCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "q", "-c", "tesla", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"similarity": 0.91`)
}

func TestSearchCmd_IndexNotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.err = domain.ErrIndexNotFound

	out, err := execute(t, "search", "q", "-c", "tesla")

	require.NoError(t, err)
	assert.Contains(t, out, "No index found")
}

func TestSearchCmd_NotConfigured(t *testing.T) {
	_, err := execute(t, "search", "q", "-c", "tesla")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("  short \n", 10))
	assert.Equal(t, "ééé...", snippet(strings.Repeat("é", 5), 3))
}
