package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsCmd_List(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "runs", "tesla", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, "tesla", ts.runs.gotCompany)
	assert.Equal(t, 5, ts.runs.gotLimit)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "2s")
	assert.Contains(t, out, "error: no usable articles: tesla")
}

func TestRunsCmd_AllCompanies(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "runs")

	require.NoError(t, err)
	assert.Empty(t, ts.runs.gotCompany)
	assert.Equal(t, 20, ts.runs.gotLimit)
}

func TestRunsCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "runs", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"state": "failed"`)
}

func TestRunsShowCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "runs", "show", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "ID:        run-1")
	assert.Contains(t, out, "State:     succeeded")

	out, err = execute(t, "runs", "show", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "Run missing not found.")
}
