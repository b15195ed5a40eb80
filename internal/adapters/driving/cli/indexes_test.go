package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexesCmd_Table(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "indexes")

	require.NoError(t, err)
	assert.Contains(t, out, "COMPANY")
	assert.Contains(t, out, "tesla")
	assert.Contains(t, out, "hash-256")
}

func TestIndexesCmd_LsAliasJSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ls", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"chunk_count": 21`)
}

func TestIndexesCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.err = errors.New("disk")

	_, err := execute(t, "indexes")

	require.Error(t, err)
	assert.Equal(t, "list indexes failed: disk", err.Error())
}
