package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestUpdateCmd_Success(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "update", "Tesla", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, "Tesla", ts.ingestion.gotCompany)
	assert.Equal(t, 5, ts.ingestion.gotMax)
	assert.Contains(t, out, "Indexed 21 chunks from 5 of 8 articles for tesla in 3s")
}

func TestUpdateCmd_IngestAlias(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ingest", "tesla")

	require.NoError(t, err)
	assert.Equal(t, 0, ts.ingestion.gotMax)
}

func TestUpdateCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "update", "tesla", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"chunks_indexed": 21`)
}

func TestUpdateCmd_NoUsableArticles(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingestion.err = fmt.Errorf("%w: tesla", domain.ErrNoUsableArticles)

	out, err := execute(t, "update", "tesla")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoUsableArticles)
	assert.Contains(t, out, "No usable articles for tesla (8 fetched). The existing index was not changed.")
}

func TestUpdateCmd_InProgress(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingestion.err = domain.ErrIngestInProgress

	_, err := execute(t, "update", "tesla")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "update failed")
}

func TestUpdateCmd_DryRun(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "update", "Tesla", "--dry-run")

	require.NoError(t, err)
	assert.Equal(t, "Tesla", ts.dryRun.gotCompany)
	assert.Empty(t, ts.ingestion.gotCompany, "the persistent service must not run")
	assert.Contains(t, out, "Dry run: 21 chunks from 5 of 8 articles for tesla in 3s. Nothing was written.")
}

func TestUpdateCmd_DryRunNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	dryRunService = nil

	_, err := execute(t, "update", "tesla", "--dry-run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestUpdateCmd_RequiresCompany(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "update")

	assert.Error(t, err)
}

func TestProgressTotal_UsesScreenedCount(t *testing.T) {
	assert.Equal(t, 0, progressTotal(nil))
	assert.Equal(t, 0, progressTotal(&domain.IngestRun{ArticlesFetched: 8}))
	assert.Equal(t, 6, progressTotal(&domain.IngestRun{ArticlesFetched: 8, ArticlesScreened: 6}))
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, isTerminal(new(bytes.Buffer)))
}
