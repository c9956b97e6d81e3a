package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/tinnitrack/internal/client/client"
	"github.com/dmitrijs2005/tinnitrack/internal/client/repositories/metadata"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}
