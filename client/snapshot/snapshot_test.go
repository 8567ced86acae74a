package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/astralvault/page-sync-service/client/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "snapshot.json")

	s := &Snapshot{
		User: &entity.User{UID: 1, Email: "a@b.c"},
		Pages: []*entity.Page{
			{ID: "p1", Title: "First", Tags: []string{"x"}},
			{ID: "p2", Title: "Second", ParentID: "p1"},
		},
	}
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, int64(1), loaded.User.UID)
	require.Len(t, loaded.Pages, 2)
	assert.Equal(t, "First", loaded.Pages[0].Title)
	assert.Equal(t, "p1", loaded.Pages[1].ParentID)
	assert.NotZero(t, loaded.SavedAt)
}

func TestLoadMissingFile(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	require.NoError(t, Save(path, &Snapshot{Pages: []*entity.Page{{ID: "old"}}}))
	require.NoError(t, Save(path, &Snapshot{Pages: []*entity.Page{{ID: "new"}}}))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Pages, 1)
	assert.Equal(t, "new", loaded.Pages[0].ID)

	// 临时文件不残留
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
