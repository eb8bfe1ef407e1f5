package backup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhi-elliot/ScrappyMart/internal/liststore"
	"github.com/bhi-elliot/ScrappyMart/internal/store"
)

func TestExportRestore(t *testing.T) {
	src := store.NewMemoryStore()
	require.NoError(t, src.Save(liststore.KeyLists, `[{"id":"list_1","name":"Raid","items":[],"categories":[]}]`))
	require.NoError(t, src.Save(liststore.KeyActiveList, "list_1"))

	sealed, err := Export(context.Background(), src, "hunter2")
	require.NoError(t, err)

	dst := store.NewMemoryStore()
	doc, err := Restore(dst, sealed, "hunter2")
	require.NoError(t, err)
	assert.Len(t, doc.Records, 2)

	v, found, _ := dst.Load(liststore.KeyActiveList)
	assert.True(t, found)
	assert.Equal(t, "list_1", v)

	// The restored records load into a working store.
	s := liststore.New(dst, liststore.Options{})
	s.Load()
	assert.Equal(t, "list_1", s.ActiveListID())
	active, ok := s.ActiveList()
	require.True(t, ok)
	assert.Equal(t, "Raid", active.Name)
}

func TestExportSkipsAbsentRecords(t *testing.T) {
	src := store.NewMemoryStore()
	require.NoError(t, src.Save(liststore.KeyLists, `[]`))

	sealed, err := Export(context.Background(), src, "pw")
	require.NoError(t, err)

	dst := store.NewMemoryStore()
	doc, err := Restore(dst, sealed, "pw")
	require.NoError(t, err)
	assert.Len(t, doc.Records, 1)
	_, ok, _ := dst.Load(liststore.KeyActiveList)
	assert.False(t, ok)
}

func TestExportRequiresPassphrase(t *testing.T) {
	_, err := Export(context.Background(), store.NewMemoryStore(), "")
	assert.Error(t, err)
}

func TestRestoreRejectsBadInput(t *testing.T) {
	dst := store.NewMemoryStore()

	sealed, err := Export(context.Background(), store.NewMemoryStore(), "pw")
	require.NoError(t, err)
	_, err = Restore(dst, sealed, "other")
	assert.ErrorIs(t, err, ErrDecrypt)

	notJSON, err := Seal([]byte("plain text"), "pw")
	require.NoError(t, err)
	_, err = Restore(dst, notJSON, "pw")
	assert.ErrorIs(t, err, ErrInvalidBackup)

	badLists, err := Seal([]byte(`{"version":1,"records":{"scrappymart-lists":"{oops","scrappymart-active-list":"x"}}`), "pw")
	require.NoError(t, err)
	_, err = Restore(dst, badLists, "pw")
	assert.ErrorIs(t, err, ErrInvalidBackup)

	keys, _ := dst.Keys()
	assert.Empty(t, keys, "nothing is written when validation fails")
}

func TestRestoreSaveFailure(t *testing.T) {
	src := store.NewMemoryStore()
	require.NoError(t, src.Save(liststore.KeyActiveList, "list_1"))
	sealed, err := Export(context.Background(), src, "pw")
	require.NoError(t, err)

	boom := errors.New("disk full")
	dst := store.NewMemoryStore()
	dst.FailWith = boom
	_, err = Restore(dst, sealed, "pw")
	assert.ErrorIs(t, err, boom)
}
