package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDatasetSetThenGet(t *testing.T) {
	ds := NewDataset()
	ds.Set([]byte("foo"), NewStringValue([]byte("bar")))

	v, ok := ds.Get([]byte("foo"))
	require.True(t, ok)
	require.Equal(t, NewStringValue([]byte("bar")), v)
}

func TestDatasetGetMissingKey(t *testing.T) {
	ds := NewDataset()
	_, ok := ds.Get([]byte("missing"))
	require.False(t, ok)
}

func TestDatasetExpiredKeyIsInvisibleButStillStored(t *testing.T) {
	ds := NewDataset()
	ds.Set([]byte("k"), NewStringValue([]byte("v")))
	ds.SetExpiry([]byte("k"), time.Now().Add(-time.Second))

	_, ok := ds.Get([]byte("k"))
	require.False(t, ok)

	require.Contains(t, ds.AllKeys(), []byte("k"))
}

func TestDatasetUnsetExpiryMakesKeyVisibleAgain(t *testing.T) {
	ds := NewDataset()
	ds.Set([]byte("k"), NewStringValue([]byte("v")))
	ds.SetExpiry([]byte("k"), time.Now().Add(-time.Second))
	ds.UnsetExpiry([]byte("k"))

	_, ok := ds.Get([]byte("k"))
	require.True(t, ok)
}

func TestDatasetAllKeysUnordered(t *testing.T) {
	ds := NewDataset()
	ds.Set([]byte("a"), NewStringValue([]byte("1")))
	ds.Set([]byte("b"), NewStringValue([]byte("2")))

	keys := ds.AllKeys()
	require.Len(t, keys, 2)
	require.ElementsMatch(t, [][]byte{[]byte("a"), []byte("b")}, keys)
}

func TestDatabaseReadWriteGuards(t *testing.T) {
	db := NewDatabase()

	w := db.Write(0)
	w.Dataset().Set([]byte("k"), NewStringValue([]byte("v")))
	w.Release()

	r := db.Read(0)
	v, ok := r.Dataset().Get([]byte("k"))
	r.Release()
	require.True(t, ok)
	require.Equal(t, NewStringValue([]byte("v")), v)
}

func TestDatabaseConfig(t *testing.T) {
	db := NewDatabase()

	_, ok := db.GetConfig([]byte("dir"))
	require.False(t, ok)

	db.SetConfig([]byte("dir"), "/data")
	v, ok := db.GetConfig([]byte("dir"))
	require.True(t, ok)
	require.Equal(t, "/data", v)
}

func TestDatabaseSwapDatasets(t *testing.T) {
	db := NewDatabase()

	fresh := NewDataset()
	fresh.Set([]byte("x"), NewStringValue([]byte("y")))
	db.SwapDatasets([]*Dataset{fresh})

	r := db.Read(0)
	v, ok := r.Dataset().Get([]byte("x"))
	r.Release()
	require.True(t, ok)
	require.Equal(t, NewStringValue([]byte("y")), v)
}
