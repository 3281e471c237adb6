package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/taxava/internal/storage"
)

func newTestStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := New(Config{Addr: mr.Addr(), Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(Config{Addr: addr})
	assert.Error(t, err)
}

func TestStore_SetGetDelete(t *testing.T) {
	store, mr := newTestStore(t, "taxava:")
	ctx := context.Background()

	got, err := store.Get(ctx, storage.KeyCompanies)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Set(ctx, storage.KeyCompanies, []byte(`[{"id":1}]`)))

	// The prefix is applied on the server side.
	raw, err := mr.Get("taxava:companies")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, raw)

	got, err = store.Get(ctx, storage.KeyCompanies)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	require.NoError(t, store.Delete(ctx, storage.KeyCompanies))
	require.NoError(t, store.Delete(ctx, storage.KeyCompanies))

	got, err = store.Get(ctx, storage.KeyCompanies)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, store.Set(ctx, storage.KeyUsers, nil), storage.ErrNilValue)
}

func TestStore_CompareAndSwap(t *testing.T) {
	store, _ := newTestStore(t, "")
	ctx := context.Background()
	key := storage.KeyProperties

	ok, err := store.CompareAndSwap(ctx, key, nil, []byte("a"))
	require.NoError(t, err)
	assert.True(t, ok, "create-if-absent on empty key")

	ok, err = store.CompareAndSwap(ctx, key, nil, []byte("b"))
	require.NoError(t, err)
	assert.False(t, ok, "create-if-absent on existing key")

	ok, err = store.CompareAndSwap(ctx, key, []byte("stale"), []byte("b"))
	require.NoError(t, err)
	assert.False(t, ok, "stale old value")

	ok, err = store.CompareAndSwap(ctx, key, []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.True(t, ok, "matching old value")

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestStore_CompareAndSwapEmptyValueIsNotAbsent(t *testing.T) {
	store, mr := newTestStore(t, "")
	ctx := context.Background()

	require.NoError(t, mr.Set(storage.KeyUsers, ""))

	ok, err := store.CompareAndSwap(ctx, storage.KeyUsers, nil, []byte("x"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.CompareAndSwap(ctx, storage.KeyUsers, []byte{}, []byte("x"))
	require.NoError(t, err)
	assert.True(t, ok)
}
