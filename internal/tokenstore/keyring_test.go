package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestNewKeyringStoreValidation(t *testing.T) {
	_, err := NewKeyringStore("", "user")
	assert.Error(t, err)

	_, err = NewKeyringStore("service", "")
	assert.Error(t, err)
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("gcalctl-test", "default")
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(ctx, []byte(`{"access_token":"a"}`)))

	data, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"a"}`, string(data))

	require.NoError(t, store.Delete(ctx))
	_, err = store.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx))
}
