package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateResolveDestroy(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 42, "alice")
	require.NoError(t, err)
	require.Len(t, token, 64)

	ident, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, uint64(42), ident.UserID)
	assert.Equal(t, "alice", ident.Username)

	require.NoError(t, store.Destroy(ctx, token))
	ident, err = store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, ident)

	// Destroying a session that does not exist is a no-op.
	assert.NoError(t, store.Destroy(ctx, token))
	assert.NoError(t, store.Destroy(ctx, "never-existed"))
}

func TestMemoryStoreAnonymousSessionResolvesNil(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 0, "")
	require.NoError(t, err)

	ident, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, ident, "anonymous sessions carry no identity")

	// But the record itself is live: returnTo round-trips through it.
	require.NoError(t, store.SetReturnTo(ctx, token, "/posts/new"))
	target, err := store.PopReturnTo(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "/posts/new", target)
}

func TestMemoryStoreFlashIsExactlyOnce(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 1, "bob")
	require.NoError(t, err)

	require.NoError(t, store.SetFlash(ctx, token, FlashSuccess, "Post liked!"))
	require.NoError(t, store.SetFlash(ctx, token, FlashError, "You already liked this post"))

	f, err := store.PopFlash(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Post liked!", f.Success)
	assert.Equal(t, "You already liked this post", f.Error)

	// Second read comes back empty: the first pop consumed both slots.
	f, err = store.PopFlash(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, f.Success)
	assert.Empty(t, f.Error)
}

func TestMemoryStoreFlashOnUnknownTokenIsDropped(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	assert.NoError(t, store.SetFlash(ctx, "expired-token", FlashSuccess, "hello"))
	f, err := store.PopFlash(ctx, "expired-token")
	require.NoError(t, err)
	assert.Empty(t, f.Success)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	token, err := store.Create(ctx, 9, "carol")
	require.NoError(t, err)

	// Within the TTL the session resolves and slides its expiry.
	now = now.Add(50 * time.Minute)
	ident, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, ident)

	// The earlier resolve refreshed the window; another 50 minutes is
	// still inside it.
	now = now.Add(50 * time.Minute)
	ident, err = store.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, ident)

	// Past the full TTL with no activity, the session is gone.
	now = now.Add(2 * time.Hour)
	ident, err = store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, ident)
}
