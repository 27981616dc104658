package userstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avallejos/visitauth/internal/domain/auth"
)

func TestMemory_UserLifecycle(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.InsertUser(ctx, "a@test.com", "hash-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	user, found, err := store.GetUserByEmail(ctx, "a@test.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "hash-1", user.PasswordHash)

	_, err = store.InsertUser(ctx, "a@test.com", "hash-2")
	require.ErrorIs(t, err, auth.ErrEmailExists)

	updated, err := store.UpdateUserPassword(ctx, "a@test.com", "hash-3")
	require.NoError(t, err)
	require.True(t, updated)
	user, _, _ = store.GetUserByEmail(ctx, "a@test.com")
	require.Equal(t, "hash-3", user.PasswordHash)

	deleted, err := store.DeleteUser(ctx, "a@test.com")
	require.NoError(t, err)
	require.True(t, deleted)
	_, found, err = store.GetUserByEmail(ctx, "a@test.com")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemory_UpdateAndDeleteUnknownUser(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	updated, err := store.UpdateUserPassword(ctx, "nobody@test.com", "hash")
	require.NoError(t, err)
	require.False(t, updated)

	deleted, err := store.DeleteUser(ctx, "nobody@test.com")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestMemory_DenyTokenIdempotent(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	denied, err := store.IsTokenDenied(ctx, "tok")
	require.NoError(t, err)
	require.False(t, denied)

	require.NoError(t, store.DenyToken(ctx, "tok", expires))
	// Replaying the same revocation must not fail.
	require.NoError(t, store.DenyToken(ctx, "tok", expires))

	denied, err = store.IsTokenDenied(ctx, "tok")
	require.NoError(t, err)
	require.True(t, denied)
}

func TestMemory_VisitsScopedAndCopied(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.AddVisit(ctx, 1, "1000"))
	require.NoError(t, store.AddVisit(ctx, 2, "2000"))
	require.NoError(t, store.AddVisit(ctx, 1, "3000"))

	records, err := store.VisitsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "1000", records[0].DateTime)
	require.Equal(t, "3000", records[1].DateTime)

	// Mutating the returned slice must not affect the store.
	records[0].DateTime = "tampered"
	fresh, err := store.VisitsByUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "1000", fresh[0].DateTime)
}

func TestMemory_DeleteUserDropsHistory(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.InsertUser(ctx, "a@test.com", "hash")
	require.NoError(t, err)
	require.NoError(t, store.AddVisit(ctx, id, "1000"))

	deleted, err := store.DeleteUser(ctx, "a@test.com")
	require.NoError(t, err)
	require.True(t, deleted)

	records, err := store.VisitsByUser(ctx, id)
	require.NoError(t, err)
	require.Empty(t, records)
}
