// Package storagetest holds a behavioural suite that every UserStore
// implementation must pass.
package storagetest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/userdir/internal/models"
	"github.com/hongminglow/userdir/internal/storage"
)

// Run exercises store. newStore must return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) storage.UserStore) {
	t.Run("InsertAndFind", func(t *testing.T) { testInsertAndFind(t, newStore(t)) })
	t.Run("InsertDuplicate", func(t *testing.T) { testInsertDuplicate(t, newStore(t)) })
	t.Run("FindMissing", func(t *testing.T) { testFindMissing(t, newStore(t)) })
	t.Run("ListFilterAndOrder", func(t *testing.T) { testListFilterAndOrder(t, newStore(t)) })
	t.Run("ListPaging", func(t *testing.T) { testListPaging(t, newStore(t)) })
	t.Run("ListFarPastEnd", func(t *testing.T) { testListFarPastEnd(t, newStore(t)) })
	t.Run("ListRejectsNegativePaging", func(t *testing.T) { testListRejectsNegativePaging(t, newStore(t)) })
	t.Run("ListEscapesWildcards", func(t *testing.T) { testListEscapesWildcards(t, newStore(t)) })
	t.Run("UpdateByLogin", func(t *testing.T) { testUpdateByLogin(t, newStore(t)) })
	t.Run("UpdateKeepsOmittedFields", func(t *testing.T) { testUpdateKeepsOmittedFields(t, newStore(t)) })
	t.Run("UpdateConcurrentFields", func(t *testing.T) { testUpdateConcurrentFields(t, newStore(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("DeleteByLogin", func(t *testing.T) { testDeleteByLogin(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

func user(login string) models.User {
	return models.User{
		Login:        login,
		Email:        login + "@example.com",
		PasswordHash: "hash-" + login,
		Age:          30,
		Description:  "about " + login,
	}
}

func insert(t *testing.T, s storage.UserStore, logins ...string) {
	t.Helper()
	for _, login := range logins {
		_, err := s.Insert(context.Background(), user(login))
		require.NoError(t, err, "insert %s", login)
	}
}

func logins(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Login)
	}
	return out
}

func testInsertAndFind(t *testing.T, s storage.UserStore) {
	ctx := context.Background()

	created, err := s.Insert(ctx, user("alice"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "alice", created.Login)
	assert.Equal(t, "hash-alice", created.PasswordHash)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, "about alice", got.Description)
}

func testInsertDuplicate(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "alice")

	dup := user("alice")
	dup.Email = "changed@example.com"
	_, err := s.Insert(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	got, err := s.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
}

func testFindMissing(t *testing.T, s storage.UserStore) {
	_, err := s.FindByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListFilterAndOrder(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "zeta-test", "alpha", "Testing", "attested", "beta")

	got, err := s.List(ctx, storage.ListQuery{LoginContains: "test", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta-test", "attested"}, logins(got), "match is case-sensitive and in insertion order")

	all, err := s.List(ctx, storage.ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta-test", "alpha", "Testing", "attested", "beta"}, logins(all))
}

func testListPaging(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	var names []string
	for i := 0; i < 7; i++ {
		names = append(names, fmt.Sprintf("user%d", i))
	}
	insert(t, s, names...)

	page, err := s.List(ctx, storage.ListQuery{Offset: 3, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, names[3:6], logins(page))

	tail, err := s.List(ctx, storage.ListQuery{Offset: 6, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, names[6:], logins(tail))

	past, err := s.List(ctx, storage.ListQuery{Offset: 30, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func testListFarPastEnd(t *testing.T, s storage.UserStore) {
	insert(t, s, "a", "b")

	got, err := s.List(context.Background(), storage.ListQuery{Offset: math.MaxInt - 10, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testListRejectsNegativePaging(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "a", "b")

	_, err := s.List(ctx, storage.ListQuery{Offset: -10, Limit: 10})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = s.List(ctx, storage.ListQuery{Offset: 0, Limit: -1})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func testListEscapesWildcards(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "a_b", "axb", "50%off", "500ff")

	got, err := s.List(ctx, storage.ListQuery{LoginContains: "_", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, logins(got))

	got, err = s.List(ctx, storage.ListQuery{LoginContains: "%", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"50%off"}, logins(got))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func testUpdateByLogin(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "alice")

	updated, err := s.UpdateByLogin(ctx, "alice", storage.UserUpdate{
		Email:        strPtr("new@example.com"),
		PasswordHash: strPtr("rehashed"),
		Age:          intPtr(41),
		Description:  strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Login)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, 41, updated.Age)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, "rehashed", updated.PasswordHash)

	got, err := s.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, updated.Email, got.Email)
	assert.Equal(t, updated.ID, got.ID)
}

func testUpdateKeepsOmittedFields(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "alice")

	updated, err := s.UpdateByLogin(ctx, "alice", storage.UserUpdate{Age: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Age)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, "hash-alice", updated.PasswordHash)
	assert.Equal(t, "about alice", updated.Description)
}

// Two writers touching different fields must both land.
func testUpdateConcurrentFields(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "alice")

	for round := 0; round < 5; round++ {
		age := 50 + round
		email := fmt.Sprintf("round%d@example.com", round)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.UpdateByLogin(ctx, "alice", storage.UserUpdate{Age: &age})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := s.UpdateByLogin(ctx, "alice", storage.UserUpdate{Email: &email})
			errs <- err
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.FindByLogin(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, age, got.Age)
		assert.Equal(t, email, got.Email)
	}
}

func testUpdateMissing(t *testing.T, s storage.UserStore) {
	ctx := context.Background()

	_, err := s.UpdateByLogin(ctx, "ghost", storage.UserUpdate{Age: intPtr(1)})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.FindByLogin(ctx, "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testDeleteByLogin(t *testing.T, s storage.UserStore) {
	ctx := context.Background()
	insert(t, s, "alice", "bob")

	n, err := s.DeleteByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.DeleteByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = s.FindByLogin(ctx, "bob")
	assert.NoError(t, err)
}
