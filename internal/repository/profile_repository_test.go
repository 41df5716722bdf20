package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCRUD(t *testing.T) {
	_, profiles, _ := newTestRepos(t)
	ctx := context.Background()
	region := "Tokyo"

	id, err := profiles.InsertProfile(ctx, NewProfile{
		UserName:    "hana",
		FullName:    "Hana Sato",
		Description: "hello",
		Region:      &region,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := profiles.QueryProfile(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hana", got.UserName)
	assert.Equal(t, "Hana Sato", got.FullName)
	require.NotNil(t, got.Region)
	assert.Equal(t, "Tokyo", *got.Region)
	assert.Nil(t, got.MainURL)
	assert.False(t, got.CreatedAt.IsZero())

	byName, err := profiles.QueryProfileByUserName(ctx, "hana")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, id, byName.ID)

	require.NoError(t, profiles.UpdateProfileAvatar(ctx, id, []byte{0x89, 0x50, 0x4e, 0x47}))
	got, err = profiles.QueryProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, got.Avatar)
}

func TestProfileMissing(t *testing.T) {
	_, profiles, _ := newTestRepos(t)
	ctx := context.Background()

	got, err := profiles.QueryProfile(ctx, 12)
	require.NoError(t, err)
	assert.Nil(t, got)

	byName, err := profiles.QueryProfileByUserName(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, byName)
}

func TestProfileDuplicateUserName(t *testing.T) {
	_, profiles, _ := newTestRepos(t)
	mustProfile(t, profiles, "ivan")

	_, err := profiles.InsertProfile(context.Background(), NewProfile{UserName: "ivan", FullName: "Other Ivan"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestFollowUser(t *testing.T) {
	_, profiles, _ := newTestRepos(t)
	ctx := context.Background()
	a := mustProfile(t, profiles, "alice")
	b := mustProfile(t, profiles, "bob")

	first, err := profiles.FollowUser(ctx, a, b)
	require.NoError(t, err)
	back, err := profiles.FollowUser(ctx, b, a)
	require.NoError(t, err)
	assert.Greater(t, back, first)

	_, err = profiles.FollowUser(ctx, a, b)
	assert.ErrorIs(t, err, ErrStorage, "duplicate edge")

	_, err = profiles.FollowUser(ctx, a, 999)
	assert.ErrorIs(t, err, ErrStorage, "unknown profile")
}
