package service

import (
	"context"
	"testing"

	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/shinyyama/broadcast-feed/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileStore struct {
	profiles map[int64]*model.Profile
	inserted []repository.NewProfile
	follows  [][2]int64
	avatars  map[int64][]byte
}

func newFakeProfileStore(ids ...int64) *fakeProfileStore {
	f := &fakeProfileStore{profiles: map[int64]*model.Profile{}, avatars: map[int64][]byte{}}
	for _, id := range ids {
		f.profiles[id] = &model.Profile{ID: id, UserName: "u", FullName: "U"}
	}
	return f
}

func (f *fakeProfileStore) InsertProfile(_ context.Context, p repository.NewProfile) (int64, error) {
	f.inserted = append(f.inserted, p)
	return int64(len(f.inserted)), nil
}

func (f *fakeProfileStore) UpdateProfileAvatar(_ context.Context, id int64, avatar []byte) error {
	f.avatars[id] = avatar
	return nil
}

func (f *fakeProfileStore) FollowUser(_ context.Context, followerID, followingID int64) (int64, error) {
	f.follows = append(f.follows, [2]int64{followerID, followingID})
	return int64(len(f.follows)), nil
}

func (f *fakeProfileStore) QueryProfile(_ context.Context, id int64) (*model.Profile, error) {
	return f.profiles[id], nil
}

func (f *fakeProfileStore) QueryProfileByUserName(_ context.Context, userName string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.UserName == userName {
			return p, nil
		}
	}
	return nil, nil
}

func TestCreateProfileTrims(t *testing.T) {
	store := newFakeProfileStore()
	blank := "   "
	region := " Osaka "

	_, err := NewProfileService(store).Create(context.Background(), CreateProfileInput{
		UserName: "  kenji ", FullName: " Kenji T ", Region: &region, MainURL: &blank,
	})
	require.NoError(t, err)
	got := store.inserted[0]
	assert.Equal(t, "kenji", got.UserName)
	assert.Equal(t, "Kenji T", got.FullName)
	require.NotNil(t, got.Region)
	assert.Equal(t, "Osaka", *got.Region)
	assert.Nil(t, got.MainURL)
}

func TestCreateProfileValidation(t *testing.T) {
	svc := NewProfileService(newFakeProfileStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProfileInput{UserName: " ", FullName: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, CreateProfileInput{UserName: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, CreateProfileInput{UserName: "x", FullName: "x", Avatar: make([]byte, MaxAvatarBytes+1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetProfileNotFound(t *testing.T) {
	store := newFakeProfileStore(1)
	store.profiles[1].UserName = "mio"
	svc := NewProfileService(store)

	p, err := svc.GetByUserName(context.Background(), "mio")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	_, err = svc.Get(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByUserName(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollow(t *testing.T) {
	store := newFakeProfileStore(1, 2)
	svc := NewProfileService(store)
	ctx := context.Background()

	id, err := svc.Follow(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, [][2]int64{{1, 2}}, store.follows)

	_, err = svc.Follow(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Follow(ctx, 1, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, store.follows, 1)
}

func TestUpdateAvatar(t *testing.T) {
	store := newFakeProfileStore(1)
	svc := NewProfileService(store)
	ctx := context.Background()

	require.NoError(t, svc.UpdateAvatar(ctx, 1, []byte("png")))
	assert.Equal(t, []byte("png"), store.avatars[1])

	assert.ErrorIs(t, svc.UpdateAvatar(ctx, 1, nil), ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateAvatar(ctx, 9, []byte("png")), ErrNotFound)
}
