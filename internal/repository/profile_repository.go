package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shinyyama/broadcast-feed/internal/logctx"
	"github.com/shinyyama/broadcast-feed/internal/metrics"
	"github.com/shinyyama/broadcast-feed/internal/model"
	"gorm.io/gorm"
)

type NewProfile struct {
	UserName    string
	FullName    string
	Description string
	Region      *string
	MainURL     *string
	Avatar      []byte
}

type ProfileInserter interface {
	InsertProfile(ctx context.Context, p NewProfile) (int64, error)
}

type AvatarUpdater interface {
	UpdateProfileAvatar(ctx context.Context, profileID int64, avatar []byte) error
}

type FollowInserter interface {
	FollowUser(ctx context.Context, followerID, followingID int64) (int64, error)
}

type ProfileQuerier interface {
	QueryProfile(ctx context.Context, id int64) (*model.Profile, error)
}

type ProfileByUserNameQuerier interface {
	QueryProfileByUserName(ctx context.Context, userName string) (*model.Profile, error)
}

type ProfileRepository interface {
	ProfileInserter
	AvatarUpdater
	FollowInserter
	ProfileQuerier
	ProfileByUserNameQuerier
}

type profileRepository struct {
	h *Handle
}

func NewProfileRepository(h *Handle) ProfileRepository {
	return &profileRepository{h: h}
}

func (r *profileRepository) InsertProfile(ctx context.Context, p NewProfile) (id int64, err error) {
	const op = "insert_profile"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return 0, err
	}
	row := model.Profile{
		UserName:    p.UserName,
		FullName:    p.FullName,
		Description: p.Description,
		Region:      p.Region,
		MainURL:     p.MainURL,
		Avatar:      p.Avatar,
	}
	if err := db.Create(&row).Error; err != nil {
		log.Debug().Err(err).Str("rid", logctx.RID(ctx)).Str("user_name", p.UserName).Msg("insert profile failed")
		return 0, storageErr(op, err)
	}
	return row.ID, nil
}

// UpdateProfileAvatar replaces the avatar bytes. Updating a missing profile
// is not an error; callers check existence first when it matters.
func (r *profileRepository) UpdateProfileAvatar(ctx context.Context, profileID int64, avatar []byte) (err error) {
	const op = "update_profile_avatar"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return err
	}
	if err := db.Model(&model.Profile{}).
		Where("id = ?", profileID).
		Update("avatar", avatar).Error; err != nil {
		log.Debug().Err(err).Str("rid", logctx.RID(ctx)).Int64("profile_id", profileID).Msg("update profile avatar failed")
		return storageErr(op, err)
	}
	return nil
}

func (r *profileRepository) FollowUser(ctx context.Context, followerID, followingID int64) (id int64, err error) {
	const op = "follow_user"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return 0, err
	}
	edge := model.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := db.Create(&edge).Error; err != nil {
		log.Debug().Err(err).Str("rid", logctx.RID(ctx)).
			Int64("follower_id", followerID).
			Int64("following_id", followingID).
			Msg("follow user failed")
		return 0, storageErr(op, err)
	}
	return edge.ID, nil
}

func (r *profileRepository) QueryProfile(ctx context.Context, id int64) (p *model.Profile, err error) {
	const op = "query_profile"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	return firstProfile(op, db.Where("id = ?", id))
}

func (r *profileRepository) QueryProfileByUserName(ctx context.Context, userName string) (p *model.Profile, err error) {
	const op = "query_profile_by_user_name"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	return firstProfile(op, db.Where("user_name = ?", userName))
}

func firstProfile(op string, q *gorm.DB) (*model.Profile, error) {
	var p model.Profile
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	return &p, nil
}
