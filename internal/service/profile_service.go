package service

import (
	"context"
	"strings"

	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/shinyyama/broadcast-feed/internal/repository"
)

const (
	MaxAvatarBytes   = 2 << 20
	maxUserNameBytes = 64
)

type CreateProfileInput struct {
	UserName    string
	FullName    string
	Description string
	Region      *string
	MainURL     *string
	Avatar      []byte
}

type ProfileService interface {
	Create(ctx context.Context, in CreateProfileInput) (int64, error)
	Get(ctx context.Context, id int64) (*model.Profile, error)
	GetByUserName(ctx context.Context, userName string) (*model.Profile, error)
	Follow(ctx context.Context, followerID, followingID int64) (int64, error)
	UpdateAvatar(ctx context.Context, profileID int64, avatar []byte) error
}

type profileService struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) Create(ctx context.Context, in CreateProfileInput) (int64, error) {
	userName := strings.TrimSpace(in.UserName)
	fullName := strings.TrimSpace(in.FullName)
	if userName == "" || len(userName) > maxUserNameBytes {
		return 0, invalid("invalid userName")
	}
	if fullName == "" {
		return 0, invalid("fullName is required")
	}
	if len(in.Avatar) > MaxAvatarBytes {
		return 0, invalid("avatar exceeds %d bytes", MaxAvatarBytes)
	}
	return s.repo.InsertProfile(ctx, repository.NewProfile{
		UserName:    userName,
		FullName:    fullName,
		Description: strings.TrimSpace(in.Description),
		Region:      trimmedOrNil(in.Region),
		MainURL:     trimmedOrNil(in.MainURL),
		Avatar:      in.Avatar,
	})
}

func (s *profileService) Get(ctx context.Context, id int64) (*model.Profile, error) {
	p, err := s.repo.QueryProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *profileService) GetByUserName(ctx context.Context, userName string) (*model.Profile, error) {
	p, err := s.repo.QueryProfileByUserName(ctx, strings.TrimSpace(userName))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *profileService) Follow(ctx context.Context, followerID, followingID int64) (int64, error) {
	if followerID <= 0 || followingID <= 0 {
		return 0, invalid("profile ids must be positive")
	}
	if followerID == followingID {
		return 0, invalid("cannot follow yourself")
	}
	for _, id := range []int64{followerID, followingID} {
		if _, err := s.Get(ctx, id); err != nil {
			return 0, err
		}
	}
	return s.repo.FollowUser(ctx, followerID, followingID)
}

func (s *profileService) UpdateAvatar(ctx context.Context, profileID int64, avatar []byte) error {
	if len(avatar) == 0 {
		return invalid("avatar is empty")
	}
	if len(avatar) > MaxAvatarBytes {
		return invalid("avatar exceeds %d bytes", MaxAvatarBytes)
	}
	if _, err := s.Get(ctx, profileID); err != nil {
		return err
	}
	return s.repo.UpdateProfileAvatar(ctx, profileID, avatar)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
