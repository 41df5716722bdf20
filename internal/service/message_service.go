package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/shinyyama/broadcast-feed/internal/repository"
)

const (
	// MaxBodyLength is counted in runes; longer bodies are cut, not rejected.
	MaxBodyLength = 281

	DefaultPageSize = 10
	MaxPageSize     = 100

	DefaultResponsesLimit = 50
)

type CreateMessageInput struct {
	UserID            int64
	Body              string
	GroupType         model.MessageGroupType
	BroadcastingMsgID *int64
	ImageURL          *string
}

type RespondInput struct {
	UserID        int64
	OriginalMsgID int64
	Body          string
	GroupType     model.MessageGroupType
}

type MessageService interface {
	Create(ctx context.Context, in CreateMessageInput) (int64, error)
	Respond(ctx context.Context, in RespondInput) (int64, error)
	Get(ctx context.Context, id int64) (*repository.MessageView, error)
	Feed(ctx context.Context, followerID int64, before time.Time, pageSize *int) ([]repository.MessageView, error)
	Responses(ctx context.Context, originalID int64, limit int) ([]repository.MessageView, error)
}

// messageStore is the slice of the repository the service drives.
type messageStore interface {
	repository.MessageInserter
	repository.ResponseInserter
	repository.MessageQuerier
	repository.FeedQuerier
	repository.ResponseQuerier
}

type messageService struct {
	repo messageStore
	now  func() time.Time
}

func NewMessageService(repo messageStore) MessageService {
	return &messageService{repo: repo, now: time.Now}
}

func (s *messageService) Create(ctx context.Context, in CreateMessageInput) (int64, error) {
	if in.UserID <= 0 {
		return 0, invalid("userId is required")
	}
	if !in.GroupType.Valid() {
		return 0, invalid("unknown group type %d", in.GroupType)
	}
	if in.BroadcastingMsgID != nil && *in.BroadcastingMsgID <= 0 {
		return 0, invalid("broadcastingMsgId must be positive")
	}
	return s.repo.InsertMessage(ctx, repository.NewMessage{
		UserID:            in.UserID,
		Body:              TruncateBody(in.Body),
		GroupType:         in.GroupType,
		BroadcastingMsgID: in.BroadcastingMsgID,
		Image:             in.ImageURL,
	})
}

func (s *messageService) Respond(ctx context.Context, in RespondInput) (int64, error) {
	if in.UserID <= 0 {
		return 0, invalid("userId is required")
	}
	if in.OriginalMsgID <= 0 {
		return 0, invalid("original message id is required")
	}
	if !in.GroupType.Valid() {
		return 0, invalid("unknown group type %d", in.GroupType)
	}
	return s.repo.InsertResponseMessage(ctx, repository.NewResponse{
		UserID:        in.UserID,
		Body:          TruncateBody(in.Body),
		GroupType:     in.GroupType,
		OriginalMsgID: in.OriginalMsgID,
	})
}

func (s *messageService) Get(ctx context.Context, id int64) (*repository.MessageView, error) {
	v, err := s.repo.QueryMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

// Feed returns one page of messages written by the profiles followerID
// follows. A zero before starts from the newest message.
func (s *messageService) Feed(ctx context.Context, followerID int64, before time.Time, pageSize *int) ([]repository.MessageView, error) {
	size := DefaultPageSize
	if pageSize != nil {
		size = *pageSize
	}
	if size < 0 {
		return nil, invalid("pageSize must not be negative")
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if before.IsZero() {
		before = s.now().UTC()
	}
	return s.repo.QueryMessages(ctx, followerID, before, size)
}

func (s *messageService) Responses(ctx context.Context, originalID int64, limit int) ([]repository.MessageView, error) {
	if limit <= 0 {
		limit = DefaultResponsesLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.repo.QueryResponses(ctx, originalID, limit)
}

// TruncateBody cuts body to MaxBodyLength runes.
func TruncateBody(body string) string {
	if utf8.RuneCountInString(body) <= MaxBodyLength {
		return body
	}
	return string([]rune(body)[:MaxBodyLength])
}
