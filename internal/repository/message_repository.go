package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shinyyama/broadcast-feed/internal/logctx"
	"github.com/shinyyama/broadcast-feed/internal/metrics"
	"github.com/shinyyama/broadcast-feed/internal/model"
	"gorm.io/gorm"
)

type NewMessage struct {
	UserID            int64
	Body              string
	GroupType         model.MessageGroupType
	BroadcastingMsgID *int64
	Image             *string
}

type NewResponse struct {
	UserID        int64
	Body          string
	GroupType     model.MessageGroupType
	OriginalMsgID int64
}

// Each message operation family is its own interface so handlers and tests
// can depend on exactly the capability they use.

type MessageInserter interface {
	InsertMessage(ctx context.Context, msg NewMessage) (int64, error)
}

type ResponseInserter interface {
	InsertResponseMessage(ctx context.Context, msg NewResponse) (int64, error)
}

type MessageQuerier interface {
	QueryMessage(ctx context.Context, id int64) (*MessageView, error)
}

type FeedQuerier interface {
	QueryMessages(ctx context.Context, followerID int64, before time.Time, pageSize int) ([]MessageView, error)
}

type ResponseQuerier interface {
	QueryResponses(ctx context.Context, originalID int64, limit int) ([]MessageView, error)
}

type MessageRepository interface {
	MessageInserter
	ResponseInserter
	MessageQuerier
	FeedQuerier
	ResponseQuerier
}

type messageRepository struct {
	h *Handle
}

func NewMessageRepository(h *Handle) MessageRepository {
	return &messageRepository{h: h}
}

func (r *messageRepository) InsertMessage(ctx context.Context, msg NewMessage) (id int64, err error) {
	const op = "insert_message"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return 0, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		row := model.Message{
			UserID:       msg.UserID,
			Body:         msg.Body,
			Image:        msg.Image,
			MsgGroupType: msg.GroupType,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if msg.BroadcastingMsgID != nil {
			link := model.MessageBroadcast{
				MainMsgID:         row.ID,
				BroadcastingMsgID: *msg.BroadcastingMsgID,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		id = row.ID
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("rid", logctx.RID(ctx)).Int64("user_id", msg.UserID).Msg("insert message failed")
		return 0, storageErr(op, err)
	}
	return id, nil
}

func (r *messageRepository) InsertResponseMessage(ctx context.Context, msg NewResponse) (id int64, err error) {
	const op = "insert_response_message"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return 0, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		row := model.Message{
			UserID:       msg.UserID,
			Body:         msg.Body,
			MsgGroupType: msg.GroupType,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		link := model.MessageResponse{
			OriginalMsgID:   msg.OriginalMsgID,
			RespondingMsgID: row.ID,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		id = row.ID
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("rid", logctx.RID(ctx)).Int64("original_msg_id", msg.OriginalMsgID).Msg("insert response message failed")
		return 0, storageErr(op, err)
	}
	return id, nil
}

func (r *messageRepository) QueryMessage(ctx context.Context, id int64) (view *MessageView, err error) {
	const op = "query_message"
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	var rows []messageRow
	if err := messageRows(db).Where("m.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, storageErr(op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	target := r.broadcastTarget(ctx, db, row)
	v := stitch(row, target)
	return &v, nil
}

// broadcastTarget resolves the single re-shared message of row. A failed or
// empty lookup yields nil; the caller shows the message without a broadcast.
func (r *messageRepository) broadcastTarget(ctx context.Context, db *gorm.DB, row messageRow) *messageRow {
	if !row.hasBroadcast() {
		return nil
	}
	var targets []messageRow
	if err := messageRows(db).Where("m.id = ?", *row.BroadcastMsgID).Limit(1).Scan(&targets).Error; err != nil {
		log.Warn().Err(err).
			Str("rid", logctx.RIDOrNew(ctx)).
			Int64("message_id", row.ID).
			Int64("broadcast_msg_id", *row.BroadcastMsgID).
			Msg("broadcast lookup failed")
		metrics.BroadcastDegraded(metrics.ReasonQueryFailed, 1)
		return nil
	}
	if len(targets) == 0 {
		log.Warn().
			Str("rid", logctx.RIDOrNew(ctx)).
			Int64("message_id", row.ID).
			Int64("broadcast_msg_id", *row.BroadcastMsgID).
			Msg("broadcast target missing")
		metrics.BroadcastDegraded(metrics.ReasonMissing, 1)
		return nil
	}
	return &targets[0]
}

func (r *messageRepository) QueryMessages(ctx context.Context, followerID int64, before time.Time, pageSize int) (views []MessageView, err error) {
	const op = "query_messages"
	if pageSize <= 0 {
		return []MessageView{}, nil
	}
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	var rows []messageRow
	if err := messageRows(db).
		Joins("JOIN follow f ON f.following_id = m.user_id").
		Where("f.follower_id = ? AND m.updated_at < ?", followerID, before.UTC()).
		Order("m.updated_at DESC").
		Order("m.id DESC").
		Limit(pageSize).
		Scan(&rows).Error; err != nil {
		return nil, storageErr(op, err)
	}
	return r.stitchPage(ctx, db, rows), nil
}

func (r *messageRepository) QueryResponses(ctx context.Context, originalID int64, limit int) (views []MessageView, err error) {
	const op = "query_responses"
	if limit <= 0 {
		return []MessageView{}, nil
	}
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	db, err := r.h.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	var rows []messageRow
	if err := messageRows(db).
		Joins("JOIN message_response mr ON mr.responding_msg_id = m.id").
		Where("mr.original_msg_id = ?", originalID).
		Order("m.updated_at DESC").
		Order("m.id DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, storageErr(op, err)
	}
	return r.stitchPage(ctx, db, rows), nil
}

// stitchPage resolves every broadcast target referenced by rows with one
// query and attaches them in place. Row order is preserved.
func (r *messageRepository) stitchPage(ctx context.Context, db *gorm.DB, rows []messageRow) []MessageView {
	ids := broadcastIDs(rows)
	if len(ids) == 0 {
		return stitchAll(rows, nil)
	}
	var targets []messageRow
	if err := messageRows(db).Where("m.id IN ?", ids).Scan(&targets).Error; err != nil {
		log.Warn().Err(err).
			Str("rid", logctx.RIDOrNew(ctx)).
			Ints64("broadcast_msg_ids", ids).
			Msg("batched broadcast lookup failed")
		metrics.BroadcastDegraded(metrics.ReasonQueryFailed, countBroadcasting(rows))
		return stitchAll(rows, nil)
	}
	views := stitchAll(rows, targets)
	if missing := countBroadcasting(rows) - countStitched(views); missing > 0 {
		log.Warn().
			Str("rid", logctx.RIDOrNew(ctx)).
			Int("missing", missing).
			Msg("broadcast targets missing")
		metrics.BroadcastDegraded(metrics.ReasonMissing, missing)
	}
	return views
}
