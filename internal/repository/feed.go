package repository

import (
	"time"

	"github.com/shinyyama/broadcast-feed/internal/model"
	"gorm.io/gorm"
)

type ProfileShort struct {
	ID       int64
	UserName string
	FullName string
	Avatar   []byte
}

// MessageView is a message with its author and, when it re-shares another
// message, that message one level deep. Broadcast.Broadcast is always nil.
type MessageView struct {
	ID        int64
	UpdatedAt time.Time
	Body      *string
	Likes     int32
	Image     *string
	GroupType model.MessageGroupType
	Author    ProfileShort
	Broadcast *MessageView
}

// messageRow is one message joined with its author and its own broadcast
// link. BroadcastMsgID is the id of the re-shared message, not its content.
type messageRow struct {
	ID             int64
	UpdatedAt      time.Time
	Body           *string
	Likes          int32
	Image          *string
	MsgGroupType   model.MessageGroupType
	UserID         int64
	UserName       string
	FullName       string
	Avatar         []byte
	BroadcastMsgID *int64
}

// Zero is not assumed to be reserved by the schema, but a zero id is never
// resolved as a broadcast target.
func (r messageRow) hasBroadcast() bool {
	return r.BroadcastMsgID != nil && *r.BroadcastMsgID > 0
}

const messageColumns = "m.id, m.updated_at, m.body, m.likes, m.image, m.msg_group_type, m.user_id, " +
	"p.user_name, p.full_name, p.avatar, mb.broadcasting_msg_id AS broadcast_msg_id"

func messageRows(db *gorm.DB) *gorm.DB {
	return db.Table("message AS m").
		Select(messageColumns).
		Joins("JOIN profile p ON p.id = m.user_id").
		Joins("LEFT JOIN message_broadcast mb ON mb.main_msg_id = m.id")
}

func (r messageRow) view() MessageView {
	return MessageView{
		ID:        r.ID,
		UpdatedAt: r.UpdatedAt,
		Body:      r.Body,
		Likes:     r.Likes,
		Image:     r.Image,
		GroupType: r.MsgGroupType,
		Author: ProfileShort{
			ID:       r.UserID,
			UserName: r.UserName,
			FullName: r.FullName,
			Avatar:   r.Avatar,
		},
	}
}

func stitch(row messageRow, target *messageRow) MessageView {
	v := row.view()
	if target != nil {
		b := target.view()
		v.Broadcast = &b
	}
	return v
}

// broadcastIDs returns the distinct broadcast target ids of rows in order of
// first appearance.
func broadcastIDs(rows []messageRow) []int64 {
	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if !row.hasBroadcast() {
			continue
		}
		id := *row.BroadcastMsgID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// stitchAll attaches targets to rows by id. Targets may arrive in any order;
// rows keep theirs. A nil targets slice leaves every broadcast empty.
func stitchAll(rows []messageRow, targets []messageRow) []MessageView {
	byID := make(map[int64]*messageRow, len(targets))
	for i := range targets {
		byID[targets[i].ID] = &targets[i]
	}
	views := make([]MessageView, 0, len(rows))
	for _, row := range rows {
		var target *messageRow
		if row.hasBroadcast() {
			target = byID[*row.BroadcastMsgID]
		}
		views = append(views, stitch(row, target))
	}
	return views
}

func countBroadcasting(rows []messageRow) int {
	n := 0
	for _, row := range rows {
		if row.hasBroadcast() {
			n++
		}
	}
	return n
}

func countStitched(views []MessageView) int {
	n := 0
	for _, v := range views {
		if v.Broadcast != nil {
			n++
		}
	}
	return n
}
