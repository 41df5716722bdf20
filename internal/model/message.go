package model

import "time"

type MessageGroupType int32

const (
	MessageGroupPublic MessageGroupType = 1
	MessageGroupCircle MessageGroupType = 2
)

func (t MessageGroupType) Valid() bool {
	return t == MessageGroupPublic || t == MessageGroupCircle
}

type Message struct {
	ID           int64            `gorm:"primaryKey;autoIncrement"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime;index"`
	UserID       int64            `gorm:"column:user_id;not null;index"`
	Body         string           `gorm:"column:body;type:text"`
	Likes        int32            `gorm:"column:likes;not null;default:0"`
	Image        *string          `gorm:"column:image;size:512"`
	MsgGroupType MessageGroupType `gorm:"column:msg_group_type;not null"`
	Author       *Profile         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "message"
}
