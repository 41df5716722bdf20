package model

// MessageBroadcast links a new wrapper message (MainMsgID) to the existing
// message it re-shares (BroadcastingMsgID). A main message has at most one link.
type MessageBroadcast struct {
	ID                  int64    `gorm:"primaryKey;autoIncrement"`
	MainMsgID           int64    `gorm:"column:main_msg_id;not null;uniqueIndex:uk_message_broadcast_main"`
	BroadcastingMsgID   int64    `gorm:"column:broadcasting_msg_id;not null;index"`
	MainMessage         *Message `gorm:"foreignKey:MainMsgID"`
	BroadcastingMessage *Message `gorm:"foreignKey:BroadcastingMsgID"`
}

func (MessageBroadcast) TableName() string {
	return "message_broadcast"
}
