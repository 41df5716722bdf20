package model

type MessageResponse struct {
	ID                int64    `gorm:"primaryKey;autoIncrement"`
	OriginalMsgID     int64    `gorm:"column:original_msg_id;not null;index"`
	RespondingMsgID   int64    `gorm:"column:responding_msg_id;not null;uniqueIndex:uk_message_response_responding"`
	OriginalMessage   *Message `gorm:"foreignKey:OriginalMsgID"`
	RespondingMessage *Message `gorm:"foreignKey:RespondingMsgID"`
}

func (MessageResponse) TableName() string {
	return "message_response"
}

// All lists every table model in dependency order for migration.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&Follow{},
		&Message{},
		&MessageBroadcast{},
		&MessageResponse{},
	}
}
