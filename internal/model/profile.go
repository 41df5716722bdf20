package model

import "time"

type Profile struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UserName    string    `gorm:"column:user_name;size:64;not null;uniqueIndex:uk_profile_user_name"`
	FullName    string    `gorm:"column:full_name;size:128;not null"`
	Description string    `gorm:"column:description;type:text"`
	Region      *string   `gorm:"column:region;size:128"`
	MainURL     *string   `gorm:"column:main_url;size:512"`
	Avatar      []byte    `gorm:"column:avatar"`
}

func (Profile) TableName() string {
	return "profile"
}
