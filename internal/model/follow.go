package model

// Follow is a directed edge: FollowerID sees FollowingID's messages in the feed.
type Follow struct {
	ID          int64    `gorm:"primaryKey;autoIncrement"`
	FollowerID  int64    `gorm:"column:follower_id;not null;uniqueIndex:uk_follow_pair"`
	FollowingID int64    `gorm:"column:following_id;not null;uniqueIndex:uk_follow_pair;index"`
	Follower    *Profile `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following   *Profile `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string {
	return "follow"
}
