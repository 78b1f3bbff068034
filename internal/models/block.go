package models

import "time"

type Block struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlockerID uint      `json:"blockerId" gorm:"uniqueIndex:idx_blocker_blocked"`
	BlockedID uint      `json:"blockedId" gorm:"uniqueIndex:idx_blocker_blocked;index"`
	Blocked   User      `json:"-" gorm:"foreignKey:BlockedID"`
	CreatedAt time.Time `json:"createdAt"`
}

type BlockStatus struct {
	Blocked   bool `json:"blocked"`
	BlockedBy bool `json:"blockedBy"`
}
