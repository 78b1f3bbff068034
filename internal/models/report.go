package models

import "time"

const (
	ReportPending     = "PENDING"
	ReportReviewed    = "REVIEWED"
	ReportDismissed   = "DISMISSED"
	ReportActionTaken = "ACTION_TAKEN"
)

// Report flags a post for moderator review.
type Report struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	ReporterID   uint       `json:"reporterId" gorm:"index"`
	PostID       uint       `json:"postId" gorm:"index"`
	Reason       string     `json:"reason" gorm:"size:500"`
	Status       string     `json:"status" gorm:"size:20;index"`
	ReviewedByID *uint      `json:"reviewedById"`
	ReviewedAt   *time.Time `json:"reviewedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type CreateReportRequest struct {
	PostID uint   `json:"postId" validate:"required"`
	Reason string `json:"reason" validate:"required,notblank,min=3,max=500"`
}

type ReviewReportRequest struct {
	Status string `json:"status" validate:"required,oneof=REVIEWED DISMISSED ACTION_TAKEN"`
}
