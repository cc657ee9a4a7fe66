package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    // empty for Google sign-in accounts
	Role         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type ReviewTaskModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	DueDate     time.Time `gorm:"not null;index"`
	CreatedBy   string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ReviewTaskModel) TableName() string { return "review_tasks" }

type TaskAssignmentModel struct {
	TaskID    string    `gorm:"primaryKey"`
	StudentID string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

func (TaskAssignmentModel) TableName() string { return "task_assignments" }

type SubmissionModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	TaskID      string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	FilePath    string    `gorm:"not null"`
	Status      string    `gorm:"not null"`
	SubmittedAt time.Time `gorm:"not null;index"`
}

func (SubmissionModel) TableName() string { return "submissions" }

// PeerReviewModel carries the composite unique index that makes
// duplicate assignment a storage-level impossibility rather than a
// check-then-act race.
type PeerReviewModel struct {
	ID           string `gorm:"primaryKey"`
	SubmissionID string `gorm:"not null;uniqueIndex:idx_submission_reviewer"`
	ReviewerID   string `gorm:"not null;uniqueIndex:idx_submission_reviewer;index"`
	Rating       *int
	Comments     *string
	ReviewedAt   *time.Time
	CreatedAt    time.Time `gorm:"not null"`
}

func (PeerReviewModel) TableName() string { return "peer_reviews" }

type NotificationModel struct {
	ID        string         `gorm:"primaryKey"`
	UserID    string         `gorm:"not null;index"`
	Message   string         `gorm:"not null"`
	IsRead    bool           `gorm:"not null;default:false"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func (NotificationModel) TableName() string { return "notifications" }
