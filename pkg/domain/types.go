package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusAssigned SubmissionStatus = "assigned"
	StatusReviewed SubmissionStatus = "reviewed"
)

// ValidSubmissionStatus reports whether s is one of the known statuses.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusReviewed:
		return true
	}
	return false
}

// Principal is the authenticated identity driving authorization checks.
type Principal struct {
	ID    string   `json:"id"`
	Role  UserRole `json:"role"`
	Email string   `json:"email"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReviewTask is a reviewable assignment with a due date and a roster of
// assigned students.
type ReviewTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"dueDate"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskSummary is the teacher/admin view of a task.
type TaskSummary struct {
	ReviewTask
	AssignedStudents []string `json:"assignedStudents"`
	AssignedCount    int      `json:"assignedCount"`
	SubmissionCount  int      `json:"submissionCount"`
}

// StudentTask is a task as seen by an assigned student, annotated with the
// student's own submission state.
type StudentTask struct {
	ReviewTask
	SubmissionStatus SubmissionStatus `json:"status"`
	SubmissionCount  int              `json:"submissionCount"`
}

type Submission struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	TaskID      string           `json:"taskId"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	FilePath    string           `json:"filePath"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

// SubmissionDetail joins a submission with its submitter and task.
type SubmissionDetail struct {
	Submission
	StudentName string `json:"studentName"`
	TaskTitle   string `json:"taskTitle"`
}

// PeerReview links a reviewer to a submission. Rating, Comments and
// ReviewedAt stay null until the reviewer submits.
type PeerReview struct {
	ID           string     `json:"id"`
	SubmissionID string     `json:"submissionId"`
	ReviewerID   string     `json:"reviewerId"`
	Rating       *int       `json:"rating"`
	Comments     *string    `json:"comments"`
	ReviewedAt   *time.Time `json:"reviewedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Completed reports whether the review has been submitted.
func (r PeerReview) Completed() bool {
	return r.Rating != nil
}

// AssignedReview is a review as seen by its reviewer.
type AssignedReview struct {
	PeerReview
	SubmissionTitle string `json:"submissionTitle"`
	FilePath        string `json:"filePath"`
	StudentName     string `json:"studentName"`
}

// ReceivedReview is a completed review as seen by the submission owner.
type ReceivedReview struct {
	PeerReview
	ReviewerName    string `json:"reviewerName"`
	SubmissionTitle string `json:"submissionTitle"`
}

type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Message   string            `json:"message"`
	Read      bool              `json:"isRead"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
