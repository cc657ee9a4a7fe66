package store

import (
	"time"

	"citriq/pkg/domain"
)

// SubmissionFilter narrows ListSubmissions. Empty fields are ignored;
// set fields combine conjunctively.
type SubmissionFilter struct {
	TaskID string
	UserID string
	Status domain.SubmissionStatus
}

// Store defines persistence operations for users, tasks, submissions,
// peer reviews, and notifications.
type Store interface {
	// users
	SaveUser(u domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)

	// tasks
	// CreateTask inserts the task and one assignment row per student,
	// skipping duplicate student IDs, all in a single transaction.
	CreateTask(task domain.ReviewTask, studentIDs []string) error
	GetTask(id string) (domain.ReviewTask, bool, error)
	DeleteTask(id string) error
	// ListTasksForStudent returns tasks assigned to the student annotated
	// with the student's own submission status, ordered by due date ascending.
	ListTasksForStudent(studentID string) ([]domain.StudentTask, error)
	// ListTaskSummaries returns all tasks with roster and submission counts,
	// ordered by due date descending.
	ListTaskSummaries() ([]domain.TaskSummary, error)

	// submissions
	SaveSubmission(s domain.Submission) error
	GetSubmission(id string) (domain.SubmissionDetail, bool, error)
	ListSubmissions(f SubmissionFilter) ([]domain.SubmissionDetail, error)
	// SetSubmissionStatus updates the status and returns the updated row;
	// ok is false when no submission matches.
	SetSubmissionStatus(id string, status domain.SubmissionStatus) (domain.Submission, bool, error)

	// peer reviews
	// CreateAssignment inserts the review row and flips the submission to
	// assigned in one transaction. The (submission, reviewer) uniqueness
	// invariant lives here, at the storage layer: created is false when a
	// row for the pair already exists and nothing is written.
	CreateAssignment(r domain.PeerReview) (created bool, err error)
	// CompleteReview sets rating/comments/reviewedAt on the review with the
	// given id owned by reviewerID; ok is false when no such row exists.
	// Deliberately does not distinguish "wrong reviewer" from "no such id".
	CompleteReview(id, reviewerID string, rating int, comments string, at time.Time) (domain.PeerReview, bool, error)
	// CountOpenReviews returns the number of not-yet-completed reviews for
	// a submission.
	CountOpenReviews(submissionID string) (int, error)
	ListAssignedReviews(reviewerID string) ([]domain.AssignedReview, error)
	ListReceivedReviews(studentID string) ([]domain.ReceivedReview, error)

	// notifications
	SaveNotification(n domain.Notification) error
	ListNotifications(userID string) ([]domain.Notification, error)
	// MarkNotificationRead flags the notification as read when it belongs
	// to userID; ok is false otherwise.
	MarkNotificationRead(id, userID string) (domain.Notification, bool, error)
}
