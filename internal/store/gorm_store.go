package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"citriq/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&ReviewTaskModel{},
		&TaskAssignmentModel{},
		&SubmissionModel{},
		&PeerReviewModel{},
		&NotificationModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "password_hash", "role"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all users ordered by name.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// CreateTask inserts the task row and its assignment roster atomically.
// Duplicate student IDs are skipped; any other failure rolls back the
// whole creation so no partial task exists.
func (s *GormStore) CreateTask(task domain.ReviewTask, studentIDs []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		model := taskToModel(task)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		for _, studentID := range studentIDs {
			assignment := TaskAssignmentModel{
				TaskID:    task.ID,
				StudentID: studentID,
				CreatedAt: task.CreatedAt,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment).Error; err != nil {
				return fmt.Errorf("insert assignment: %w", err)
			}
		}
		return nil
	})
}

// GetTask retrieves a task by ID.
func (s *GormStore) GetTask(id string) (domain.ReviewTask, bool, error) {
	var model ReviewTaskModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ReviewTask{}, false, nil
		}
		return domain.ReviewTask{}, false, err
	}
	return taskFromModel(model), true, nil
}

// DeleteTask removes the task row. Assignments and submissions are left
// in place; the task table does not cascade.
func (s *GormStore) DeleteTask(id string) error {
	return s.db.Delete(&ReviewTaskModel{}, "id = ?", id).Error
}

type studentTaskRow struct {
	ReviewTaskModel
	SubmissionCount  int
	SubmissionStatus string
}

// ListTasksForStudent returns assigned tasks annotated with the student's
// own submission status, due date ascending.
func (s *GormStore) ListTasksForStudent(studentID string) ([]domain.StudentTask, error) {
	var rows []studentTaskRow
	err := s.db.Raw(`
		SELECT t.*,
		       (SELECT COUNT(*) FROM submissions s WHERE s.task_id = t.id AND s.user_id = ?) AS submission_count,
		       COALESCE((SELECT s.status FROM submissions s WHERE s.task_id = t.id AND s.user_id = ? ORDER BY s.submitted_at DESC LIMIT 1), 'pending') AS submission_status
		FROM review_tasks t
		JOIN task_assignments ta ON ta.task_id = t.id
		WHERE ta.student_id = ?
		ORDER BY t.due_date ASC`,
		studentID, studentID, studentID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.StudentTask, 0, len(rows))
	for _, row := range rows {
		res = append(res, domain.StudentTask{
			ReviewTask:       taskFromModel(row.ReviewTaskModel),
			SubmissionStatus: domain.SubmissionStatus(row.SubmissionStatus),
			SubmissionCount:  row.SubmissionCount,
		})
	}
	return res, nil
}

type taskSummaryRow struct {
	ReviewTaskModel
	AssignedCount   int
	SubmissionCount int
}

// ListTaskSummaries returns all tasks with roster and submission counts,
// due date descending. The per-task roster lookup is O(tasks); task
// volume is expected to stay small.
func (s *GormStore) ListTaskSummaries() ([]domain.TaskSummary, error) {
	var rows []taskSummaryRow
	err := s.db.Raw(`
		SELECT t.*,
		       (SELECT COUNT(*) FROM task_assignments ta WHERE ta.task_id = t.id) AS assigned_count,
		       (SELECT COUNT(*) FROM submissions s WHERE s.task_id = t.id) AS submission_count
		FROM review_tasks t
		ORDER BY t.due_date DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.TaskSummary, 0, len(rows))
	for _, row := range rows {
		var studentIDs []string
		if err := s.db.Model(&TaskAssignmentModel{}).
			Where("task_id = ?", row.ID).
			Pluck("student_id", &studentIDs).Error; err != nil {
			return nil, err
		}
		res = append(res, domain.TaskSummary{
			ReviewTask:       taskFromModel(row.ReviewTaskModel),
			AssignedStudents: studentIDs,
			AssignedCount:    row.AssignedCount,
			SubmissionCount:  row.SubmissionCount,
		})
	}
	return res, nil
}

// SaveSubmission stores a submission.
func (s *GormStore) SaveSubmission(sub domain.Submission) error {
	model := submissionToModel(sub)
	return s.db.Create(&model).Error
}

type submissionDetailRow struct {
	SubmissionModel
	StudentName string
	TaskTitle   string
}

// GetSubmission retrieves a submission joined with submitter and task.
func (s *GormStore) GetSubmission(id string) (domain.SubmissionDetail, bool, error) {
	var row submissionDetailRow
	err := s.db.Table("submissions AS s").
		Select("s.*, u.name AS student_name, t.title AS task_title").
		Joins("JOIN users u ON u.id = s.user_id").
		Joins("JOIN review_tasks t ON t.id = s.task_id").
		Where("s.id = ?", id).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.SubmissionDetail{}, false, nil
		}
		return domain.SubmissionDetail{}, false, err
	}
	return submissionDetailFromRow(row), true, nil
}

// ListSubmissions returns submissions matching the filter, newest first.
func (s *GormStore) ListSubmissions(f SubmissionFilter) ([]domain.SubmissionDetail, error) {
	tx := s.db.Table("submissions AS s").
		Select("s.*, u.name AS student_name, t.title AS task_title").
		Joins("JOIN users u ON u.id = s.user_id").
		Joins("JOIN review_tasks t ON t.id = s.task_id")
	if f.TaskID != "" {
		tx = tx.Where("s.task_id = ?", f.TaskID)
	}
	if f.UserID != "" {
		tx = tx.Where("s.user_id = ?", f.UserID)
	}
	if f.Status != "" {
		tx = tx.Where("s.status = ?", string(f.Status))
	}
	var rows []submissionDetailRow
	if err := tx.Order("s.submitted_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SubmissionDetail, 0, len(rows))
	for _, row := range rows {
		res = append(res, submissionDetailFromRow(row))
	}
	return res, nil
}

// SetSubmissionStatus updates the status and returns the updated row.
func (s *GormStore) SetSubmissionStatus(id string, status domain.SubmissionStatus) (domain.Submission, bool, error) {
	res := s.db.Model(&SubmissionModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return domain.Submission{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Submission{}, false, nil
	}
	var model SubmissionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		return domain.Submission{}, false, err
	}
	return submissionFromModel(model), true, nil
}

// CreateAssignment inserts the review row and flips the submission status
// in one transaction. The composite unique index on (submission_id,
// reviewer_id) makes the insert a no-op for duplicate pairs; created is
// false in that case and nothing else is written.
func (s *GormStore) CreateAssignment(r domain.PeerReview) (bool, error) {
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		model := reviewToModel(r)
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return fmt.Errorf("insert review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		if err := tx.Model(&SubmissionModel{}).
			Where("id = ?", r.SubmissionID).
			Update("status", string(domain.StatusAssigned)).Error; err != nil {
			return fmt.Errorf("update submission status: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// CompleteReview fills in rating/comments/reviewedAt for the review owned
// by reviewerID. ok is false when no row matches (unknown id or a review
// belonging to someone else — callers cannot tell which).
func (s *GormStore) CompleteReview(id, reviewerID string, rating int, comments string, at time.Time) (domain.PeerReview, bool, error) {
	res := s.db.Model(&PeerReviewModel{}).
		Where("id = ? AND reviewer_id = ?", id, reviewerID).
		Updates(map[string]any{
			"rating":      rating,
			"comments":    comments,
			"reviewed_at": at,
		})
	if res.Error != nil {
		return domain.PeerReview{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.PeerReview{}, false, nil
	}
	var model PeerReviewModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		return domain.PeerReview{}, false, err
	}
	return reviewFromModel(model), true, nil
}

// CountOpenReviews returns the number of reviews for a submission that
// have not been completed yet.
func (s *GormStore) CountOpenReviews(submissionID string) (int, error) {
	var count int64
	if err := s.db.Model(&PeerReviewModel{}).
		Where("submission_id = ? AND rating IS NULL", submissionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

type assignedReviewRow struct {
	PeerReviewModel
	SubmissionTitle string
	FilePath        string
	StudentName     string
}

// ListAssignedReviews returns every review for the reviewer regardless of
// completion state, in storage order.
func (s *GormStore) ListAssignedReviews(reviewerID string) ([]domain.AssignedReview, error) {
	var rows []assignedReviewRow
	err := s.db.Table("peer_reviews AS pr").
		Select("pr.*, s.title AS submission_title, s.file_path, u.name AS student_name").
		Joins("JOIN submissions s ON s.id = pr.submission_id").
		Joins("JOIN users u ON u.id = s.user_id").
		Where("pr.reviewer_id = ?", reviewerID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.AssignedReview, 0, len(rows))
	for _, row := range rows {
		res = append(res, domain.AssignedReview{
			PeerReview:      reviewFromModel(row.PeerReviewModel),
			SubmissionTitle: row.SubmissionTitle,
			FilePath:        row.FilePath,
			StudentName:     row.StudentName,
		})
	}
	return res, nil
}

// ListReceivedReviews returns completed reviews for submissions owned by
// the student, in storage order.
func (s *GormStore) ListReceivedReviews(studentID string) ([]domain.ReceivedReview, error) {
	type receivedReviewRow struct {
		PeerReviewModel
		ReviewerName    string
		SubmissionTitle string
	}
	var rows []receivedReviewRow
	err := s.db.Table("peer_reviews AS pr").
		Select("pr.*, u.name AS reviewer_name, s.title AS submission_title").
		Joins("JOIN submissions s ON s.id = pr.submission_id").
		Joins("JOIN users u ON u.id = pr.reviewer_id").
		Where("s.user_id = ? AND pr.rating IS NOT NULL", studentID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.ReceivedReview, 0, len(rows))
	for _, row := range rows {
		res = append(res, domain.ReceivedReview{
			PeerReview:      reviewFromModel(row.PeerReviewModel),
			ReviewerName:    row.ReviewerName,
			SubmissionTitle: row.SubmissionTitle,
		})
	}
	return res, nil
}

// SaveNotification stores a notification.
func (s *GormStore) SaveNotification(n domain.Notification) error {
	model, err := notificationToModel(n)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// ListNotifications returns a user's notifications, newest first.
func (s *GormStore) ListNotifications(userID string) ([]domain.Notification, error) {
	var models []NotificationModel
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Notification, 0, len(models))
	for _, m := range models {
		n, err := notificationFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, nil
}

// MarkNotificationRead flags the notification as read when owned by userID.
func (s *GormStore) MarkNotificationRead(id, userID string) (domain.Notification, bool, error) {
	res := s.db.Model(&NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return domain.Notification{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Notification{}, false, nil
	}
	var model NotificationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		return domain.Notification{}, false, err
	}
	n, err := notificationFromModel(model)
	if err != nil {
		return domain.Notification{}, false, err
	}
	return n, true, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

func taskToModel(t domain.ReviewTask) ReviewTaskModel {
	return ReviewTaskModel{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

func taskFromModel(m ReviewTaskModel) domain.ReviewTask {
	return domain.ReviewTask{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     m.DueDate,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func submissionToModel(s domain.Submission) SubmissionModel {
	return SubmissionModel{
		ID:          s.ID,
		UserID:      s.UserID,
		TaskID:      s.TaskID,
		Title:       s.Title,
		Description: s.Description,
		FilePath:    s.FilePath,
		Status:      string(s.Status),
		SubmittedAt: s.SubmittedAt,
	}
}

func submissionFromModel(m SubmissionModel) domain.Submission {
	return domain.Submission{
		ID:          m.ID,
		UserID:      m.UserID,
		TaskID:      m.TaskID,
		Title:       m.Title,
		Description: m.Description,
		FilePath:    m.FilePath,
		Status:      domain.SubmissionStatus(m.Status),
		SubmittedAt: m.SubmittedAt,
	}
}

func submissionDetailFromRow(row submissionDetailRow) domain.SubmissionDetail {
	return domain.SubmissionDetail{
		Submission:  submissionFromModel(row.SubmissionModel),
		StudentName: row.StudentName,
		TaskTitle:   row.TaskTitle,
	}
}

func reviewToModel(r domain.PeerReview) PeerReviewModel {
	return PeerReviewModel{
		ID:           r.ID,
		SubmissionID: r.SubmissionID,
		ReviewerID:   r.ReviewerID,
		Rating:       r.Rating,
		Comments:     r.Comments,
		ReviewedAt:   r.ReviewedAt,
		CreatedAt:    r.CreatedAt,
	}
}

func reviewFromModel(m PeerReviewModel) domain.PeerReview {
	return domain.PeerReview{
		ID:           m.ID,
		SubmissionID: m.SubmissionID,
		ReviewerID:   m.ReviewerID,
		Rating:       m.Rating,
		Comments:     m.Comments,
		ReviewedAt:   m.ReviewedAt,
		CreatedAt:    m.CreatedAt,
	}
}

func notificationToModel(n domain.Notification) (NotificationModel, error) {
	model := NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		IsRead:    n.Read,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Metadata) > 0 {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return NotificationModel{}, fmt.Errorf("marshal notification metadata: %w", err)
		}
		model.Metadata = datatypes.JSON(raw)
	}
	return model, nil
}

func notificationFromModel(m NotificationModel) (domain.Notification, error) {
	n := domain.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Message:   m.Message,
		Read:      m.IsRead,
		CreatedAt: m.CreatedAt,
	}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &n.Metadata); err != nil {
			return domain.Notification{}, fmt.Errorf("unmarshal notification metadata: %w", err)
		}
	}
	return n, nil
}
