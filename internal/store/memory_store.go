package store

import (
	"sort"
	"sync"
	"time"

	"citriq/pkg/domain"
)

// MemoryStore keeps all state in-process. It mirrors the semantics of the
// Postgres store, including the (submission, reviewer) uniqueness rule,
// and exists for tests and local development.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	emails        map[string]string // email -> user ID
	tasks         map[string]domain.ReviewTask
	assignments   map[string]map[string]bool // taskID -> studentID set
	submissions   map[string]domain.Submission
	subOrder      []string
	reviews       map[string]domain.PeerReview
	reviewOrder   []string
	notifications map[string][]domain.Notification // userID -> newest last
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]domain.User),
		emails:        make(map[string]string),
		tasks:         make(map[string]domain.ReviewTask),
		assignments:   make(map[string]map[string]bool),
		submissions:   make(map[string]domain.Submission),
		reviews:       make(map[string]domain.PeerReview),
		notifications: make(map[string][]domain.Notification),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.emails[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.emails[email]
	return ok, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (m *MemoryStore) CreateTask(task domain.ReviewTask, studentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
	roster := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		roster[id] = true
	}
	m.assignments[task.ID] = roster
	return nil
}

func (m *MemoryStore) GetTask(id string) (domain.ReviewTask, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	return t, ok, nil
}

func (m *MemoryStore) DeleteTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	delete(m.assignments, id)
	// Submissions referencing the task are left dangling, matching the
	// non-cascading Postgres schema.
	return nil
}

func (m *MemoryStore) ListTasksForStudent(studentID string) ([]domain.StudentTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.StudentTask
	for taskID, roster := range m.assignments {
		if !roster[studentID] {
			continue
		}
		task, ok := m.tasks[taskID]
		if !ok {
			continue
		}
		st := domain.StudentTask{ReviewTask: task, SubmissionStatus: domain.StatusPending}
		var latest time.Time
		for _, id := range m.subOrder {
			sub := m.submissions[id]
			if sub.TaskID != taskID || sub.UserID != studentID {
				continue
			}
			st.SubmissionCount++
			if sub.SubmittedAt.After(latest) || latest.IsZero() {
				latest = sub.SubmittedAt
				st.SubmissionStatus = sub.Status
			}
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DueDate.Before(res[j].DueDate) })
	return res, nil
}

func (m *MemoryStore) ListTaskSummaries() ([]domain.TaskSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.TaskSummary, 0, len(m.tasks))
	for taskID, task := range m.tasks {
		summary := domain.TaskSummary{ReviewTask: task}
		for studentID := range m.assignments[taskID] {
			summary.AssignedStudents = append(summary.AssignedStudents, studentID)
		}
		sort.Strings(summary.AssignedStudents)
		summary.AssignedCount = len(summary.AssignedStudents)
		for _, sub := range m.submissions {
			if sub.TaskID == taskID {
				summary.SubmissionCount++
			}
		}
		res = append(res, summary)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DueDate.After(res[j].DueDate) })
	return res, nil
}

func (m *MemoryStore) SaveSubmission(s domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.submissions[s.ID]; !exists {
		m.subOrder = append(m.subOrder, s.ID)
	}
	m.submissions[s.ID] = s
	return nil
}

func (m *MemoryStore) GetSubmission(id string) (domain.SubmissionDetail, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.submissions[id]
	if !ok {
		return domain.SubmissionDetail{}, false, nil
	}
	return m.detailLocked(sub), true, nil
}

func (m *MemoryStore) ListSubmissions(f SubmissionFilter) ([]domain.SubmissionDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.SubmissionDetail
	for _, id := range m.subOrder {
		sub := m.submissions[id]
		if f.TaskID != "" && sub.TaskID != f.TaskID {
			continue
		}
		if f.UserID != "" && sub.UserID != f.UserID {
			continue
		}
		if f.Status != "" && sub.Status != f.Status {
			continue
		}
		res = append(res, m.detailLocked(sub))
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].SubmittedAt.After(res[j].SubmittedAt)
	})
	return res, nil
}

func (m *MemoryStore) detailLocked(sub domain.Submission) domain.SubmissionDetail {
	detail := domain.SubmissionDetail{Submission: sub}
	if u, ok := m.users[sub.UserID]; ok {
		detail.StudentName = u.Name
	}
	if t, ok := m.tasks[sub.TaskID]; ok {
		detail.TaskTitle = t.Title
	}
	return detail
}

func (m *MemoryStore) SetSubmissionStatus(id string, status domain.SubmissionStatus) (domain.Submission, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[id]
	if !ok {
		return domain.Submission{}, false, nil
	}
	sub.Status = status
	m.submissions[id] = sub
	return sub, true, nil
}

func (m *MemoryStore) CreateAssignment(r domain.PeerReview) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.SubmissionID == r.SubmissionID && existing.ReviewerID == r.ReviewerID {
			return false, nil
		}
	}
	m.reviews[r.ID] = r
	m.reviewOrder = append(m.reviewOrder, r.ID)
	if sub, ok := m.submissions[r.SubmissionID]; ok {
		sub.Status = domain.StatusAssigned
		m.submissions[r.SubmissionID] = sub
	}
	return true, nil
}

func (m *MemoryStore) CompleteReview(id, reviewerID string, rating int, comments string, at time.Time) (domain.PeerReview, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	review, ok := m.reviews[id]
	if !ok || review.ReviewerID != reviewerID {
		return domain.PeerReview{}, false, nil
	}
	review.Rating = &rating
	review.Comments = &comments
	review.ReviewedAt = &at
	m.reviews[id] = review
	return review, true, nil
}

func (m *MemoryStore) CountOpenReviews(submissionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.reviews {
		if r.SubmissionID == submissionID && r.Rating == nil {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) ListAssignedReviews(reviewerID string) ([]domain.AssignedReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.AssignedReview
	for _, id := range m.reviewOrder {
		r := m.reviews[id]
		if r.ReviewerID != reviewerID {
			continue
		}
		entry := domain.AssignedReview{PeerReview: r}
		if sub, ok := m.submissions[r.SubmissionID]; ok {
			entry.SubmissionTitle = sub.Title
			entry.FilePath = sub.FilePath
			if u, ok := m.users[sub.UserID]; ok {
				entry.StudentName = u.Name
			}
		}
		res = append(res, entry)
	}
	return res, nil
}

func (m *MemoryStore) ListReceivedReviews(studentID string) ([]domain.ReceivedReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.ReceivedReview
	for _, id := range m.reviewOrder {
		r := m.reviews[id]
		if r.Rating == nil {
			continue
		}
		sub, ok := m.submissions[r.SubmissionID]
		if !ok || sub.UserID != studentID {
			continue
		}
		entry := domain.ReceivedReview{PeerReview: r, SubmissionTitle: sub.Title}
		if u, ok := m.users[r.ReviewerID]; ok {
			entry.ReviewerName = u.Name
		}
		res = append(res, entry)
	}
	return res, nil
}

func (m *MemoryStore) SaveNotification(n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	return nil
}

func (m *MemoryStore) ListNotifications(userID string) ([]domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.notifications[userID]
	res := make([]domain.Notification, 0, len(stored))
	// Newest first, matching the Postgres ordering.
	for i := len(stored) - 1; i >= 0; i-- {
		res = append(res, stored[i])
	}
	return res, nil
}

func (m *MemoryStore) MarkNotificationRead(id, userID string) (domain.Notification, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.notifications[userID]
	for i, n := range stored {
		if n.ID == id {
			n.Read = true
			stored[i] = n
			return n, true, nil
		}
	}
	return domain.Notification{}, false, nil
}
