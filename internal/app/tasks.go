package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"citriq/pkg/domain"
)

// CreateTaskInput carries the fields for a new review task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	StudentIDs  []string
}

// CreateTask inserts a task and assigns the given students atomically.
// Duplicate student IDs collapse into a single assignment; any other
// failure rolls the whole creation back.
func (a *App) CreateTask(_ context.Context, p domain.Principal, in CreateTaskInput) (domain.TaskSummary, error) {
	if strings.TrimSpace(in.Title) == "" || in.DueDate.IsZero() {
		return domain.TaskSummary{}, validationf("title and due date are required")
	}
	task := domain.ReviewTask{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		CreatedBy:   p.ID,
		CreatedAt:   a.now(),
	}
	students := dedupe(in.StudentIDs)
	if err := a.store.CreateTask(task, students); err != nil {
		return domain.TaskSummary{}, fmt.Errorf("create task: %w", err)
	}
	return domain.TaskSummary{
		ReviewTask:       task,
		AssignedStudents: students,
		AssignedCount:    len(students),
	}, nil
}

// TaskList is the role-dependent result of ListTasks. Exactly one of the
// two slices is set.
type TaskList struct {
	Student []domain.StudentTask
	Summary []domain.TaskSummary
}

// ListTasks returns the tasks visible to the principal. Students see only
// tasks they are assigned to, annotated with their own submission status
// and ordered by due date ascending; teachers and admins see every task
// with roster and submission counts, due date descending.
func (a *App) ListTasks(_ context.Context, p domain.Principal) (TaskList, error) {
	if p.Role == domain.RoleStudent {
		tasks, err := a.store.ListTasksForStudent(p.ID)
		if err != nil {
			return TaskList{}, fmt.Errorf("list tasks for student: %w", err)
		}
		return TaskList{Student: tasks}, nil
	}
	tasks, err := a.store.ListTaskSummaries()
	if err != nil {
		return TaskList{}, fmt.Errorf("list task summaries: %w", err)
	}
	return TaskList{Summary: tasks}, nil
}

// GetTask retrieves a task by ID.
func (a *App) GetTask(_ context.Context, id string) (domain.ReviewTask, error) {
	task, ok, err := a.store.GetTask(id)
	if err != nil {
		return domain.ReviewTask{}, fmt.Errorf("get task: %w", err)
	}
	if !ok {
		return domain.ReviewTask{}, notFoundf("task not found")
	}
	return task, nil
}

// DeleteTask removes a task unconditionally. Assignments and submissions
// referencing it are left in place.
func (a *App) DeleteTask(_ context.Context, id string) error {
	if err := a.store.DeleteTask(id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
