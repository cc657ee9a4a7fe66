package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"citriq/internal/store"
	"citriq/pkg/domain"
)

// CreateSubmissionInput carries a student's upload against a task.
type CreateSubmissionInput struct {
	TaskID      string
	Title       string
	Description string
	Filename    string
	File        io.Reader
	Size        int64
}

// CreateSubmission saves the uploaded file and records the submission
// with status pending. A submission without an attached file is rejected.
func (a *App) CreateSubmission(ctx context.Context, p domain.Principal, in CreateSubmissionInput) (domain.Submission, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.TaskID) == "" || in.File == nil {
		return domain.Submission{}, validationf("title, taskId and file are required")
	}
	id := uuid.NewString()
	filePath, err := a.files.Save(ctx, id, in.Filename, in.File, in.Size)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("save file: %w", err)
	}
	sub := domain.Submission{
		ID:          id,
		UserID:      p.ID,
		TaskID:      in.TaskID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		FilePath:    filePath,
		Status:      domain.StatusPending,
		SubmittedAt: a.now(),
	}
	if err := a.store.SaveSubmission(sub); err != nil {
		return domain.Submission{}, fmt.Errorf("save submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns submissions matching the filter, newest first,
// each joined with submitter name and task title.
func (a *App) ListSubmissions(_ context.Context, f store.SubmissionFilter) ([]domain.SubmissionDetail, error) {
	subs, err := a.store.ListSubmissions(f)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// GetSubmission retrieves one submission with its joined detail.
func (a *App) GetSubmission(_ context.Context, id string) (domain.SubmissionDetail, error) {
	sub, ok, err := a.store.GetSubmission(id)
	if err != nil {
		return domain.SubmissionDetail{}, fmt.Errorf("get submission: %w", err)
	}
	if !ok {
		return domain.SubmissionDetail{}, notFoundf("submission not found")
	}
	return sub, nil
}

// UpdateSubmissionStatus sets the status directly. Only the three known
// statuses are accepted.
func (a *App) UpdateSubmissionStatus(_ context.Context, id string, status domain.SubmissionStatus) (domain.Submission, error) {
	if !domain.ValidSubmissionStatus(status) {
		return domain.Submission{}, validationf("invalid status %q", status)
	}
	sub, ok, err := a.store.SetSubmissionStatus(id, status)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("set submission status: %w", err)
	}
	if !ok {
		return domain.Submission{}, notFoundf("submission not found")
	}
	return sub, nil
}

// OpenSubmissionFile streams the uploaded file of a submission. The
// returned name is the stored filename for the Content-Disposition header.
func (a *App) OpenSubmissionFile(ctx context.Context, id string) (io.ReadCloser, string, error) {
	sub, ok, err := a.store.GetSubmission(id)
	if err != nil {
		return nil, "", fmt.Errorf("get submission: %w", err)
	}
	if !ok {
		return nil, "", notFoundf("submission not found")
	}
	rc, err := a.files.Open(ctx, sub.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("open submission file: %w", err)
	}
	return rc, path.Base(sub.FilePath), nil
}
