package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"citriq/pkg/domain"
)

// AssignReviewer links a reviewer to a submission. The pair is unique:
// assigning the same reviewer twice yields a ConflictError and writes
// nothing. On success the submission moves to assigned (in the same
// storage transaction as the review insert) and the reviewer is notified.
func (a *App) AssignReviewer(ctx context.Context, submissionID, reviewerID string) (domain.PeerReview, error) {
	if strings.TrimSpace(submissionID) == "" || strings.TrimSpace(reviewerID) == "" {
		return domain.PeerReview{}, validationf("submissionId and reviewerId are required")
	}
	sub, ok, err := a.store.GetSubmission(submissionID)
	if err != nil {
		return domain.PeerReview{}, fmt.Errorf("get submission: %w", err)
	}
	if !ok {
		return domain.PeerReview{}, notFoundf("submission not found")
	}
	if a.rejectSelfReview && sub.UserID == reviewerID {
		return domain.PeerReview{}, validationf("a student cannot review their own submission")
	}
	review := domain.PeerReview{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		CreatedAt:    a.now(),
	}
	created, err := a.store.CreateAssignment(review)
	if err != nil {
		return domain.PeerReview{}, fmt.Errorf("create assignment: %w", err)
	}
	if !created {
		return domain.PeerReview{}, conflictf("reviewer already assigned to this submission")
	}
	a.notifier.Notify(ctx, reviewerID, "You have been assigned a new peer review.")
	return review, nil
}

// SubmitReview records the reviewer's rating and comments. The review
// must exist and belong to the caller; a wrong reviewer gets the same
// NotFoundError as an unknown id, so assignment existence is not leaked.
// The rating is stored as given; range enforcement is left to clients.
func (a *App) SubmitReview(ctx context.Context, p domain.Principal, reviewID string, rating int, comments string) (domain.PeerReview, error) {
	review, ok, err := a.store.CompleteReview(reviewID, p.ID, rating, comments, a.now())
	if err != nil {
		return domain.PeerReview{}, fmt.Errorf("complete review: %w", err)
	}
	if !ok {
		return domain.PeerReview{}, notFoundf("review assignment not found")
	}
	sub, found, err := a.store.GetSubmission(review.SubmissionID)
	if err != nil {
		slog.Error("lookup submission owner after review", "submission_id", review.SubmissionID, "err", err)
	} else if found {
		a.notifier.Notify(ctx, sub.UserID, "You have received a new peer review.")
	}
	if a.autoMarkReviewed {
		a.maybeMarkReviewed(review.SubmissionID)
	}
	return review, nil
}

// maybeMarkReviewed advances the submission to reviewed once no open
// reviews remain. Failures here never fail the review submission.
func (a *App) maybeMarkReviewed(submissionID string) {
	open, err := a.store.CountOpenReviews(submissionID)
	if err != nil {
		slog.Error("count open reviews", "submission_id", submissionID, "err", err)
		return
	}
	if open > 0 {
		return
	}
	if _, _, err := a.store.SetSubmissionStatus(submissionID, domain.StatusReviewed); err != nil {
		slog.Error("mark submission reviewed", "submission_id", submissionID, "err", err)
	}
}

// ListAssignedReviews returns every review assigned to the caller,
// completed or not, joined with submission and submitter detail.
// Results come back in storage order.
func (a *App) ListAssignedReviews(_ context.Context, p domain.Principal) ([]domain.AssignedReview, error) {
	reviews, err := a.store.ListAssignedReviews(p.ID)
	if err != nil {
		return nil, fmt.Errorf("list assigned reviews: %w", err)
	}
	return reviews, nil
}

// ListReceivedReviews returns completed reviews for the caller's
// submissions, joined with reviewer name. Results come back in storage
// order.
func (a *App) ListReceivedReviews(_ context.Context, p domain.Principal) ([]domain.ReceivedReview, error) {
	reviews, err := a.store.ListReceivedReviews(p.ID)
	if err != nil {
		return nil, fmt.Errorf("list received reviews: %w", err)
	}
	return reviews, nil
}
