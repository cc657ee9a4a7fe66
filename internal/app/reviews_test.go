package app

import (
	"context"
	"errors"
	"testing"

	"citriq/pkg/domain"
)

func TestAssignReviewerFlipsStatusAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")

	if sub.Status != domain.StatusPending {
		t.Fatalf("new submission status = %q, want pending", sub.Status)
	}

	review, err := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID)
	if err != nil {
		t.Fatalf("assign reviewer: %v", err)
	}
	if review.Completed() {
		t.Fatal("fresh assignment must not be completed")
	}

	got, err := env.app.GetSubmission(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if got.Status != domain.StatusAssigned {
		t.Fatalf("status after assignment = %q, want assigned", got.Status)
	}

	msgs := env.notifier.forUser(bob.ID)
	if len(msgs) != 1 || msgs[0] != "You have been assigned a new peer review." {
		t.Fatalf("unexpected reviewer notifications: %v", msgs)
	}
}

func TestAssignReviewerDuplicatePairConflicts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")

	if _, err := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	_, err := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on duplicate pair, got %v", err)
	}

	// The duplicate wrote nothing: still exactly one assigned review,
	// exactly one notification, status still assigned.
	assigned, err := env.app.ListAssignedReviews(context.Background(), principalOf(bob))
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(assigned) != 1 {
		t.Fatalf("assigned reviews = %d, want 1", len(assigned))
	}
	if msgs := env.notifier.forUser(bob.ID); len(msgs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(msgs))
	}
	got, _ := env.app.GetSubmission(context.Background(), sub.ID)
	if got.Status != domain.StatusAssigned {
		t.Fatalf("status = %q, want assigned", got.Status)
	}
}

func TestAssignReviewerUnknownSubmission(t *testing.T) {
	env := newTestEnv(t)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	_, err := env.app.AssignReviewer(context.Background(), "missing-id", bob.ID)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAssignReviewerSelfReviewPolicy(t *testing.T) {
	// Default: a student may be assigned their own submission.
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")
	if _, err := env.app.AssignReviewer(context.Background(), sub.ID, alice.ID); err != nil {
		t.Fatalf("self-assignment with default policy: %v", err)
	}

	// With rejection enabled the same assignment is refused.
	strict := newTestEnv(t, func(cfg *Config) { cfg.RejectSelfReview = true })
	teacher2 := strict.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	carol := strict.mustRegister(t, "Carol", "carol@example.com", domain.RoleStudent)
	task2 := strict.mustCreateTask(t, teacher2, "Essay 1", carol.ID)
	sub2 := strict.mustSubmit(t, carol, task2.ID, "My Essay")
	_, err := strict.app.AssignReviewer(context.Background(), sub2.ID, carol.ID)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError with strict policy, got %v", err)
	}
}

func TestSubmitReviewRecordsAndNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")
	assignment, err := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	review, err := env.app.SubmitReview(context.Background(), principalOf(bob), assignment.ID, 8, "Good work")
	if err != nil {
		t.Fatalf("submit review: %v", err)
	}
	if !review.Completed() {
		t.Fatal("submitted review must be completed")
	}
	if review.Rating == nil || *review.Rating != 8 {
		t.Fatalf("rating = %v, want 8", review.Rating)
	}
	if review.Comments == nil || *review.Comments != "Good work" {
		t.Fatalf("comments = %v, want Good work", review.Comments)
	}
	if review.ReviewedAt == nil || !review.ReviewedAt.Equal(testClock()) {
		t.Fatalf("reviewedAt = %v", review.ReviewedAt)
	}

	msgs := env.notifier.forUser(alice.ID)
	if len(msgs) != 1 || msgs[0] != "You have received a new peer review." {
		t.Fatalf("unexpected owner notifications: %v", msgs)
	}
}

func TestSubmitReviewWrongReviewerLooksLikeMissing(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	mallory := env.mustRegister(t, "Mallory", "mallory@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")
	assignment, err := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err = env.app.SubmitReview(context.Background(), principalOf(mallory), assignment.ID, 1, "mine now")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for foreign review, got %v", err)
	}

	// The real reviewer can still complete it.
	if _, err := env.app.SubmitReview(context.Background(), principalOf(bob), assignment.ID, 7, "ok"); err != nil {
		t.Fatalf("legitimate reviewer blocked: %v", err)
	}
}

func TestSubmitReviewAutoMarkReviewed(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.AutoMarkReviewed = true })
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	carol := env.mustRegister(t, "Carol", "carol@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID, carol.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")

	first, err := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID)
	if err != nil {
		t.Fatalf("assign bob: %v", err)
	}
	second, err := env.app.AssignReviewer(context.Background(), sub.ID, carol.ID)
	if err != nil {
		t.Fatalf("assign carol: %v", err)
	}

	if _, err := env.app.SubmitReview(context.Background(), principalOf(bob), first.ID, 8, "good"); err != nil {
		t.Fatalf("bob review: %v", err)
	}
	got, _ := env.app.GetSubmission(context.Background(), sub.ID)
	if got.Status != domain.StatusAssigned {
		t.Fatalf("status with one open review = %q, want assigned", got.Status)
	}

	if _, err := env.app.SubmitReview(context.Background(), principalOf(carol), second.ID, 9, "great"); err != nil {
		t.Fatalf("carol review: %v", err)
	}
	got, _ = env.app.GetSubmission(context.Background(), sub.ID)
	if got.Status != domain.StatusReviewed {
		t.Fatalf("status after last review = %q, want reviewed", got.Status)
	}
}

func TestSubmitReviewDefaultDoesNotAdvanceStatus(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")
	assignment, _ := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID)

	if _, err := env.app.SubmitReview(context.Background(), principalOf(bob), assignment.ID, 8, "good"); err != nil {
		t.Fatalf("submit review: %v", err)
	}
	got, _ := env.app.GetSubmission(context.Background(), sub.ID)
	if got.Status != domain.StatusAssigned {
		t.Fatalf("status = %q, want assigned (no auto transition)", got.Status)
	}
}

func TestListAssignedReviewsJoinsDetail(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")
	if _, err := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	assigned, err := env.app.ListAssignedReviews(context.Background(), principalOf(bob))
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(assigned) != 1 {
		t.Fatalf("assigned = %d, want 1", len(assigned))
	}
	if assigned[0].SubmissionTitle != "My Essay" || assigned[0].StudentName != "Alice" {
		t.Fatalf("missing joined detail: %+v", assigned[0])
	}
}

func TestListReceivedReviewsOnlyCompleted(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.mustRegister(t, "Tess", "tess@example.com", domain.RoleTeacher)
	alice := env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	bob := env.mustRegister(t, "Bob", "bob@example.com", domain.RoleStudent)
	carol := env.mustRegister(t, "Carol", "carol@example.com", domain.RoleStudent)
	task := env.mustCreateTask(t, teacher, "Essay 1", alice.ID, bob.ID, carol.ID)
	sub := env.mustSubmit(t, alice, task.ID, "My Essay")

	done, _ := env.app.AssignReviewer(context.Background(), sub.ID, bob.ID)
	if _, err := env.app.AssignReviewer(context.Background(), sub.ID, carol.ID); err != nil {
		t.Fatalf("assign carol: %v", err)
	}
	if _, err := env.app.SubmitReview(context.Background(), principalOf(bob), done.ID, 8, "good"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	received, err := env.app.ListReceivedReviews(context.Background(), principalOf(alice))
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("received = %d, want 1 (pending review excluded)", len(received))
	}
	if received[0].ReviewerName != "Bob" || received[0].SubmissionTitle != "My Essay" {
		t.Fatalf("missing joined detail: %+v", received[0])
	}
}
