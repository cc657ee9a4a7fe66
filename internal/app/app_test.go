package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"citriq/internal/store"
	"citriq/internal/token"
	"citriq/pkg/domain"
)

var testClock = func() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

// fakeFiles keeps uploaded files in memory.
type fakeFiles struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: make(map[string][]byte)}
}

func (f *fakeFiles) Save(_ context.Context, submissionID, filename string, r io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	path := submissionID + "/" + filename
	f.mu.Lock()
	f.files[path] = data
	f.mu.Unlock()
	return path, nil
}

func (f *fakeFiles) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	data, ok := f.files[path]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no file at %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFiles) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	delete(f.files, path)
	f.mu.Unlock()
	return nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]string // userID -> messages
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(map[string][]string)}
}

func (r *recordingNotifier) Notify(_ context.Context, userID, message string) {
	r.mu.Lock()
	r.messages[userID] = append(r.messages[userID], message)
	r.mu.Unlock()
}

func (r *recordingNotifier) forUser(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages[userID]...)
}

type testEnv struct {
	app      *App
	store    *store.MemoryStore
	files    *fakeFiles
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T, mutate ...func(*Config)) testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	files := newFakeFiles()
	notifier := newRecordingNotifier()
	tokens, err := token.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	cfg := Config{
		Store:    st,
		Files:    files,
		Notifier: notifier,
		Tokens:   tokens,
		Clock:    testClock,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return testEnv{app: a, store: st, files: files, notifier: notifier}
}

func (e testEnv) mustRegister(t *testing.T, name, email string, role domain.UserRole) domain.User {
	t.Helper()
	user, _, err := e.app.Register(context.Background(), name, email, "secret-pw", role)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func (e testEnv) mustSubmit(t *testing.T, student domain.User, taskID, title string) domain.Submission {
	t.Helper()
	sub, err := e.app.CreateSubmission(context.Background(), principalOf(student), CreateSubmissionInput{
		TaskID:   taskID,
		Title:    title,
		Filename: "essay.pdf",
		File:     strings.NewReader("file-body"),
		Size:     9,
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return sub
}

func (e testEnv) mustCreateTask(t *testing.T, teacher domain.User, title string, studentIDs ...string) domain.TaskSummary {
	t.Helper()
	task, err := e.app.CreateTask(context.Background(), principalOf(teacher), CreateTaskInput{
		Title:      title,
		DueDate:    testClock().Add(7 * 24 * time.Hour),
		StudentIDs: studentIDs,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func principalOf(u domain.User) domain.Principal {
	return domain.Principal{ID: u.ID, Role: u.Role, Email: u.Email}
}
