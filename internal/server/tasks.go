package server

import (
	"net/http"
	"strings"
	"time"

	"citriq/internal/app"
	"citriq/pkg/domain"
)

type createTaskRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	DueDate          string   `json:"dueDate"`
	AssignedStudents []string `json:"assignedStudents"`
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.app.ListTasks(r.Context(), p)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		if list.Student != nil {
			writeJSON(w, http.StatusOK, list.Student)
			return
		}
		writeJSON(w, http.StatusOK, list.Summary)
	case http.MethodPost:
		if p.Role == domain.RoleStudent {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		var req createTaskRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due date")
			return
		}
		task, err := s.app.CreateTask(r.Context(), p, app.CreateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     due,
			StudentIDs:  req.AssignedStudents,
		})
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		task, err := s.app.GetTask(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	case http.MethodDelete:
		if p.Role == domain.RoleStudent {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		if err := s.app.DeleteTask(r.Context(), id); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
	default:
		methodNotAllowed(w)
	}
}

// parseDueDate accepts both a full timestamp and a bare date.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
