package server

import (
	"io"
	"net/http"
	"strings"

	"citriq/internal/app"
	"citriq/internal/store"
	"citriq/internal/util"
	"citriq/pkg/domain"
)

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	switch r.Method {
	case http.MethodGet:
		filter := store.SubmissionFilter{
			TaskID: r.URL.Query().Get("taskId"),
			UserID: r.URL.Query().Get("userId"),
			Status: domain.SubmissionStatus(r.URL.Query().Get("status")),
		}
		subs, err := s.app.ListSubmissions(r.Context(), filter)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
	case http.MethodPost:
		s.handleCreateSubmission(w, r, p)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	if p.Role != domain.RoleStudent {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid or oversized upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if !s.isExtensionAllowed(header.Filename) {
		writeError(w, http.StatusBadRequest, "file type not allowed")
		return
	}
	sub, err := s.app.CreateSubmission(r.Context(), p, app.CreateSubmissionInput{
		TaskID:      r.FormValue("taskId"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Filename:    header.Filename,
		File:        file,
		Size:        header.Size,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.audit(r, "submissions.create", "success", "user_id", p.ID, "submission_id", sub.ID)
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleSubmissionByID(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/submissions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch {
	case action == "" && r.Method == http.MethodGet:
		sub, err := s.app.GetSubmission(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	case action == "status" && r.Method == http.MethodPut:
		var req struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		sub, err := s.app.UpdateSubmissionStatus(r.Context(), id, domain.SubmissionStatus(req.Status))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	case action == "download" && r.Method == http.MethodGet:
		rc, name, err := s.app.OpenSubmissionFile(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		if _, err := io.Copy(w, rc); err != nil {
			util.LoggerFromContext(r.Context()).Error("stream submission file",
				"submission_id", id, "err", err)
		}
	default:
		methodNotAllowed(w)
	}
}
