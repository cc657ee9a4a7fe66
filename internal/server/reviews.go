package server

import (
	"net/http"
	"strings"

	"citriq/pkg/domain"
)

type assignReviewerRequest struct {
	SubmissionID string `json:"submissionId"`
	ReviewerID   string `json:"reviewerId"`
}

type submitReviewRequest struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

func (s *Server) handleAssignReviewer(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req assignReviewerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	review, err := s.app.AssignReviewer(r.Context(), req.SubmissionID, req.ReviewerID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.audit(r, "reviews.assign", "success", "user_id", p.ID,
		"submission_id", req.SubmissionID, "reviewer_id", req.ReviewerID)
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleAssignedReviews(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	reviews, err := s.app.ListAssignedReviews(r.Context(), p)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleReceivedReviews(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	reviews, err := s.app.ListReceivedReviews(r.Context(), p)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleReviewByID(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id := strings.TrimPrefix(r.URL.Path, "/api/reviews/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var req submitReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	review, err := s.app.SubmitReview(r.Context(), p, id, req.Rating, req.Comments)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}
