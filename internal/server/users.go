package server

import (
	"net/http"

	"citriq/pkg/domain"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.app.ListUsers(r.Context())
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		if p.Role != domain.RoleAdmin {
			s.audit(r, "users.create", "fail", "user_id", p.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		var req createUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		user, err := s.app.CreateUser(r.Context(), req.Name, req.Email, req.Password, domain.UserRole(req.Role))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		s.audit(r, "users.create", "success", "user_id", p.ID, "created_id", user.ID)
		writeJSON(w, http.StatusCreated, user)
	default:
		methodNotAllowed(w)
	}
}
