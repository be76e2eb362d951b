package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// UsersHandler lists accounts for administrators.
type UsersHandler struct {
	Auth *service.AuthService
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	users, err := h.Auth.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.UserListResponse{Users: make([]authsdk.UserListItem, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, authsdk.UserListItem{
			UserSummary: userSummary(u),
			CreatedAt:   u.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
