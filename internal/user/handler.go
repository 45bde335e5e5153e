package user

import (
	"context"
	"net/http"

	"github.com/lankamarket/lankamarket-api/internal/httputil"
	"github.com/lankamarket/lankamarket-api/internal/logging"
)

// Lister returns every user
type Lister interface {
	List(ctx context.Context) ([]User, error)
}

// Handler serves user endpoints
type Handler struct {
	users Lister
}

func NewHandler(users Lister) *Handler {
	return &Handler{users: users}
}

// List returns all users. Password hashes never leave the server.
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {array} User
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.users.List(r.Context())
	if err != nil {
		httputil.WriteError(w, logger, httputil.UpstreamError("failed to list users", err))
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}
