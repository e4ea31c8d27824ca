package access

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/api"
)

// RequireAdmin lets a request through only when it carries a valid token
// whose identity can manage the catalog.
func RequireAdmin(auth *Authenticator, log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.Authenticate(r)
		if err != nil {
			log.Debug("rejected request", zap.String("path", r.URL.Path), zap.Error(err))
			api.Error(w, http.StatusUnauthorized, "sign in required")
			return
		}
		if !id.Can(ManageCatalog) {
			log.Info("access denied", zap.String("subject", id.Subject), zap.Strings("roles", id.Roles))
			api.Error(w, http.StatusForbidden, "access denied")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

type SessionResponse struct {
	View    View     `json:"view"`
	Subject string   `json:"subject,omitempty"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles"`
}

type SessionHandler struct {
	auth *Authenticator
}

func NewSessionHandler(auth *Authenticator) *SessionHandler {
	return &SessionHandler{auth: auth}
}

// HandleGet tells the client which screen to render. Anonymous and invalid
// sessions both get the sign-in view.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := h.auth.Authenticate(r)
	if err != nil {
		id = nil
	}

	resp := SessionResponse{View: Decide(id), Roles: []string{}}
	if id != nil {
		resp.Subject = id.Subject
		resp.Email = id.Email
		resp.Roles = id.Roles
	}
	api.JSON(w, http.StatusOK, resp)
}
