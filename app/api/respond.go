package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/mutation"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Message writes {"message": msg} with 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Fail translates a pipeline error into a response. Causes behind server
// side failures are logged and never sent to the client.
func Fail(w http.ResponseWriter, log *zap.Logger, err error) {
	status := mutation.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.Stringer("kind", mutation.KindOf(err)),
			zap.Error(err))
	}
	Error(w, status, mutation.Message(err))
}

// MethodNotAllowed answers any method a route does not serve.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
