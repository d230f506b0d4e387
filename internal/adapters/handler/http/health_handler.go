package http

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.PingContext(ctx)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "down",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "up"})
}

type selfTestResponse struct {
	HasUser     bool   `json:"has_user"`
	UserEmail   string `json:"user_email,omitempty"`
	HasDBAccess bool   `json:"has_db_access"`
	DBError     string `json:"db_error,omitempty"`
}

// SelfTest reports whether the caller resolved to a user and whether the
// database answers.
func (h *HealthHandler) SelfTest(w http.ResponseWriter, r *http.Request) {
	var res selfTestResponse
	if user, ok := currentUser(r); ok {
		res.HasUser = true
		res.UserEmail = user.Email
	}
	if err := h.ping(r.Context()); err != nil {
		res.DBError = err.Error()
	} else {
		res.HasDBAccess = true
	}
	writeJSON(w, http.StatusOK, res)
}
