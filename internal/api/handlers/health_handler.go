package handlers

import (
	"net/http"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/session"
)

// HealthHandler はヘルスチェック用のハンドラーです。
type HealthHandler struct {
	sessionManager *session.SessionManager
}

// NewHealthHandler は HealthHandler を作成します。
func NewHealthHandler(sm *session.SessionManager) *HealthHandler {
	return &HealthHandler{sessionManager: sm}
}

// GET /healthz
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessionManager.Len(),
	})
}
