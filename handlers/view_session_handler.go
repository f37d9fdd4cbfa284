package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"myScheduleAPI/middleware"
	"myScheduleAPI/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ViewSessionHandler struct {
	sessionManager *services.ViewSessionManager
}

func NewViewSessionHandler(sessionManager *services.ViewSessionManager) *ViewSessionHandler {
	return &ViewSessionHandler{
		sessionManager: sessionManager,
	}
}

// OpenSession upgrades the request to a WebSocket and binds it to a view
// session for the authenticated user. The ID token travels in the
// "token" query parameter since browsers cannot set headers here.
func (h *ViewSessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	email, _ := middleware.GetUserEmail(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Could not upgrade connection: %v", err)
		return
	}

	if _, err := h.sessionManager.StartSession(conn, userID, email); err != nil {
		log.Printf("Could not start view session for user %s: %v", userID, err)
		conn.Close()
	}
}
