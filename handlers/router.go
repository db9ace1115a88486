package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/driftchat/driftchat-backend/middleware"
)

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/api/register", h.Register).Methods("POST")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	r.HandleFunc("/api/refresh/token", h.RefreshToken).Methods("POST")
	r.HandleFunc("/ws/{token}", h.WsHandler)

	// Secured routes
	secured := r.PathPrefix("/api").Subrouter()
	secured.Use(middleware.JWTValidation(h.cfg.JWTSecret))
	secured.HandleFunc("/chat/{target}", h.Conversation).Methods("GET")
	secured.HandleFunc("/controls", h.Controls).Methods("GET")
	secured.HandleFunc("/users/online", h.OnlineUsers).Methods("GET")
	secured.HandleFunc("/logout", h.Logout).Methods("POST")

	// Cached avatars
	r.PathPrefix("/avatars/").Handler(
		http.StripPrefix("/avatars/", http.FileServer(http.Dir(h.cfg.AvatarDir))))

	return r
}
