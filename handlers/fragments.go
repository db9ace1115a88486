package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/driftchat/driftchat-backend/common"
	"github.com/driftchat/driftchat-backend/models"
	"github.com/driftchat/driftchat-backend/responses"
	"github.com/driftchat/driftchat-backend/utils"
)

func claimsFrom(r *http.Request) (*models.CustomClaims, bool) {
	claims, ok := r.Context().Value(common.AuthInfoKey).(*models.CustomClaims)
	return claims, ok
}

// Conversation handles GET /api/chat/{target}. It switches the caller's open
// conversation and returns its rendered fragment. This is what a chat page
// calls when it loads.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Missing auth info."})
		return
	}
	target := mux.Vars(r)["target"]

	fragment, err := h.lifecycle.SwitchConversation(r.Context(), claims.Username, target)
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to render conversation."})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(fragment)
}

// Controls handles GET /api/controls and returns the caller's chat-target list.
func (h *Handler) Controls(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Missing auth info."})
		return
	}

	fragment, err := h.renderer.ControlsFragment(r.Context(), claims.Username)
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to render controls."})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(fragment)
}

// OnlineUsers handles GET /api/users/online and lists everyone with at
// least one live connection.
func (h *Handler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(h.registry.Users()))
}
