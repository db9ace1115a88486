package handlers

import (
	"database/sql"

	"github.com/driftchat/driftchat-backend/chat"
	"github.com/driftchat/driftchat-backend/config"
	"github.com/driftchat/driftchat-backend/render"
)

// Handler bundles everything the HTTP and websocket endpoints need.
type Handler struct {
	cfg       *config.Config
	db        *sql.DB
	lifecycle *chat.Lifecycle
	registry  *chat.Registry
	renderer  *render.Renderer
}

func New(cfg *config.Config, db *sql.DB, lifecycle *chat.Lifecycle, registry *chat.Registry, renderer *render.Renderer) *Handler {
	return &Handler{cfg: cfg, db: db, lifecycle: lifecycle, registry: registry, renderer: renderer}
}
