package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/driftchat/driftchat-backend/chat"
	"github.com/driftchat/driftchat-backend/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// HistorySource is the read side of the message store.
type HistorySource interface {
	Conversation(ctx context.Context, chatKey string) ([]models.StoredMessage, error)
}

// Renderer turns stored chat state into the HTML fragments pushed to clients.
type Renderer struct {
	templates *template.Template
	history   HistorySource
	directory *chat.Directory
	avatarURL string
}

func NewRenderer(history HistorySource, directory *chat.Directory, avatarURL string) (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t, history: history, directory: directory, avatarURL: avatarURL}, nil
}

type messageView struct {
	Sender string
	Body   string
	Avatar string
	SentAt string
}

type conversationView struct {
	ChatKey  string
	Messages []messageView
}

func (r *Renderer) ConversationFragment(ctx context.Context, chatKey string) ([]byte, error) {
	history, err := r.history.Conversation(ctx, chatKey)
	if err != nil {
		return nil, err
	}

	view := conversationView{ChatKey: chatKey, Messages: make([]messageView, 0, len(history))}
	for _, m := range history {
		view.Messages = append(view.Messages, messageView{
			Sender: m.Sender,
			Body:   m.Body,
			Avatar: r.avatarURL + m.Sender + ".svg",
			SentAt: time.UnixMilli(m.Timestamp).Format("15:04"),
		})
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "conversation.html", view); err != nil {
		return nil, fmt.Errorf("execute conversation template: %w", err)
	}
	return buf.Bytes(), nil
}

type controlsView struct {
	Username string
	Targets  []string
}

// ControlsFragment renders the chat-target list for one user: the broadcast
// channel first, then every other known user.
func (r *Renderer) ControlsFragment(_ context.Context, username string) ([]byte, error) {
	view := controlsView{
		Username: username,
		Targets:  append([]string{chat.BroadcastChannel}, r.directory.UsersExcept(username)...),
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "controls.html", view); err != nil {
		return nil, fmt.Errorf("execute controls template: %w", err)
	}
	return buf.Bytes(), nil
}
