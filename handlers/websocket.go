package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/driftchat/driftchat-backend/chat"
	"github.com/driftchat/driftchat-backend/responses"
	"github.com/driftchat/driftchat-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Connection is one live websocket session. Writes go through a buffered
// channel drained by writePump, so routing never blocks on a slow peer.
type Connection struct {
	ws       *websocket.Conn
	send     chan []byte
	done     chan struct{}
	id       string
	username string
}

// Send implements chat.Sender. A full buffer or a closed connection counts
// as a dead handle; the caller logs and drops.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// WsHandler upgrades /ws/{token} and runs the connection until the client
// goes away.
func (h *Handler) WsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tokenStr := vars["token"]

	claims, err := ValidateToken(tokenStr, h.cfg.JWTSecret)
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Error validating token."})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	c := &Connection{
		ws:       conn,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		username: claims.Username,
	}
	c.id = h.lifecycle.OnConnect(r.Context(), c.username, c)
	log.Printf("User %s connected on %s", c.username, c.id)

	go c.writePump()
	c.readPump(h.lifecycle)
}

func (c *Connection) readPump(lifecycle *chat.Lifecycle) {
	defer func() {
		lifecycle.OnClose(c.id, c.username)
		close(c.done)
		c.ws.Close()
		log.Printf("User %s disconnected from %s", c.username, c.id)
	}()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Error reading message from %s: %v", c.username, err)
			}
			break
		}
		lifecycle.OnReceive(context.Background(), c.id, c.username, message)
	}
}

func (c *Connection) writePump() {
	defer c.ws.Close()

	for {
		select {
		case message := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("error writing message: %v", err)
				return
			}
		case <-c.done:
			return
		}
	}
}
