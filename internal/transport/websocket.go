package transport

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSConnection maintains one chat connection. Each connection is its
// own conversation: the session id is minted at upgrade time.
type WSConnection struct {
	conn    *websocket.Conn
	send    chan []byte
	mu      sync.Mutex
	chatID  string
	handler Handler
}

// wsInbound is the message a chat client sends over the socket.
type wsInbound struct {
	Body     string    `json:"body"`
	Location *Location `json:"location,omitempty"`
}

// ServeWS upgrades the request and starts the read/write pumps for a
// fresh conversation.
func ServeWS(handler Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("transport: failed to upgrade connection: %v", err)
			return
		}

		wsConn := &WSConnection{
			conn:    conn,
			send:    make(chan []byte, 256),
			chatID:  uuid.NewString(),
			handler: handler,
		}

		go wsConn.writePump()
		go wsConn.readPump()
	}
}

// readPump pumps messages from the socket into the bot engine.
func (c *WSConnection) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: websocket error: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump pumps replies from the engine to the socket.
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage feeds one inbound message through the engine and queues
// every reply in order.
func (c *WSConnection) handleMessage(message []byte) {
	var req wsInbound
	if err := json.Unmarshal(message, &req); err != nil {
		log.Printf("transport: error unmarshaling message: %v", err)
		return
	}

	replies := c.handler.HandleMessage(context.Background(), Inbound{
		ChatID:   c.chatID,
		Body:     req.Body,
		Location: req.Location,
	})
	for _, reply := range replies {
		c.sendReply(reply)
	}
}

func (c *WSConnection) sendReply(reply Outbound) {
	data, err := json.Marshal(reply)
	if err != nil {
		log.Printf("transport: error marshaling reply: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		log.Println("transport: websocket buffer full, dropping message")
	}
}
