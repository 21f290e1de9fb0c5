package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufSize    = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// local debug tool, any origin may attach
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected viewer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// ServeWS upgrades an HTTP request and attaches the viewer to the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBufSize)}
	hub.register <- c
	go c.writePump()
	go c.readPump()
}

// readPump consumes control messages from the viewer.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithError(err).Debug("viewer read error")
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump pushes queued frames to the viewer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF marker distinguishes binary snapshot frames from
			// JSON control text (stripped before sending)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON queues a JSON control message. Slow viewers drop frames
// rather than stalling the hub.
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.WithError(err).Warn("marshal error")
		return
	}
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
	}
}

// SendBinary queues a msgpack snapshot frame with the 0xFF marker.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) handleMessage(raw []byte) {
	var env struct {
		T string          `json:"t"`
		D json.RawMessage `json:"d,omitempty"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "bad envelope"}})
		return
	}

	switch env.T {
	case MsgInput:
		var in InputMsg
		if err := json.Unmarshal(env.D, &in); err != nil {
			c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "bad input"}})
			return
		}
		c.hub.source.SetInput(in.X, in.Y)
	case MsgCast:
		c.hub.source.Cast()
	default:
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "unknown message type"}})
	}
}
