package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client is a subscriber connection. It hides the websocket implementation
// from the hub.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

type websocketClient struct {
	conn *websocket.Conn
}

func NewWebsocketClient(conn *websocket.Conn) Client {
	return &websocketClient{conn: conn}
}

// WriteMessage bounds each write so one stalled subscriber cannot hold up the
// hub.
func (c *websocketClient) WriteMessage(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *websocketClient) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *websocketClient) Close() error {
	return c.conn.Close()
}
