package stream

import (
	"context"

	"NFTAuctionHouse/internal/models"

	"github.com/gorilla/websocket"
)

// Client reads the event stream of a remote hub.
type Client struct {
	Endpoint string
	Conn     *websocket.Conn
}

func NewClient(endpoint string) *Client {
	return &Client{Endpoint: endpoint}
}

func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, c.Endpoint, nil)
	if err != nil {
		return err
	}
	c.Conn = conn
	return nil
}

func (c *Client) Close() {
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

func (c *Client) Read(ctx context.Context) (models.Event, error) {
	var ev models.Event
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.Conn.SetReadDeadline(deadline)
	}
	err := c.Conn.ReadJSON(&ev)
	return ev, err
}
