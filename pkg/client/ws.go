package client

import (
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// SubscribeEvents opens the live event feed. Events arrive on the
// returned channel as the service appends them; the channel closes when
// the connection drops. Call the returned cancel function to stop the
// subscription.
func (c *Client) SubscribeEvents() (<-chan Event, func(), error) {
	url := strings.Replace(c.baseURL, "http", "ws", 1) + "/v1/events/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to event feed: %w", err)
	}

	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			ch <- ev
		}
	}()

	cancel := func() { conn.Close() }
	return ch, cancel, nil
}
