package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Subscribe opens the change feed. The returned channel receives a value for
// every change made by another session of the same user and is closed when
// the connection ends or ctx is done.
func (c *Client) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.Token())

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(changes)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			select {
			case changes <- struct{}{}:
			default:
				// a reload is already pending
			}
		}
	}()
	return changes, nil
}
