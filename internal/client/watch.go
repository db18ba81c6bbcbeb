package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// Watch subscribes to the backend change feed and calls fn for every event
// until ctx is cancelled or the connection drops. It returns nil when ctx
// ends the subscription.
func (c *Client) Watch(ctx context.Context, fn func(model.ChangeEvent)) error {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws"

	header := http.Header{}
	c.transport.setCredentials(header)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return &TransportError{Op: "GET /ws", Message: "failed to subscribe to changes", Err: err}
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-stop:
			_ = conn.Close()
		}
	}()

	c.logger.Debug("watching changes", zap.String("url", redact(u)))

	for {
		var event model.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return &TransportError{Op: "GET /ws", Message: "change feed closed", Err: fmt.Errorf("read event: %w", err)}
		}
		fn(event)
	}
}

func redact(u url.URL) string {
	u.User = nil
	return u.String()
}
