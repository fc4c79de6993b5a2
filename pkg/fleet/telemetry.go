package fleet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// WatchTelemetry subscribes to the robot's /ws/telemetry stream and returns
// a channel of decoded frames. The channel is closed when ctx is canceled,
// the connection drops, or a frame fails to decode. Dialing errors are
// returned immediately; errors after that only end the stream.
func (c *Client) WatchTelemetry(ctx context.Context, robotName string) (<-chan TelemetryFrame, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/telemetry"
	if robotName != "" {
		wsURL += "?" + url.Values{"robot": {robotName}}.Encode()
	}

	header := http.Header{}
	if c.user != "" || c.password != "" {
		header.Set("Authorization", basicAuth(c.user, c.password))
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("telemetry dial failed: %w", err)
	}

	frames := make(chan TelemetryFrame, 16)

	// Closing the connection on cancellation unblocks the read loop.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	go func() {
		defer close(frames)
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					c.log.Debug("telemetry stream ended", "error", err)
				}
				return
			}
			var frame TelemetryFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				c.log.Warn("telemetry frame decode failed", "error", err)
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, nil
}

// basicAuth builds the Authorization header value for HTTP basic auth.
func basicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}
