package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Client is a typed client for a robot's HTTP control API. Every method
// takes a context, routes the robot name into the request, and returns an
// explicit error: transport failures and non-success statuses are never
// collapsed into sentinel values at this layer. Use RobotAPI for the
// sentinel-based fleet adapter contract.
type Client struct {
	baseURL  string
	user     string
	password string
	hc       *http.Client
	log      *slog.Logger
}

// NewClient creates a client for the robot API at baseURL. Credentials are
// sent as HTTP basic auth on every request; pass empty strings to disable.
func NewClient(baseURL, user, password string, opts ...Option) *Client {
	cfg := newConfig(opts...)
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
		hc:       cfg.HTTPClient,
		log:      cfg.Logger,
	}
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckConnection probes the robot API server's /health endpoint.
// The probe is server-wide and carries no robot name.
func (c *Client) CheckConnection(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return fmt.Errorf("health probe failed: %w", err)
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, "/health", "")
}

// Position returns the robot's current pose in its native coordinate frame.
func (c *Client) Position(ctx context.Context, robotName string) (Pose, error) {
	var body positionResponse
	if err := c.getJSON(ctx, "/current_position", robotName, nil, &body); err != nil {
		return Pose{}, fmt.Errorf("position request failed: %w", err)
	}
	if len(body.Position) != 3 {
		return Pose{}, fmt.Errorf("%w: position has %d elements, want 3", ErrMalformedResponse, len(body.Position))
	}
	return Pose{X: body.Position[0], Y: body.Position[1], Theta: body.Position[2]}, nil
}

// Navigate requests the robot to move to the target pose on the named map.
// A nil error means the robot accepted the request, not that it arrived;
// poll NavigationCompleted for progress.
func (c *Client) Navigate(ctx context.Context, robotName string, target Pose, mapName string) error {
	q := url.Values{"map": {mapName}}
	payload := navigateRequest{X: target.X, Y: target.Y, Theta: target.Theta}
	if err := c.postJSON(ctx, "/navigate", robotName, q, payload); err != nil {
		return fmt.Errorf("navigate request failed: %w", err)
	}
	return nil
}

// StartProcess requests the robot to begin a named process, e.g. loading a
// cart or cleaning a zone. Process semantics are robot-specific.
func (c *Client) StartProcess(ctx context.Context, robotName, process, mapName string) error {
	q := url.Values{"map": {mapName}}
	payload := startProcessRequest{Process: process}
	if err := c.postJSON(ctx, "/start_process", robotName, q, payload); err != nil {
		return fmt.Errorf("start process request failed: %w", err)
	}
	return nil
}

// Stop commands the robot to halt its current navigation.
func (c *Client) Stop(ctx context.Context, robotName string) error {
	if err := c.postJSON(ctx, "/stop_nav", robotName, nil, stopRequest{Bool: true}); err != nil {
		return fmt.Errorf("stop request failed: %w", err)
	}
	return nil
}

// NavigationRemainingDuration returns the estimated seconds until the robot
// reaches its navigation target.
func (c *Client) NavigationRemainingDuration(ctx context.Context, robotName string) (float64, error) {
	var body durationResponse
	if err := c.getJSON(ctx, "/nav_remaining_duration", robotName, nil, &body); err != nil {
		return 0, fmt.Errorf("remaining duration request failed: %w", err)
	}
	return body.Duration, nil
}

// NavigationCompleted reports whether the previous navigation request has
// finished. The robot answers 200 when done and 202 while still moving.
func (c *Client) NavigationCompleted(ctx context.Context, robotName string) (bool, error) {
	return c.pollStatus(ctx, "/nav_stat", robotName)
}

// ProcessCompleted reports whether the previous process request has
// finished. Same status convention as NavigationCompleted.
func (c *Client) ProcessCompleted(ctx context.Context, robotName string) (bool, error) {
	return c.pollStatus(ctx, "/process_stat", robotName)
}

// BatterySOC returns the robot's state of charge as a fraction in [0, 1].
func (c *Client) BatterySOC(ctx context.Context, robotName string) (float64, error) {
	var body socResponse
	if err := c.getJSON(ctx, "/soc", robotName, nil, &body); err != nil {
		return 0, fmt.Errorf("soc request failed: %w", err)
	}
	return body.SOC, nil
}

// pollStatus implements the shared completion convention: 200 means done,
// 202 means still in progress, anything else is an error.
func (c *Client) pollStatus(ctx context.Context, path, robotName string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, path, c.robotQuery(robotName, nil), nil)
	if err != nil {
		return false, fmt.Errorf("status poll failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusAccepted:
		return false, nil
	default:
		return false, &APIError{StatusCode: resp.StatusCode, Endpoint: path, Robot: robotName}
	}
}

// getJSON issues a GET and decodes a 200 response body into out.
func (c *Client) getJSON(ctx context.Context, path, robotName string, q url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, c.robotQuery(robotName, q), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, path, robotName); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// postJSON issues a POST with a JSON body and requires a success status.
func (c *Client) postJSON(ctx context.Context, path, robotName string, q url.Values, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, path, c.robotQuery(robotName, q), data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, path, robotName)
}

// do builds and issues one request. The caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (*http.Response, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	c.log.Debug("robot api request", "method", method, "url", u)
	return c.hc.Do(req)
}

// robotQuery merges the robot name into the query parameters.
func (c *Client) robotQuery(robotName string, q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if robotName != "" {
		q.Set("robot", robotName)
	}
	return q
}

// checkStatus converts a non-2xx response into an APIError.
func (c *Client) checkStatus(resp *http.Response, path, robotName string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &APIError{StatusCode: resp.StatusCode, Endpoint: path, Robot: robotName}
}
