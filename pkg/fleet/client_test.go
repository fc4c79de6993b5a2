package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quiet returns an option that discards client log output in tests.
func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_PositionRoundTrip(t *testing.T) {
	var gotRobot, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/current_position", r.URL.Path)
		gotRobot = r.URL.Query().Get("robot")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(map[string]any{"position": []float64{1.0, 2.0, 0.5}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", quiet())
	pose, err := c.Position(context.Background(), "robot_1")
	require.NoError(t, err)
	assert.Equal(t, Pose{X: 1.0, Y: 2.0, Theta: 0.5}, pose)
	assert.Equal(t, "robot_1", gotRobot)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_Position_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "wrong element count", body: `{"position":[1.0,2.0]}`},
		{name: "not json", body: `not json`},
		{name: "missing field", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", "", quiet())
			_, err := c.Position(context.Background(), "robot_1")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestClient_Navigate_WireFormat(t *testing.T) {
	var gotBody map[string]float64
	var gotMap string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/navigate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotMap = r.URL.Query().Get("map")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", quiet())
	err := c.Navigate(context.Background(), "robot_1", Pose{X: 3.0, Y: 4.0, Theta: 1.57}, "L2")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"x": 3.0, "y": 4.0, "theta": 1.57}, gotBody)
	assert.Equal(t, "L2", gotMap)
}

func TestClient_Stop_WireFormat(t *testing.T) {
	var gotBody map[string]bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stop_nav", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", quiet())
	require.NoError(t, c.Stop(context.Background(), "robot_1"))
	assert.Equal(t, map[string]bool{"bool": true}, gotBody)
}

func TestClient_BasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "fleet" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	authed := NewClient(srv.URL, "fleet", "secret", quiet())
	require.NoError(t, authed.CheckConnection(context.Background()))

	anon := NewClient(srv.URL, "", "", quiet())
	err := anon.CheckConnection(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
}

func TestClient_CompletionStatusConvention(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr bool
	}{
		{name: "done", status: http.StatusOK, want: true},
		{name: "in progress", status: http.StatusAccepted, want: false},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", "", quiet())
			done, err := c.NavigationCompleted(context.Background(), "robot_1")
			if tt.wantErr {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, done)

			done, err = c.ProcessCompleted(context.Background(), "robot_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, done)
		})
	}
}

func TestClient_BatterySOC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/soc", r.URL.Path)
		io.WriteString(w, `{"soc":0.75}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", quiet())
	soc, err := c.BatterySOC(context.Background(), "robot_1")
	require.NoError(t, err)
	assert.Equal(t, 0.75, soc)
}

func TestClient_NavigationRemainingDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"duration":42.5}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", quiet())
	d, err := c.NavigationRemainingDuration(context.Background(), "robot_1")
	require.NoError(t, err)
	assert.Equal(t, 42.5, d)
}

// All operations must surface a transport failure as a non-nil error, never
// a panic.
func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, "", "", quiet())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"check_connection", func() error { return c.CheckConnection(ctx) }},
		{"position", func() error { _, err := c.Position(ctx, "r"); return err }},
		{"navigate", func() error { return c.Navigate(ctx, "r", Pose{}, "L1") }},
		{"start_process", func() error { return c.StartProcess(ctx, "r", "clean", "L1") }},
		{"stop", func() error { return c.Stop(ctx, "r") }},
		{"nav_remaining", func() error { _, err := c.NavigationRemainingDuration(ctx, "r"); return err }},
		{"nav_completed", func() error { _, err := c.NavigationCompleted(ctx, "r"); return err }},
		{"process_completed", func() error { _, err := c.ProcessCompleted(ctx, "r"); return err }},
		{"battery_soc", func() error { _, err := c.BatterySOC(ctx, "r"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.call())
		})
	}
}

func TestClient_NoBaseURL(t *testing.T) {
	c := NewClient("", "", "", quiet())
	err := c.CheckConnection(context.Background())
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestClient_StartProcess_WireFormat(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/start_process", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", quiet())
	require.NoError(t, c.StartProcess(context.Background(), "robot_1", "clean_zone_a", "L1"))
	assert.Equal(t, map[string]string{"process": "clean_zone_a"}, gotBody)
}

func TestAPIError_Unwrapping(t *testing.T) {
	err := error(&APIError{StatusCode: 503, Endpoint: "/soc", Robot: "robot_1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsServerError())
	assert.Contains(t, apiErr.Error(), "/soc")
	assert.Contains(t, apiErr.Error(), "robot_1")
}
