package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfleet/go-fleetapi/pkg/fleet"
)

// clock is a manually advanced time source for deterministic motion tests.
type clock struct {
	now time.Time
}

func (c *clock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestRobot(cfg Config) (*Robot, *clock) {
	clk := &clock{now: time.Unix(1000, 0)}
	r := NewRobot(cfg)
	r.now = func() time.Time { return clk.now }
	r.last = clk.now
	return r, clk
}

func TestRobot_NavigationAdvances(t *testing.T) {
	r, clk := newTestRobot(Config{Speed: 1.0})

	task := r.Navigate(fleet.Pose{X: 10, Y: 0, Theta: 1.5})
	require.NotEmpty(t, task)
	assert.False(t, r.NavigationCompleted())

	clk.advance(3 * time.Second)
	pose := r.Pose()
	assert.InDelta(t, 3.0, pose.X, 1e-9)
	assert.InDelta(t, 0.0, pose.Y, 1e-9)
	assert.InDelta(t, 7.0, r.NavigationRemainingDuration(), 1e-9)
	assert.Equal(t, fleet.StateNavigating, r.State())

	clk.advance(8 * time.Second)
	assert.True(t, r.NavigationCompleted())
	pose = r.Pose()
	assert.Equal(t, fleet.Pose{X: 10, Y: 0, Theta: 1.5}, pose)
	assert.Equal(t, 0.0, r.NavigationRemainingDuration())
	assert.Equal(t, fleet.StateIdle, r.State())
}

func TestRobot_StopHaltsMidway(t *testing.T) {
	r, clk := newTestRobot(Config{Speed: 2.0})

	r.Navigate(fleet.Pose{X: 10, Y: 0})
	clk.advance(2 * time.Second)
	r.Stop()

	assert.True(t, r.NavigationCompleted())
	pose := r.Pose()
	assert.InDelta(t, 4.0, pose.X, 1e-9)

	// Time passing after a stop must not move the robot.
	clk.advance(10 * time.Second)
	assert.InDelta(t, 4.0, r.Pose().X, 1e-9)
}

func TestRobot_BatteryDrainsWhileMoving(t *testing.T) {
	r, clk := newTestRobot(Config{Speed: 1.0, DrainPerSecond: 0.01})

	// Idle time costs nothing.
	clk.advance(time.Minute)
	assert.Equal(t, 1.0, r.BatterySOC())

	r.Navigate(fleet.Pose{X: 100, Y: 0})
	clk.advance(5 * time.Second)
	assert.InDelta(t, 0.95, r.BatterySOC(), 1e-9)

	// Drain stops at arrival, not at query time.
	clk.advance(200 * time.Second)
	assert.InDelta(t, 0.0, r.Pose().DistanceTo(fleet.Pose{X: 100}), 1e-9)
	assert.InDelta(t, 0.0, r.BatterySOC(), 1e-9) // 100s of motion at 0.01/s
}

func TestRobot_SOCNeverNegative(t *testing.T) {
	r, clk := newTestRobot(Config{Speed: 1.0, DrainPerSecond: 0.5, InitialSOC: 0.4})

	r.Navigate(fleet.Pose{X: 1000, Y: 0})
	clk.advance(time.Hour)
	assert.Equal(t, 0.0, r.BatterySOC())
}

func TestRobot_Process(t *testing.T) {
	r, clk := newTestRobot(Config{ProcessDuration: 5 * time.Second})

	// Never commanded: nothing to wait for.
	assert.True(t, r.ProcessCompleted())

	task := r.StartProcess("clean_zone_a")
	require.NotEmpty(t, task)
	assert.False(t, r.ProcessCompleted())
	assert.Equal(t, fleet.StateProcess, r.State())

	clk.advance(6 * time.Second)
	assert.True(t, r.ProcessCompleted())
	assert.Equal(t, fleet.StateIdle, r.State())
}

func TestRobot_Telemetry(t *testing.T) {
	r, clk := newTestRobot(Config{Name: "mule_7", Speed: 1.0})

	r.Navigate(fleet.Pose{X: 4, Y: 0, Theta: 0})
	clk.advance(1 * time.Second)

	frame := r.Telemetry()
	assert.Equal(t, "mule_7", frame.Robot)
	assert.Equal(t, fleet.StateNavigating, frame.State)
	assert.InDelta(t, 1.0, frame.Pose.X, 1e-9)
	assert.InDelta(t, 3.0, frame.RemainingDuration, 1e-9)
	assert.Equal(t, clk.now.UnixMilli(), frame.Timestamp)
}

func TestRobot_Defaults(t *testing.T) {
	r := NewRobot(Config{})
	assert.Equal(t, DefaultName, r.Name())
	assert.Equal(t, 1.0, r.BatterySOC())
	assert.True(t, r.NavigationCompleted())
}
