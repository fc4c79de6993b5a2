package fleet

import "math"

// Pose is a position and heading in the robot's native coordinate frame.
// No unit conversion or validation is performed by this layer.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Array returns the pose in [x, y, theta] order, the robot API's wire shape.
func (p Pose) Array() [3]float64 {
	return [3]float64{p.X, p.Y, p.Theta}
}

// DistanceTo returns the planar distance to the other pose, ignoring heading.
func (p Pose) DistanceTo(o Pose) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// TelemetryFrame is one snapshot of robot state as published on the
// /ws/telemetry stream.
type TelemetryFrame struct {
	Robot             string  `json:"robot"`
	Pose              Pose    `json:"pose"`
	BatterySOC        float64 `json:"battery_soc"`
	State             string  `json:"state"` // idle, navigating, process
	RemainingDuration float64 `json:"remaining_duration"`
	Timestamp         int64   `json:"timestamp"` // unix milliseconds
}

// Robot states reported in telemetry frames.
const (
	StateIdle       = "idle"
	StateNavigating = "navigating"
	StateProcess    = "process"
)

// positionResponse is the body of GET /current_position.
type positionResponse struct {
	Position []float64 `json:"position"`
}

// navigateRequest is the body of POST /navigate.
type navigateRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// startProcessRequest is the body of POST /start_process.
type startProcessRequest struct {
	Process string `json:"process"`
}

// stopRequest is the body of POST /stop_nav.
type stopRequest struct {
	Bool bool `json:"bool"`
}

// durationResponse is the body of GET /nav_remaining_duration.
type durationResponse struct {
	Duration float64 `json:"duration"`
}

// socResponse is the body of GET /soc.
type socResponse struct {
	SOC float64 `json:"soc"`
}
