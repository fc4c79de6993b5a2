// Package sim provides an in-memory robot simulator implementing the robot
// control API's wire contract. It backs integration tests and local
// development of fleet adapters without hardware.
package sim

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openfleet/go-fleetapi/pkg/fleet"
)

// Defaults for the simulated robot.
const (
	DefaultSpeed           = 0.5   // meters per second
	DefaultDrainPerSecond  = 0.001 // SOC fraction lost per second of motion
	DefaultProcessDuration = 5 * time.Second
	DefaultName            = "robot_1"
)

// Config controls the simulated robot's behavior.
type Config struct {
	Name            string
	InitialPose     fleet.Pose
	InitialSOC      float64 // 0 means full charge
	Speed           float64 // meters per second, 0 means DefaultSpeed
	DrainPerSecond  float64 // 0 means DefaultDrainPerSecond
	ProcessDuration time.Duration
}

// process tracks one running robot process.
type process struct {
	id       string
	name     string
	deadline time.Time
}

// Robot is the simulated robot state. Motion is advanced lazily: every
// accessor first integrates elapsed wall time since the last call, so the
// model needs no background goroutine and stays deterministic under a fake
// clock.
type Robot struct {
	cfg Config

	mu      sync.Mutex
	now     func() time.Time
	last    time.Time
	pose    fleet.Pose
	target  *fleet.Pose
	soc     float64
	process *process
}

// NewRobot creates a simulated robot, applying defaults for zero fields.
func NewRobot(cfg Config) *Robot {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Speed <= 0 {
		cfg.Speed = DefaultSpeed
	}
	if cfg.DrainPerSecond <= 0 {
		cfg.DrainPerSecond = DefaultDrainPerSecond
	}
	if cfg.ProcessDuration <= 0 {
		cfg.ProcessDuration = DefaultProcessDuration
	}
	soc := cfg.InitialSOC
	if soc <= 0 || soc > 1 {
		soc = 1.0
	}
	r := &Robot{
		cfg:  cfg,
		now:  time.Now,
		pose: cfg.InitialPose,
		soc:  soc,
	}
	r.last = r.now()
	return r
}

// Name returns the robot's fleet name.
func (r *Robot) Name() string {
	return r.cfg.Name
}

// step integrates motion and battery drain for the wall time elapsed since
// the previous step. Callers must hold r.mu.
func (r *Robot) step() {
	now := r.now()
	dt := now.Sub(r.last).Seconds()
	r.last = now
	if r.target == nil || dt <= 0 {
		return
	}

	dist := r.pose.DistanceTo(*r.target)
	travel := r.cfg.Speed * dt
	if travel >= dist {
		r.drain(dist / r.cfg.Speed)
		r.pose = *r.target
		r.target = nil
		return
	}

	frac := travel / dist
	r.pose.X += (r.target.X - r.pose.X) * frac
	r.pose.Y += (r.target.Y - r.pose.Y) * frac
	r.pose.Theta += (r.target.Theta - r.pose.Theta) * frac
	r.drain(dt)
}

// drain reduces SOC for secs seconds of motion, clamped at empty.
func (r *Robot) drain(secs float64) {
	r.soc -= r.cfg.DrainPerSecond * secs
	if r.soc < 0 {
		r.soc = 0
	}
}

// Pose returns the robot's current pose.
func (r *Robot) Pose() fleet.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	return r.pose
}

// BatterySOC returns the state of charge in [0, 1].
func (r *Robot) BatterySOC() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	return r.soc
}

// Navigate sets a new navigation target, replacing any current one, and
// returns the task ID assigned to the request.
func (r *Robot) Navigate(target fleet.Pose) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	r.target = &target
	return uuid.NewString()
}

// Stop halts navigation immediately. The robot keeps the pose it had
// reached.
func (r *Robot) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	r.target = nil
}

// NavigationRemainingDuration returns the estimated seconds to reach the
// current target, or 0 when idle.
func (r *Robot) NavigationRemainingDuration() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	if r.target == nil {
		return 0
	}
	return r.pose.DistanceTo(*r.target) / r.cfg.Speed
}

// NavigationCompleted reports whether the robot has no navigation in
// progress. A robot that was never commanded reports true.
func (r *Robot) NavigationCompleted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	return r.target == nil
}

// StartProcess begins a named process, replacing any current one, and
// returns the task ID assigned to the request.
func (r *Robot) StartProcess(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	r.process = &process{
		id:       uuid.NewString(),
		name:     name,
		deadline: r.now().Add(r.cfg.ProcessDuration),
	}
	return r.process.id
}

// ProcessCompleted reports whether the last process has finished. A robot
// that was never given a process reports true.
func (r *Robot) ProcessCompleted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	if r.process == nil {
		return true
	}
	if r.now().Before(r.process.deadline) {
		return false
	}
	r.process = nil
	return true
}

// State returns the telemetry state string for the robot.
func (r *Robot) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
	return r.stateLocked()
}

// stateLocked computes the state. Callers must hold r.mu.
func (r *Robot) stateLocked() string {
	switch {
	case r.target != nil:
		return fleet.StateNavigating
	case r.process != nil && r.now().Before(r.process.deadline):
		return fleet.StateProcess
	default:
		return fleet.StateIdle
	}
}

// Telemetry returns one snapshot of the robot state.
func (r *Robot) Telemetry() fleet.TelemetryFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()

	remaining := 0.0
	if r.target != nil {
		remaining = r.pose.DistanceTo(*r.target) / r.cfg.Speed
	}
	return fleet.TelemetryFrame{
		Robot:             r.cfg.Name,
		Pose:              r.pose,
		BatterySOC:        r.soc,
		State:             r.stateLocked(),
		RemainingDuration: remaining,
		Timestamp:         r.now().UnixMilli(),
	}
}
