package fleet

import (
	"context"
	"log/slog"
)

// RobotAPI is the fleet adapter façade over one robot's control API. It
// implements the contract a fleet orchestrator polls against: every
// operation issues exactly one blocking request, absorbs all transport and
// protocol failures, and reports them only through a sentinel return value.
// No call ever panics or returns an error.
//
// The sentinel for failure is the same as the sentinel for a legitimate
// zero/false result, so orchestrators are expected to poll and treat
// non-progress as retry-worthy. Callers that need to distinguish "battery
// at 0%" from "robot unreachable" should use Client directly.
type RobotAPI struct {
	client    *Client
	log       *slog.Logger
	connected bool
}

// NewRobotAPI creates the adapter for the robot API at prefix and probes it
// once. Construction never fails: an unreachable endpoint only leaves
// Connected reporting false.
func NewRobotAPI(prefix, user, password string, opts ...Option) *RobotAPI {
	cfg := newConfig(opts...)
	api := &RobotAPI{
		client: NewClient(prefix, user, password, opts...),
		log:    cfg.Logger,
	}

	// Test connectivity
	if api.CheckConnection() {
		api.log.Info("connected to robot API server", "url", api.client.BaseURL())
		api.connected = true
	} else {
		api.log.Warn("unable to reach robot API server", "url", api.client.BaseURL())
	}
	return api
}

// Connected reports the result of the last liveness probe. It is set at
// construction and refreshed only by CheckConnection.
func (a *RobotAPI) Connected() bool {
	return a.connected
}

// Client returns the underlying typed client.
func (a *RobotAPI) Client() *Client {
	return a.client
}

// CheckConnection returns true if the robot API server answers its health
// probe, and updates the Connected flag.
func (a *RobotAPI) CheckConnection() bool {
	err := a.client.CheckConnection(context.Background())
	if err != nil {
		a.log.Warn("health probe failed", "error", err)
	}
	a.connected = err == nil
	return a.connected
}

// Position returns the robot's [x, y, theta] pose, or nil if any error is
// encountered.
func (a *RobotAPI) Position(robotName string) *Pose {
	pose, err := a.client.Position(context.Background(), robotName)
	if err != nil {
		a.log.Warn("position query failed", "robot", robotName, "error", err)
		return nil
	}
	return &pose
}

// Navigate requests the robot to move to the target pose. Returns true if
// the robot accepted the request, else false.
func (a *RobotAPI) Navigate(robotName string, pose Pose, mapName string) bool {
	if err := a.client.Navigate(context.Background(), robotName, pose, mapName); err != nil {
		a.log.Warn("navigate failed", "robot", robotName, "error", err)
		return false
	}
	return true
}

// StartProcess requests the robot to begin a process. Returns true if the
// robot accepted the request, else false.
func (a *RobotAPI) StartProcess(robotName, process, mapName string) bool {
	if err := a.client.StartProcess(context.Background(), robotName, process, mapName); err != nil {
		a.log.Warn("start process failed", "robot", robotName, "process", process, "error", err)
		return false
	}
	return true
}

// Stop commands the robot to stop. Returns true if the robot accepted the
// stop, else false.
func (a *RobotAPI) Stop(robotName string) bool {
	if err := a.client.Stop(context.Background(), robotName); err != nil {
		a.log.Warn("stop failed", "robot", robotName, "error", err)
		return false
	}
	return true
}

// NavigationRemainingDuration returns the seconds remaining for the robot
// to reach its destination, or 0.0 on any error.
func (a *RobotAPI) NavigationRemainingDuration(robotName string) float64 {
	d, err := a.client.NavigationRemainingDuration(context.Background(), robotName)
	if err != nil {
		a.log.Warn("remaining duration query failed", "robot", robotName, "error", err)
		return 0.0
	}
	return d
}

// NavigationCompleted returns true if the robot has completed its previous
// navigation request, else false.
func (a *RobotAPI) NavigationCompleted(robotName string) bool {
	done, err := a.client.NavigationCompleted(context.Background(), robotName)
	if err != nil {
		a.log.Warn("navigation status query failed", "robot", robotName, "error", err)
		return false
	}
	return done
}

// ProcessCompleted returns true if the robot has completed its previous
// process request, else false.
func (a *RobotAPI) ProcessCompleted(robotName string) bool {
	done, err := a.client.ProcessCompleted(context.Background(), robotName)
	if err != nil {
		a.log.Warn("process status query failed", "robot", robotName, "error", err)
		return false
	}
	return done
}

// BatterySOC returns the robot's state of charge as a value between 0.0 and
// 1.0, or 0.0 on any error.
func (a *RobotAPI) BatterySOC(robotName string) float64 {
	soc, err := a.client.BatterySOC(context.Background(), robotName)
	if err != nil {
		a.log.Warn("soc query failed", "robot", robotName, "error", err)
		return 0.0
	}
	return soc
}
