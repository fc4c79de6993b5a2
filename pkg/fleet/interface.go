// Package fleet provides a client adapter for connecting a robot's HTTP
// control API to a fleet management system.
//
// Two layers are exported. Client is a typed, context-aware client with
// explicit error returns. RobotAPI wraps it in the sentinel-based contract
// fleet orchestrators poll against. The package follows the Interface
// Segregation Principle: small, focused interfaces that can be composed as
// needed, so consumers depend only on the operations they actually use.
package fleet

// ConnectionProbe reports robot API server liveness.
type ConnectionProbe interface {
	CheckConnection() bool
}

// Locator provides the robot's current pose.
type Locator interface {
	Position(robotName string) *Pose
}

// Navigator issues navigation commands.
type Navigator interface {
	Navigate(robotName string, pose Pose, mapName string) bool
	Stop(robotName string) bool
}

// NavigationMonitor tracks progress of a prior navigation request.
type NavigationMonitor interface {
	NavigationRemainingDuration(robotName string) float64
	NavigationCompleted(robotName string) bool
}

// ProcessRunner starts robot-specific processes and tracks their completion.
type ProcessRunner interface {
	StartProcess(robotName, process, mapName string) bool
	ProcessCompleted(robotName string) bool
}

// PowerMonitor reports battery state of charge.
type PowerMonitor interface {
	BatterySOC(robotName string) float64
}

// API is the composite interface for a full fleet robot adapter.
// Use this when an orchestrator needs the complete contract.
type API interface {
	ConnectionProbe
	Locator
	Navigator
	NavigationMonitor
	ProcessRunner
	PowerMonitor
}

// Ensure RobotAPI implements API
var _ API = (*RobotAPI)(nil)
