package sim

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/websocket/v2"

	"github.com/openfleet/go-fleetapi/internal/log"
	"github.com/openfleet/go-fleetapi/pkg/fleet"
	"github.com/openfleet/go-fleetapi/pkg/hub"
)

// DefaultTelemetryInterval is the cadence of /ws/telemetry broadcasts.
const DefaultTelemetryInterval = 500 * time.Millisecond

// ServerConfig configures the simulator server.
type ServerConfig struct {
	Robot Config

	// User and Password enable HTTP basic auth on every route when set.
	User     string
	Password string

	// TelemetryInterval overrides the broadcast cadence.
	TelemetryInterval time.Duration
}

// Server exposes a simulated robot over the robot control API's wire
// contract, plus a /ws/telemetry broadcast stream.
type Server struct {
	robot    *Robot
	app      *fiber.App
	hub      *hub.Hub
	interval time.Duration
	cancel   context.CancelFunc
}

// NewServer creates the simulator server.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		robot:    NewRobot(cfg.Robot),
		hub:      hub.New("telemetry"),
		interval: cfg.TelemetryInterval,
	}
	if s.interval <= 0 {
		s.interval = DefaultTelemetryInterval
	}

	app := fiber.New(fiber.Config{
		AppName:               "robotsim",
		DisableStartupMessage: true,
	})

	if cfg.User != "" {
		app.Use(basicauth.New(basicauth.Config{
			Users: map[string]string{cfg.User: cfg.Password},
		}))
	}

	app.Get("/health", s.handleHealth)

	// Robot-scoped routes reject requests addressed to another robot.
	app.Get("/current_position", s.checkRobot, s.handlePosition)
	app.Post("/navigate", s.checkRobot, s.handleNavigate)
	app.Post("/start_process", s.checkRobot, s.handleStartProcess)
	app.Post("/stop_nav", s.checkRobot, s.handleStop)
	app.Get("/nav_remaining_duration", s.checkRobot, s.handleNavRemaining)
	app.Get("/nav_stat", s.checkRobot, s.handleNavStat)
	app.Get("/process_stat", s.checkRobot, s.handleProcessStat)
	app.Get("/soc", s.checkRobot, s.handleSOC)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(s.handleTelemetryWS))

	s.app = app
	return s
}

// Robot returns the simulated robot behind the server.
func (s *Server) Robot() *Robot {
	return s.robot
}

// App returns the fiber application, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr and blocks. The telemetry broadcaster runs until
// Shutdown.
func (s *Server) Listen(addr string) error {
	s.start()
	log.Info("robot simulator listening", "addr", addr, "robot", s.robot.Name())
	return s.app.Listen(addr)
}

// Serve serves on an existing listener and blocks. Used by tests to bind
// an ephemeral port.
func (s *Server) Serve(ln net.Listener) error {
	s.start()
	return s.app.Listener(ln)
}

// start launches the hub and the telemetry broadcast loop.
func (s *Server) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.Run(ctx)
	go s.broadcastLoop(ctx)
}

// Shutdown stops the telemetry loop and the HTTP server.
func (s *Server) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.app.Shutdown()
}

// broadcastLoop publishes telemetry frames at the configured cadence.
func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.hub.BroadcastJSON(s.robot.Telemetry()); err != nil {
				log.Error("telemetry encode failed", "error", err)
			}
		}
	}
}

// checkRobot rejects requests that name a robot this simulator does not
// serve. An absent robot parameter is accepted for compatibility with
// adapters that do not route identity.
func (s *Server) checkRobot(c *fiber.Ctx) error {
	if robot := c.Query("robot"); robot != "" && robot != s.robot.Name() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("unknown robot %q", robot),
		})
	}
	return c.Next()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handlePosition(c *fiber.Ctx) error {
	p := s.robot.Pose()
	return c.JSON(fiber.Map{"position": []float64{p.X, p.Y, p.Theta}})
}

func (s *Server) handleNavigate(c *fiber.Ctx) error {
	var req struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Theta float64 `json:"theta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid navigate payload"})
	}
	task := s.robot.Navigate(fleet.Pose{X: req.X, Y: req.Y, Theta: req.Theta})
	log.Info("navigation accepted", "robot", s.robot.Name(), "task", task,
		"x", req.X, "y", req.Y, "theta", req.Theta)
	return c.JSON(fiber.Map{"task_id": task})
}

func (s *Server) handleStartProcess(c *fiber.Ctx) error {
	var req struct {
		Process string `json:"process"`
	}
	if err := c.BodyParser(&req); err != nil || req.Process == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid process payload"})
	}
	task := s.robot.StartProcess(req.Process)
	log.Info("process accepted", "robot", s.robot.Name(), "task", task, "process", req.Process)
	return c.JSON(fiber.Map{"task_id": task})
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	s.robot.Stop()
	log.Info("navigation stopped", "robot", s.robot.Name())
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleNavRemaining(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"duration": s.robot.NavigationRemainingDuration()})
}

// handleNavStat answers 200 when the last navigation has finished and 202
// while it is still in progress.
func (s *Server) handleNavStat(c *fiber.Ctx) error {
	if s.robot.NavigationCompleted() {
		return c.JSON(fiber.Map{"completed": true})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"completed": false})
}

// handleProcessStat uses the same status convention as handleNavStat.
func (s *Server) handleProcessStat(c *fiber.Ctx) error {
	if s.robot.ProcessCompleted() {
		return c.JSON(fiber.Map{"completed": true})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"completed": false})
}

func (s *Server) handleSOC(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"soc": s.robot.BatterySOC()})
}

func (s *Server) handleTelemetryWS(c *websocket.Conn) {
	hub.NewSubscriber(s.hub, c).Run()
}
