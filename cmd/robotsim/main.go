// robotsim runs the in-memory robot simulator, exposing the robot control
// API for adapter development and testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openfleet/go-fleetapi/internal/config"
	"github.com/openfleet/go-fleetapi/internal/log"
	"github.com/openfleet/go-fleetapi/pkg/fleet"
	"github.com/openfleet/go-fleetapi/pkg/sim"
)

func main() {
	cfg, err := config.LoadFrom(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.SimAddr, "Listen address")
	name := flag.String("robot", cfg.RobotName, "Robot name")
	user := flag.String("user", cfg.User, "Basic auth username (empty disables auth)")
	password := flag.String("pass", cfg.Password, "Basic auth password")
	speed := flag.Float64("speed", sim.DefaultSpeed, "Robot speed in m/s")
	soc := flag.Float64("soc", 1.0, "Initial battery state of charge")
	x := flag.Float64("x", 0, "Initial x position")
	y := flag.Float64("y", 0, "Initial y position")
	processDur := flag.Duration("process-duration", sim.DefaultProcessDuration, "How long processes take")
	flag.Parse()

	log.Init(cfg.LogLevel)

	server := sim.NewServer(sim.ServerConfig{
		Robot: sim.Config{
			Name:            *name,
			InitialPose:     fleet.Pose{X: *x, Y: *y},
			InitialSOC:      *soc,
			Speed:           *speed,
			ProcessDuration: *processDur,
		},
		User:     *user,
		Password: *password,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		log.Info("shutting down robot simulator")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	if err := server.Listen(*addr); err != nil {
		log.Error("simulator exited", "error", err)
		os.Exit(1)
	}
}
