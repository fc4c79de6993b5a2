// fleetctl drives a single robot through its fleet adapter API.
//
// Usage:
//
//	fleetctl [flags] status|position|navigate x y theta|stop|process name|soc|watch
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/openfleet/go-fleetapi/internal/config"
	"github.com/openfleet/go-fleetapi/internal/log"
	"github.com/openfleet/go-fleetapi/pkg/fleet"
)

func main() {
	cfg, err := config.LoadFrom(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	robotURL := flag.String("url", cfg.RobotURL, "Robot API base URL")
	robotName := flag.String("robot", cfg.RobotName, "Robot name")
	mapName := flag.String("map", cfg.MapName, "Navigation map name")
	user := flag.String("user", cfg.User, "API username (or set FLEET_USER)")
	password := flag.String("pass", cfg.Password, "API password (or set FLEET_PASSWORD)")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	log.Init(level)

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	client := fleet.NewClient(*robotURL, *user, *password, fleet.WithTimeout(*timeout))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, client, *robotName, *mapName, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *fleet.Client, robot, mapName string, args []string) error {
	switch args[0] {
	case "status":
		if err := client.CheckConnection(ctx); err != nil {
			return err
		}
		fmt.Println("robot API server is reachable")
		done, err := client.NavigationCompleted(ctx, robot)
		if err != nil {
			return err
		}
		fmt.Printf("navigation completed: %v\n", done)
		return nil

	case "position":
		pose, err := client.Position(ctx, robot)
		if err != nil {
			return err
		}
		fmt.Printf("x=%.3f y=%.3f theta=%.3f\n", pose.X, pose.Y, pose.Theta)
		return nil

	case "navigate":
		if len(args) != 4 {
			return fmt.Errorf("navigate requires x y theta")
		}
		pose, err := parsePose(args[1], args[2], args[3])
		if err != nil {
			return err
		}
		if err := client.Navigate(ctx, robot, pose, mapName); err != nil {
			return err
		}
		fmt.Println("navigation accepted")
		return nil

	case "stop":
		if err := client.Stop(ctx, robot); err != nil {
			return err
		}
		fmt.Println("robot stopped")
		return nil

	case "process":
		if len(args) != 2 {
			return fmt.Errorf("process requires a process name")
		}
		if err := client.StartProcess(ctx, robot, args[1], mapName); err != nil {
			return err
		}
		fmt.Println("process accepted")
		return nil

	case "soc":
		soc, err := client.BatterySOC(ctx, robot)
		if err != nil {
			return err
		}
		fmt.Printf("battery at %.0f%%\n", soc*100)
		return nil

	case "watch":
		frames, err := client.WatchTelemetry(ctx, robot)
		if err != nil {
			return err
		}
		for frame := range frames {
			fmt.Printf("[%s] %s x=%.2f y=%.2f theta=%.2f soc=%.2f remaining=%.1fs\n",
				frame.Robot, frame.State,
				frame.Pose.X, frame.Pose.Y, frame.Pose.Theta,
				frame.BatterySOC, frame.RemainingDuration)
		}
		return ctx.Err()

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func parsePose(xs, ys, ts string) (fleet.Pose, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return fleet.Pose{}, fmt.Errorf("invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return fleet.Pose{}, fmt.Errorf("invalid y %q", ys)
	}
	theta, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return fleet.Pose{}, fmt.Errorf("invalid theta %q", ts)
	}
	return fleet.Pose{X: x, Y: y, Theta: theta}, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: fleetctl [flags] <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  status               check robot API connectivity")
	fmt.Fprintln(os.Stderr, "  position             print the current pose")
	fmt.Fprintln(os.Stderr, "  navigate x y theta   send the robot to a pose")
	fmt.Fprintln(os.Stderr, "  stop                 halt the current navigation")
	fmt.Fprintln(os.Stderr, "  process name         start a robot process")
	fmt.Fprintln(os.Stderr, "  soc                  print the battery state of charge")
	fmt.Fprintln(os.Stderr, "  watch                tail the telemetry stream")
	flag.PrintDefaults()
}
