// Package config provides environment-driven configuration for go-fleetapi
// commands.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds process configuration for fleetctl and robotsim.
// All fields are read from the environment; flags may override them.
type Config struct {
	// RobotURL is the base address of the robot's HTTP API.
	RobotURL string `env:"FLEET_ROBOT_URL" envDefault:"http://127.0.0.1:8000"`

	// RobotName identifies the robot within the fleet.
	RobotName string `env:"FLEET_ROBOT_NAME" envDefault:"robot_1"`

	// User and Password are the robot API credentials. Empty disables auth.
	User     string `env:"FLEET_USER"`
	Password string `env:"FLEET_PASSWORD"`

	// MapName is the default navigation map.
	MapName string `env:"FLEET_MAP" envDefault:"L1"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"FLEET_LOG_LEVEL" envDefault:"info"`

	// SimAddr is the listen address for the robot simulator.
	SimAddr string `env:"FLEET_SIM_ADDR" envDefault:":8000"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFrom overloads the environment from the given .env file, then reads
// the configuration. A missing file is not an error; the environment alone
// is used.
func LoadFrom(envfile string) (Config, error) {
	_ = godotenv.Overload(envfile)
	return Load()
}
