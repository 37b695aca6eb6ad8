// Package scene parses scene service flags and launches the service.
package scene

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/courtroom.space/internal/platform/cmd"
	server "github.com/louisbranch/courtroom.space/internal/services/scene/app"
)

// Config holds scene command configuration.
type Config struct {
	Port int `env:"COURTROOM_SPACE_SCENE_PORT" envDefault:"8090"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The scene HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the scene HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScene, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
