// Command snakeserver hosts one multiplayer snake game world over a Unix
// domain socket. Grounded on server/main.c's startup sequencing (parse
// argv, build the registry/queues, spawn the accept and action threads,
// wait for shutdown) and the teacher's cmd/gameserver/main.go logging setup.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fenix/serpent/config"
	"github.com/fenix/serpent/internal/worldmanager"
)

// usage documents the positional argument contract: socket_path is the only
// required argument, everything after it is optional and resolves left to
// right against config.DefaultServerConfig()'s defaults if omitted.
const usage = `usage: snakeserver <socket_path> [single|multi] [game_time_seconds] [none|random|file:<path>]`

func main() {
	correlationID := uuid.NewString()
	logger := log.With().Str("correlation_id", correlationID).Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	seed := time.Now().UnixNano()
	mgr := worldmanager.New(cfg, seed, logger)
	mgr.OnReady(func() { fmt.Printf("ready %s\n", cfg.SocketPath) })

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		mgr.Stop()
	}()

	if err := mgr.Run(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

// parseArgs implements the positional CLI contract: only socket_path is
// mandatory; every argument after it, if present, overrides one default
// from config.DefaultServerConfig() in order.
func parseArgs(args []string) (*config.ServerConfig, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing required socket_path argument")
	}

	cfg := config.DefaultServerConfig()
	cfg.SocketPath = args[0]

	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "single":
			cfg.SinglePlayer = true
		case "multi":
			cfg.SinglePlayer = false
		default:
			return nil, fmt.Errorf("invalid mode %q: want single or multi", args[1])
		}
	}

	if len(args) > 2 {
		seconds, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("invalid game_time_seconds %q: %w", args[2], err)
		}
		cfg.GameTimeSeconds = seconds
	}

	if len(args) > 3 {
		spec := args[3]
		switch {
		case spec == "none":
			cfg.ObstaclesEnabled = false
		case spec == "random":
			cfg.ObstaclesEnabled = true
			cfg.RandomWorld = true
		case strings.HasPrefix(spec, "file:"):
			cfg.ObstaclesEnabled = true
			cfg.RandomWorld = false
			cfg.ObstaclesFilePath = strings.TrimPrefix(spec, "file:")
			if cfg.ObstaclesFilePath == "" {
				return nil, fmt.Errorf("invalid obstacles argument %q: missing path after file:", spec)
			}
		default:
			return nil, fmt.Errorf("invalid obstacles argument %q: want none, random, or file:<path>", spec)
		}
	}

	if len(args) > 4 {
		return nil, fmt.Errorf("too many arguments")
	}

	return cfg, nil
}
