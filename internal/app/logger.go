package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/tracklin/internal/config"
)

var globalLogger zerolog.Logger

// InitDefaultLogger sets up a JSON logger to report failures that happen
// before the config is read.
func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "tracklin").
		Int("pid", os.Getpid()).
		Logger()
}

func MustInitApplicationLogger() {
	cfg := config.Global()

	w := io.Writer(os.Stdout)
	switch cfg.Env {
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.DateTime,
		}
		globalLogger = globalLogger.With().Caller().Logger()
	default:
		err := fmt.Errorf("unknown env: %s", cfg.Env)
		globalLogger.Error().
			Err(err).
			Msg("failed to init application logger")
		panic(err)
	}

	globalLogger = globalLogger.Output(w)
	globalLogger.Debug().
		Str("level", zerolog.GlobalLevel().String()).
		Msg("initialized application logger")
}
