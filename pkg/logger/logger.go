package logx

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Level        string `default:"info"`
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
}

var DefaultConfig = Config{
	Level: "info",
}

// Init replaces the global logger and returns it. Debug overrides Level.
func Init(conf Config) zerolog.Logger {
	return InitTo(os.Stdout, conf)
}

func InitTo(w io.Writer, conf Config) zerolog.Logger {
	if conf.PrettyFormat {
		w = zerolog.ConsoleWriter{Out: w}
	}

	logger := zerolog.New(w).With().Timestamp().Logger().Level(level(conf))
	if conf.Debug {
		logger = logger.With().Caller().Stack().Logger()
	}

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}

func level(conf Config) zerolog.Level {
	if conf.Debug {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(conf.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Ctx returns the logger attached to ctx, or fallback when ctx carries none.
func Ctx(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l == zerolog.DefaultContextLogger || l.GetLevel() == zerolog.Disabled {
		return fallback
	}
	return l
}
