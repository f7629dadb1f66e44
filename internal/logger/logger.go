package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"notes-service/internal/config"
)

// New создает zerolog логгер по настройкам из конфига.
// Неизвестный уровень логирования заменяется на info
func New(cfg *config.ConfigLogger) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter создает логгер, пишущий в w
func NewWithWriter(cfg *config.ConfigLogger, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "notes-service").Logger()
}
