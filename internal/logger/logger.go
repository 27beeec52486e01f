package logger

import (
	"io"
	"os"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/constants"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New debug/development 使用 console 格式, 其餘輸出 JSON
func New(env constants.ENV, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	level := zerolog.InfoLevel
	switch env {
	case constants.Debug:
		level = zerolog.DebugLevel
	case constants.Prod:
		level = zerolog.WarnLevel
	}

	if env == constants.Debug || env == constants.Dev {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "shop").Logger()
}

// Setup 同時替換全域 logger, infra 層直接使用 zerolog/log
func Setup(env constants.ENV) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	l := New(env, os.Stdout)
	log.Logger = l
	return &l
}
