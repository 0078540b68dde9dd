package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the demo's slog logger on top of charmbracelet/log. When
// file is set, output is also written to a rotating log file.
func newLogger(level, file string) (*slog.Logger, func() error, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var w io.Writer = os.Stderr
	closer := func() error { return nil }
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    16, // MB
			MaxBackups: 2,
			MaxAge:     7,
		}
		w = io.MultiWriter(os.Stderr, lj)
		closer = lj.Close
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "spritedemo",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler), closer, nil
}
