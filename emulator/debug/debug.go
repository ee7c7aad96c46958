/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

// Package debug holds the logging and metrics shared by the engine and the
// front ends.
package debug

import (
	"flag"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logFile    string
	logVerbose bool
)

func init() {
	flag.StringVar(&logFile, "log-file", "", "Write JSON logs to a rotating file")
	flag.BoolVar(&logVerbose, "v", false, "Enable debug logging")
}

var muted atomic.Bool

// MuteLogging silences console output. File logging is not affected. The
// terminal front end mutes the console since it owns the screen.
func MuteLogging(b bool) {
	muted.Store(b)
}

type muteWriter struct {
	w io.Writer
}

func (m muteWriter) Write(p []byte) (int, error) {
	if muted.Load() {
		return len(p), nil
	}
	return m.w.Write(p)
}

type LogConfig struct {
	Level   zapcore.Level
	Console io.Writer

	// File enables a JSON log in addition to the console.
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// FlagConfig returns the log configuration selected on the command line.
func FlagConfig() LogConfig {
	cfg := LogConfig{
		Level:      zapcore.InfoLevel,
		File:       logFile,
		MaxSize:    8,
		MaxBackups: 3,
		MaxAge:     7,
	}
	if logVerbose {
		cfg.Level = zapcore.DebugLevel
	}
	return cfg
}

// NewLogger builds a logger writing human readable lines to the console and,
// when a file is configured, JSON lines to a rotated log file.
func NewLogger(cfg LogConfig) *zap.Logger {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(muteWriter{console}), cfg.Level),
	}

	if cfg.File != "" {
		rw := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rw), cfg.Level))
	}
	return zap.New(zapcore.NewTee(cores...))
}
