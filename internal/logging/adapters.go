// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package logging

import (
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// BadgerLogger satisfies badger.Logger. Badger is chatty at info level, so
// its info messages are demoted to debug.
type BadgerLogger struct {
	logger zerolog.Logger
}

// NewBadgerLogger returns a badger.Logger tagged with component=badger.
func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{logger: WithComponent("badger")}
}

// Errorf logs at error level.
func (l *BadgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(trimMessage(fmt.Sprintf(format, args...)))
}

// Warningf logs at warn level.
func (l *BadgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(trimMessage(fmt.Sprintf(format, args...)))
}

// Infof logs at debug level.
func (l *BadgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msg(trimMessage(fmt.Sprintf(format, args...)))
}

// Debugf logs at trace level.
func (l *BadgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msg(trimMessage(fmt.Sprintf(format, args...)))
}

func trimMessage(msg string) string {
	return strings.TrimRight(msg, "\n")
}

// WatermillLogger adapts zerolog to watermill.LoggerAdapter.
type WatermillLogger struct {
	logger zerolog.Logger
}

// NewWatermillLogger returns a watermill.LoggerAdapter tagged with
// component=watermill.
func NewWatermillLogger() *WatermillLogger {
	return &WatermillLogger{logger: WithComponent("watermill")}
}

// Error logs at error level.
func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

// Info logs at info level.
func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Debug logs at debug level.
func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Trace logs at trace level.
func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

// With returns a child adapter carrying fields on every message.
func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{logger: l.logger.With().Fields(map[string]interface{}(fields)).Logger()}
}
