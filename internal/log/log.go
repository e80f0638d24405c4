// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu         sync.RWMutex
	log        *zap.SugaredLogger
	baseLogger *zap.Logger
)

// Init initializes the package-level logger
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// GetSugaredLogger returns the sugared logger instance. Components hold on
// to this rather than calling the package functions, so the caller skip
// added in Init is removed again here.
func GetSugaredLogger() *zap.SugaredLogger {
	base, _ := current()
	return base.WithOptions(zap.AddCallerSkip(-1)).Sugar()
}

// Sync flushes any buffered log entries
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if log != nil {
		log.Sync()
	}
}

// current returns the package loggers, installing a production fallback if
// Init has not run yet
func current() (*zap.Logger, *zap.SugaredLogger) {
	mu.RLock()
	base, sugar := baseLogger, log
	mu.RUnlock()
	if base != nil {
		return base, sugar
	}

	mu.Lock()
	defer mu.Unlock()
	if baseLogger == nil {
		// Fallback logger if not initialized
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return baseLogger, log
}

func logger() *zap.SugaredLogger {
	_, sugar := current()
	return sugar
}

// Package-level convenience functions
func Infof(template string, args ...interface{}) {
	logger().Infof(template, args...)
}

func Errorf(template string, args ...interface{}) {
	logger().Errorf(template, args...)
}
