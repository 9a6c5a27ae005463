// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	mu    sync.Mutex
)

// New builds a sugared logger for the given environment.
// "production" uses a JSON encoder, "test" discards everything, and any other
// value uses a human-readable console encoder.
func New(env string) *zap.SugaredLogger {
	var base *zap.Logger
	var err error

	switch env {
	case "production":
		base, err = zap.NewProduction()
	case "test":
		base = zap.NewNop()
	default:
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		base = zap.NewNop()
	}
	return base.Sugar()
}

// Init initializes the global logger for the given environment. Only the
// first call has an effect.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		sugar = New(env)
	}
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	Init("development")
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

// Named returns a child of the global logger scoped to a component.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
