// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/lode/internal/adapters/cas"
	_ "go.trai.ch/lode/internal/adapters/config"
	_ "go.trai.ch/lode/internal/adapters/download"
	_ "go.trai.ch/lode/internal/adapters/logger"
	_ "go.trai.ch/lode/internal/adapters/registry"
	_ "go.trai.ch/lode/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/lode/internal/app"
	_ "go.trai.ch/lode/internal/engine/installer"
	_ "go.trai.ch/lode/internal/engine/resolver"
)
