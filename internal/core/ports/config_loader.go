package ports

import "go.trai.ch/lode/internal/core/domain"

// ConfigLoader defines the interface for loading the static configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory, filling
	// defaults for anything the file does not set.
	Load(cwd string) (*domain.Settings, error)
}
