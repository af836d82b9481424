// Package app implements the application layer for lode.
package app

import (
	"context"
	"fmt"

	"go.trai.ch/lode/internal/adapters/fs"
	"go.trai.ch/lode/internal/core/ports"
	"go.trai.ch/lode/internal/engine/installer"
	"go.trai.ch/lode/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// App wires the resolution and installation engines into user-facing
// operations.
type App struct {
	resolver  *resolver.Resolver
	installer *installer.Installer
	telemetry ports.Telemetry
	log       ports.Logger
}

// New creates a new App instance.
func New(res *resolver.Resolver, inst *installer.Installer, telemetry ports.Telemetry, log ports.Logger) *App {
	return &App{
		resolver:  res,
		installer: inst,
		telemetry: telemetry,
		log:       log,
	}
}

// InstallOptions controls a single install run.
type InstallOptions struct {
	// Dir is the project directory holding the manifest. Empty means the
	// current directory.
	Dir string

	// Production skips the project's development dependencies.
	Production bool
}

// Install resolves and installs the dependency graph of the project manifest.
// Resolution and installation run as a pipeline: edges stream from the
// resolver into the installer, and the first error on either side cancels
// the other.
func (a *App) Install(ctx context.Context, opts InstallOptions) error {
	defer func() {
		if err := a.telemetry.Close(); err != nil {
			a.log.Error(err)
		}
	}()

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	root, err := fs.ReadManifest(dir)
	if err != nil {
		return zerr.Wrap(err, "failed to load project manifest")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, wait := a.resolver.ResolveAll(ctx, root, dir, opts.Production)

	installErr := a.installer.Run(ctx, results)
	if installErr != nil {
		// Stop the resolver; its remaining output has nowhere to go.
		cancel()
	}

	resolveErr := wait()

	// When the installer failed, the resolver's error is only the echo of the
	// cancel above; otherwise any resolver error (including an external
	// cancellation) must surface.
	switch {
	case installErr != nil:
		return zerr.Wrap(installErr, "installation failed")
	case resolveErr != nil:
		return zerr.Wrap(resolveErr, "dependency resolution failed")
	}

	a.log.Info(fmt.Sprintf("installed dependencies for %s", root.Name))
	return nil
}
