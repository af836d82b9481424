// Package installer materializes resolved dependencies: it ensures every
// payload exists in the content store exactly once and wires the symlink
// topology that makes packages importable.
package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/lode/internal/adapters/fs"
	"go.trai.ch/lode/internal/core/domain"
	"go.trai.ch/lode/internal/core/ports"
	"go.trai.ch/zerr"
)

// installParallelism bounds concurrent downloads and link operations.
const installParallelism = 8

// Installer consumes resolution results and installs them.
type Installer struct {
	store      ports.ContentStore
	downloader ports.Downloader
	layout     domain.Layout
	telemetry  ports.Telemetry
	log        ports.Logger
}

// NewInstaller creates an installer over the given store and downloader.
func NewInstaller(
	store ports.ContentStore,
	downloader ports.Downloader,
	layout domain.Layout,
	telemetry ports.Telemetry,
	log ports.Logger,
) *Installer {
	return &Installer{
		store:      store,
		downloader: downloader,
		layout:     layout,
		telemetry:  telemetry,
		log:        log,
	}
}

// Run installs every result delivered on the channel. Each distinct content
// key is fetched once; every edge gets its links. On failure Run returns
// right away and keeps draining the channel in the background so the
// producer never blocks on a full channel; the caller is expected to cancel
// the producer's context.
func (i *Installer) Run(ctx context.Context, results <-chan domain.ResolvedDependency) error {
	fetched := domain.NewVisited()
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(installParallelism)

	for res := range results {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			return i.install(egCtx, fetched, res)
		})
	}

	err := eg.Wait()
	if err != nil {
		go func() {
			for range results { //nolint:revive // drain only
			}
		}()
	}
	return err
}

func (i *Installer) install(ctx context.Context, fetched *domain.Visited, res domain.ResolvedDependency) error {
	entry := i.layout.EntryPath(res.Target.String())

	if fetched.Add(res.Target) {
		if err := i.fetch(ctx, res, entry); err != nil {
			return err
		}
	}
	return i.link(res, entry)
}

// fetch makes the payload for res present at its store entry. Payloads
// already in the store are left untouched.
func (i *Installer) fetch(ctx context.Context, res domain.ResolvedDependency, entry string) error {
	ctx, vtx := i.telemetry.Record(ctx, fmt.Sprintf("%s@%s", res.Manifest.Name, res.Manifest.Version))

	if i.store.Has(res.Target.String()) {
		vtx.Cached()
		vtx.Complete(nil)
		return nil
	}

	err := i.download(ctx, res, entry, vtx)
	vtx.Complete(err)
	return err
}

func (i *Installer) download(ctx context.Context, res domain.ResolvedDependency, entry string, vtx ports.Vertex) error {
	if res.Manifest.Dist == nil || res.Manifest.Dist.Tarball == "" {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingDist, "package payload is gone and cannot be refetched"),
			"package", res.Manifest.Name), "key", res.Target.String())
	}

	vtx.Log(fmt.Sprintf("downloading %s", res.Manifest.Dist.Tarball))
	if _, err := i.downloader.Download(ctx, res.Manifest.Dist.Tarball, res.Target.String()); err != nil {
		return err
	}

	// Archives rarely carry executable bits on their bin entries; set them
	// once at fetch time so every future consumer shares them.
	for _, rel := range res.Manifest.Executables() {
		if err := fs.MakeExecutable(filepath.Join(entry, rel)); err != nil {
			return zerr.With(err, "package", res.Manifest.Name)
		}
	}
	return nil
}

// link creates the edge's direct link and the consumer-side bin links. All
// links are relative, so a tree survives relocation.
func (i *Installer) link(res domain.ResolvedDependency, entry string) error {
	direct := i.layout.DirectLinkPath(res.ParentDir, res.Name.String())
	if err := fs.Symlink(direct, entry); err != nil {
		return zerr.With(err, "package", res.Name.String())
	}

	for exe, rel := range res.Manifest.Executables() {
		binLink := i.layout.BinLinkPath(res.ParentDir, exe)
		if err := fs.Symlink(binLink, filepath.Join(entry, rel)); err != nil {
			return zerr.With(zerr.With(err, "package", res.Name.String()), "executable", exe)
		}
	}
	return nil
}
