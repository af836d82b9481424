// Package resolver walks a project's dependency graph concurrently, turning
// declared constraints into content-addressed resolution results.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/lode/internal/adapters/fs"
	"go.trai.ch/lode/internal/core/domain"
	"go.trai.ch/lode/internal/core/ports"
	"go.trai.ch/zerr"
)

// resultBuffer decouples resolution fan-out from the consumer a little; the
// consumer is expected to keep up, this just smooths bursts.
const resultBuffer = 64

// Resolver resolves dependency requests local-first, falling back to the
// registry, and recurses into each package's own dependencies exactly once.
type Resolver struct {
	registry ports.Registry
	layout   domain.Layout
	log      ports.Logger
}

// NewResolver creates a resolver using the given registry and layout.
func NewResolver(registry ports.Registry, layout domain.Layout, log ports.Logger) *Resolver {
	return &Resolver{registry: registry, layout: layout, log: log}
}

// ResolveAll resolves the full transitive graph below the root manifest
// located at rootDir. Every resolved edge is delivered on the returned
// channel, including repeated sightings of an already-visited package under a
// new consumer; recursion into a package's own dependencies happens only on
// first sight. The channel is closed once the walk finishes; wait reports the
// first resolution error.
//
// The root expands development dependencies as well unless production is set;
// transitive packages always expand production dependencies only.
func (r *Resolver) ResolveAll(ctx context.Context, root *domain.Manifest, rootDir string, production bool) (<-chan domain.ResolvedDependency, func() error) {
	out := make(chan domain.ResolvedDependency, resultBuffer)
	visited := domain.NewVisited()
	eg, ctx := errgroup.WithContext(ctx)

	fields := domain.EntryFields
	if production {
		fields = domain.ProductionFields
	}
	for _, req := range root.Requests(fields...) {
		eg.Go(func() error {
			return r.resolve(ctx, eg, visited, rootDir, req, out)
		})
	}

	errc := make(chan error, 1)
	go func() {
		errc <- eg.Wait()
		close(out)
	}()

	return out, func() error { return <-errc }
}

// resolve handles a single edge: resolve the request relative to its
// consumer, emit the result, and fan out into the package's dependencies if
// this is its first sighting.
func (r *Resolver) resolve(
	ctx context.Context,
	eg *errgroup.Group,
	visited *domain.Visited,
	parentDir string,
	req domain.DependencyRequest,
	out chan<- domain.ResolvedDependency,
) error {
	resolved, err := r.ResolveOne(ctx, parentDir, req)
	if err != nil {
		return err
	}

	select {
	case out <- resolved:
	case <-ctx.Done():
		return ctx.Err()
	}

	if !visited.Add(resolved.Target) {
		return nil
	}

	childDir := r.layout.EntryPath(resolved.Target.String())
	for _, child := range resolved.Manifest.Requests(domain.ProductionFields...) {
		eg.Go(func() error {
			return r.resolve(ctx, eg, visited, childDir, child, out)
		})
	}
	return nil
}

// ResolveOne resolves one request relative to its consumer. An existing
// direct link inside the consumer's dependency directory wins over the
// registry; whatever it points at is reused as-is, constraint unchecked.
func (r *Resolver) ResolveOne(ctx context.Context, parentDir string, req domain.DependencyRequest) (domain.ResolvedDependency, error) {
	linkPath := r.layout.DirectLinkPath(parentDir, req.Name.String())

	target, err := fs.ReadLink(linkPath)
	switch {
	case err == nil:
		manifest, err := fs.ReadManifest(target)
		if err != nil {
			return domain.ResolvedDependency{}, zerr.With(zerr.With(err, "package", req.Name.String()), "link", linkPath)
		}
		return domain.ResolvedDependency{
			Name:      req.Name,
			ParentDir: parentDir,
			Target:    domain.NewInternedString(filepath.Base(target)),
			Manifest:  manifest,
			Local:     true,
		}, nil

	case errors.Is(err, domain.ErrNotFound):
		return r.resolveRemote(ctx, parentDir, req)

	default:
		return domain.ResolvedDependency{}, err
	}
}

func (r *Resolver) resolveRemote(ctx context.Context, parentDir string, req domain.DependencyRequest) (domain.ResolvedDependency, error) {
	name, constraint := req.Name.String(), req.Constraint.String()
	r.log.Debug(fmt.Sprintf("resolving %s@%s", name, constraint))

	manifest, err := r.registry.Match(ctx, name, constraint)
	if err != nil {
		return domain.ResolvedDependency{}, err
	}
	if manifest.Dist == nil || manifest.Dist.Shasum == "" || manifest.Dist.Tarball == "" {
		return domain.ResolvedDependency{}, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrMissingDist, "version has no distribution descriptor"),
			"package", name), "version", manifest.Version)
	}

	return domain.ResolvedDependency{
		Name:      req.Name,
		ParentDir: parentDir,
		Target:    domain.NewInternedString(manifest.Dist.Shasum),
		Manifest:  manifest,
	}, nil
}
