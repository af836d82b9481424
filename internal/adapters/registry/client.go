// Package registry implements the package registry collaborator: packument
// retrieval over HTTP and best-match version selection.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/Masterminds/semver/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/lode/internal/core/domain"
	"go.trai.ch/lode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Registry = (*Client)(nil)

// memoryCacheSize bounds the in-memory packument cache. One entry per package
// name; a large install touches a few thousand names at most.
const memoryCacheSize = 4096

// packument is the registry's per-package metadata document.
type packument struct {
	Name     string                      `json:"name"`
	DistTags map[string]string           `json:"dist-tags"`
	Versions map[string]*domain.Manifest `json:"versions"`
}

// Client implements ports.Registry against an npm-style registry.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	memory  *lru.Cache[string, *packument]
	meta    *metaCache
	log     ports.Logger
}

// NewClient creates a registry client from the given settings.
func NewClient(settings *domain.Settings, log ports.Logger) (*Client, error) {
	memory, err := lru.New[string, *packument](memoryCacheSize)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create packument cache")
	}

	meta, err := newMetaCache(settings.MetaCacheDir, settings.MetaCacheMaxAge)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: settings.RegistryURL,
		client:  &http.Client{Timeout: settings.HTTPTimeout},
		headers: settings.HTTPHeaders,
		memory:  memory,
		meta:    meta,
		log:     log,
	}, nil
}

// Match returns the manifest of the best published match for the constraint.
func (c *Client) Match(ctx context.Context, name, constraint string) (*domain.Manifest, error) {
	doc, err := c.packument(ctx, name)
	if err != nil {
		return nil, err
	}
	return selectVersion(doc, constraint)
}

func (c *Client) packument(ctx context.Context, name string) (*packument, error) {
	if doc, ok := c.memory.Get(name); ok {
		return doc, nil
	}
	if doc, ok := c.meta.get(name); ok {
		c.memory.Add(name, doc)
		return doc, nil
	}

	doc, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	c.memory.Add(name, doc)
	c.meta.put(name, doc)
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, name string) (*packument, error) {
	c.log.Debug(fmt.Sprintf("fetching metadata for %s", name))

	u := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to build registry request"), "package", name)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "registry request failed"), "package", name)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "package not in registry"), "package", name)
	case resp.StatusCode != http.StatusOK:
		return nil, zerr.With(zerr.With(zerr.New("unexpected registry status"), "package", name), "status", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read registry response"), "package", name)
	}

	var doc packument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode packument"), "package", name)
	}
	return &doc, nil
}

// selectVersion picks the highest published version satisfying the
// constraint. Empty constraints and dist-tag names resolve through the
// packument's dist-tags.
func selectVersion(doc *packument, constraint string) (*domain.Manifest, error) {
	if constraint == "" {
		constraint = "latest"
	}

	if version, ok := doc.DistTags[constraint]; ok {
		if m, ok := doc.Versions[version]; ok {
			return m, nil
		}
		err := zerr.Wrap(domain.ErrNoMatchingVersion, "dist-tag points at unpublished version")
		err = zerr.With(err, "package", doc.Name)
		err = zerr.With(err, "tag", constraint)
		return nil, zerr.With(err, "version", version)
	}

	rng, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "invalid version constraint"), "package", doc.Name), "constraint", constraint)
	}

	versions := make([]*semver.Version, 0, len(doc.Versions))
	for raw := range doc.Versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			// Registries carry the odd unparseable legacy version; it can
			// never match a constraint, so skip it.
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(semver.Collection(versions)))

	for _, v := range versions {
		if rng.Check(v) {
			return doc.Versions[v.Original()], nil
		}
	}

	return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrNoMatchingVersion, "constraint unsatisfied"),
		"package", doc.Name), "constraint", constraint)
}
