package registry

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lode/internal/adapters/logger"
	"go.trai.ch/lode/internal/core/domain"
)

const leftPadPackument = `{
	"name": "left-pad",
	"dist-tags": {"latest": "1.2.0", "next": "2.0.0-rc.1"},
	"versions": {
		"1.0.0": {"name": "left-pad", "version": "1.0.0", "dist": {"tarball": "https://example.test/left-pad-1.0.0.tgz", "shasum": "aaa"}},
		"1.2.0": {"name": "left-pad", "version": "1.2.0", "dist": {"tarball": "https://example.test/left-pad-1.2.0.tgz", "shasum": "bbb"}},
		"2.0.0-rc.1": {"name": "left-pad", "version": "2.0.0-rc.1", "dist": {"tarball": "https://example.test/left-pad-2.0.0-rc.1.tgz", "shasum": "ccc"}},
		"not-a-version": {"name": "left-pad", "version": "not-a-version"}
	}
}`

func newTestClient(t *testing.T, handler http.Handler, maxAge time.Duration) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&domain.Settings{
		MetaCacheDir:    t.TempDir(),
		RegistryURL:     server.URL,
		MetaCacheMaxAge: maxAge,
		HTTPTimeout:     5 * time.Second,
	}, logger.NewNop())
	require.NoError(t, err)
	return client
}

func TestClient_Match(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/left-pad" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, leftPadPackument)
	})

	t.Run("picks the highest satisfying version", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, handler, time.Minute)

		manifest, err := client.Match(t.Context(), "left-pad", "^1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", manifest.Version)
		assert.Equal(t, "bbb", manifest.Dist.Shasum)
	})

	t.Run("empty constraint resolves the latest tag", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, handler, time.Minute)

		manifest, err := client.Match(t.Context(), "left-pad", "")
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", manifest.Version)
	})

	t.Run("dist-tag constraints resolve directly", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, handler, time.Minute)

		manifest, err := client.Match(t.Context(), "left-pad", "next")
		require.NoError(t, err)
		assert.Equal(t, "2.0.0-rc.1", manifest.Version)
	})

	t.Run("unknown package maps to not found", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, handler, time.Minute)

		_, err := client.Match(t.Context(), "no-such-package", "^1.0.0")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unsatisfiable constraint is reported", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, handler, time.Minute)

		_, err := client.Match(t.Context(), "left-pad", "^9.0.0")
		require.ErrorIs(t, err, domain.ErrNoMatchingVersion)
	})

	t.Run("invalid constraint is rejected", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, handler, time.Minute)

		_, err := client.Match(t.Context(), "left-pad", "not a range")
		require.Error(t, err)
	})
}

func TestClient_Caching(t *testing.T) {
	t.Parallel()

	t.Run("repeated matches hit the registry once", func(t *testing.T) {
		t.Parallel()
		requests := 0
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprint(w, leftPadPackument)
		}), time.Minute)

		for range 3 {
			_, err := client.Match(t.Context(), "left-pad", "^1.0.0")
			require.NoError(t, err)
		}
		assert.Equal(t, 1, requests)
	})

	t.Run("fresh process reuses the on-disk metadata", func(t *testing.T) {
		t.Parallel()
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprint(w, leftPadPackument)
		}))
		t.Cleanup(server.Close)

		settings := &domain.Settings{
			MetaCacheDir:    t.TempDir(),
			RegistryURL:     server.URL,
			MetaCacheMaxAge: time.Minute,
			HTTPTimeout:     5 * time.Second,
		}

		first, err := NewClient(settings, logger.NewNop())
		require.NoError(t, err)
		_, err = first.Match(t.Context(), "left-pad", "^1.0.0")
		require.NoError(t, err)

		second, err := NewClient(settings, logger.NewNop())
		require.NoError(t, err)
		manifest, err := second.Match(t.Context(), "left-pad", "^1.0.0")
		require.NoError(t, err)

		assert.Equal(t, "1.2.0", manifest.Version)
		assert.Equal(t, 1, requests)
	})

	t.Run("expired metadata is refetched", func(t *testing.T) {
		t.Parallel()
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprint(w, leftPadPackument)
		}))
		t.Cleanup(server.Close)

		settings := &domain.Settings{
			MetaCacheDir:    t.TempDir(),
			RegistryURL:     server.URL,
			MetaCacheMaxAge: time.Nanosecond,
			HTTPTimeout:     5 * time.Second,
		}

		first, err := NewClient(settings, logger.NewNop())
		require.NoError(t, err)
		_, err = first.Match(t.Context(), "left-pad", "^1.0.0")
		require.NoError(t, err)

		second, err := NewClient(settings, logger.NewNop())
		require.NoError(t, err)
		_, err = second.Match(t.Context(), "left-pad", "^1.0.0")
		require.NoError(t, err)

		assert.Equal(t, 2, requests)
	})
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()

	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, leftPadPackument)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&domain.Settings{
		MetaCacheDir:    t.TempDir(),
		RegistryURL:     server.URL,
		MetaCacheMaxAge: time.Minute,
		HTTPTimeout:     5 * time.Second,
		HTTPHeaders:     map[string]string{"Authorization": "Bearer s3cret"},
	}, logger.NewNop())
	require.NoError(t, err)

	_, err = client.Match(t.Context(), "left-pad", "^1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", auth)
}
