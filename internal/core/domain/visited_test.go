package domain_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"go.trai.ch/lode/internal/core/domain"
)

func TestVisited_AddIsInsertIfAbsent(t *testing.T) {
	v := domain.NewVisited()
	key := domain.NewInternedString("abc123")

	if !v.Add(key) {
		t.Error("first Add should report newly added")
	}
	if v.Add(key) {
		t.Error("second Add should report already present")
	}
	if v.Len() != 1 {
		t.Errorf("expected 1 key, got %d", v.Len())
	}
}

func TestVisited_ConcurrentAddSingleWinner(t *testing.T) {
	v := domain.NewVisited()
	key := domain.NewInternedString("contested")

	const workers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			if v.Add(key) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("expected exactly one winner, got %d", wins.Load())
	}
	if v.Len() != 1 {
		t.Errorf("expected 1 key, got %d", v.Len())
	}
}

func TestLayout_Paths(t *testing.T) {
	l := domain.Layout{StoreDir: "/store"}

	if got := l.EntryPath("abc123"); got != "/store/abc123" {
		t.Errorf("EntryPath: got %q", got)
	}
	if got := l.NodeModulesDir("/proj"); got != "/proj/node_modules" {
		t.Errorf("NodeModulesDir: got %q", got)
	}
	if got := l.BinDir("/proj"); got != "/proj/node_modules/.bin" {
		t.Errorf("BinDir: got %q", got)
	}
	if got := l.DirectLinkPath("/proj", "foo"); got != "/proj/node_modules/foo" {
		t.Errorf("DirectLinkPath: got %q", got)
	}
	if got := l.BinLinkPath("/proj", "foo"); got != "/proj/node_modules/.bin/foo" {
		t.Errorf("BinLinkPath: got %q", got)
	}
}
