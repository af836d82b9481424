package domain_test

import (
	"encoding/json"
	"testing"

	"go.trai.ch/lode/internal/core/domain"
)

func decodeManifest(t *testing.T, doc string) *domain.Manifest {
	t.Helper()
	var m domain.Manifest
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return &m
}

func TestManifest_BinString(t *testing.T) {
	m := decodeManifest(t, `{"name":"foo","version":"1.0.0","bin":"bin/foo.js"}`)

	bin := m.Executables()
	if len(bin) != 1 {
		t.Fatalf("expected 1 executable, got %d", len(bin))
	}
	if bin["foo"] != "bin/foo.js" {
		t.Errorf("expected string bin to map under package name, got %v", bin)
	}
}

func TestManifest_BinMap(t *testing.T) {
	m := decodeManifest(t, `{"name":"foo","bin":{"foo":"bin/foo.js","foox":"bin/foox.js"}}`)

	bin := m.Executables()
	if len(bin) != 2 {
		t.Fatalf("expected 2 executables, got %d", len(bin))
	}
	if bin["foox"] != "bin/foox.js" {
		t.Errorf("unexpected bin map: %v", bin)
	}
}

func TestManifest_AbsentFieldsAreEmpty(t *testing.T) {
	m := decodeManifest(t, `{"name":"bare","version":"0.0.1"}`)

	if m.Dependencies == nil || m.DevDependencies == nil || m.OptionalDependencies == nil {
		t.Error("expected absent dependency maps to decode to empty, not nil")
	}
	if len(m.Executables()) != 0 {
		t.Errorf("expected no executables, got %v", m.Executables())
	}
	if m.Dist != nil {
		t.Errorf("expected nil dist, got %v", m.Dist)
	}
}

func TestManifest_MalformedBin(t *testing.T) {
	var m domain.Manifest
	err := json.Unmarshal([]byte(`{"name":"foo","bin":42}`), &m)
	if err == nil {
		t.Fatal("expected error for numeric bin field")
	}
}

func TestManifest_Requests_FieldSetPolicy(t *testing.T) {
	m := decodeManifest(t, `{
		"name": "proj",
		"dependencies": {"foo": "1.0.0"},
		"devDependencies": {"mocha": "^9.0.0"}
	}`)

	entry := m.Requests(domain.EntryFields...)
	if len(entry) != 2 {
		t.Fatalf("expected 2 requests for entry field set, got %d", len(entry))
	}

	prod := m.Requests(domain.ProductionFields...)
	if len(prod) != 1 {
		t.Fatalf("expected 1 request for production field set, got %d", len(prod))
	}
	if prod[0].Name.String() != "foo" || prod[0].Constraint.String() != "1.0.0" {
		t.Errorf("unexpected production request: %+v", prod[0])
	}
}

func TestManifest_Requests_Deterministic(t *testing.T) {
	m := decodeManifest(t, `{"dependencies":{"zeta":"1","alpha":"2","mid":"3"}}`)

	reqs := m.Requests(domain.FieldDependencies)
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if reqs[i].Name.String() != name {
			t.Fatalf("expected sorted order %v, got %+v", want, reqs)
		}
	}
}

func TestManifest_Requests_FirstFieldWins(t *testing.T) {
	m := decodeManifest(t, `{
		"dependencies": {"foo": "1.0.0"},
		"devDependencies": {"foo": "2.0.0"}
	}`)

	reqs := m.Requests(domain.EntryFields...)
	if len(reqs) != 1 {
		t.Fatalf("expected a single merged request, got %d", len(reqs))
	}
	if reqs[0].Constraint.String() != "1.0.0" {
		t.Errorf("expected the first selected field's constraint, got %q", reqs[0].Constraint.String())
	}
}

func TestManifest_JSONRoundTrip(t *testing.T) {
	m := decodeManifest(t, `{
		"name": "foo",
		"version": "1.0.0",
		"bin": {"foo": "bin/foo.js"},
		"dist": {"tarball": "https://example.test/foo-1.0.0.tgz", "shasum": "abc123"}
	}`)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var again domain.Manifest
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("re-Unmarshal failed: %v", err)
	}
	if again.Dist == nil || again.Dist.Shasum != "abc123" {
		t.Errorf("dist lost in round trip: %+v", again.Dist)
	}
	if again.Executables()["foo"] != "bin/foo.js" {
		t.Errorf("bin lost in round trip: %v", again.Executables())
	}
}
