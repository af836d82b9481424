package domain

import (
	"encoding/json"
	"sort"

	"go.trai.ch/zerr"
)

// DependencyField names a manifest section holding a dependency map.
type DependencyField string

const (
	// FieldDependencies is the production dependency section.
	FieldDependencies DependencyField = "dependencies"
	// FieldDevDependencies is the development-only dependency section.
	FieldDevDependencies DependencyField = "devDependencies"
	// FieldOptionalDependencies is the optional dependency section.
	FieldOptionalDependencies DependencyField = "optionalDependencies"
)

// ProductionFields is the field set expanded for every transitive package.
var ProductionFields = []DependencyField{FieldDependencies}

// EntryFields is the extended field set expanded for the top-level project.
var EntryFields = []DependencyField{FieldDependencies, FieldDevDependencies}

// Dist describes where a package's archive lives and the checksum of its bytes.
type Dist struct {
	Tarball string `json:"tarball"`
	Shasum  string `json:"shasum"`
}

// Manifest is a package's declared metadata, read-only once loaded. Absent
// fields decode to empty collections, never nil-ambiguity at call sites.
type Manifest struct {
	Name                 string
	Version              string
	Dependencies         map[string]string
	DevDependencies      map[string]string
	OptionalDependencies map[string]string
	Dist                 *Dist

	bin map[string]string
}

type rawManifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Bin                  json.RawMessage   `json:"bin"`
	Dist                 *Dist             `json:"dist"`
}

// UnmarshalJSON decodes a package.json document. The "bin" field may be a
// single relative path (exposed under the package's own name) or a map of
// executable names to relative paths; both normalize to a map.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return zerr.Wrap(err, ErrMalformedManifest.Error())
	}

	m.Name = raw.Name
	m.Version = raw.Version
	m.Dependencies = orEmpty(raw.Dependencies)
	m.DevDependencies = orEmpty(raw.DevDependencies)
	m.OptionalDependencies = orEmpty(raw.OptionalDependencies)
	m.Dist = raw.Dist

	bin, err := normalizeBin(raw.Name, raw.Bin)
	if err != nil {
		return err
	}
	m.bin = bin

	return nil
}

// MarshalJSON round-trips the fields this core reads.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	raw := rawManifest{
		Name:                 m.Name,
		Version:              m.Version,
		Dependencies:         m.Dependencies,
		DevDependencies:      m.DevDependencies,
		OptionalDependencies: m.OptionalDependencies,
		Dist:                 m.Dist,
	}
	if len(m.bin) > 0 {
		bin, err := json.Marshal(m.bin)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to marshal bin field")
		}
		raw.Bin = bin
	}
	return json.Marshal(raw)
}

func normalizeBin(name string, raw json.RawMessage) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if name == "" {
			return nil, zerr.Wrap(ErrMalformedManifest, "bin declared as string but manifest has no name")
		}
		return map[string]string{name: single}, nil
	}

	var many map[string]string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, zerr.Wrap(err, ErrMalformedManifest.Error())
	}
	if many == nil {
		many = map[string]string{}
	}
	return many, nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// Executables returns the normalized executables map: executable name to
// relative path inside the package payload.
func (m *Manifest) Executables() map[string]string {
	if m.bin == nil {
		return map[string]string{}
	}
	return m.bin
}

// SetExecutables overrides the executables map. Used by tests and by registry
// responses that carry a pre-normalized bin section.
func (m *Manifest) SetExecutables(bin map[string]string) {
	m.bin = orEmpty(bin)
}

// Requests parses the selected dependency fields into DependencyRequests,
// sorted by name for deterministic iteration. A name declared in several
// selected fields yields the first selected field's constraint.
func (m *Manifest) Requests(fields ...DependencyField) []DependencyRequest {
	merged := make(map[string]string)
	for _, field := range fields {
		for name, constraint := range m.field(field) {
			if _, ok := merged[name]; !ok {
				merged[name] = constraint
			}
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	reqs := make([]DependencyRequest, len(names))
	for i, name := range names {
		reqs[i] = DependencyRequest{
			Name:       NewInternedString(name),
			Constraint: NewInternedString(merged[name]),
		}
	}
	return reqs
}

func (m *Manifest) field(field DependencyField) map[string]string {
	switch field {
	case FieldDependencies:
		return m.Dependencies
	case FieldDevDependencies:
		return m.DevDependencies
	case FieldOptionalDependencies:
		return m.OptionalDependencies
	default:
		return nil
	}
}
