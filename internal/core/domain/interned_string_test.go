package domain_test

import (
	"encoding/json"
	"testing"

	"go.trai.ch/lode/internal/core/domain"
)

func TestInternedString_Equality(t *testing.T) {
	s1 := "left-pad"
	s2 := "left" + "-pad"

	is1 := domain.NewInternedString(s1)
	is2 := domain.NewInternedString(s2)

	if is1 != is2 {
		t.Errorf("expected interned strings of equal values to be equal")
	}
	if is1.Value() != is2.Value() {
		t.Errorf("expected underlying handles to be identical")
	}
}

func TestInternedString_JSONRoundTrip(t *testing.T) {
	original := domain.NewInternedString("abc123def456")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"abc123def456"` {
		t.Errorf("expected %q, got %q", `"abc123def456"`, string(data))
	}

	var decoded domain.InternedString
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded != original {
		t.Errorf("expected round-tripped value to equal original")
	}
}

func TestInternedString_ZeroValue(t *testing.T) {
	var zero domain.InternedString
	if zero.String() != "" {
		t.Errorf("expected zero value to stringify to empty, got %q", zero.String())
	}
}
