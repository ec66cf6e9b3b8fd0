package clipboard

import (
	"slices"
	"testing"
)

func TestMemory(t *testing.T) {
	m := &Memory{}

	if text, err := m.ReadText(); err != nil || text != "" {
		t.Fatalf("expected empty clipboard, got %q, %v", text, err)
	}

	for _, text := range []string{"first", "second"} {
		if err := m.WriteText(text); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if text, _ := m.ReadText(); text != "second" {
		t.Fatalf("expected last write to be readable, got %q", text)
	}
	if writes := m.Writes(); !slices.Equal(writes, []string{"first", "second"}) {
		t.Fatalf("unexpected writes %v", writes)
	}
}
