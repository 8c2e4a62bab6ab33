package universe

import "testing"

func TestDefault(t *testing.T) {
	u := Default()
	if len(u) != 50 {
		t.Errorf("len(Default()) = %d, want 50", len(u))
	}

	seen := make(map[string]struct{}, len(u))
	for _, s := range u {
		if s == "" {
			t.Error("empty symbol in universe")
		}
		if _, dup := seen[s]; dup {
			t.Errorf("duplicate symbol %s", s)
		}
		seen[s] = struct{}{}
	}
}

func TestDefault_ReturnsCopy(t *testing.T) {
	u := Default()
	u[0] = "MUTATED"
	if Default()[0] == "MUTATED" {
		t.Error("Default() shares its backing array with callers")
	}
}
