package threshold

import "testing"

func TestParseComparison(t *testing.T) {
	cases := []struct {
		in   string
		want Comparison
		ok   bool
	}{
		{"greater", GreaterThan, true},
		{">", GreaterThan, true},
		{"less", LessThan, true},
		{"<", LessThan, true},
		{"equal", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseComparison(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("ParseComparison(%q): err = %v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseComparison(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestConfigReset(t *testing.T) {
	cfg := NewConfig()
	cfg.Comparison = LessThan
	cfg.Value = 42.5

	cfg.Reset()
	if cfg.Comparison != DefaultComparison {
		t.Errorf("comparison = %v after reset, want %v", cfg.Comparison, DefaultComparison)
	}
	if cfg.Value != DefaultValue {
		t.Errorf("value = %v after reset, want %v", cfg.Value, DefaultValue)
	}
}

func TestComputeRejectsEmptyImage(t *testing.T) {
	if _, err := Compute(nil, *NewConfig()); err == nil {
		t.Fatal("expected an error for a nil image")
	}
}
