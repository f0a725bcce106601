package utils

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"kz123abc", "KZ123ABC"},
		{"  RT-2026-001  ", "RT-2026-001"},
		{" sn-0001 ", "SN-0001"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.in); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
