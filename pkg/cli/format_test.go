package cli

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{500, "500ms"},
		{1500, "1.5s"},
		{65000, "1m5.0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty key = %q", got)
	}
	if got := MaskAPIKey("short"); got != "*****" {
		t.Errorf("short key = %q", got)
	}
	got := MaskAPIKey("dd-1234567890abcdef")
	if got[:4] != "dd-1" || got[len(got)-4:] != "cdef" {
		t.Errorf("masked key = %q", got)
	}
}
