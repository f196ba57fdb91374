package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean text passes through",
			in:   "Invoice #42 from Acme Corp",
			want: "Invoice #42 from Acme Corp",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "nul bytes between pages dropped",
			in:   "page one\x00\x00page two",
			want: "page onepage two",
		},
		{
			name: "truncated multibyte sequence dropped",
			in:   "total\xc3(due",
			want: "total(due",
		},
		{
			name: "nul and invalid bytes together",
			in:   "a\x00b\xffc",
			want: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePostgresText(tt.in); got != tt.want {
				t.Errorf("SanitizePostgresText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
