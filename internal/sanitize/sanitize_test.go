package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "What made you smile today?", "What made you smile today?"},
		{"script stripped", `<script>alert("x")</script>hello`, "hello"},
		{"tags stripped", "<b>love</b> you", "love you"},
		{"whitespace trimmed", "  a caption  ", "a caption"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
