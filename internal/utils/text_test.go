package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Hello, World", 0, "hello-world"},
		{"  ohashi / db_fields  ", 0, "ohashi-db_fields"},
		{"Héllo Wörld", 0, "hello-world"},
		{"already-a-slug", 0, "already-a-slug"},
		{"a very long repository name", 10, "a-very-lon"},
		{"abc def", 4, "abc"},
		{"中文", 0, ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in, tt.max); got != tt.want {
			t.Fatalf("Slugify(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestToJSON(t *testing.T) {
	if got := ToJSON(map[string]int{"a": 1}); got != `{"a":1}` {
		t.Fatalf("unexpected json: %s", got)
	}
	if got := ToJSON(make(chan int)); got != "" {
		t.Fatalf("expected empty string for unsupported value, got %q", got)
	}
}
