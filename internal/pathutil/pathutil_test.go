package pathutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"/a/b/c":       "/a/b/c",
		"/a//b/c/":     "/a/b/c",
		"/a/./b":       "/a/b",
		"/a/b/../c":    "/a/c",
		"/../a":        "/a",
		"/":            "/",
		"a/b":          "a/b",
		"":             ".",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsAbsolute(t *testing.T) {
	cases := map[string]bool{
		"/a/b":   true,
		"/":      true,
		"a/b":    false,
		"../a":   false,
		"/../a":  true,
	}
	for in, want := range cases {
		if got := IsAbsolute(in); got != want {
			t.Errorf("IsAbsolute(%q) = %v, want %v", in, got, want)
		}
	}
}
