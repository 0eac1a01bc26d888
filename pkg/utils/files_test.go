package utils

import (
	"path/filepath"
	"testing"
)

func TestGetPathInfo(t *testing.T) {
	full, parent, err := GetPathInfo(filepath.Join("roms", "..", "roms", "pong.ch8"))
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(full) {
		t.Errorf("expected absolute path, got %s", full)
	}
	if filepath.Base(full) != "pong.ch8" || filepath.Base(parent) != "roms" {
		t.Errorf("unexpected split: %s, %s", full, parent)
	}
}

func TestRomName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pong.ch8", "pong"},
		{filepath.Join("roms", "Space Invaders.c8"), "Space Invaders"},
		{"archive.tar.gz", "archive.tar"},
		{"noext", "noext"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := RomName(tc.in); got != tc.want {
			t.Errorf("RomName(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
