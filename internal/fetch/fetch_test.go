package fetch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"./world.json", "world.json"},
		{"/tmp/a/world.json", "world.json"},
		{"https://example.com/maps/world.json?checksum=sha256:abc", "world.json"},
		{"s3::https://s3.amazonaws.com/bucket/isle.json", "isle.json"},
		{"https://example.com/", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := fileName(tt.src); got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestFetchLocalFile(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "world.json")
	want := []byte(`{"width":1,"height":1,"heights":[0],"thresholds":{"sea":-1,"hill":1,"mountain":2,"peak":3}}`)
	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatal(err)
	}

	f := New(filepath.Join(t.TempDir(), "foundations"), slog.New(slog.DiscardHandler))
	path, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fetched file: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("fetched %q, want %q", got, want)
	}

	// A second fetch replaces the first.
	if _, err := f.Fetch(context.Background(), src); err != nil {
		t.Fatalf("refetch: %v", err)
	}
}

func TestFetchMissing(t *testing.T) {
	f := New(t.TempDir(), slog.New(slog.DiscardHandler))
	if _, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestFetchInPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "world.json")
	if err := os.WriteFile(src, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, err := New(dir, slog.New(slog.DiscardHandler)).Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != src {
		t.Fatalf("path = %q, want %q", path, src)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source removed: %v", err)
	}
}
