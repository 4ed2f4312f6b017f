package script

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		path string
		want Scheme
	}{
		{"scripts/setup.sql", SchemeLocal},
		{"/abs/path/setup.sql", SchemeLocal},
		{"file:///abs/path/setup.sql", SchemeFile},
		{"http://example.com/setup.sql", SchemeHTTP},
		{"https://example.com/setup.sql", SchemeHTTPS},
		{"HTTPS://EXAMPLE.COM/SETUP.SQL", SchemeHTTPS},
		{"s3://bucket/scripts/setup.sql", SchemeS3},
	}

	for _, tt := range tests {
		if got := DetectScheme(tt.path); got != tt.want {
			t.Errorf("DetectScheme(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.sql")
	content := "CREATE TABLE t (id INTEGER);\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	data, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}

	// file:// resolves to the same local path.
	data, err = loader.Load(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Load file://: %v", err)
	}
	if string(data) != content {
		t.Errorf("file:// content = %q", data)
	}
}

func TestLoadEnforcesSizeLimit(t *testing.T) {
	loader := NewLoader()
	loader.MaxBytes = 8
	loader.openLocal = func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("SELECT 1; SELECT 2;")), nil
	}

	_, err := loader.Load(context.Background(), "big.sql")
	if err == nil {
		t.Fatal("oversized script accepted")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("error = %v, want size message", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader()
	if _, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.sql")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.sql", "a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := Expand(filepath.Join(dir, "*.sql"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{filepath.Join(dir, "a.sql"), filepath.Join(dir, "b.sql")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Expand = %v, want %v", paths, want)
	}

	if _, err := Expand(filepath.Join(dir, "*.missing")); err == nil {
		t.Error("empty glob accepted")
	}

	// Remote paths pass through without globbing.
	paths, err = Expand("s3://bucket/scripts/*.sql")
	if err != nil {
		t.Fatalf("Expand remote: %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"s3://bucket/scripts/*.sql"}) {
		t.Errorf("remote Expand = %v", paths)
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://my-bucket/scripts/setup.sql")
	if err != nil {
		t.Fatalf("parseS3URL: %v", err)
	}
	if bucket != "my-bucket" || key != "scripts/setup.sql" {
		t.Errorf("parsed %q/%q", bucket, key)
	}

	if _, _, err := parseS3URL("s3://bucket-only"); err == nil {
		t.Error("key-less S3 URL accepted")
	}
}
