package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemSecurity(t *testing.T) {
	root := t.TempDir()
	baseDir := filepath.Join(root, "base")
	if err := os.Mkdir(baseDir, 0755); err != nil {
		t.Fatal(err)
	}
	outsideFile := filepath.Join(root, "outside.yaml")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSystem(baseDir)
	ctx := context.Background()

	t.Run("Save prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name string
			path string
			want bool // true if should succeed
		}{
			{"normal path", "novel.yaml", true},
			{"subdirectory", "drafts/novel.yaml", true},
			{"parent traversal", "../novel.yaml", false},
			{"complex traversal", "drafts/../../novel.yaml", false},
			{"absolute path", "/etc/passwd", false},
			{"hidden traversal", "drafts/../../../etc/passwd", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := fs.Save(ctx, tt.path, []byte("scenes: []"))
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for path %q, got none", tt.path)
				}
			})
		}
	})

	t.Run("Load prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name string
			path string
			want bool
		}{
			{"normal path", "novel.yaml", true},
			{"parent traversal", "../outside.yaml", false},
			{"absolute path", outsideFile, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := fs.Load(ctx, tt.path)
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for path %q, got none", tt.path)
				}
			})
		}
	})

	t.Run("List prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name    string
			pattern string
			want    bool
		}{
			{"normal pattern", "*.yaml", true},
			{"subdirectory pattern", "drafts/*.yaml", true},
			{"parent traversal", "../*", false},
			{"absolute pattern", "/etc/*", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := fs.List(ctx, tt.pattern)
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for pattern %q, got none", tt.pattern)
				}
			})
		}
	})
}

func TestSanitizePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewFileSystem(tempDir)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple file", "novel.yaml", false},
		{"nested file", "dir/novel.yaml", false},
		{"dot file", ".hidden", false},
		{"parent directory", "../novel.yaml", true},
		{"sneaky parent", "dir/../../../etc/passwd", true},
		{"absolute path", "/etc/passwd", true},
		{"empty path", "", false},
		{"dot path", ".", false},
		{"double dot", "..", true},
		{"contains double dot", "some/..thing/file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.sanitizePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("sanitizePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
				return
			}
			if err == nil && !strings.HasPrefix(got, fs.BaseDir()) {
				t.Errorf("sanitizePath(%q) = %q, not under base directory %q", tt.path, got, fs.BaseDir())
			}
		})
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	for _, content := range []string{"first draft", "second draft"} {
		if err := fs.Save(ctx, "novel.md", []byte(content)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	data, err := fs.Load(ctx, "novel.md")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "second draft" {
		t.Errorf("Load = %q, want the second draft", data)
	}

	names, err := fs.List(ctx, "*")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0] != "novel.md" {
		t.Errorf("temp files left behind: %v", names)
	}
	if !fs.Exists(ctx, "novel.md") || fs.Exists(ctx, "missing.md") {
		t.Error("Exists disagrees with the directory contents")
	}
}

func TestCancelledContext(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := fs.Save(ctx, "novel.md", []byte("x")); err == nil {
		t.Error("Save ignored a cancelled context")
	}
	if _, err := fs.Load(ctx, "novel.md"); err == nil {
		t.Error("Load ignored a cancelled context")
	}
}
