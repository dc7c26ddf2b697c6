package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
)

// LoadManuscript reads and validates a manuscript from the store, using the
// codec the file extension names
func LoadManuscript(ctx context.Context, store Store, path string) (*manuscript.Manuscript, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := store.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading manuscript: %w", err)
	}

	var m manuscript.Manuscript
	if err := decode(format, data, &m); err != nil {
		return nil, fmt.Errorf("decoding %s manuscript %s: %w", format, path, err)
	}
	if err := manuscript.Validate(m.Input()); err != nil {
		return nil, fmt.Errorf("manuscript %s: %w", path, err)
	}
	return &m, nil
}

// SaveManuscript writes a manuscript in the format its path names
func SaveManuscript(ctx context.Context, store Store, path string, m *manuscript.Manuscript) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var payload interface{} = m
	if format == FormatTOML {
		payload = newTOMLManuscript(m)
	}
	data, err := encode(format, payload)
	if err != nil {
		return fmt.Errorf("encoding manuscript: %w", err)
	}
	return store.Save(ctx, path, data)
}

// OpenFile splits a user-supplied path into a store rooted at its directory
// and the file name within it
func OpenFile(path string) (*FileSystem, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return NewFileSystem(filepath.Dir(abs)), filepath.Base(abs), nil
}
