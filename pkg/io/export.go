package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

// WriteJSON encodes s as indented JSON.
func WriteJSON(s family.Snapshot, w io.Writer) error {
	s = normalize(s)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes s as TOML arrays of tables.
func WriteTOML(s family.Snapshot, w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(normalize(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Write encodes s in the given format.
func Write(s family.Snapshot, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(s, w)
	case FormatTOML:
		return WriteTOML(s, w)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
}

// ExportFile writes s to path, replacing the file atomically.
func ExportFile(s family.Snapshot, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".family-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if err := Write(s, tmp, format); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// normalize replaces nil slices so empty collections encode as [] rather
// than null.
func normalize(s family.Snapshot) family.Snapshot {
	if s.People == nil {
		s.People = []family.Person{}
	}
	if s.Relationships == nil {
		s.Relationships = []family.Relationship{}
	}
	return s
}
