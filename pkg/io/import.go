package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

// Format is a family file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath returns the format implied by path's extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported family file extension %q (want .json or .toml)", filepath.Ext(path))
	}
}

// ReadJSON decodes a JSON family file from r.
func ReadJSON(r io.Reader) (family.Snapshot, error) {
	var s family.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return family.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return s, check(s)
}

// ReadTOML decodes a TOML family file from r.
func ReadTOML(r io.Reader) (family.Snapshot, error) {
	var s family.Snapshot
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return family.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
	}
	return s, check(s)
}

// Read decodes r in the given format.
func Read(r io.Reader, format Format) (family.Snapshot, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	default:
		return family.Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
}

// ImportFile reads the family file at path.
func ImportFile(path string) (family.Snapshot, error) {
	if err := errors.ValidatePath(path); err != nil {
		return family.Snapshot{}, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return family.Snapshot{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return family.Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return family.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

func check(s family.Snapshot) error {
	people := make(map[string]bool, len(s.People))
	for i, p := range s.People {
		if p.ID == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "person #%d has no id", i+1)
		}
		if people[p.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate person id %q", p.ID)
		}
		people[p.ID] = true
	}
	rels := make(map[string]bool, len(s.Relationships))
	for i, r := range s.Relationships {
		if r.ID == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "relationship #%d has no id", i+1)
		}
		if rels[r.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate relationship id %q", r.ID)
		}
		if !r.Kind.Valid() {
			return errors.New(errors.ErrCodeInvalidFormat, "relationship %s: unknown type %q", r.ID, r.Kind)
		}
		rels[r.ID] = true
	}
	return nil
}
