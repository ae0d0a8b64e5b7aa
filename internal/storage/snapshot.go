package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"liquidityBook/internal/model"
)

// ErrUnsupportedFormat is returned for snapshot files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported snapshot file format")

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadSnapshotFile loads a snapshot record from a .json, .yaml or .yml file.
// The record is not validated; pass it to model.NewSnapshot.
func ReadSnapshotFile(path string) (model.SnapshotRecord, error) {
	f, err := formatOf(path)
	if err != nil {
		return model.SnapshotRecord{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("read snapshot: %w", err)
	}

	var rec model.SnapshotRecord
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, &rec)
	default:
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return rec, nil
}

// WriteSnapshotFile writes rec atomically through a temp file and rename.
func WriteSnapshotFile(path string, rec model.SnapshotRecord) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatYAML:
		data, err = yaml.Marshal(rec)
	default:
		data, err = json.MarshalIndent(rec, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
