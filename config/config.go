// Package config holds the snapshot table the generator runs over. The table
// is compiled into the binary from snapshots.toml.
package config

import (
	_ "embed"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/schema"
)

//go:embed snapshots.toml
var embedded []byte

// DefaultExtension is used when a snapshot leaves Extension empty
const DefaultExtension = "go"

// SnapshotConfig will hold the settings of one generated snapshot
type SnapshotConfig struct {
	ID           string
	SchemaName   string
	Commit       string
	Encodings    []string
	Extension    string
	EmitRegistry bool
}

// GeneratorConfig will hold every configured snapshot, in processing order
type GeneratorConfig struct {
	Snapshots []SnapshotConfig
}

// Load decodes and validates the embedded snapshot table
func Load() (*GeneratorConfig, error) {
	return Parse(embedded)
}

// Parse decodes and validates a snapshot table
func Parse(data []byte) (*GeneratorConfig, error) {
	cfg := new(GeneratorConfig)
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, failure.New(failure.StageConfig, failure.KindInvalidConfig).
			Cause(errors.Wrap(err, "cannot decode snapshot table")).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every snapshot refers to a known layout and encoding
func (c *GeneratorConfig) Validate() error {
	invalid := func(path, msg string, args ...any) error {
		b := failure.New(failure.StageConfig, failure.KindInvalidConfig).Detail(msg, args...)
		if path != "" {
			b = b.Path(path)
		}
		return b.Build()
	}
	if len(c.Snapshots) == 0 {
		return invalid("", "no snapshots configured")
	}

	ids := make(map[string]bool, len(c.Snapshots))
	names := make(map[string]bool, len(c.Snapshots))
	for _, s := range c.Snapshots {
		snap, ok := schema.ByID(s.ID)
		if !ok {
			return invalid(s.ID, "unknown snapshot, expected one of %v", schema.IDs())
		}
		if ids[s.ID] {
			return invalid(s.ID, "snapshot configured twice")
		}
		ids[s.ID] = true

		if s.SchemaName == "" {
			return invalid(s.ID, "empty schema name")
		}
		if names[s.SchemaName] {
			return invalid(s.ID, "schema name %s is already used", s.SchemaName)
		}
		names[s.SchemaName] = true

		if s.Commit != "" && s.Commit != snap.Commit {
			return invalid(s.ID, "commit %s does not match the frozen layout", s.Commit)
		}
		if _, err := s.ParsedEncodings(); err != nil {
			return err
		}
		if filepath.Base(s.FileName()) != s.FileName() {
			return invalid(s.ID, "extension %q is not a plain file extension", s.Extension)
		}
	}
	return nil
}

// ParsedEncodings returns the configured encodings, rejecting unknown or repeated names
func (s SnapshotConfig) ParsedEncodings() ([]codec.Encoding, error) {
	if len(s.Encodings) == 0 {
		return nil, failure.New(failure.StageConfig, failure.KindInvalidConfig).
			Path(s.ID).Detail("no encodings").Build()
	}
	out := make([]codec.Encoding, 0, len(s.Encodings))
	seen := make(map[codec.Encoding]bool, len(s.Encodings))
	for _, name := range s.Encodings {
		enc, err := codec.ParseEncoding(name)
		if err != nil {
			return nil, err
		}
		if seen[enc] {
			return nil, failure.New(failure.StageConfig, failure.KindInvalidConfig).
				Path(s.ID).Detail("encoding %s listed twice", name).Build()
		}
		seen[enc] = true
		out = append(out, enc)
	}
	return out, nil
}

// FileName is the bindings file written for the snapshot
func (s SnapshotConfig) FileName() string {
	ext := s.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return s.SchemaName + "." + ext
}

// RegistryFileName is the YAML registry dump written when EmitRegistry is set
func (s SnapshotConfig) RegistryFileName() string {
	return s.SchemaName + ".yaml"
}

// Snapshot returns the frozen layout the entry refers to
func (s SnapshotConfig) Snapshot() (schema.Snapshot, bool) {
	return schema.ByID(s.ID)
}
