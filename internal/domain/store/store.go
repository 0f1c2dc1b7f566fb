// Package store persists the app registry to a single file.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// Format is the on-disk encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Version is written into every document
const Version = 1

// document is the file layout shared by every format
type document struct {
	Version int                `json:"version" yaml:"version" toml:"version"`
	Apps    []types.ManagedApp `json:"apps" yaml:"apps" toml:"apps"`
}

// FileStore writes registry snapshots atomically, replacing the previous one.
type FileStore struct {
	path     string
	format   Format
	compress bool
	logger   *logging.Logger

	mu sync.Mutex
}

// DetectFormat picks the format from the file extension. A trailing .zst
// selects compression on top of it.
func DetectFormat(path string) (Format, bool, error) {
	name := strings.ToLower(filepath.Base(path))
	compress := false
	if trimmed, ok := strings.CutSuffix(name, ".zst"); ok {
		name = trimmed
		compress = true
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compress, nil
	case ".yaml", ".yml":
		return FormatYAML, compress, nil
	case ".toml":
		return FormatTOML, compress, nil
	default:
		return "", false, fmt.Errorf("unsupported store file %q: want .json, .yaml, .yml or .toml", path)
	}
}

// New creates a store for path
func New(path string, logger *logging.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	format, compress, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &FileStore{
		path:     path,
		format:   format,
		compress: compress,
		logger:   logger,
	}, nil
}

// Path returns the file location
func (s *FileStore) Path() string {
	return s.path
}

// Persist implements apphandler.ConfigStore
func (s *FileStore) Persist(ctx context.Context, snapshot []types.ManagedApp) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if snapshot == nil {
		snapshot = []types.ManagedApp{}
	}
	data, err := s.encode(document{Version: Version, Apps: snapshot})
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, data); err != nil {
		return err
	}

	s.logger.Debug("Registry persisted", zap.String("path", s.path), zap.Int("apps", len(snapshot)))
	return nil
}

// Load reads the last persisted snapshot. A missing file is an empty registry.
func (s *FileStore) Load(ctx context.Context) ([]types.ManagedApp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()

	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	doc, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", s.path, err)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("registry %s has version %d, newest supported is %d", s.path, doc.Version, Version)
	}

	s.logger.Info("Registry loaded", zap.String("path", s.path), zap.Int("apps", len(doc.Apps)))
	return doc.Apps, nil
}

func (s *FileStore) encode(doc document) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch s.format {
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	case FormatTOML:
		data, err = toml.Marshal(doc)
	default:
		data, err = sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, err
	}

	if !s.compress {
		return data, nil
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (s *FileStore) decode(data []byte) (document, error) {
	var doc document

	if s.compress {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return doc, err
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return doc, err
		}
	}

	var err error
	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		err = sonic.Unmarshal(data, &doc)
	}
	return doc, err
}

// writeAtomic replaces path through a temp file in the same directory
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace registry file: %w", err)
	}
	return nil
}
