// Package slot reads and writes the mobile client's on-device storage slots.
//
// A slot is one JSON object keyed by email, stored as a single blob. Put and
// Get keep the client's contract: every call rewrites or rereads the whole
// mapping, nothing is locked, and failures are logged and swallowed. Use Load
// when the caller needs to see errors.
package slot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Well-known slot names used by the mobile client.
const (
	ReportersSlot = "reporters"
	IssuesSlot    = "issues"
)

// Backend holds the raw serialized mapping.
type Backend interface {
	// Read returns the stored blob, or nil when nothing was stored yet.
	Read() ([]byte, error)
	Write(data []byte) error
}

// FileBackend stores the slot as a file on disk.
type FileBackend struct {
	Path string
}

func (f FileBackend) Read() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (f FileBackend) Write(data []byte) error {
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.Path, data, 0o600)
}

// Slot is a named whole-mapping key-value slot.
type Slot struct {
	name    string
	backend Backend
	logger  *zap.Logger
}

// New returns a slot called name persisted in backend.
func New(name string, backend Backend, logger *zap.Logger) *Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slot{name: name, backend: backend, logger: logger.With(zap.String("slot", name))}
}

// Name returns the slot name.
func (s *Slot) Name() string {
	return s.name
}

// Load decodes the whole mapping. An empty slot yields an empty map.
func (s *Slot) Load() (map[string]json.RawMessage, error) {
	raw, err := s.backend.Read()
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.name, err)
	}
	mapping := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return mapping, nil
	}
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", s.name, err)
	}
	if mapping == nil {
		mapping = map[string]json.RawMessage{}
	}
	return mapping, nil
}

// Store encodes and writes the whole mapping.
func (s *Slot) Store(mapping map[string]json.RawMessage) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", s.name, err)
	}
	if err := s.backend.Write(data); err != nil {
		return fmt.Errorf("write slot %s: %w", s.name, err)
	}
	return nil
}

// Put sets key to value and rewrites the whole mapping. Errors are only logged.
// Put, Get and GetInto are the client-compatible slot API; server code reads
// slots through Load.
func (s *Slot) Put(key string, value any) {
	mapping, err := s.Load()
	if err != nil {
		s.logger.Error("error saving data", zap.String("key", key), zap.Error(err))
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("error saving data", zap.String("key", key), zap.Error(err))
		return
	}
	mapping[key] = encoded
	if err := s.Store(mapping); err != nil {
		s.logger.Error("error saving data", zap.String("key", key), zap.Error(err))
	}
}

// Get returns the value stored under key. A failed read reports false, the
// same as an absent key.
func (s *Slot) Get(key string) (json.RawMessage, bool) {
	mapping, err := s.Load()
	if err != nil {
		s.logger.Error("error reading value", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	value, ok := mapping[key]
	if !ok || string(value) == "null" {
		return nil, false
	}
	return value, true
}

// GetInto decodes the value under key into dst and reports whether it did.
func (s *Slot) GetInto(key string, dst any) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Error("error reading value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
