package histfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/kryptograf"
	"pkt.systems/kryptograf/keymgmt"
	"pkt.systems/pslog"
)

const (
	snapshotVersion = 1
	descriptorName  = "termline:history"
)

type fileSnapshot struct {
	Version int      `json:"version"`
	Entries []string `json:"entries"`
}

// Store persists command history to disk.
type Store struct {
	path         string
	keyStorePath string
	log          pslog.Logger
}

// NewStore constructs a history store at path. A non-empty keyStorePath
// enables encryption with a key minted from the store at that path.
func NewStore(path, keyStorePath string) (*Store, error) {
	return NewStoreWithLogger(path, keyStorePath, nil)
}

// NewStoreWithLogger constructs a history store with logging.
func NewStoreWithLogger(path, keyStorePath string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history file path is required")
	}
	if keyStorePath != "" {
		if err := EnsureKeyStoreWithLogger(keyStorePath, logger); err != nil {
			return nil, err
		}
	}
	if logger != nil {
		logger = logger.With("history_file", path)
	}
	return &Store{path: path, keyStorePath: keyStorePath, log: logger}, nil
}

// Load reads the stored history. A missing file is not an error.
func (s *Store) Load() ([]string, bool, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("history load miss")
			}
			return nil, false, nil
		}
		if s.log != nil {
			s.log.Warn("history load failed", "err", err)
		}
		return nil, false, err
	}
	defer func() { _ = file.Close() }()

	var reader io.Reader = file
	if s.keyStorePath != "" {
		material, root, err := s.material()
		if err != nil {
			if s.log != nil {
				s.log.Warn("history load failed", "err", err)
			}
			return nil, false, err
		}
		kg := kryptograf.New(root)
		dec, err := kg.DecryptReader(file, material)
		if err != nil {
			if s.log != nil {
				s.log.Warn("history load failed", "err", err)
			}
			return nil, false, err
		}
		defer func() { _ = dec.Close() }()
		reader = dec
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		if s.log != nil {
			s.log.Warn("history load failed", "err", err)
		}
		return nil, false, err
	}
	var snapshot fileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		if s.log != nil {
			s.log.Warn("history load failed", "err", err)
		}
		return nil, false, err
	}
	if snapshot.Version != snapshotVersion {
		return nil, false, fmt.Errorf("unsupported history version %d", snapshot.Version)
	}
	if s.log != nil {
		s.log.Debug("history load ok", "entries", len(snapshot.Entries))
	}
	return snapshot.Entries, true, nil
}

// Save writes the history to disk, replacing any previous contents.
func (s *Store) Save(entries []string) error {
	data, err := json.MarshalIndent(fileSnapshot{Version: snapshotVersion, Entries: entries}, "", "  ")
	if err != nil {
		if s.log != nil {
			s.log.Warn("history save failed", "err", err)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		if s.log != nil {
			s.log.Warn("history save failed", "err", err)
		}
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "history-*.tmp")
	if err != nil {
		if s.log != nil {
			s.log.Warn("history save failed", "err", err)
		}
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		if s.log != nil {
			s.log.Warn("history save failed", "err", err)
		}
		return err
	}
	if err := s.writePayload(tmp, data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		if s.log != nil {
			s.log.Warn("history save failed", "err", err)
		}
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		if s.log != nil {
			s.log.Warn("history save failed", "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("history save ok", "entries", len(entries))
	}
	return nil
}

// writePayload writes data and finishes the temp file. The encrypting
// writer closes the underlying file on Close, so the explicit sync and
// close happen on the plaintext path only.
func (s *Store) writePayload(tmp *os.File, data []byte) error {
	if s.keyStorePath == "" {
		if _, err := tmp.Write(data); err != nil {
			return err
		}
		if err := tmp.Sync(); err != nil {
			return err
		}
		return tmp.Close()
	}
	material, root, err := s.material()
	if err != nil {
		return err
	}
	kg := kryptograf.New(root)
	writer, err := kg.EncryptWriter(tmp, material)
	if err != nil {
		return err
	}
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	_ = tmp.Close()
	return nil
}

func (s *Store) material() (keymgmt.Material, keymgmt.RootKey, error) {
	store, err := keymgmt.LoadProto(s.keyStorePath)
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	root, err := store.EnsureRootKey()
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	material, err := store.EnsureDescriptor(descriptorName, root, []byte(descriptorName))
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	if err := store.Commit(); err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	return material, root, nil
}

// EnsureKeyStore creates or loads the key store at path and guarantees a
// root key exists before the first encrypted save needs it.
func EnsureKeyStore(path string) error {
	return EnsureKeyStoreWithLogger(path, nil)
}

// EnsureKeyStoreWithLogger creates or loads the key store with logging.
func EnsureKeyStoreWithLogger(path string, logger pslog.Logger) error {
	if path == "" {
		return errors.New("history key store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return keyStoreErr(logger, "create key store dir", err)
	}
	store, err := keymgmt.LoadProto(path)
	if err != nil {
		return keyStoreErr(logger, "load key store", err)
	}
	if _, err := store.EnsureRootKey(); err != nil {
		return keyStoreErr(logger, "ensure root key", err)
	}
	if err := store.Commit(); err != nil {
		return keyStoreErr(logger, "commit key store", err)
	}
	if logger != nil {
		logger.Debug("history key store ensure ok", "path", path)
	}
	return nil
}

func keyStoreErr(logger pslog.Logger, op string, err error) error {
	if logger != nil {
		logger.Warn("history key store ensure failed", "op", op, "err", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
