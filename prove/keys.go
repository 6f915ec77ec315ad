package prove

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
)

// KeyStore persists synthesized Groth16 keys on disk so repeated runs
// skip the setup. Files are named <program>.<function>.proving.key and
// <program>.<function>.verifying.key under the store directory.
type KeyStore struct {
	dir string
}

// NewKeyStore creates (if needed) and opens a key directory.
func NewKeyStore(dir string) (*KeyStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	return &KeyStore{dir: dir}, nil
}

// Load reads a persisted key pair. Both files must be present.
func (s *KeyStore) Load(programID, function string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BLS12_377)
	if err := readKey(s.path(programID, function, "proving"), pk); err != nil {
		return nil, nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BLS12_377)
	if err := readKey(s.path(programID, function, "verifying"), vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

// Save persists a key pair.
func (s *KeyStore) Save(programID, function string, pk groth16.ProvingKey, vk groth16.VerifyingKey) error {
	if err := writeKey(s.path(programID, function, "proving"), pk); err != nil {
		return err
	}
	return writeKey(s.path(programID, function, "verifying"), vk)
}

func (s *KeyStore) path(programID, function, kind string) string {
	name := strings.ReplaceAll(programID, "/", "_")
	return filepath.Join(s.dir, fmt.Sprintf("%s.%s.%s.key", name, function, kind))
}

func readKey(path string, key io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open key file %s: %w", path, err)
	}
	defer f.Close()
	if _, err := key.ReadFrom(f); err != nil {
		return fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	return nil
}

func writeKey(path string, key io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create key file %s: %w", path, err)
	}
	defer f.Close()
	if _, err := key.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write key file %s: %w", path, err)
	}
	return nil
}
