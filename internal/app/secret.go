package app

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pennywise/internal/config"
)

const keyFile = "storage.key"

// storageSecret returns the key sealing the session. Without a configured key
// one is generated once and kept in the data directory.
func storageSecret(cfg config.Client) (string, error) {
	if cfg.StorageKey != "" {
		return cfg.StorageKey, nil
	}

	path := filepath.Join(cfg.DataDir, keyFile)
	raw, err := os.ReadFile(path)
	if err == nil && len(strings.TrimSpace(string(raw))) > 0 {
		return strings.TrimSpace(string(raw)), nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading storage key: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating storage key: %w", err)
	}
	key := hex.EncodeToString(buf)
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing storage key: %w", err)
	}
	return key, nil
}
