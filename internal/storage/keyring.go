// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package storage

import (
	"context"
	"errors"
	"io/fs"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "irms"

// Keyring stores values in an OS keychain/credential store (or keyring's
// encrypted file and in-memory backends).
type Keyring struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// KeyringOptions tunes which keyring backends may be opened.
type KeyringOptions struct {
	// FileOnly restricts the ring to the encrypted file backend.
	FileOnly bool
	// FileDir is the directory of the encrypted file backend.
	FileDir string
	// FilePassword unlocks the file backend. When empty the file backend is
	// not offered, since it would prompt on a terminal.
	FilePassword string
}

// NewKeyring wraps an already opened ring.
func NewKeyring(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// NewMemory returns a Keyring backed by keyring's in-memory ArrayKeyring.
// Values do not survive the process.
func NewMemory() *Keyring {
	return NewKeyring(keyring.NewArrayKeyring(nil))
}

// OpenKeyring opens the OS keyring using the native platform backends, with
// the encrypted file store as a fallback when a password is configured.
func OpenKeyring(opts KeyringOptions) (*Keyring, error) {
	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowedBackends(opts),
		PassPrefix:              ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
		FileDir:                 opts.FileDir,
	}

	// Hint prefixes where supported to minimize namespace collisions
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}
	if opts.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
	}

	if len(cfg.AllowedBackends) == 0 {
		return nil, errors.New("no secure storage backend available: set IRMS_KEYRING_PASSWORD to use the encrypted file store")
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewKeyring(ring), nil
}

func allowedBackends(opts KeyringOptions) []keyring.BackendType {
	if opts.FileOnly {
		if opts.FilePassword == "" {
			return nil
		}
		return []keyring.BackendType{keyring.FileBackend}
	}

	var backends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// Pass requires 'pass' utility installed: brew install pass
		backends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		backends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		backends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}
	if opts.FilePassword != "" {
		backends = append(backends, keyring.FileBackend)
	}
	return backends
}

// Get retrieves a value from the keyring. A missing item yields "".
func (k *Keyring) Get(_ context.Context, key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	it, err := k.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

// Set stores a value in the keyring.
func (k *Keyring) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

// Remove deletes a value from the keyring.
func (k *Keyring) Remove(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	err := k.ring.Remove(key)
	// The file backend reports a missing item as a missing file.
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op; keyring backends hold no long-lived handles.
func (k *Keyring) Close() error { return nil }
