// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package storage

import (
	"context"
	"fmt"

	"irms/cli/internal/config"
	apperrors "irms/cli/internal/errors"
	"irms/cli/internal/xdg"
)

// Open builds the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.StorageKeyring, "":
		s, err = openKeyring(cfg, false)
	case config.StorageFile:
		s, err = openKeyring(cfg, true)
	case config.StorageMemory:
		s = NewMemory()
	case config.StorageRedis:
		s, err = OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	case config.StoragePostgres:
		s, err = OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StorageUnavailable, "open "+cfg.Backend+" storage", err)
	}
	return s, nil
}

func openKeyring(cfg config.StorageConfig, fileOnly bool) (*Keyring, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	return OpenKeyring(KeyringOptions{
		FileOnly:     fileOnly,
		FileDir:      dir,
		FilePassword: cfg.KeyringPassword,
	})
}
