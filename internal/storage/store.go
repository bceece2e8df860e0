// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package storage provides the durable key/value string stores that hold the
// session token between CLI runs.
//
// Every backend follows the same contract: Get returns "" and a nil error for
// an absent key, Set overwrites, and Remove of an absent key is not an error.
// Backends are safe for concurrent use.
package storage

import (
	"context"
)

// KeyToken is the key under which the raw access token is stored.
const KeyToken = "token"

// Store is a durable key/value string store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
