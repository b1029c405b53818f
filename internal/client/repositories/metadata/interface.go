// Package metadata is the CLI's local key-value store. It keeps the session
// token and the identity of the signed-in account between runs.
package metadata

import (
	"context"
	"time"
)

// Well-known keys.
const (
	KeyToken      = "session_token"
	KeyExpiresAt  = "session_expires_at"
	KeyAccountID  = "account_id"
	KeyEmail      = "account_email"
	KeyName       = "account_name"
	KeyServerURL  = "server_url"
	KeyLastResult = "last_result"
)

// Item is one stored pair.
type Item struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) ([]Item, error)
	Clear(ctx context.Context) error
}
